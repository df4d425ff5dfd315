// Package docs holds the OpenAPI document for the sentinel api, regenerate with swag init
package docs

import "github.com/swaggo/swag/v2"

const docTemplate = `{
    "openapi": "3.0.3",
    "info": {
        "title": "{{.Title}}",
        "description": "{{escape .Description}}",
        "version": "{{.Version}}"
    },
    "paths": {
        "/monitor": {
            "post": {
                "tags": ["Sentinel"],
                "summary": "Score transactions one at a time and stream every stage",
                "requestBody": {
                    "required": true,
                    "content": {"application/json": {"schema": {"$ref": "#/components/schemas/MonitorInput"}}}
                },
                "responses": {
                    "200": {"description": "event stream", "content": {"text/event-stream": {"schema": {"type": "string"}}}},
                    "422": {"description": "no transaction source", "content": {"application/json": {"schema": {"$ref": "#/components/schemas/ErrorResponse"}}}},
                    "503": {"description": "source not configured", "content": {"application/json": {"schema": {"$ref": "#/components/schemas/ErrorResponse"}}}}
                }
            }
        },
        "/regulatory/scrape": {
            "post": {
                "tags": ["Regulatory"],
                "summary": "Run one regulatory pass and return the resulting state",
                "requestBody": {"content": {"application/json": {"schema": {"$ref": "#/components/schemas/ScrapeInput"}}}},
                "responses": {"200": {"description": "ok", "content": {"application/json": {"schema": {"$ref": "#/components/schemas/Envelope"}}}}}
            }
        },
        "/regulatory/stream": {
            "post": {
                "tags": ["Regulatory"],
                "summary": "Run one regulatory pass as a ui stream",
                "requestBody": {"content": {"application/json": {"schema": {"$ref": "#/components/schemas/ScrapeInput"}}}},
                "responses": {"200": {"description": "ui stream terminated by data: [DONE]", "content": {"text/event-stream": {"schema": {"type": "string"}}}}}
            }
        },
        "/meta/health": {"get": {"tags": ["Meta"], "summary": "Health check", "responses": {"200": {"description": "ok"}}}},
        "/meta/ready": {"get": {"tags": ["Meta"], "summary": "Readiness probe with dependency checks", "responses": {"200": {"description": "ok"}, "503": {"description": "a dependency failed"}}}},
        "/meta/version": {"get": {"tags": ["Meta"], "summary": "Build and version info", "responses": {"200": {"description": "ok"}}}},
        "/meta/service": {"get": {"tags": ["Meta"], "summary": "Service info and uptime", "responses": {"200": {"description": "ok"}}}},
        "/meta/pipeline": {"get": {"tags": ["Meta"], "summary": "Rule catalog size, regulators and the regulatory threshold", "responses": {"200": {"description": "ok"}}}}
    },
    "components": {
        "schemas": {
            "MonitorInput": {
                "type": "object",
                "properties": {
                    "transaction_ids": {"type": "array", "maxItems": 500, "items": {"type": "string"}},
                    "csv_demo": {"type": "boolean"},
                    "limit": {"type": "integer", "minimum": 1, "maximum": 1000},
                    "regulators": {"type": "array", "maxItems": 32, "items": {"type": "string", "example": "MAS"}}
                }
            },
            "ScrapeInput": {
                "type": "object",
                "properties": {
                    "regulators": {"type": "array", "maxItems": 32, "items": {"type": "string", "example": "HKMA"}},
                    "cursor": {"type": "string"},
                    "state": {"type": "object"}
                }
            },
            "Envelope": {
                "type": "object",
                "properties": {
                    "status_code": {"type": "integer"},
                    "status": {"type": "string"},
                    "request_id": {"type": "string"},
                    "data": {"type": "object"}
                }
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "0.1.0",
	Title:            "Sentinel API",
	Description:      "Transaction monitoring and regulatory intelligence pipeline",
	InfoInstanceName: "api",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
