// Package llm wraps an OpenAI compatible chat completion endpoint
package llm

import (
	"context"
	"net/http"
	"strings"
	"time"

	"sentinel/internal/core/aml"
	perr "sentinel/internal/platform/errors"
	"sentinel/internal/platform/logger"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"golang.org/x/time/rate"
)

const (
	defaultModel   = "gpt-4o-mini"
	defaultTimeout = 60 * time.Second
)

// ErrNotConfigured is returned when no credential was provided
var ErrNotConfigured = aml.ErrLLMNotConfigured

// Options configures the Client
type Options struct {
	APIKey     string
	BaseURL    string
	Model      string
	RatePerSec float64
	Timeout    time.Duration
}

// Client issues single json mode completions
type Client struct {
	model   llms.Model
	name    string
	limiter *rate.Limiter
	log     logger.Logger
}

// New builds a client; without an api key the client reports ErrNotConfigured on use
func New(o Options) (*Client, error) {
	if o.Model == "" {
		o.Model = defaultModel
	}
	if o.Timeout <= 0 {
		o.Timeout = defaultTimeout
	}
	c := &Client{name: o.Model, log: *logger.Named("llm")}
	if o.RatePerSec > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(o.RatePerSec), 1)
	}
	if strings.TrimSpace(o.APIKey) == "" {
		return c, nil
	}

	opts := []openai.Option{
		openai.WithToken(o.APIKey),
		openai.WithModel(o.Model),
		openai.WithHTTPClient(&http.Client{Timeout: o.Timeout}),
	}
	if o.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(strings.TrimRight(o.BaseURL, "/")))
	}
	m, err := openai.New(opts...)
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeInvalidArgument, "llm init")
	}
	c.model = m
	return c, nil
}

// NewWithModel wraps an existing langchaingo model
func NewWithModel(m llms.Model, name string) *Client {
	return &Client{model: m, name: name, log: *logger.Named("llm")}
}

// Model returns the configured model name
func (c *Client) Model() string { return c.name }

// Configured reports whether completions can be issued
func (c *Client) Configured() bool { return c != nil && c.model != nil }

// Complete sends a system and user message pair and returns the reply text
// the reply is requested in json mode at temperature 0
func (c *Client) Complete(ctx context.Context, system, user string) (string, error) {
	if !c.Configured() {
		return "", ErrNotConfigured
	}
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return "", perr.Wrapf(err, perr.ErrorCodeUnavailable, "llm rate wait")
		}
	}
	msgs := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, system),
		llms.TextParts(llms.ChatMessageTypeHuman, user),
	}
	start := time.Now()
	resp, err := c.model.GenerateContent(ctx, msgs, llms.WithTemperature(0), llms.WithJSONMode())
	if err != nil {
		return "", perr.Wrapf(err, perr.ErrorCodeUnavailable, "llm completion")
	}
	if resp == nil || len(resp.Choices) == 0 {
		return "", perr.Newf(perr.ErrorCodeUnavailable, "llm returned no choices")
	}
	c.log.Debug().Str("model", c.name).Dur("latency", time.Since(start)).Int("chars", len(resp.Choices[0].Content)).Msg("llm completion")
	return resp.Choices[0].Content, nil
}
