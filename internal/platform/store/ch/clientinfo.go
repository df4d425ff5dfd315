package ch

import (
	"os"
	"runtime"
	"strings"

	"sentinel/internal/core/version"

	"github.com/ClickHouse/clickhouse-go/v2"
)

// BuildClientInfo tags our connections so system.query_log shows who ran what.
// role is the binary role ("api", "simulate"); tag is free form, e.g. a deploy name
func BuildClientInfo(role, tag string) clickhouse.ClientInfo {
	host, _ := os.Hostname()
	bi := version.Info("sentinel")
	info := clickhouse.ClientInfo{}
	for _, p := range [][2]string{
		{"sentinel", bi.Version},
		{"role", role},
		{"tag", tag},
		{"commit", bi.Commit},
		{"go", runtime.Version()},
		{"host", host},
	} {
		if v := strings.TrimSpace(p[1]); v != "" {
			info.Products = append(info.Products, struct{ Name, Version string }{p[0], v})
		}
	}
	return info
}
