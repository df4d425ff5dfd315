// Package pdf fetches pdf publications and extracts their text
package pdf

import (
	"bytes"
	"context"
	"net/http"
	"strings"
	"time"

	"sentinel/internal/adapters/web"
	perr "sentinel/internal/platform/errors"

	"github.com/tmc/langchaingo/documentloaders"
)

const defaultMaxBytes = 25 << 20

// Options configures the Parser
type Options struct {
	Timeout  time.Duration
	MaxBytes int64
}

// Parser downloads a pdf and returns its text, pages separated by blank lines
type Parser struct {
	web  *web.Client
	load func(ctx context.Context, b []byte) (string, error)
}

// New creates a Parser backed by the langchaingo pdf loader
func New(o Options) *Parser {
	if o.MaxBytes <= 0 {
		o.MaxBytes = defaultMaxBytes
	}
	return &Parser{
		web:  web.NewClient(web.Options{Timeout: o.Timeout, MaxBytes: o.MaxBytes}),
		load: extractText,
	}
}

// Parse fetches rawURL and extracts its text
func (p *Parser) Parse(ctx context.Context, rawURL string) (string, error) {
	resp, err := p.web.Get(ctx, rawURL, http.Header{"Accept": {"application/pdf"}})
	if err != nil {
		return "", perr.Wrapf(err, perr.CodeOf(err), "pdf fetch %s", rawURL)
	}
	text, err := p.load(ctx, resp.Body)
	if err != nil {
		return "", perr.Wrapf(err, perr.ErrorCodeUnavailable, "pdf parse %s", rawURL)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", perr.Newf(perr.ErrorCodeUnavailable, "pdf %s has no extractable text", rawURL)
	}
	return text, nil
}

func extractText(ctx context.Context, b []byte) (string, error) {
	if !bytes.HasPrefix(b, []byte("%PDF")) {
		return "", perr.Newf(perr.ErrorCodeInvalidArgument, "not a pdf document")
	}
	docs, err := documentloaders.NewPDF(bytes.NewReader(b), int64(len(b))).Load(ctx)
	if err != nil {
		return "", err
	}
	pages := make([]string, 0, len(docs))
	for _, d := range docs {
		if t := strings.TrimSpace(d.PageContent); t != "" {
			pages = append(pages, t)
		}
	}
	return strings.Join(pages, "\n\n"), nil
}
