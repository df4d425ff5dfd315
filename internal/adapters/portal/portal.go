// Package portal crawls a regulator's publication portal: a session bootstrapped
// listing search paginated over topic and content type, plus detail pages that
// link the actual pdf publications
package portal

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"sentinel/internal/adapters/web"
	perr "sentinel/internal/platform/errors"
	"sentinel/internal/platform/logger"

	"github.com/PuerkitoBio/goquery"
)

const (
	defaultListingPath = "/regulation/regulations-and-guidance"
	defaultSearchPath  = "/api/v1/search/regulations"
	defaultMaxPages    = 3
	tokenField         = "__RequestVerificationToken"
)

// Options configures the Client
type Options struct {
	BaseURL     string
	ListingPath string
	SearchPath  string
	MaxPages    int
	RatePerSec  float64
	Timeout     time.Duration
}

// Client crawls one portal
type Client struct {
	web  *web.Client
	opts Options
	base *url.URL
	log  logger.Logger
}

// New creates a portal client; BaseURL is required
func New(o Options) (*Client, error) {
	if o.ListingPath == "" {
		o.ListingPath = defaultListingPath
	}
	if o.SearchPath == "" {
		o.SearchPath = defaultSearchPath
	}
	if o.MaxPages <= 0 {
		o.MaxPages = defaultMaxPages
	}
	base, err := url.Parse(strings.TrimRight(o.BaseURL, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, perr.InvalidArgf("portal base url %q is invalid", o.BaseURL)
	}
	burst := 1
	if o.RatePerSec > 1 {
		burst = int(o.RatePerSec)
	}
	return &Client{
		web:  web.NewClient(web.Options{Timeout: o.Timeout, RatePerSec: o.RatePerSec, Burst: burst}),
		opts: o,
		base: base,
		log:  *logger.Named("portal"),
	}, nil
}

// MaxPages is the page bound per topic and content type
func (c *Client) MaxPages() int { return c.opts.MaxPages }

// Session is a bootstrapped portal session: cookies live in the session client
type Session struct {
	web   *web.Client
	token string
}

// Token returns the anti forgery token found on the listing page
func (s *Session) Token() string { return s.token }

// Bootstrap loads the listing page to obtain the session cookie and token
func (c *Client) Bootstrap(ctx context.Context) (*Session, error) {
	sw := c.web.Session()
	resp, err := sw.Get(ctx, c.abs(c.opts.ListingPath), http.Header{"Accept": {"text/html"}})
	if err != nil {
		return nil, perr.Wrapf(err, perr.CodeOf(err), "portal bootstrap")
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(resp.Body))
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeUnavailable, "portal bootstrap parse")
	}
	tok := strings.TrimSpace(doc.Find(`input[name="`+tokenField+`"]`).First().AttrOr("value", ""))
	if tok == "" {
		tok = strings.TrimSpace(doc.Find(`meta[name="csrf-token"]`).First().AttrOr("content", ""))
	}
	if tok == "" {
		return nil, perr.Newf(perr.ErrorCodeUnavailable, "portal bootstrap found no session token")
	}
	return &Session{web: sw, token: tok}, nil
}

// Listing selects one page of one topic x content type slice
type Listing struct {
	Topic       string
	ContentType string
	Page        int
}

// Item is one search result row
type Item struct {
	URL         string
	Title       string
	Summary     string
	PublishedAt string // YYYY-MM-DD when parseable
	Listing     map[string]string
}

// Search posts one listing page and returns its items and whether more pages follow
func (c *Client) Search(ctx context.Context, s *Session, l Listing) ([]Item, bool, error) {
	if s == nil {
		return nil, false, perr.InvalidArgf("portal search without session")
	}
	if l.Page <= 0 {
		l.Page = 1
	}
	form := url.Values{
		"topic":        {l.Topic},
		"content_type": {l.ContentType},
		"page":         {strconv.Itoa(l.Page)},
		tokenField:     {s.token},
	}
	hdr := http.Header{
		"X-CSRF-Token":     {s.token},
		"X-Requested-With": {"XMLHttpRequest"},
		"Referer":          {c.abs(c.opts.ListingPath)},
	}
	resp, err := s.web.PostForm(ctx, c.abs(c.opts.SearchPath), form, hdr)
	if err != nil {
		return nil, false, perr.Wrapf(err, perr.CodeOf(err), "portal search %s/%s page %d", l.Topic, l.ContentType, l.Page)
	}

	meta := map[string]string{"topic": l.Topic, "content_type": l.ContentType, "page": strconv.Itoa(l.Page)}
	var (
		items []Item
		more  bool
	)
	if resp.IsJSON() || looksJSON(resp.Body) {
		items, more, err = c.parseJSON(resp.Body, meta)
	} else {
		items, more, err = c.parseHTML(resp.Body, meta)
	}
	if err != nil {
		return nil, false, err
	}
	c.log.Debug().Str("topic", l.Topic).Str("content_type", l.ContentType).Int("page", l.Page).Int("items", len(items)).Msg("portal page")
	return items, more && len(items) > 0, nil
}

type jsonPage struct {
	Items []struct {
		URL     string `json:"url"`
		Title   string `json:"title"`
		Summary string `json:"summary"`
		Date    string `json:"date"`
	} `json:"items"`
	Page       int  `json:"page"`
	TotalPages int  `json:"total_pages"`
	HasMore    bool `json:"has_more"`
}

func (c *Client) parseJSON(b []byte, meta map[string]string) ([]Item, bool, error) {
	var p jsonPage
	if err := json.Unmarshal(b, &p); err != nil {
		return nil, false, perr.Wrapf(err, perr.ErrorCodeJSON, "portal search decode")
	}
	out := make([]Item, 0, len(p.Items))
	for _, it := range p.Items {
		u := c.resolve(it.URL)
		if u == "" {
			continue
		}
		out = append(out, Item{
			URL:         u,
			Title:       collapse(it.Title),
			Summary:     collapse(it.Summary),
			PublishedAt: NormalizeDate(it.Date),
			Listing:     meta,
		})
	}
	more := p.HasMore || (p.TotalPages > 0 && p.Page < p.TotalPages)
	return out, more, nil
}

func (c *Client) parseHTML(b []byte, meta map[string]string) ([]Item, bool, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(b))
	if err != nil {
		return nil, false, perr.Wrapf(err, perr.ErrorCodeUnavailable, "portal search parse")
	}
	var out []Item
	doc.Find(".search-result, .result-item, article").Each(func(_ int, s *goquery.Selection) {
		a := s.Find("a[href]").First()
		u := c.resolve(a.AttrOr("href", ""))
		if u == "" {
			return
		}
		title := collapse(s.Find("h2, h3, .title").First().Text())
		if title == "" {
			title = collapse(a.Text())
		}
		date := s.Find("time").First().AttrOr("datetime", "")
		if date == "" {
			date = s.Find(".date, time").First().Text()
		}
		out = append(out, Item{
			URL:         u,
			Title:       title,
			Summary:     collapse(s.Find(".summary, .description, p").First().Text()),
			PublishedAt: NormalizeDate(date),
			Listing:     meta,
		})
	})
	more := doc.Find(`a[rel="next"], .pagination .next a`).Length() > 0
	return out, more, nil
}

// Detail is what a publication page exposes
type Detail struct {
	URL         string
	Title       string
	PublishedAt string
	PDFLinks    []string
}

// Detail fetches a publication page and lists the pdfs it links, in page order
func (c *Client) Detail(ctx context.Context, pageURL string) (Detail, error) {
	resp, err := c.web.Get(ctx, pageURL, http.Header{"Accept": {"text/html"}})
	if err != nil {
		return Detail{}, perr.Wrapf(err, perr.CodeOf(err), "portal detail %s", pageURL)
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(resp.Body))
	if err != nil {
		return Detail{}, perr.Wrapf(err, perr.ErrorCodeUnavailable, "portal detail parse %s", pageURL)
	}

	d := Detail{URL: pageURL}
	d.Title = collapse(doc.Find("h1").First().Text())
	if d.Title == "" {
		d.Title = collapse(doc.Find("title").First().Text())
	}
	date := doc.Find(`meta[property="article:published_time"]`).AttrOr("content", "")
	if date == "" {
		date = doc.Find("time[datetime]").First().AttrOr("datetime", "")
	}
	if date == "" {
		date = doc.Find(".date, .published").First().Text()
	}
	d.PublishedAt = NormalizeDate(date)

	seen := map[string]struct{}{}
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		u := resolveAgainst(pageURL, s.AttrOr("href", ""))
		if u == "" || !IsPDF(u) {
			return
		}
		if _, dup := seen[u]; dup {
			return
		}
		seen[u] = struct{}{}
		d.PDFLinks = append(d.PDFLinks, u)
	})
	return d, nil
}

func (c *Client) abs(path string) string { return c.base.String() + path }

func (c *Client) resolve(href string) string { return resolveAgainst(c.base.String()+"/", href) }

func resolveAgainst(base, href string) string {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") || strings.HasPrefix(strings.ToLower(href), "javascript:") {
		return ""
	}
	b, err := url.Parse(base)
	if err != nil {
		return ""
	}
	r, err := url.Parse(href)
	if err != nil {
		return ""
	}
	u := b.ResolveReference(r)
	if u.Scheme != "http" && u.Scheme != "https" {
		return ""
	}
	u.Fragment = ""
	return u.String()
}

// IsPDF reports whether the url path names a pdf
func IsPDF(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return strings.HasSuffix(strings.ToLower(u.Path), ".pdf")
}

func looksJSON(b []byte) bool {
	t := bytes.TrimSpace(b)
	return len(t) > 0 && (t[0] == '{' || t[0] == '[')
}

func collapse(s string) string { return strings.Join(strings.Fields(s), " ") }

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02",
	"2 January 2006",
	"02 January 2006",
	"2 Jan 2006",
	"02 Jan 2006",
	"January 2, 2006",
	"Jan 2, 2006",
	"02/01/2006",
}

// NormalizeDate turns common portal date renderings into YYYY-MM-DD
// unparseable input yields ""
func NormalizeDate(s string) string {
	s = collapse(s)
	if s == "" {
		return ""
	}
	if len(s) >= 10 {
		if t, err := time.Parse("2006-01-02", s[:10]); err == nil {
			return t.Format("2006-01-02")
		}
	}
	for _, l := range dateLayouts {
		if t, err := time.Parse(l, s); err == nil {
			return t.Format("2006-01-02")
		}
	}
	return ""
}
