// Package scrape fetches a web page and returns its visible text.
package scrape

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
	"golang.org/x/net/html/charset"

	"recipe-analyzer/api/internal/apperr"
	"recipe-analyzer/api/internal/util"
)

const (
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/58.0.3029.110 Safari/537.36"
	DefaultTimeout   = 10 * time.Second

	maxBody = 8 << 20
)

type Fetcher struct {
	Client    *http.Client
	UserAgent string
}

func New(timeout time.Duration, userAgent string) *Fetcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if strings.TrimSpace(userAgent) == "" {
		userAgent = DefaultUserAgent
	}
	return &Fetcher{
		Client:    &http.Client{Timeout: timeout},
		UserAgent: userAgent,
	}
}

// Fetch makes a single GET and returns the page's visible text. Any transport
// failure or non-2xx status comes back as an apperr fetch error.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", apperr.Fetch(err)
	}
	req.Header.Set("User-Agent", f.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")

	resp, err := f.Client.Do(req)
	if err != nil {
		return "", apperr.Fetch(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", apperr.Fetch(fmt.Errorf("%s for url %s: %s", resp.Status, url, util.TruncateBytes(b, 256)))
	}

	// Pages declare their encoding in the header or a <meta> tag; the model
	// only accepts UTF-8.
	body, err := charset.NewReader(io.LimitReader(resp.Body, maxBody), resp.Header.Get("Content-Type"))
	if err != nil {
		return "", apperr.Fetch(fmt.Errorf("decode %s: %w", url, err))
	}
	text, err := VisibleText(body)
	if err != nil {
		return "", apperr.Fetch(err)
	}
	return text, nil
}

// VisibleText parses r as HTML and joins every rendered text run with a single
// space.
func VisibleText(r io.Reader) (string, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}

	var runs []string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.ElementNode:
			if hidden(n) {
				return
			}
		case html.TextNode:
			if s := strings.Join(strings.Fields(strings.ToValidUTF8(n.Data, "\uFFFD")), " "); s != "" {
				runs = append(runs, s)
			}
		case html.CommentNode:
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return strings.Join(runs, " "), nil
}

func hidden(n *html.Node) bool {
	switch n.DataAtom {
	case atom.Script, atom.Style, atom.Noscript, atom.Template, atom.Svg, atom.Iframe:
		return true
	}
	return false
}
