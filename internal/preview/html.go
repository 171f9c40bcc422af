package preview

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/html"
)

// maxPageBytes caps how much of a page is parsed; the head is near the top.
const maxPageBytes = 2 << 20

// HTMLFetcher downloads the page itself and reads its title, description and
// Open Graph tags. It is used when no preview API key is configured.
type HTMLFetcher struct {
	httpClient *http.Client
	logger     *slog.Logger
}

// NewHTMLFetcher creates a fetcher with a short timeout.
func NewHTMLFetcher(logger *slog.Logger) *HTMLFetcher {
	return &HTMLFetcher{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		logger:     logger,
	}
}

// Fetch downloads link and extracts its preview.
func (f *HTMLFetcher) Fetch(ctx context.Context, link string) (*Preview, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "text/html")
	req.Header.Set("User-Agent", "SaveSite/1.0 (+link preview)")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "" && !strings.Contains(ct, "html") {
		return nil, fmt.Errorf("%w: content type %s", ErrUnavailable, ct)
	}

	p, err := ParseHTML(io.LimitReader(resp.Body, maxPageBytes), resp.Request.URL)
	if err != nil {
		return nil, err
	}
	f.logger.Debug("page preview parsed", "url", link, "title", p.Title)
	return p, nil
}

// ParseHTML extracts a preview from a page. Open Graph values win over the
// plain <title> and description meta tag; relative image URLs are resolved
// against base.
func ParseHTML(r io.Reader, base *url.URL) (*Preview, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	var title, description, ogTitle, ogDescription, ogImage, ogURL string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "title":
				if title == "" && n.FirstChild != nil {
					title = strings.TrimSpace(n.FirstChild.Data)
				}
			case "meta":
				key, content := metaPair(n)
				switch key {
				case "description":
					description = content
				case "og:title":
					ogTitle = content
				case "og:description":
					ogDescription = content
				case "og:image":
					ogImage = content
				case "og:url":
					ogURL = content
				}
			case "body":
				// Metadata lives in the head
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	p := &Preview{
		Title:       firstNonEmpty(ogTitle, title),
		Description: firstNonEmpty(ogDescription, description),
		Image:       resolve(base, ogImage),
		URL:         firstNonEmpty(resolve(base, ogURL), base.String()),
	}
	return p, nil
}

// metaPair returns a meta tag's name (or property) lowercased and its content.
func metaPair(n *html.Node) (string, string) {
	var key, content string
	for _, attr := range n.Attr {
		switch strings.ToLower(attr.Key) {
		case "name", "property":
			if key == "" {
				key = strings.ToLower(strings.TrimSpace(attr.Val))
			}
		case "content":
			content = strings.TrimSpace(attr.Val)
		}
	}
	return key, content
}

func resolve(base *url.URL, ref string) string {
	if ref == "" {
		return ""
	}
	u, err := url.Parse(ref)
	if err != nil {
		return ""
	}
	return base.ResolveReference(u).String()
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

var _ Fetcher = (*HTMLFetcher)(nil)
