// Package fetch resolves per-item content (web pages, repository
// READMEs) and routes sources to the right fetcher.
package fetch

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/charset"

	"dailynews/internal/logger"
	"dailynews/internal/media"
)

// pageTimeout bounds a single article-page fetch.
const pageTimeout = 10 * time.Second

// desktopUA matches the feed fetcher's browser string.
const desktopUA = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"

// PageFetcher downloads article pages and extracts readable text and a
// primary image. All failures are soft: callers get empty results.
type PageFetcher struct {
	http *http.Client
}

// NewPageFetcher builds a page fetcher with the standard timeout.
func NewPageFetcher() *PageFetcher {
	return &PageFetcher{http: &http.Client{Timeout: pageTimeout}}
}

// FetchPage returns the page's concatenated heading/paragraph/code text
// and its primary image URL. Network or decode errors yield ("", "").
func (p *PageFetcher) FetchPage(ctx context.Context, pageURL string) (string, string) {
	doc := p.document(ctx, pageURL)
	if doc == nil {
		return "", ""
	}
	return extractText(doc), media.FromDocument(doc, pageURL)
}

// FetchImage returns only the page's primary image URL, or "".
func (p *PageFetcher) FetchImage(ctx context.Context, pageURL string) string {
	doc := p.document(ctx, pageURL)
	if doc == nil {
		return ""
	}
	return media.FromDocument(doc, pageURL)
}

// ResolveRedirect follows redirects and returns the final destination URL.
func (p *PageFetcher) ResolveRedirect(ctx context.Context, shortURL string) string {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, shortURL, nil)
	if err != nil {
		return shortURL
	}
	req.Header.Set("User-Agent", desktopUA)
	resp, err := p.http.Do(req)
	if err != nil {
		logger.Debug("redirect resolution failed", "url", shortURL, "error", err.Error())
		return shortURL
	}
	defer resp.Body.Close()
	return resp.Request.URL.String()
}

func (p *PageFetcher) document(ctx context.Context, pageURL string) *goquery.Document {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil
	}
	req.Header.Set("User-Agent", desktopUA)

	resp, err := p.http.Do(req)
	if err != nil {
		logger.Debug("page fetch failed", "url", pageURL, "error", err.Error())
		return nil
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		logger.Debug("page fetch non-200", "url", pageURL, "status", resp.StatusCode)
		return nil
	}

	// Decode per the page's apparent encoding before parsing.
	reader, err := charset.NewReader(resp.Body, resp.Header.Get("Content-Type"))
	if err != nil {
		return nil
	}
	doc, err := goquery.NewDocumentFromReader(reader)
	if err != nil {
		return nil
	}
	return doc
}

// extractText concatenates the text of h1/h2/p/code tags whose first
// child is a text node, skipping wrapper tags that only contain markup.
func extractText(doc *goquery.Document) string {
	var parts []string
	doc.Find("h1, h2, p, code").Each(func(_ int, s *goquery.Selection) {
		first := s.Nodes[0].FirstChild
		if first == nil || first.Type == html.ElementNode {
			return
		}
		text := strings.TrimSpace(s.Text())
		if text != "" {
			parts = append(parts, text)
		}
	})
	return strings.Join(parts, "\n")
}
