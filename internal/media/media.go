// Package media extracts primary images and plain text from feed entries
// and HTML documents.
package media

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"
)

// ExcludeKeywords reject media URLs that look like page chrome.
var ExcludeKeywords = []string{"sprite", "spacer", "pixel", "logo", "icon", "avatar", "transparent"}

// ValidExtensions are the accepted image file extensions.
var ValidExtensions = []string{".jpg", ".jpeg", ".png", ".webp", ".gif", ".bmp"}

// lazyAttrs are scanned on <img> tags in preference order.
var lazyAttrs = []string{"data-src", "data-original", "data-lazy-src", "data-large-src", "srcset", "src"}

// metaSelectors are consulted in order when scanning a full document.
var metaSelectors = []string{
	`meta[property="og:image"]`,
	`meta[name="og:image"]`,
	`meta[property="og:image:secure_url"]`,
	`meta[name="twitter:image"]`,
	`meta[property="twitter:image"]`,
	`meta[name="twitter:image:src"]`,
	`meta[name="image"]`,
}

// preferredSelectors locate in-content images before falling back to any <img>.
var preferredSelectors = []string{
	"article img[src]",
	"main img[src]",
	".post img[src]",
	".entry-content img[src]",
	".content img[src]",
}

// NormalizeURL trims and resolves a candidate URL against a base page URL.
func NormalizeURL(raw, base string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if base == "" {
		return raw
	}
	bu, err := url.Parse(base)
	if err != nil {
		return raw
	}
	ru, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	return bu.ResolveReference(ru).String()
}

// LooksLikeImage reports whether a URL plausibly points at a content image.
// It accepts standard image extensions or URLs containing "image" or
// "format=", and rejects keywords suggesting page chrome.
func LooksLikeImage(u string) bool {
	if u == "" {
		return false
	}
	lower := strings.ToLower(u)
	for _, kw := range ExcludeKeywords {
		if strings.Contains(lower, kw) {
			return false
		}
	}
	for _, ext := range ValidExtensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return strings.Contains(lower, "format=") || strings.Contains(lower, "image")
}

// firstSrcset returns the first URL of a srcset attribute value.
func firstSrcset(value string) string {
	fields := strings.Fields(strings.Split(value, ",")[0])
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// FromFeedItem extracts the primary image from feed entry metadata:
// media:content / media:thumbnail extensions, enclosures, the feed-level
// image field, then any <img> inside the entry's HTML content.
func FromFeedItem(item *gofeed.Item, base string) string {
	if item == nil {
		return ""
	}

	if media, ok := item.Extensions["media"]; ok {
		for _, key := range []string{"content", "thumbnail"} {
			for _, ext := range media[key] {
				mime := ext.Attrs["type"]
				if mime == "" {
					mime = ext.Attrs["medium"]
				}
				if mime != "" && !strings.HasPrefix(mime, "image") {
					continue
				}
				if u := NormalizeURL(ext.Attrs["url"], base); LooksLikeImage(u) {
					return u
				}
			}
		}
	}

	for _, enc := range item.Enclosures {
		if enc.Type != "" && !strings.HasPrefix(enc.Type, "image/") {
			continue
		}
		if u := NormalizeURL(enc.URL, base); LooksLikeImage(u) {
			return u
		}
	}

	if item.Image != nil {
		if u := NormalizeURL(item.Image.URL, base); LooksLikeImage(u) {
			return u
		}
	}

	if item.Content != "" {
		if u := FromHTMLSnippet(item.Content, base); u != "" {
			return u
		}
	}

	return ""
}

// FromHTMLSnippet returns the first valid image URL found in an HTML
// fragment, honoring common lazy-load attributes and srcset.
func FromHTMLSnippet(fragment, base string) string {
	if fragment == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return ""
	}

	found := ""
	doc.Find("img").EachWithBreak(func(_ int, img *goquery.Selection) bool {
		candidate := ""
		for _, attr := range lazyAttrs {
			value, ok := img.Attr(attr)
			if !ok || value == "" {
				continue
			}
			if attr == "srcset" {
				value = firstSrcset(value)
			}
			candidate = value
			break
		}
		if candidate == "" {
			return true
		}
		if u := NormalizeURL(candidate, base); LooksLikeImage(u) {
			found = u
			return false
		}
		return true
	})
	return found
}

// FromDocument extracts the primary media URL from a full page: social
// meta tags first, then link rel=image_src, preferred article selectors,
// any <img>, and finally a video poster or source.
func FromDocument(doc *goquery.Document, base string) string {
	if doc == nil {
		return ""
	}

	for _, selector := range metaSelectors {
		content, ok := doc.Find(selector).First().Attr("content")
		if !ok {
			continue
		}
		if u := NormalizeURL(content, base); LooksLikeImage(u) {
			return u
		}
	}

	found := ""
	doc.Find("link[rel]").EachWithBreak(func(_ int, link *goquery.Selection) bool {
		rel, _ := link.Attr("rel")
		if !strings.Contains(strings.ToLower(rel), "image_src") {
			return true
		}
		href, ok := link.Attr("href")
		if !ok {
			return true
		}
		if u := NormalizeURL(href, base); LooksLikeImage(u) {
			found = u
			return false
		}
		return true
	})
	if found != "" {
		return found
	}

	for _, selector := range preferredSelectors {
		src, ok := doc.Find(selector).First().Attr("src")
		if !ok {
			continue
		}
		if u := NormalizeURL(src, base); LooksLikeImage(u) {
			return u
		}
	}

	if src, ok := doc.Find("img[src]").First().Attr("src"); ok {
		if u := NormalizeURL(src, base); LooksLikeImage(u) {
			return u
		}
	}

	video := doc.Find("video").First()
	if video.Length() > 0 {
		if poster, ok := video.Attr("poster"); ok && poster != "" {
			return NormalizeURL(poster, base)
		}
		if src, ok := video.Attr("src"); ok && src != "" {
			return NormalizeURL(src, base)
		}
		if src, ok := video.Find("source[src]").First().Attr("src"); ok && src != "" {
			return NormalizeURL(src, base)
		}
	}

	return ""
}

// HTMLToText converts an HTML fragment to plain text: no images, no
// tables, no emphasis markers, block elements separated by blank lines.
func HTMLToText(fragment string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return strings.TrimSpace(fragment)
	}
	doc.Find("script, style, table, img, figure").Remove()

	blocks := doc.Find("p, h1, h2, h3, h4, h5, h6, li, blockquote, pre")
	if blocks.Length() == 0 {
		return strings.TrimSpace(doc.Text())
	}

	var b strings.Builder
	blocks.Each(func(_ int, s *goquery.Selection) {
		// Nested blocks (e.g. p inside blockquote) would duplicate text.
		if s.Children().FilterFunction(isBlock).Length() > 0 {
			return
		}
		text := strings.TrimSpace(s.Text())
		if text == "" {
			return
		}
		b.WriteString(text)
		b.WriteString("\n\n")
	})
	return strings.TrimSpace(b.String())
}

func isBlock(_ int, s *goquery.Selection) bool {
	return s.Is("p, h1, h2, h3, h4, h5, h6, li, blockquote, pre, ul, ol")
}
