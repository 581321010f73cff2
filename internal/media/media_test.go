package media

import (
	"strings"
	"testing"

	"github.com/mmcdole/gofeed"
	ext "github.com/mmcdole/gofeed/extensions"
)

func TestLooksLikeImage(t *testing.T) {
	accept := []string{
		"https://example.com/a.jpg",
		"https://example.com/a.WEBP",
		"https://cdn.example.com/photo?format=png",
		"https://example.com/images/12345",
	}
	for _, u := range accept {
		if !LooksLikeImage(u) {
			t.Errorf("Expected %q accepted", u)
		}
	}

	reject := []string{
		"",
		"https://example.com/logo.png",
		"https://example.com/sprite-sheet.jpg",
		"https://example.com/user/avatar.jpg",
		"https://example.com/style.css",
	}
	for _, u := range reject {
		if LooksLikeImage(u) {
			t.Errorf("Expected %q rejected", u)
		}
	}
}

func TestNormalizeURLResolvesRelative(t *testing.T) {
	got := NormalizeURL("/img/a.jpg", "https://example.com/post/1")
	if got != "https://example.com/img/a.jpg" {
		t.Errorf("Expected resolved URL, got %q", got)
	}
	if got := NormalizeURL("  https://cdn.example.com/a.png ", ""); got != "https://cdn.example.com/a.png" {
		t.Errorf("Expected trimmed absolute URL, got %q", got)
	}
}

func TestFromHTMLSnippetLazyAttrs(t *testing.T) {
	frag := `<p>text</p><img data-src="https://example.com/lazy.jpg" src="data:image/gif;base64,spacer">`
	if got := FromHTMLSnippet(frag, ""); got != "https://example.com/lazy.jpg" {
		t.Errorf("Lazy attribute should be preferred, got %q", got)
	}
}

func TestFromHTMLSnippetSrcset(t *testing.T) {
	frag := `<img srcset="https://example.com/small.jpg 480w, https://example.com/big.jpg 1080w">`
	if got := FromHTMLSnippet(frag, ""); got != "https://example.com/small.jpg" {
		t.Errorf("First srcset candidate should be used, got %q", got)
	}
}

func TestFromFeedItemPreference(t *testing.T) {
	item := &gofeed.Item{
		Extensions: ext.Extensions{
			"media": {
				"thumbnail": []ext.Extension{{
					Attrs: map[string]string{"url": "https://example.com/thumb.jpg"},
				}},
			},
		},
		Enclosures: []*gofeed.Enclosure{{URL: "https://example.com/enclosure.png", Type: "image/png"}},
	}
	if got := FromFeedItem(item, ""); got != "https://example.com/thumb.jpg" {
		t.Errorf("Media extensions should win over enclosures, got %q", got)
	}

	item.Extensions = nil
	if got := FromFeedItem(item, ""); got != "https://example.com/enclosure.png" {
		t.Errorf("Enclosures should be next, got %q", got)
	}

	item.Enclosures = nil
	item.Content = `<img src="https://example.com/inline.gif">`
	if got := FromFeedItem(item, ""); got != "https://example.com/inline.gif" {
		t.Errorf("Inline content images are the fallback, got %q", got)
	}
}

func TestHTMLToTextStripsMarkup(t *testing.T) {
	frag := `<h1>Title</h1><p>First <em>paragraph</em>.</p><table><tr><td>cell</td></tr></table><img src="x.jpg"><p>Second.</p>`
	got := HTMLToText(frag)

	if strings.Contains(got, "cell") {
		t.Error("Tables should be removed")
	}
	if strings.Contains(got, "<") {
		t.Errorf("No markup should remain: %q", got)
	}
	want := "Title\n\nFirst paragraph.\n\nSecond."
	if got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}

func TestHTMLToTextNoBlocks(t *testing.T) {
	if got := HTMLToText("plain words"); got != "plain words" {
		t.Errorf("Blockless fragments fall back to raw text, got %q", got)
	}
}

func TestHTMLToTextNestedBlocks(t *testing.T) {
	frag := `<blockquote><p>quoted line</p></blockquote>`
	got := HTMLToText(frag)
	if got != "quoted line" {
		t.Errorf("Nested blocks must not duplicate text, got %q", got)
	}
}
