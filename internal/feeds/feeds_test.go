package feeds

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mmcdole/gofeed"

	"dailynews/internal/core"
	"dailynews/internal/relevance"
)

func TestResolveDatePreference(t *testing.T) {
	now := time.Now()
	published := now.Add(-2 * time.Hour)
	updated := now.Add(-1 * time.Hour)
	feedLevel := now.Add(-3 * time.Hour)

	item := &gofeed.Item{PublishedParsed: &published, UpdatedParsed: &updated}
	feed := &gofeed.Feed{UpdatedParsed: &feedLevel}

	if got := resolveDate(item, feed, now); !got.Equal(published) {
		t.Errorf("published should win, got %v", got)
	}

	item.PublishedParsed = nil
	if got := resolveDate(item, feed, now); !got.Equal(updated) {
		t.Errorf("updated should be next, got %v", got)
	}

	item.UpdatedParsed = nil
	if got := resolveDate(item, feed, now); !got.Equal(feedLevel) {
		t.Errorf("feed-level timestamp should be next, got %v", got)
	}

	feed.UpdatedParsed = nil
	if got := resolveDate(item, feed, now); !got.Equal(now) {
		t.Errorf("now is the last resort, got %v", got)
	}
}

func TestResolveLinkFallbacks(t *testing.T) {
	item := &gofeed.Item{Link: "https://example.com/a", GUID: "https://example.com/guid", Links: []string{"https://example.com/alt"}}
	if got := resolveLink(item); got != "https://example.com/a" {
		t.Errorf("link field should win, got %q", got)
	}

	item.Link = ""
	if got := resolveLink(item); got != "https://example.com/guid" {
		t.Errorf("URL-shaped GUID should be next, got %q", got)
	}

	item.GUID = "not-a-url"
	if got := resolveLink(item); got != "https://example.com/alt" {
		t.Errorf("first alternate link should be last, got %q", got)
	}

	item.Links = nil
	if got := resolveLink(item); got != "" {
		t.Errorf("Expected empty when nothing resolves, got %q", got)
	}
}

func rssFeed(now time.Time) string {
	fresh := now.Add(-2 * time.Hour).Format(time.RFC1123Z)
	stale := now.Add(-48 * time.Hour).Format(time.RFC1123Z)
	return fmt.Sprintf(`<?xml version="1.0"?>
<rss version="2.0"><channel>
<title>Test Channel</title>
<item><title>Fresh story</title><link>https://example.com/fresh</link><pubDate>%s</pubDate>
<description>&lt;p&gt;A fresh article body with enough text.&lt;/p&gt;</description></item>
<item><title>Stale story</title><link>https://example.com/stale</link><pubDate>%s</pubDate>
<description>&lt;p&gt;An old article body with enough text.&lt;/p&gt;</description></item>
<item><title>No link story</title><pubDate>%s</pubDate>
<description>&lt;p&gt;A linkless article body with enough text.&lt;/p&gt;</description></item>
</channel></rss>`, fresh, stale, fresh)
}

func TestFetchFiltersAndStamps(t *testing.T) {
	now := time.Now()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		fmt.Fprint(w, rssFeed(now))
	}))
	defer srv.Close()

	f := New(&relevance.Scorer{}, nil, nil)
	cfg := &core.SourceConfig{
		Title:    "Test Source",
		URL:      srv.URL,
		Type:     "rss",
		Tier:     core.TierP2Raw,
		Category: "AI",
	}

	articles, err := f.Fetch(context.Background(), cfg)
	if err != nil {
		t.Fatal(err)
	}
	if len(articles) != 1 {
		t.Fatalf("Only the fresh linked item should survive, got %d", len(articles))
	}

	a := articles[0]
	if a.Title != "Fresh story" {
		t.Errorf("Unexpected survivor %q", a.Title)
	}
	if a.Link != "https://example.com/fresh" {
		t.Errorf("Unexpected link %q", a.Link)
	}
	if a.OriginType != core.OriginRaw {
		t.Errorf("rss sources are raw origin, got %q", a.OriginType)
	}
	if a.Tier != core.TierP2Raw || a.Config.Category != "AI" {
		t.Errorf("Registry fields should be stamped: tier=%q category=%q", a.Tier, a.Config.Category)
	}
	if a.Info.Title != "Test Channel" {
		t.Errorf("Channel title should be recorded, got %q", a.Info.Title)
	}
	if a.Summary != "A fresh article body with enough text." {
		t.Errorf("Summary should be plain text, got %q", a.Summary)
	}
}

func TestFetchCuratedOrigin(t *testing.T) {
	now := time.Now()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, rssFeed(now))
	}))
	defer srv.Close()

	f := New(&relevance.Scorer{}, nil, nil)
	cfg := &core.SourceConfig{Title: "Curated", URL: srv.URL, Type: "curated_rss", Tier: core.TierP0Curated}

	articles, err := f.Fetch(context.Background(), cfg)
	if err != nil {
		t.Fatal(err)
	}
	for _, a := range articles {
		if a.OriginType != core.OriginCurated {
			t.Errorf("curated_rss articles should be curated origin, got %q", a.OriginType)
		}
	}
}

func TestFetchLinkKindUsesContentFunc(t *testing.T) {
	now := time.Now()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, rssFeed(now))
	}))
	defer srv.Close()

	content := func(ctx context.Context, url, kind string) (string, string, error) {
		if kind != "link" {
			t.Errorf("Expected link kind, got %q", kind)
		}
		return "Fetched page text long enough.", "https://example.com/page.jpg", nil
	}

	f := New(&relevance.Scorer{}, content, nil)
	cfg := &core.SourceConfig{Title: "Pages", URL: srv.URL, Type: "link"}

	articles, err := f.Fetch(context.Background(), cfg)
	if err != nil {
		t.Fatal(err)
	}
	if len(articles) != 1 {
		t.Fatalf("Expected 1 article, got %d", len(articles))
	}
	if articles[0].Summary != "Fetched page text long enough." {
		t.Errorf("link sources should use fetched page text, got %q", articles[0].Summary)
	}
	if articles[0].CoverURL != "https://example.com/page.jpg" {
		t.Errorf("Cover should come from the page, got %q", articles[0].CoverURL)
	}
}

func TestFetchBadFeedErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "not a feed")
	}))
	defer srv.Close()

	f := New(&relevance.Scorer{}, nil, nil)
	if _, err := f.Fetch(context.Background(), &core.SourceConfig{Title: "Bad", URL: srv.URL, Type: "rss"}); err == nil {
		t.Error("Unparseable feeds should error for the driver to soften")
	}
}
