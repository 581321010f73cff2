package fetch

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"

	"dailynews/internal/core"
)

func TestFirstShortlink(t *testing.T) {
	summary := "Interesting release!\n> quoted https://t.co/ignored\nDetails: https://t.co/abc123 and more"
	if got := firstShortlink(summary); got != "https://t.co/abc123" {
		t.Errorf("Expected the first non-quoted shortlink, got %q", got)
	}
}

func TestFirstShortlinkNone(t *testing.T) {
	if got := firstShortlink("no links here\n> https://t.co/quoted"); got != "" {
		t.Errorf("Quoted-only summaries yield nothing, got %q", got)
	}
}

// pointShortlinksAt rewrites the shortlink pattern at a test server so
// resolution stays local.
func pointShortlinksAt(t *testing.T, base string) {
	t.Helper()
	old := shortlinkRe
	shortlinkRe = regexp.MustCompile(regexp.QuoteMeta(base) + `/\S+`)
	t.Cleanup(func() { shortlinkRe = old })
}

func TestTransformTelegramResolvesShortlink(t *testing.T) {
	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	defer srv.Close()

	mux.HandleFunc("/short", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, srv.URL+"/story", http.StatusFound)
	})
	mux.HandleFunc("/story", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, `<html><head><meta property="og:image" content="https://example.com/og.jpg"></head>`+
			`<body><h1>Resolved Story</h1><p>Full details of the launch.</p></body></html>`)
	})
	pointShortlinksAt(t, srv.URL)

	d := newTestDispatcher(t)
	telegram := &core.Article{
		Link:    "https://t.me/channel/42",
		Summary: "Announcement: " + srv.URL + "/short",
	}
	withCover := &core.Article{
		Link:     "https://t.me/channel/43",
		Summary:  srv.URL + "/short",
		CoverURL: "https://example.com/original.png",
	}
	plain := &core.Article{Link: "https://example.com/a", Summary: srv.URL + "/short"}

	d.TransformTelegram(context.Background(), []*core.Article{telegram, withCover, plain})

	if telegram.Link != srv.URL+"/story" {
		t.Errorf("Link should follow the redirect, got %q", telegram.Link)
	}
	if !strings.Contains(telegram.Summary, "Resolved Story") || !strings.Contains(telegram.Summary, "Full details") {
		t.Errorf("Summary should be refetched from the destination, got %q", telegram.Summary)
	}
	if telegram.CoverURL != "https://example.com/og.jpg" {
		t.Errorf("An empty cover should take the destination's image, got %q", telegram.CoverURL)
	}
	if withCover.CoverURL != "https://example.com/original.png" {
		t.Errorf("An existing cover must be kept, got %q", withCover.CoverURL)
	}
	if plain.Link != "https://example.com/a" || strings.Contains(plain.Summary, "Resolved Story") {
		t.Error("Articles not linking to t.me must be left unchanged")
	}
}

func TestTransformTelegramUnresolvedLeftAlone(t *testing.T) {
	pointShortlinksAt(t, "http://127.0.0.1:1")

	d := newTestDispatcher(t)
	a := &core.Article{Link: "https://t.me/channel/1", Summary: "see http://127.0.0.1:1/dead"}
	d.TransformTelegram(context.Background(), []*core.Article{a})

	if a.Link != "https://t.me/channel/1" || !strings.Contains(a.Summary, "/dead") {
		t.Error("A shortlink that fails to resolve must leave the article unchanged")
	}
}

func TestTransformTelegramNoShortlink(t *testing.T) {
	d := newTestDispatcher(t)
	a := &core.Article{Link: "https://t.me/channel/2", Summary: "plain text only"}
	d.TransformTelegram(context.Background(), []*core.Article{a})

	if a.Summary != "plain text only" {
		t.Error("Summaries without a shortlink are untouched")
	}
}
