package github

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"dailynews/internal/core"
)

func TestParseFolderURL(t *testing.T) {
	ref, err := ParseFolderURL("github://owner/repo/daily%20news@v2")
	if err != nil {
		t.Fatal(err)
	}
	if ref.Owner != "owner" || ref.Repo != "repo" {
		t.Errorf("Unexpected owner/repo: %s/%s", ref.Owner, ref.Repo)
	}
	if ref.Folder != "daily news" {
		t.Errorf("Folder should be percent-decoded, got %q", ref.Folder)
	}
	if ref.Ref != "v2" {
		t.Errorf("Expected ref v2, got %q", ref.Ref)
	}
}

func TestParseFolderURLDefaultRef(t *testing.T) {
	ref, err := ParseFolderURL("github://owner/repo/news/archive")
	if err != nil {
		t.Fatal(err)
	}
	if ref.Ref != "main" {
		t.Errorf("Ref should default to main, got %q", ref.Ref)
	}
	if ref.Folder != "news/archive" {
		t.Errorf("Folder may contain slashes, got %q", ref.Folder)
	}
}

func TestParseFolderURLMalformed(t *testing.T) {
	for _, u := range []string{"github://owner", "github://owner/repo", "https://github.com/x/y"} {
		if _, err := ParseFolderURL(u); err == nil {
			t.Errorf("Expected an error for %q", u)
		}
	}
}

const sampleSection = `## 제목: 새로운 모델 발표

![Image](https://example.com/cover.png)

**요약**: 어떤 회사가 새 모델을 발표했습니다. 성능이 크게 향상되었습니다.
**쉬운설명**: 더 똑똑한 인공지능이 나왔다는 뜻입니다.
**관련분야**: 인공지능, 모델

**중요도**: 8
**전체링크** : https://example.com/release
`

func TestParseSectionsFields(t *testing.T) {
	cfg := &core.SourceConfig{Title: "Curated", Tier: core.TierP0Curated}
	now := time.Now()

	articles := ParseSections(sampleSection, cfg, now)
	if len(articles) != 1 {
		t.Fatalf("Expected 1 article, got %d", len(articles))
	}

	a := articles[0]
	if a.Title != "새로운 모델 발표" {
		t.Errorf("Unexpected title %q", a.Title)
	}
	if a.Link != "https://example.com/release" {
		t.Errorf("Unexpected link %q", a.Link)
	}
	if a.CoverURL != "https://example.com/cover.png" {
		t.Errorf("Unexpected cover %q", a.CoverURL)
	}
	if a.Importance != 8 {
		t.Errorf("Expected importance 8, got %d", a.Importance)
	}
	if !strings.Contains(a.Summary, "쉬운설명: 더 똑똑한") {
		t.Errorf("Summary should append the easy explanation, got %q", a.Summary)
	}
	if !strings.Contains(a.Summary, "관련분야: 인공지능") {
		t.Errorf("Summary should append the related fields, got %q", a.Summary)
	}
	if a.OriginType != core.OriginCurated {
		t.Errorf("Markdown folder articles are curated, got %q", a.OriginType)
	}
}

func TestParseSectionsSkipsIncomplete(t *testing.T) {
	cfg := &core.SourceConfig{Title: "Curated"}
	content := strings.Join([]string{
		sampleSection,
		// No link: skipped.
		"## 제목: 링크 없는 소식\n\n**요약**: " + strings.Repeat("내용 ", 20),
		// No title: skipped.
		"**요약**: " + strings.Repeat("내용 ", 20) + "\n**전체링크** : https://example.com/x",
		// Too short: skipped.
		"## 짧음",
	}, "\n---\n")

	articles := ParseSections(content, cfg, time.Now())
	if len(articles) != 1 {
		t.Errorf("Only the complete section should parse, got %d", len(articles))
	}
}

func TestParseSectionsDefaultImportance(t *testing.T) {
	cfg := &core.SourceConfig{Title: "Curated"}
	content := "## 어떤 소식\n\n**요약**: " + strings.Repeat("내용 ", 20) + "\n**전체링크** : https://example.com/y"
	articles := ParseSections(content, cfg, time.Now())
	if len(articles) != 1 {
		t.Fatalf("Expected 1 article, got %d", len(articles))
	}
	if articles[0].Importance != 5 {
		t.Errorf("Importance should default to 5, got %d", articles[0].Importance)
	}
}

func TestExtractTitleFromMarkdown(t *testing.T) {
	if got := ExtractTitleFromMarkdown("# Hello World\nbody"); got != "Hello World" {
		t.Errorf("Expected heading title, got %q", got)
	}
	if got := ExtractTitleFromMarkdown("no headings at all"); got != UntitledFallback {
		t.Errorf("Expected fallback, got %q", got)
	}
}

func TestFetchMarkdownFolderPicksNewestAndSkipsShortFiles(t *testing.T) {
	full := strings.Join([]string{sampleSection, sampleSection, sampleSection}, "\n---\n")

	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	defer srv.Close()

	mux.HandleFunc("/repos/owner/repo/contents/news", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `[
			{"type":"file","name":"2025-11-30.md","path":"news/2025-11-30.md","download_url":"%s/raw/2025-11-30.md"},
			{"type":"file","name":"2025-12-01.md","path":"news/2025-12-01.md","download_url":"%s/raw/2025-12-01.md"},
			{"type":"dir","name":"assets","path":"news/assets","download_url":""}
		]`, srv.URL, srv.URL)
	})
	mux.HandleFunc("/raw/2025-12-01.md", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, full)
	})
	mux.HandleFunc("/raw/2025-11-30.md", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, strings.Repeat("x", 80))
	})

	client := newTestClient(srv.URL, "")
	cfg := &core.SourceConfig{Title: "Curated", URL: "github://owner/repo/news", Tier: core.TierP0Curated}

	articles, err := client.FetchMarkdownFolder(context.Background(), cfg, time.Now())
	if err != nil {
		t.Fatal(err)
	}
	if len(articles) != 3 {
		t.Errorf("Expected 3 articles from the newest file, got %d", len(articles))
	}
}

func TestFetchMarkdownFolderShortFileYieldsNothing(t *testing.T) {
	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	defer srv.Close()

	mux.HandleFunc("/repos/owner/repo/contents/news", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `[{"type":"file","name":"2025-11-30.md","path":"news/a.md","download_url":"%s/raw/a.md"}]`, srv.URL)
	})
	mux.HandleFunc("/raw/a.md", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, strings.Repeat("x", 80))
	})

	client := newTestClient(srv.URL, "")
	cfg := &core.SourceConfig{Title: "Curated", URL: "github://owner/repo/news"}

	articles, err := client.FetchMarkdownFolder(context.Background(), cfg, time.Now())
	if err != nil {
		t.Fatal(err)
	}
	if len(articles) != 0 {
		t.Errorf("An 80-char file should be ignored, got %d articles", len(articles))
	}
}
