package pipeline

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"dailynews/internal/core"
)

func TestCacheRoundTrip(t *testing.T) {
	dir := t.TempDir()
	day := time.Date(2025, 12, 1, 10, 0, 0, 0, time.UTC)

	articles := []*core.Article{
		{Title: "cached", Link: "https://example.com/1", Tier: core.TierP2Raw,
			Config: &core.SourceConfig{Title: "Feed", Category: "AI"}},
	}
	SaveCache(dir, day, articles)

	loaded, ok := FindValidCache(dir, day)
	if !ok {
		t.Fatal("Expected a same-day cache hit")
	}
	if len(loaded) != 1 || loaded[0].Title != "cached" {
		t.Errorf("Cache should round-trip articles, got %+v", loaded)
	}
	if loaded[0].Config == nil || loaded[0].Config.Title != "Feed" {
		t.Error("Source config should survive the round trip")
	}
}

func TestCacheMissOnDifferentDay(t *testing.T) {
	dir := t.TempDir()
	day := time.Date(2025, 12, 1, 10, 0, 0, 0, time.UTC)
	SaveCache(dir, day, []*core.Article{{Title: "x", Link: "u"}})

	if _, ok := FindValidCache(dir, day.AddDate(0, 0, 1)); ok {
		t.Error("A cache from another day must not hit")
	}
}

func TestCacheCorruptFileIsMiss(t *testing.T) {
	dir := t.TempDir()
	day := time.Date(2025, 12, 1, 10, 0, 0, 0, time.UTC)
	path := filepath.Join(dir, "article_cache_2025-12-01.json")
	if err := os.WriteFile(path, []byte("{broken"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, ok := FindValidCache(dir, day); ok {
		t.Error("Corrupt caches must be treated as absent")
	}
}
