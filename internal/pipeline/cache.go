package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	jsoniter "github.com/json-iterator/go"

	"dailynews/internal/core"
	"dailynews/internal/logger"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// cachePath names the per-day article cache under the draft directory.
func cachePath(draftDir string, day time.Time) string {
	return filepath.Join(draftDir, fmt.Sprintf("article_cache_%s.json", day.Format("2006-01-02")))
}

// FindValidCache loads today's fetched-article cache if present. Stale
// or unreadable caches are treated as absent.
func FindValidCache(draftDir string, day time.Time) ([]*core.Article, bool) {
	path := cachePath(draftDir, day)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}

	var articles []*core.Article
	if err := json.Unmarshal(data, &articles); err != nil {
		logger.Warn("corrupt article cache, refetching", "path", path, "error", err.Error())
		return nil, false
	}
	logger.Info("article cache hit", "path", path, "articles", len(articles))
	return articles, true
}

// SaveCache writes the fetched articles for reuse within the same day.
func SaveCache(draftDir string, day time.Time, articles []*core.Article) {
	if err := os.MkdirAll(draftDir, 0o755); err != nil {
		logger.Warn("failed to create draft dir", "dir", draftDir, "error", err.Error())
		return
	}
	data, err := json.MarshalIndent(articles, "", "  ")
	if err != nil {
		logger.Warn("failed to marshal article cache", "error", err.Error())
		return
	}
	path := cachePath(draftDir, day)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		logger.Warn("failed to write article cache", "path", path, "error", err.Error())
		return
	}
	logger.Info("article cache saved", "path", path, "articles", len(articles))
}
