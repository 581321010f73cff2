// Package render writes the daily markdown digest consumed by the
// static site generator.
package render

import (
	"fmt"
	"hash/fnv"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"dailynews/internal/core"
	"dailynews/internal/logger"
)

// insightCount is how many of the five insight facets each section shows.
const insightCount = 3

// insightTemplates phrase each facet as a full sentence. The %s slot is
// the facet value.
var insightTemplates = map[string]string{
	"why_it_matters":  "이 소식이 중요한 이유는 %s",
	"key_evidence":    "구체적 근거로 %s",
	"who_should_care": "특히 %s에게 직접적인 도움이 됩니다",
	"next_action":     "이후에는 %s",
	"comparison":      "경쟁 대비 차별점은 %s",
}

// Renderer writes dailyNews_<date>.md files under the blog directory.
type Renderer struct {
	BlogDir string
	Loc     *time.Location
}

// New builds a renderer for the given blog directory and display timezone.
func New(blogDir string, loc *time.Location) *Renderer {
	return &Renderer{BlogDir: blogDir, Loc: loc}
}

// Path returns the output file path for a given day.
func (r *Renderer) Path(now time.Time) string {
	return filepath.Join(r.BlogDir, fmt.Sprintf("dailyNews_%s.md", now.In(r.Loc).Format("2006-01-02")))
}

// Render writes the digest for the final slate, preserving its order.
func (r *Renderer) Render(articles []*core.Article, now time.Time) (string, error) {
	path := r.Path(now)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("failed to create blog dir: %w", err)
	}

	content := r.Build(articles, now)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("failed to write digest %s: %w", path, err)
	}
	logger.Info("digest written", "path", path, "articles", len(articles))
	return path, nil
}

// Build produces the full markdown document as a string.
func (r *Renderer) Build(articles []*core.Article, now time.Time) string {
	local := now.In(r.Loc)
	dateStr := local.Format("2006-01-02")

	var b strings.Builder
	b.WriteString(r.frontMatter(articles, local))

	// Guide: a blockquote bullet list of every headline.
	for _, a := range articles {
		b.WriteString("> - " + displayTitle(a) + "\n")
	}
	b.WriteString("\n")

	for _, a := range articles {
		b.WriteString(r.section(a, dateStr))
	}
	return b.String()
}

func (r *Renderer) frontMatter(articles []*core.Article, local time.Time) string {
	var titles []string
	tagSet := map[string]bool{}
	for _, a := range articles {
		titles = append(titles, displayTitle(a))
		if a.Evaluate != nil {
			for _, tag := range a.Evaluate.Tags {
				tag = strings.ReplaceAll(strings.TrimSpace(tag), "/", "_")
				if tag != "" {
					tagSet[tag] = true
				}
			}
		}
	}

	tags := make([]string, 0, len(tagSet))
	for tag := range tagSet {
		tags = append(tags, tag)
	}
	sort.Strings(tags)

	var b strings.Builder
	b.WriteString("---\n")
	fmt.Fprintf(&b, "title: \"Daily News #%s\"\n", local.Format("2006-01-02"))
	fmt.Fprintf(&b, "date: \"%s\"\n", local.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "description: \"%s\"\n", strings.Join(titles, "\n"))
	if len(tags) == 0 {
		b.WriteString("tags: []\n")
	} else {
		b.WriteString("tags:\n")
		for _, tag := range tags {
			fmt.Fprintf(&b, "- \"%s\"\n", tag)
		}
	}
	b.WriteString("---\n\n")
	return b.String()
}

// section renders one article: heading, publish time, optional cover,
// summary and a seeded random three of the five insights.
func (r *Renderer) section(a *core.Article, dateStr string) string {
	title := displayTitle(a)

	var b strings.Builder
	// Headings carry no hyperlink; the digest reads as plain text.
	fmt.Fprintf(&b, "### %s\n\n", title)
	fmt.Fprintf(&b, "발행시간: %s\n\n", a.Date.In(r.Loc).Format("2006-01-02 15:04:05"))
	if a.CoverURL != "" {
		fmt.Fprintf(&b, "![](%s)\n\n", a.CoverURL)
	}
	if a.Evaluate != nil && a.Evaluate.Summary != "" {
		b.WriteString(a.Evaluate.Summary + "\n\n")
	}

	for _, insight := range r.insights(a, title, dateStr) {
		b.WriteString("- " + insight + "\n")
	}
	b.WriteString("\n")
	return b.String()
}

// insights picks three filled facets with an RNG seeded by title and
// date, so reruns produce the same file.
func (r *Renderer) insights(a *core.Article, title, dateStr string) []string {
	if a.Evaluate == nil {
		return nil
	}

	var available []string
	for _, field := range core.InsightFields {
		if strings.TrimSpace(a.Evaluate.Insight(field)) != "" {
			available = append(available, field)
		}
	}
	if len(available) == 0 {
		return nil
	}

	n := insightCount
	if len(available) < n {
		n = len(available)
	}

	rng := rand.New(rand.NewSource(int64(seed(title + "-" + dateStr))))
	picked := rng.Perm(len(available))[:n]
	sort.Ints(picked)

	var out []string
	for _, idx := range picked {
		field := available[idx]
		value := strings.TrimSpace(a.Evaluate.Insight(field))
		out = append(out, sentence(fmt.Sprintf(insightTemplates[field], value)))
	}
	return out
}

// sentence normalizes the ending to a single Korean declarative period.
func sentence(s string) string {
	s = strings.TrimSpace(s)
	switch {
	case strings.HasSuffix(s, "다."):
		return s
	case strings.HasSuffix(s, "다"):
		return s + "."
	}
	return strings.TrimRight(s, ".") + "."
}

func displayTitle(a *core.Article) string {
	if a.Evaluate != nil && a.Evaluate.Title != "" {
		return a.Evaluate.Title
	}
	return a.Title
}

// seed hashes title+date with FNV-1a.
func seed(s string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(s))
	return h.Sum64()
}
