// Package relevance implements the lexical focus pre-score used for
// per-source top-K culling, distinct from the weighted final score.
package relevance

import (
	"bufio"
	"os"
	"sort"
	"strings"

	"dailynews/internal/core"
	"dailynews/internal/logger"
)

// DefaultThreshold is the minimum focus score a non-top candidate needs
// to be kept. Zero is permissive.
const DefaultThreshold = 0

// keywordWeight is added per focus hit and subtracted per nofocus hit.
const keywordWeight = 2

// Scorer scores articles against boost and penalty keyword lists. The
// lists are loaded once and read-only thereafter.
type Scorer struct {
	Focus     []string
	NoFocus   []string
	Threshold int
}

// LoadScorer reads keyword lists from the given files. Missing files
// yield empty lists; malformed lines never occur (one keyword per line,
// '#' comments and blanks skipped, lowercased).
func LoadScorer(focusPath, noFocusPath string) *Scorer {
	return &Scorer{
		Focus:     loadKeywords(focusPath),
		NoFocus:   loadKeywords(noFocusPath),
		Threshold: DefaultThreshold,
	}
}

func loadKeywords(path string) []string {
	f, err := os.Open(path)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Warn("failed to open keyword file", "path", path, "error", err.Error())
		}
		return nil
	}
	defer f.Close()

	var words []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.ToLower(strings.TrimSpace(scanner.Text()))
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		words = append(words, line)
	}
	return words
}

// Score computes the focus pre-score over the article's title, summary,
// source category and channel title.
func (s *Scorer) Score(a *core.Article) int {
	parts := []string{a.Title, a.Summary}
	if a.Config != nil {
		parts = append(parts, a.Config.Category)
	}
	if a.Info.Title != "" {
		parts = append(parts, a.Info.Title)
	}
	text := strings.ToLower(strings.Join(parts, " "))

	score := 0
	for _, kw := range s.Focus {
		if strings.Contains(text, kw) {
			score += keywordWeight
		}
	}
	for _, kw := range s.NoFocus {
		if strings.Contains(text, kw) {
			score -= keywordWeight
		}
	}
	return score
}

// SelectTop orders candidates by (focus desc, date desc, title desc) and
// keeps the top item unconditionally, then items meeting the threshold
// until limit is reached.
func (s *Scorer) SelectTop(candidates []*core.Article, limit int) []*core.Article {
	if len(candidates) == 0 {
		return nil
	}

	sorted := make([]*core.Article, len(candidates))
	copy(sorted, candidates)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.FocusScore != b.FocusScore {
			return a.FocusScore > b.FocusScore
		}
		if !a.Date.Equal(b.Date) {
			return a.Date.After(b.Date)
		}
		return a.Title > b.Title
	})

	selected := []*core.Article{sorted[0]}
	if limit <= 1 {
		return selected
	}
	for _, a := range sorted[1:] {
		if len(selected) >= limit {
			break
		}
		if a.FocusScore >= s.Threshold {
			selected = append(selected, a)
		}
	}
	return selected
}
