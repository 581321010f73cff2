package relevance

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"dailynews/internal/core"
)

func writeKeywords(t *testing.T, lines string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "keywords.md")
	if err := os.WriteFile(path, []byte(lines), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadScorerSkipsCommentsAndBlanks(t *testing.T) {
	path := writeKeywords(t, "# heading\n\nLLM\n  agent  \n")
	s := LoadScorer(path, "does-not-exist.md")
	if len(s.Focus) != 2 {
		t.Fatalf("Expected 2 keywords, got %v", s.Focus)
	}
	if s.Focus[0] != "llm" || s.Focus[1] != "agent" {
		t.Errorf("Keywords should be lowercased and trimmed, got %v", s.Focus)
	}
	if s.NoFocus != nil {
		t.Errorf("Missing file should yield an empty list, got %v", s.NoFocus)
	}
}

func TestScoreCountsFocusAndNoFocus(t *testing.T) {
	s := &Scorer{Focus: []string{"llm", "agent"}, NoFocus: []string{"crypto"}}

	a := &core.Article{Title: "New LLM agent framework", Summary: "crypto angle"}
	if got := s.Score(a); got != 2 {
		t.Errorf("Expected 2+2-2=2, got %d", got)
	}
}

func TestScoreIncludesCategoryAndChannel(t *testing.T) {
	s := &Scorer{Focus: []string{"robotics"}}
	a := &core.Article{
		Title:  "Weekly roundup",
		Config: &core.SourceConfig{Category: "Robotics News"},
	}
	if got := s.Score(a); got != 2 {
		t.Errorf("Category text should count, got %d", got)
	}

	b := &core.Article{Title: "Weekly roundup", Info: core.FeedInfo{Title: "Robotics Digest"}}
	if got := s.Score(b); got != 2 {
		t.Errorf("Channel title should count, got %d", got)
	}
}

func TestSelectTopAlwaysKeepsBest(t *testing.T) {
	s := &Scorer{Threshold: 10}
	now := time.Now()

	articles := []*core.Article{
		{Title: "a", FocusScore: -4, Date: now},
		{Title: "b", FocusScore: -2, Date: now},
	}
	selected := s.SelectTop(articles, 3)
	if len(selected) != 1 {
		t.Fatalf("Only the top item should pass a high threshold, got %d", len(selected))
	}
	if selected[0].Title != "b" {
		t.Errorf("The best-focused article should be kept, got %q", selected[0].Title)
	}
}

func TestSelectTopOrderingAndLimit(t *testing.T) {
	s := &Scorer{}
	now := time.Now()

	articles := []*core.Article{
		{Title: "old", FocusScore: 2, Date: now.Add(-2 * time.Hour)},
		{Title: "new", FocusScore: 2, Date: now},
		{Title: "best", FocusScore: 6, Date: now.Add(-5 * time.Hour)},
		{Title: "meh", FocusScore: 0, Date: now},
	}

	selected := s.SelectTop(articles, 3)
	if len(selected) != 3 {
		t.Fatalf("Expected 3 selected, got %d", len(selected))
	}
	want := []string{"best", "new", "old"}
	for i, title := range want {
		if selected[i].Title != title {
			t.Errorf("Position %d: expected %q, got %q", i, title, selected[i].Title)
		}
	}
}

func TestSelectTopEmptyInput(t *testing.T) {
	s := &Scorer{}
	if got := s.SelectTop(nil, 3); got != nil {
		t.Errorf("Empty input should yield nil, got %v", got)
	}
}
