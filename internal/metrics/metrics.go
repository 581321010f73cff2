// Package metrics tracks per-source pipeline counts and serializes them
// for the dashboard on the published site.
package metrics

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	jsoniter "github.com/json-iterator/go"

	"dailynews/internal/core"
	"dailynews/internal/logger"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Collector owns every source's metric record for one run. Safe for
// concurrent mutation if fetchers are ever parallelized.
type Collector struct {
	mu    sync.Mutex
	feeds map[string]*core.FeedMetric
}

// NewCollector returns an empty collector.
func NewCollector() *Collector {
	return &Collector{feeds: make(map[string]*core.FeedMetric)}
}

// Register initializes a zeroed record for a source. Called for every
// registered source at pipeline start.
func (c *Collector) Register(cfg *core.SourceConfig) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.feeds[cfg.Title]; ok {
		return
	}
	c.feeds[cfg.Title] = &core.FeedMetric{
		Title:    cfg.Title,
		Tier:     cfg.Tier,
		Priority: cfg.Priority,
		RankList: []int{},
	}
}

// SetFindCount records how many items survived per-source filtering.
func (c *Collector) SetFindCount(title string, n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if m, ok := c.feeds[title]; ok {
		m.FindCount = n
	}
}

// AddCandidate counts one article drawn into the evaluation pool.
func (c *Collector) AddCandidate(title string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if m, ok := c.feeds[title]; ok {
		m.CandidateCount++
	}
}

// RecordRelease counts one article in the final slate, with its score
// and 1-based slate rank.
func (c *Collector) RecordRelease(title string, score float64, rank int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	m, ok := c.feeds[title]
	if !ok {
		logger.Warn("release for unregistered source", "source", title)
		return
	}
	m.ReleaseCount++
	m.ReleaseScores = append(m.ReleaseScores, score)
	m.RankList = append(m.RankList, rank)
}

// Get returns the record for a source, or nil.
func (c *Collector) Get(title string) *core.FeedMetric {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.feeds[title]
}

// feedReport is the serialized per-source shape: release_score is the
// rounded average of the internal score list.
type feedReport struct {
	Title          string  `json:"title"`
	Tier           string  `json:"tier"`
	Priority       string  `json:"priority"`
	FindCount      int     `json:"find_count"`
	CandidateCount int     `json:"candidate_count"`
	ReleaseCount   int     `json:"release_count"`
	ReleaseScore   float64 `json:"release_score"`
	RankList       []int   `json:"rank_list"`
}

type report struct {
	GeneratedAt time.Time    `json:"generated_at"`
	Feeds       []feedReport `json:"feeds"`
}

// Save writes the metrics report, sorted by tier priority then by
// release count descending.
func (c *Collector) Save(path string, now time.Time) error {
	c.mu.Lock()
	records := make([]*core.FeedMetric, 0, len(c.feeds))
	for _, m := range c.feeds {
		records = append(records, m)
	}
	c.mu.Unlock()

	sort.SliceStable(records, func(i, j int) bool {
		pi, pj := core.TierPriority(records[i].Tier), core.TierPriority(records[j].Tier)
		if pi != pj {
			return pi > pj
		}
		if records[i].ReleaseCount != records[j].ReleaseCount {
			return records[i].ReleaseCount > records[j].ReleaseCount
		}
		return records[i].Title < records[j].Title
	})

	out := report{GeneratedAt: now.UTC(), Feeds: make([]feedReport, 0, len(records))}
	for _, m := range records {
		out.Feeds = append(out.Feeds, feedReport{
			Title:          m.Title,
			Tier:           m.Tier,
			Priority:       m.Priority,
			FindCount:      m.FindCount,
			CandidateCount: m.CandidateCount,
			ReleaseCount:   m.ReleaseCount,
			ReleaseScore:   averageScore(m.ReleaseScores),
			RankList:       m.RankList,
		})
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create metrics dir: %w", err)
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal metrics: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write metrics %s: %w", path, err)
	}
	logger.Info("metrics written", "path", path, "feeds", len(out.Feeds))
	return nil
}

// averageScore rounds the mean to two decimals; empty lists yield 0.
func averageScore(scores []float64) float64 {
	if len(scores) == 0 {
		return 0
	}
	sum := 0.0
	for _, s := range scores {
		sum += s
	}
	return math.Round(sum/float64(len(scores))*100) / 100
}
