// Package core defines the data model shared by every pipeline stage.
package core

import "time"

// Origin types for an Article. Curated sources are human- or ML-pre-selected.
const (
	OriginRaw     = "raw"
	OriginCurated = "curated"
)

// Source tiers, in priority order.
const (
	TierP0Curated  = "P0_CURATED"
	TierP0Releases = "P0_RELEASES"
	TierP1Context  = "P1_CONTEXT"
	TierP2Raw      = "P2_RAW"
	TierCommunity  = "COMMUNITY"
)

// tierPriority ranks tiers for dedup tie-breaking and metrics ordering.
// Higher is better; unknown tiers rank below everything.
var tierPriority = map[string]int{
	TierP0Curated:  5,
	TierP0Releases: 4,
	TierP1Context:  3,
	TierP2Raw:      2,
	TierCommunity:  1,
}

// TierPriority returns the priority rank of a tier (0 for unknown tiers).
func TierPriority(tier string) int {
	return tierPriority[tier]
}

// FeedInfo carries channel-level metadata from the feed an article came from.
type FeedInfo struct {
	Title string `json:"title"`
}

// Article is the unit flowing through the pipeline. Fetchers create Articles;
// the pipeline driver is the sole mutator of Evaluate and selection fields.
type Article struct {
	Title      string        `json:"title"`
	Summary    string        `json:"summary"`
	Link       string        `json:"link"`
	CoverURL   string        `json:"cover_url"`
	Date       time.Time     `json:"date"`
	Info       FeedInfo      `json:"info"`
	Config     *SourceConfig `json:"config"`
	OriginType string        `json:"origin_type"`
	Tier       string        `json:"tier"`

	// FocusScore is the lexical pre-score used for per-source top-K culling.
	FocusScore int `json:"score"`

	// Evaluate is attached by the LLM evaluator; nil until then.
	Evaluate *Evaluation `json:"evaluate,omitempty"`

	// Importance comes from curated markdown sections (중요도, default 5).
	Importance int `json:"importance,omitempty"`

	// Confidence, Category and Source annotate articles from daily JSON
	// snapshots of curated news repositories.
	Confidence float64 `json:"confidence,omitempty"`
	Category   string  `json:"category,omitempty"`
	Source     string  `json:"source,omitempty"`
}

// FeedTitle resolves the display title of the article's source, preferring
// the registry entry over the feed channel metadata.
func (a *Article) FeedTitle() string {
	if a.Config != nil && a.Config.Title != "" {
		return a.Config.Title
	}
	if a.Info.Title != "" {
		return a.Info.Title
	}
	return "Unknown"
}

// Topic returns the LLM-assigned topic, or "" before evaluation.
func (a *Article) Topic() string {
	if a.Evaluate == nil {
		return ""
	}
	return a.Evaluate.Topic
}

// FinalScore returns the weighted multi-factor score, or 0 before evaluation.
func (a *Article) FinalScore() float64 {
	if a.Evaluate == nil {
		return 0
	}
	return a.Evaluate.Score
}

// TierOrDefault returns the article's tier, falling back to P2_RAW.
func (a *Article) TierOrDefault() string {
	if a.Tier != "" {
		return a.Tier
	}
	if a.Config != nil && a.Config.Tier != "" {
		return a.Config.Tier
	}
	return TierP2Raw
}

// Evaluation is the LLM-derived assessment of one article.
type Evaluation struct {
	Title   string   `json:"title"`
	Link    string   `json:"link"`
	Tags    []string `json:"tags"`
	Topic   string   `json:"topic"`
	Impact  float64  `json:"impact"`
	Novelty float64  `json:"novelty"`
	Proof   float64  `json:"proof"`
	Summary string   `json:"summary"`

	WhyItMatters  string `json:"why_it_matters"`
	KeyEvidence   string `json:"key_evidence"`
	WhoShouldCare string `json:"who_should_care"`
	NextAction    string `json:"next_action"`
	Comparison    string `json:"comparison"`

	// Score is the weighted multi-factor score, filled in by the scorer.
	Score float64 `json:"score"`
}

// InsightFields lists the five rationale facets in their canonical order.
var InsightFields = []string{
	"why_it_matters",
	"key_evidence",
	"who_should_care",
	"next_action",
	"comparison",
}

// Insight returns the value of one of the five insight fields by name.
func (e *Evaluation) Insight(field string) string {
	switch field {
	case "why_it_matters":
		return e.WhyItMatters
	case "key_evidence":
		return e.KeyEvidence
	case "who_should_care":
		return e.WhoShouldCare
	case "next_action":
		return e.NextAction
	case "comparison":
		return e.Comparison
	}
	return ""
}

// SourceConfig is one entry of the source registry.
type SourceConfig struct {
	Title               string `json:"title"`
	URL                 string `json:"url"`
	Type                string `json:"type"`
	Tier                string `json:"tier"`
	Category            string `json:"category"`
	Priority            string `json:"priority"`
	RSSHubPath          string `json:"rsshub_path,omitempty"`
	InputCount          int    `json:"input_count,omitempty"`
	OutputCount         int    `json:"output_count,omitempty"`
	ImageEnable         *bool  `json:"image_enable,omitempty"`
	ExcludeThreadsLinks bool   `json:"exclude_threads_links,omitempty"`
}

// Defaults for per-source candidate caps.
const (
	DefaultInputCount  = 6
	DefaultOutputCount = 3
)

// InputLimit returns the cap on pre-evaluation candidates for this source.
func (c *SourceConfig) InputLimit() int {
	if c != nil && c.InputCount > 0 {
		return c.InputCount
	}
	return DefaultInputCount
}

// OutputLimit returns the cap on candidates kept for this source.
func (c *SourceConfig) OutputLimit() int {
	if c != nil && c.OutputCount > 0 {
		return c.OutputCount
	}
	return DefaultOutputCount
}

// ImageEnabled reports whether primary-media extraction is on (default true).
func (c *SourceConfig) ImageEnabled() bool {
	if c == nil || c.ImageEnable == nil {
		return true
	}
	return *c.ImageEnable
}

// IsCurated reports whether this source kind yields curated articles.
func (c *SourceConfig) IsCurated() bool {
	if c == nil {
		return false
	}
	switch c.Type {
	case "curated_rss", "github_md_folder", "github_json":
		return true
	}
	return false
}

// GlobalConfig is the merged "configuration" block of the source registry.
type GlobalConfig struct {
	DailyTarget   int             `json:"daily_target"`
	RSSHubDomain  string          `json:"rsshub_domain"`
	Selection     SelectionConfig `json:"selection"`
	Deduplication DedupConfig     `json:"deduplication"`
}

// SelectionConfig groups scoring, diversity and drop rules.
type SelectionConfig struct {
	Scoring         ScoringConfig    `json:"scoring"`
	DiversityQuotas QuotaConfig      `json:"diversity_quotas"`
	LLMTagging      LLMTaggingConfig `json:"llm_tagging"`
}

// ScoringConfig controls time decay and keyword penalties.
type ScoringConfig struct {
	Recency   RecencyConfig `json:"recency"`
	Penalties []PenaltyRule `json:"penalties"`
}

// RecencyConfig controls exponential time decay.
type RecencyConfig struct {
	HalfLifeHours float64 `json:"half_life_hours"`
}

// PenaltyRule subtracts from the score when any keyword appears in the
// evaluated title or summary. Each rule fires at most once.
type PenaltyRule struct {
	Keywords []string `json:"keywords"`
	Subtract float64  `json:"subtract"`
}

// QuotaConfig holds per-topic minimum and maximum slate quotas.
type QuotaConfig struct {
	Min map[string]int `json:"min"`
	Max map[string]int `json:"max"`
}

// LLMTaggingConfig holds the hard drop rules applied after evaluation.
type LLMTaggingConfig struct {
	DropIf DropRules `json:"drop_if"`
}

// DropRules define when an evaluated article is discarded outright.
type DropRules struct {
	TopicIn        []string        `json:"topic_in"`
	ImpactLTE      float64         `json:"impact_lte"`
	ProofLTE       float64         `json:"proof_lte"`
	ContentQuality *ContentQuality `json:"content_quality,omitempty"`
}

// ContentQuality sets minimum lengths for the summary and insight fields.
type ContentQuality struct {
	SummaryMinChars     int `json:"summary_min_chars"`
	InsightMinFilled    int `json:"insight_min_filled"`
	InsightMinCharsEach int `json:"insight_min_chars_each"`
}

// DedupConfig toggles deduplication and names the URL fields it keys on.
type DedupConfig struct {
	Enabled            *bool    `json:"enabled,omitempty"`
	CanonicalURLFields []string `json:"canonical_url_fields,omitempty"`
}

// IsEnabled reports whether deduplication is on (default true).
func (d DedupConfig) IsEnabled() bool {
	return d.Enabled == nil || *d.Enabled
}

// FeedMetric tracks one source's counts across a pipeline run.
type FeedMetric struct {
	Title          string    `json:"title"`
	Tier           string    `json:"tier"`
	Priority       string    `json:"priority"`
	FindCount      int       `json:"find_count"`
	CandidateCount int       `json:"candidate_count"`
	ReleaseCount   int       `json:"release_count"`
	ReleaseScores  []float64 `json:"release_scores,omitempty"`
	RankList       []int     `json:"rank_list"`
}
