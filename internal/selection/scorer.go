// Package selection implements the selection engine: weighted scoring,
// rule-based drops, deduplication and diversity quotas.
package selection

import (
	"fmt"
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"dailynews/internal/core"
	"dailynews/internal/logger"
)

// Weighted score factors.
const (
	impactWeight  = 0.35
	noveltyWeight = 0.25
	proofWeight   = 0.25
	recencyWeight = 0.15
)

// defaultHalfLifeHours is used when the registry leaves recency unset.
const defaultHalfLifeHours = 36.0

// stalePenaltyAfterHours applies a flat deduction to day-old articles.
const (
	stalePenaltyAfterHours = 24.0
	stalePenalty           = 0.5
)

// RecencyScore computes the exponential time-decay score in [0,5].
// Articles older than 24 hours receive an additional −0.5 step.
func RecencyScore(published time.Time, halfLifeHours float64, now time.Time) float64 {
	if halfLifeHours <= 0 {
		halfLifeHours = defaultHalfLifeHours
	}
	hoursOld := now.UTC().Sub(published).Hours()

	recency := 5.0 * math.Pow(0.5, hoursOld/halfLifeHours)
	if hoursOld > stalePenaltyAfterHours {
		recency -= stalePenalty
	}
	return math.Max(0.0, math.Min(5.0, recency))
}

// Score computes the weighted multi-factor score for an evaluated article
// and applies keyword penalties, flooring at zero.
func Score(eval *core.Evaluation, published time.Time, cfg *core.GlobalConfig, now time.Time) float64 {
	scoring := cfg.Selection.Scoring
	recency := RecencyScore(published, scoring.Recency.HalfLifeHours, now)

	base := impactWeight*eval.Impact +
		noveltyWeight*eval.Novelty +
		proofWeight*eval.Proof +
		recencyWeight*recency

	return applyPenalties(base, eval.Title, eval.Summary, scoring.Penalties)
}

// applyPenalties subtracts each matching rule once; the first matching
// keyword per rule fires it.
func applyPenalties(score float64, title, summary string, penalties []core.PenaltyRule) float64 {
	combined := strings.ToLower(title + " " + summary)
	for _, rule := range penalties {
		for _, kw := range rule.Keywords {
			if strings.Contains(combined, strings.ToLower(kw)) {
				score -= rule.Subtract
				logger.Debug("penalty applied", "keyword", kw, "subtract", rule.Subtract)
				break
			}
		}
	}
	return math.Max(0.0, score)
}

// DropReason returns a human-readable reason when a drop_if rule fires,
// or "" when the article survives.
func DropReason(eval *core.Evaluation, cfg *core.GlobalConfig) string {
	rules := cfg.Selection.LLMTagging.DropIf

	for _, topic := range rules.TopicIn {
		if eval.Topic == topic {
			return fmt.Sprintf("topic %s in blacklist", eval.Topic)
		}
	}
	if eval.Impact <= rules.ImpactLTE {
		return fmt.Sprintf("impact %.0f <= %.0f", eval.Impact, rules.ImpactLTE)
	}
	if eval.Proof <= rules.ProofLTE {
		return fmt.Sprintf("proof %.0f <= %.0f", eval.Proof, rules.ProofLTE)
	}
	return contentQualityReason(eval, rules.ContentQuality)
}

// contentQualityReason checks summary length and insight coverage.
func contentQualityReason(eval *core.Evaluation, quality *core.ContentQuality) string {
	if quality == nil {
		return ""
	}

	if n := utf8.RuneCountInString(eval.Summary); n < quality.SummaryMinChars {
		return fmt.Sprintf("summary too short (%d<%d chars)", n, quality.SummaryMinChars)
	}

	filled := 0
	for _, field := range core.InsightFields {
		if utf8.RuneCountInString(strings.TrimSpace(eval.Insight(field))) >= quality.InsightMinCharsEach {
			filled++
		}
	}
	if filled < quality.InsightMinFilled {
		return fmt.Sprintf("insufficient insights (%d<%d)", filled, quality.InsightMinFilled)
	}
	return ""
}
