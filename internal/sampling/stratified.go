// Package sampling draws the evaluation pool from the fetched candidates
// with per-tier quotas, so cheap high-volume sources cannot crowd out
// curated ones.
package sampling

import (
	"math/rand"
	"time"

	"dailynews/internal/core"
	"dailynews/internal/logger"
)

// DefaultTarget is the evaluation pool size.
const DefaultTarget = 100

// tierOrder fixes the iteration order over quota tiers.
var tierOrder = []string{
	core.TierP0Curated,
	core.TierP0Releases,
	core.TierP1Context,
	core.TierP2Raw,
	core.TierCommunity,
}

// DefaultQuotas is the per-tier share of the evaluation pool.
var DefaultQuotas = map[string]int{
	core.TierP0Curated:  30,
	core.TierP0Releases: 12,
	core.TierP1Context:  20,
	core.TierP2Raw:      20,
	core.TierCommunity:  18,
}

// Sampler draws a stratified uniform sample. The RNG is injectable so
// tests can seed it.
type Sampler struct {
	Target int
	Quotas map[string]int
	rng    *rand.Rand
}

// New returns a sampler with the default quotas and a time-seeded RNG.
func New() *Sampler {
	return NewSeeded(time.Now().UnixNano())
}

// NewSeeded returns a sampler with a deterministic RNG.
func NewSeeded(seed int64) *Sampler {
	return &Sampler{
		Target: DefaultTarget,
		Quotas: DefaultQuotas,
		rng:    rand.New(rand.NewSource(seed)),
	}
}

// Sample draws up to Target articles: each tier contributes up to its
// quota uniformly at random, and any remaining deficit is drawn from the
// unsampled remainder across all tiers.
func (s *Sampler) Sample(articles []*core.Article) []*core.Article {
	if len(articles) <= s.Target {
		return articles
	}

	byTier := make(map[string][]*core.Article)
	for _, a := range articles {
		tier := a.TierOrDefault()
		byTier[tier] = append(byTier[tier], a)
	}

	picked := make(map[*core.Article]bool)
	var sampled []*core.Article
	for _, tier := range tierOrder {
		quota := s.Quotas[tier]
		pool := byTier[tier]
		for _, a := range s.draw(pool, quota) {
			sampled = append(sampled, a)
			picked[a] = true
		}
	}

	// Tiers under quota leave a deficit; fill it from whatever is left.
	if deficit := s.Target - len(sampled); deficit > 0 {
		var rest []*core.Article
		for _, a := range articles {
			if !picked[a] {
				rest = append(rest, a)
			}
		}
		sampled = append(sampled, s.draw(rest, deficit)...)
	}

	logger.Info("stratified sample drawn", "input", len(articles), "sampled", len(sampled))
	return sampled
}

// draw picks up to n articles uniformly without replacement.
func (s *Sampler) draw(pool []*core.Article, n int) []*core.Article {
	if n <= 0 || len(pool) == 0 {
		return nil
	}
	if len(pool) <= n {
		return pool
	}
	out := make([]*core.Article, 0, n)
	for _, idx := range s.rng.Perm(len(pool))[:n] {
		out = append(out, pool[idx])
	}
	return out
}
