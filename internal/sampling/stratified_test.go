package sampling

import (
	"fmt"
	"testing"

	"dailynews/internal/core"
)

func tierArticles(tier string, n int) []*core.Article {
	out := make([]*core.Article, n)
	for i := range out {
		out[i] = &core.Article{
			Title: fmt.Sprintf("%s-%d", tier, i),
			Link:  fmt.Sprintf("https://example.com/%s/%d", tier, i),
			Tier:  tier,
		}
	}
	return out
}

func TestSamplePassthroughUnderTarget(t *testing.T) {
	s := NewSeeded(1)
	pool := tierArticles(core.TierP2Raw, 50)
	if got := s.Sample(pool); len(got) != 50 {
		t.Errorf("Pools under the target pass through untouched, got %d", len(got))
	}
}

func TestSampleRespectsTierQuotas(t *testing.T) {
	s := NewSeeded(42)
	var pool []*core.Article
	for tier := range DefaultQuotas {
		pool = append(pool, tierArticles(tier, 60)...)
	}

	sampled := s.Sample(pool)
	if len(sampled) != DefaultTarget {
		t.Fatalf("Expected %d sampled, got %d", DefaultTarget, len(sampled))
	}

	counts := map[string]int{}
	for _, a := range sampled {
		counts[a.Tier]++
	}
	for tier, quota := range DefaultQuotas {
		if counts[tier] != quota {
			t.Errorf("Tier %s: expected %d, got %d", tier, quota, counts[tier])
		}
	}
}

func TestSampleDeficitRedistribution(t *testing.T) {
	s := NewSeeded(7)
	// P0_CURATED is nearly empty; its quota should be redistributed.
	pool := append(tierArticles(core.TierP0Curated, 2), tierArticles(core.TierP2Raw, 200)...)

	sampled := s.Sample(pool)
	if len(sampled) != DefaultTarget {
		t.Fatalf("Deficit should be filled from the remainder, got %d", len(sampled))
	}

	counts := map[string]int{}
	for _, a := range sampled {
		counts[a.Tier]++
	}
	if counts[core.TierP0Curated] != 2 {
		t.Errorf("All available curated items should be taken, got %d", counts[core.TierP0Curated])
	}
	if counts[core.TierP2Raw] != DefaultTarget-2 {
		t.Errorf("Remainder should come from the raw pool, got %d", counts[core.TierP2Raw])
	}
}

func TestSampleDeterministicWithSeed(t *testing.T) {
	var pool []*core.Article
	for tier := range DefaultQuotas {
		pool = append(pool, tierArticles(tier, 40)...)
	}

	first := NewSeeded(99).Sample(pool)
	second := NewSeeded(99).Sample(pool)
	if len(first) != len(second) {
		t.Fatalf("Seeded runs differ in size: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("Seeded runs differ at index %d", i)
		}
	}
}

func TestSampleUnknownTierDefaultsToRaw(t *testing.T) {
	s := NewSeeded(3)
	pool := append(tierArticles("", 150), tierArticles(core.TierCommunity, 30)...)

	sampled := s.Sample(pool)
	counts := map[string]int{}
	for _, a := range sampled {
		counts[a.TierOrDefault()]++
	}
	if counts[core.TierP2Raw] == 0 {
		t.Error("Untiered articles should compete under the P2_RAW quota")
	}
}
