package selection

import (
	"sort"

	"dailynews/internal/core"
	"dailynews/internal/logger"
)

// EnforceQuotas builds the final slate of at most target articles from a
// score-sorted candidate list, honoring per-topic minimum and maximum
// quotas. Minimums are satisfied first, then remaining slots are filled
// by score without exceeding any topic maximum. Maximums are hard: when
// every remaining candidate's topic is capped, the slate stays short.
// The slate keeps selection order (minimum picks, then the scored fill).
func EnforceQuotas(candidates []*core.Article, quotas core.QuotaConfig, target int) []*core.Article {
	if target <= 0 || len(candidates) == 0 {
		return nil
	}
	if len(quotas.Min) == 0 && len(quotas.Max) == 0 {
		if len(candidates) > target {
			return candidates[:target]
		}
		return candidates
	}

	byTopic := make(map[string][]*core.Article)
	for _, a := range candidates {
		byTopic[a.Topic()] = append(byTopic[a.Topic()], a)
	}

	taken := make(map[*core.Article]bool)
	topicCount := make(map[string]int)
	var slate []*core.Article

	// Phase 1: satisfy minimum quotas, best-scored first per topic.
	// Topics iterate in sorted order so the slate is deterministic.
	minTopics := make([]string, 0, len(quotas.Min))
	for topic := range quotas.Min {
		minTopics = append(minTopics, topic)
	}
	sort.Strings(minTopics)

	for _, topic := range minTopics {
		want := quotas.Min[topic]
		pool := byTopic[topic]
		for _, a := range pool {
			if topicCount[topic] >= want || len(slate) >= target {
				break
			}
			slate = append(slate, a)
			taken[a] = true
			topicCount[topic]++
		}
		if topicCount[topic] < want {
			logger.Warn("minimum quota unmet", "topic", topic, "want", want, "got", topicCount[topic])
		}
	}

	// Phase 2: fill remaining slots by score, capped by topic maximums.
	for _, a := range candidates {
		if len(slate) >= target {
			break
		}
		if taken[a] {
			continue
		}
		topic := a.Topic()
		if max, ok := quotas.Max[topic]; ok && topicCount[topic] >= max {
			continue
		}
		slate = append(slate, a)
		taken[a] = true
		topicCount[topic]++
	}

	logDistribution(topicCount, len(slate))
	return slate
}

func logDistribution(topicCount map[string]int, total int) {
	topics := make([]string, 0, len(topicCount))
	for topic := range topicCount {
		topics = append(topics, topic)
	}
	sort.Strings(topics)
	args := []interface{}{"total", total}
	for _, topic := range topics {
		args = append(args, topic, topicCount[topic])
	}
	logger.Info("final slate distribution", args...)
}
