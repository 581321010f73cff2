package selection

import (
	"net/url"
	"sort"
	"strings"

	"dailynews/internal/core"
	"dailynews/internal/logger"
)

// TrackingParams are stripped during URL canonicalization.
var TrackingParams = map[string]bool{
	"utm_source":   true,
	"utm_medium":   true,
	"utm_campaign": true,
	"utm_term":     true,
	"utm_content":  true,
	"ref":          true,
	"source":       true,
	"fbclid":       true,
	"gclid":        true,
	"msclkid":      true,
}

// titlePunctuation is replaced by spaces during title normalization.
const titlePunctuation = ".,!?;:()[]{}\"\"''“”‘’—–-"

// titleSimilarityThreshold is the minimum similarity for two curated
// articles to be considered duplicates.
const titleSimilarityThreshold = 0.85

// CanonicalizeURL lowercases scheme and host, drops the fragment and
// tracking query parameters, and sorts the remaining query keys. The
// result is idempotent: canon(canon(u)) == canon(u).
func CanonicalizeURL(raw string) string {
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		logger.Warn("failed to canonicalize URL", "url", raw, "error", err.Error())
		return raw
	}

	query := u.Query()
	keys := make([]string, 0, len(query))
	for key := range query {
		if TrackingParams[strings.ToLower(key)] {
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var clean strings.Builder
	for i, key := range keys {
		if i > 0 {
			clean.WriteByte('&')
		}
		clean.WriteString(key)
		clean.WriteByte('=')
		clean.WriteString(query.Get(key))
	}

	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.RawQuery = clean.String()
	u.Fragment = ""
	u.RawFragment = ""
	return u.String()
}

// NormalizeTitle lowercases, strips punctuation and collapses whitespace.
func NormalizeTitle(title string) string {
	title = strings.ToLower(title)
	title = strings.Map(func(r rune) rune {
		if strings.ContainsRune(titlePunctuation, r) {
			return ' '
		}
		return r
	}, title)
	return strings.Join(strings.Fields(title), " ")
}

// TitleSimilarity returns a similarity in [0,1] between two titles:
// 1.0 for equal normalized titles, otherwise a longest-common-subsequence
// ratio over the normalized forms.
func TitleSimilarity(a, b string) float64 {
	na, nb := NormalizeTitle(a), NormalizeTitle(b)
	if na == "" || nb == "" {
		return 0.0
	}
	if na == nb {
		return 1.0
	}
	ra, rb := []rune(na), []rune(nb)
	return 2.0 * float64(lcsLength(ra, rb)) / float64(len(ra)+len(rb))
}

// lcsLength computes the longest common subsequence length with a
// rolling single-row table.
func lcsLength(a, b []rune) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	row := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		prev := 0
		for j := 1; j <= len(b); j++ {
			cur := row[j]
			if a[i-1] == b[j-1] {
				row[j] = prev + 1
			} else if row[j-1] > row[j] {
				row[j] = row[j-1]
			}
			prev = cur
		}
	}
	return row[len(b)]
}

// ChooseBetter picks the surviving duplicate: higher tier priority, then
// curated origin over raw, then higher curation confidence, then higher
// focus score, then the first occurrence.
func ChooseBetter(first, second *core.Article) *core.Article {
	p1, p2 := core.TierPriority(first.TierOrDefault()), core.TierPriority(second.TierOrDefault())
	if p1 != p2 {
		if p1 > p2 {
			return first
		}
		return second
	}

	c1 := first.OriginType == core.OriginCurated
	c2 := second.OriginType == core.OriginCurated
	if c1 != c2 {
		if c1 {
			return first
		}
		return second
	}

	if first.Confidence != second.Confidence {
		if first.Confidence > second.Confidence {
			return first
		}
		return second
	}

	if first.FocusScore != second.FocusScore {
		if first.FocusScore > second.FocusScore {
			return first
		}
		return second
	}

	return first
}

// Deduplicate removes duplicate articles by canonical URL, and for
// curated articles additionally by fuzzy title match. Input should be
// sorted by score descending so "first occurrence" means "best-scored".
// When duplicates collide the better article replaces the incumbent in
// place, keyed by canonical URL.
func Deduplicate(articles []*core.Article, cfg *core.GlobalConfig) []*core.Article {
	if cfg != nil && !cfg.Deduplication.IsEnabled() {
		logger.Info("deduplication disabled in config")
		return articles
	}

	seenURLs := make(map[string]int)   // canonical URL -> index in unique
	seenTitles := make(map[string]int) // normalized curated title -> index in unique
	var unique []*core.Article
	urlDupes, titleDupes := 0, 0

	for _, article := range articles {
		if article.Link == "" {
			logger.Warn("article missing URL, skipping", "title", article.Title)
			continue
		}
		canonical := CanonicalizeURL(article.Link)

		if idx, ok := seenURLs[canonical]; ok {
			urlDupes++
			incumbent := unique[idx]
			if ChooseBetter(incumbent, article) == article {
				replaceAt(unique, idx, article, canonical, seenURLs, seenTitles)
				logger.Debug("URL duplicate replaced", "title", article.Title, "tier", article.TierOrDefault())
			} else {
				logger.Debug("URL duplicate dropped", "title", article.Title, "kept_tier", incumbent.TierOrDefault())
			}
			continue
		}

		normalized := ""
		if article.OriginType == core.OriginCurated && article.Title != "" {
			normalized = NormalizeTitle(article.Title)
			if idx, sim, ok := findSimilarTitle(article.Title, seenTitles, unique); ok {
				titleDupes++
				incumbent := unique[idx]
				if ChooseBetter(incumbent, article) == article {
					replaceAt(unique, idx, article, canonical, seenURLs, seenTitles)
					logger.Debug("title duplicate replaced", "title", article.Title, "similarity", sim)
				} else {
					logger.Debug("title duplicate dropped", "title", article.Title, "similarity", sim)
				}
				continue
			}
		}

		seenURLs[canonical] = len(unique)
		if normalized != "" {
			seenTitles[normalized] = len(unique)
		}
		unique = append(unique, article)
	}

	logger.Info("deduplication complete",
		"input", len(articles), "output", len(unique),
		"url_duplicates", urlDupes, "title_duplicates", titleDupes)
	return unique
}

// findSimilarTitle scans previously seen curated titles for a fuzzy match.
func findSimilarTitle(title string, seenTitles map[string]int, unique []*core.Article) (int, float64, bool) {
	for _, idx := range seenTitles {
		sim := TitleSimilarity(title, unique[idx].Title)
		if sim >= titleSimilarityThreshold {
			return idx, sim, true
		}
	}
	return 0, 0, false
}

// replaceAt swaps the incumbent at idx for article, rewriting the URL and
// title indexes to point at the replacement.
func replaceAt(unique []*core.Article, idx int, article *core.Article, canonical string, seenURLs, seenTitles map[string]int) {
	incumbent := unique[idx]
	delete(seenURLs, CanonicalizeURL(incumbent.Link))
	seenURLs[canonical] = idx
	if incumbent.OriginType == core.OriginCurated && incumbent.Title != "" {
		delete(seenTitles, NormalizeTitle(incumbent.Title))
	}
	if article.OriginType == core.OriginCurated && article.Title != "" {
		seenTitles[NormalizeTitle(article.Title)] = idx
	}
	unique[idx] = article
}
