package llm

import (
	"context"
	"fmt"
	"strings"

	"time"

	jsoniter "github.com/json-iterator/go"
	"golang.org/x/time/rate"

	"dailynews/internal/core"
	"dailynews/internal/logger"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// requestGap is the minimum spacing between provider calls.
const requestGap = 2 * time.Second

// Evaluator batches articles per source group through the provider.
type Evaluator struct {
	provider Provider
	limiter  *rate.Limiter
	prompt   string
}

// NewEvaluator builds an evaluator with the rate gap mandated by the
// provider's free tier.
func NewEvaluator(provider Provider, language string) *Evaluator {
	return &Evaluator{
		provider: provider,
		limiter:  rate.NewLimiter(rate.Every(requestGap), 1),
		prompt:   EvaluationPrompt(language),
	}
}

// EvaluateGroup submits one source group and attaches evaluations to the
// matching articles by link. Parse failures drop individual elements,
// provider failures drop the whole group; both are soft.
func (e *Evaluator) EvaluateGroup(ctx context.Context, group []*core.Article) {
	if len(group) == 0 {
		return
	}
	if err := e.limiter.Wait(ctx); err != nil {
		return
	}

	var content strings.Builder
	for _, a := range group {
		fmt.Fprintf(&content, "```link: %s, content:%s```.\n", a.Link, a.Title+"\n"+a.Summary)
	}

	raw, err := e.provider.Request(ctx, e.prompt, content.String())
	if err != nil {
		logger.Warn("evaluation request failed", "group_size", len(group), "error", err.Error())
		return
	}

	evals := ParseEvaluations(raw)
	byLink := make(map[string]*core.Evaluation, len(evals))
	for _, ev := range evals {
		byLink[ev.Link] = ev
	}

	matched := 0
	for _, a := range group {
		if ev, ok := byLink[a.Link]; ok {
			a.Evaluate = ev
			matched++
		}
	}
	logger.Info("group evaluated", "group_size", len(group), "parsed", len(evals), "matched", matched)
}

// ParseEvaluations decodes the model output: fences stripped first, then
// an array, then a single object. Elements missing title or link are
// discarded; emoji are stripped from title and summary.
func ParseEvaluations(raw string) []*core.Evaluation {
	body := stripFences(raw)
	if body == "" {
		return nil
	}

	var evals []*core.Evaluation
	if err := json.Unmarshal([]byte(body), &evals); err != nil {
		var single core.Evaluation
		if err := json.Unmarshal([]byte(body), &single); err != nil {
			logger.Warn("unparseable evaluation response", "error", err.Error())
			return nil
		}
		evals = []*core.Evaluation{&single}
	}

	var kept []*core.Evaluation
	for _, ev := range evals {
		if ev == nil || ev.Title == "" || ev.Link == "" {
			continue
		}
		ev.Title = StripEmoji(ev.Title)
		ev.Summary = StripEmoji(ev.Summary)
		kept = append(kept, ev)
	}
	return kept
}

// stripFences removes a leading ```json (or bare ```) fence and the
// trailing fence, tolerating surrounding prose.
func stripFences(raw string) string {
	body := strings.TrimSpace(raw)
	if start := strings.Index(body, "```"); start >= 0 {
		body = body[start+3:]
		body = strings.TrimPrefix(body, "json")
		if end := strings.Index(body, "```"); end >= 0 {
			body = body[:end]
		}
	}
	return strings.TrimSpace(body)
}
