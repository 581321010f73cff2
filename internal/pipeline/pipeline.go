// Package pipeline drives a full daily run: fetch, sample, evaluate,
// select, render, report.
package pipeline

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"dailynews/internal/config"
	"dailynews/internal/core"
	"dailynews/internal/fetch"
	"dailynews/internal/github"
	"dailynews/internal/llm"
	"dailynews/internal/logger"
	"dailynews/internal/metrics"
	"dailynews/internal/relevance"
	"dailynews/internal/render"
	"dailynews/internal/sampling"
	"dailynews/internal/selection"
	"dailynews/internal/sources"
)

// Pipeline wires the stages together for one run.
type Pipeline struct {
	cfg       *config.Config
	registry  *sources.Registry
	collector *metrics.Collector
	scorer    *relevance.Scorer
	fetcher   *fetch.Dispatcher
	sampler   *sampling.Sampler
	evaluator *llm.Evaluator
	renderer  *render.Renderer
	loc       *time.Location
	now       func() time.Time
}

// New builds a pipeline from the loaded configuration. Registry or
// provider problems are fatal.
func New(ctx context.Context, cfg *config.Config) (*Pipeline, error) {
	registry, err := sources.Load(cfg.Sources)
	if err != nil {
		return nil, err
	}

	loc, err := time.LoadLocation("Asia/Seoul")
	if err != nil {
		return nil, fmt.Errorf("failed to load timezone: %w", err)
	}

	provider, err := llm.NewProvider(ctx)
	if err != nil {
		return nil, err
	}

	scorer := relevance.LoadScorer(cfg.FocusFile, cfg.NoFocusFile)
	client := github.NewClient(cfg.GitHubCacheDir)

	return &Pipeline{
		cfg:       cfg,
		registry:  registry,
		collector: metrics.NewCollector(),
		scorer:    scorer,
		fetcher:   fetch.NewDispatcher(scorer, client, loc),
		sampler:   sampling.New(),
		evaluator: llm.NewEvaluator(provider, cfg.SummaryLanguage),
		renderer:  render.New(cfg.BlogDir, loc),
		loc:       loc,
		now:       time.Now,
	}, nil
}

// Run executes one daily cycle end to end. A single source's failure
// never fails the run.
func (p *Pipeline) Run(ctx context.Context) error {
	start := p.now()
	today := start.In(p.loc)
	runID := uuid.NewString()
	logger.Info("pipeline starting", "run_id", runID, "date", today.Format("2006-01-02"))

	for _, src := range p.registry.Items {
		p.collector.Register(src)
	}

	articles := p.ingest(ctx, today)
	logger.Info("ingestion complete", "sources", len(p.registry.Items), "articles", len(articles))

	sampled := p.sampler.Sample(articles)
	for _, a := range sampled {
		p.collector.AddCandidate(a.FeedTitle())
	}

	p.evaluate(ctx, sampled)
	scored := p.score(sampled, start)

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].FinalScore() > scored[j].FinalScore()
	})

	unique := selection.Deduplicate(scored, &p.registry.Global)

	target := p.registry.DailyTarget(p.cfg.MaxArticles)
	slate := selection.EnforceQuotas(unique, p.registry.Global.Selection.DiversityQuotas, target)

	for rank, a := range slate {
		p.collector.RecordRelease(a.FeedTitle(), a.FinalScore(), rank+1)
	}

	if _, err := p.renderer.Render(slate, start); err != nil {
		return err
	}
	if err := p.collector.Save(p.cfg.MetricsPath, start); err != nil {
		return err
	}

	logger.Info("pipeline complete", "run_id", runID, "slate", len(slate), "elapsed", p.now().Sub(start).String())
	return nil
}

// ingest fetches every source, or replays the same-day cache when
// enabled. Fetch failures are soft.
func (p *Pipeline) ingest(ctx context.Context, today time.Time) []*core.Article {
	if p.cfg.CacheEnabled {
		if cached, ok := FindValidCache(p.cfg.DraftDir, today); ok {
			p.recordFindCounts(cached)
			return cached
		}
	}

	var all []*core.Article
	for _, src := range p.registry.Items {
		fetched, err := p.fetcher.Fetch(ctx, src)
		if err != nil {
			logger.Warn("source fetch failed", "source", src.Title, "type", src.Type, "error", err.Error())
			continue
		}
		p.collector.SetFindCount(src.Title, len(fetched))
		all = append(all, fetched...)
	}

	p.fetcher.TransformTelegram(ctx, all)

	if p.cfg.CacheEnabled {
		SaveCache(p.cfg.DraftDir, today, all)
	}
	return all
}

// recordFindCounts reconstructs per-source find counts from a cache replay.
func (p *Pipeline) recordFindCounts(articles []*core.Article) {
	counts := make(map[string]int)
	for _, a := range articles {
		counts[a.FeedTitle()]++
	}
	for title, n := range counts {
		p.collector.SetFindCount(title, n)
	}
}

// evaluate batches the sampled candidates per source group, in sorted
// group order so runs are reproducible.
func (p *Pipeline) evaluate(ctx context.Context, sampled []*core.Article) {
	groups := make(map[string][]*core.Article)
	for _, a := range sampled {
		groups[a.FeedTitle()] = append(groups[a.FeedTitle()], a)
	}

	titles := make([]string, 0, len(groups))
	for title := range groups {
		titles = append(titles, title)
	}
	sort.Strings(titles)

	for _, title := range titles {
		p.evaluator.EvaluateGroup(ctx, groups[title])
	}
}

// score attaches final scores and applies the hard drop rules. Articles
// the evaluator skipped are discarded.
func (p *Pipeline) score(sampled []*core.Article, now time.Time) []*core.Article {
	global := &p.registry.Global

	var kept []*core.Article
	for _, a := range sampled {
		if a.Evaluate == nil || a.Evaluate.Link != a.Link {
			continue
		}
		a.Evaluate.Score = selection.Score(a.Evaluate, a.Date, global, now)

		if reason := selection.DropReason(a.Evaluate, global); reason != "" {
			logger.Info("article dropped", "reason", reason, "title", a.Evaluate.Title)
			continue
		}
		kept = append(kept, a)
	}
	return kept
}
