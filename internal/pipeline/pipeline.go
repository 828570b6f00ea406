// Package pipeline orchestrates the funnel stages into the refined and
// comprehensive prospecting flows. Execution is strictly sequential; every
// collaborator failure is contained at the record or query it affects.
package pipeline

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/prospector/internal/config"
	"github.com/sells-group/prospector/internal/cost"
	"github.com/sells-group/prospector/internal/enrich"
	"github.com/sells-group/prospector/internal/export"
	"github.com/sells-group/prospector/internal/funnel"
	"github.com/sells-group/prospector/internal/model"
	"github.com/sells-group/prospector/internal/search"
	"github.com/sells-group/prospector/internal/store"
)

// Options tunes a single pipeline run.
type Options struct {
	TopN            int  // refined flow: website gate runs on the top N ranked records
	SkipWebsiteGate bool // refined flow: skip the website requirement filter
}

// Result is the outcome of one pipeline run.
type Result struct {
	RunID      string                  `json:"run_id,omitempty"`
	OutputFile string                  `json:"output_file,omitempty"`
	Discovered int                     `json:"discovered"`
	Exported   int                     `json:"exported"`
	Usage      cost.Summary            `json:"usage"`
	Records    []*model.BusinessRecord `json:"records"`
}

// Pipeline wires the funnel stages to their collaborators.
type Pipeline struct {
	cfg      *config.Config
	searcher *search.Searcher
	enricher *enrich.Enricher
	gate     *funnel.WebsiteGate
	store    store.Store
}

// New creates a Pipeline. The store may be nil, in which case run history is
// not persisted.
func New(cfg *config.Config, searcher *search.Searcher, enricher *enrich.Enricher, gate *funnel.WebsiteGate, st store.Store) *Pipeline {
	return &Pipeline{
		cfg:      cfg,
		searcher: searcher,
		enricher: enricher,
		gate:     gate,
		store:    st,
	}
}

// RunRefined executes the refined flow: optimized discovery, noise filter,
// LLM pre-check and evaluation, ranking, the website requirement gate over
// the top candidates, ICP scoring and fit categorization, then export.
// A starved stage logs and returns the empty result rather than an error.
func (p *Pipeline) RunRefined(ctx context.Context, opts Options) (*Result, error) {
	log := zap.L().With(zap.String("pipeline", "refined"))
	log.Info("pipeline starting")

	core, peripheral := p.searcher.SearchOptimized(ctx)
	records := append(core, peripheral...)
	if len(records) > p.cfg.Search.MaxResults {
		records = records[:p.cfg.Search.MaxResults]
	}
	discovered := len(records)
	if discovered == 0 {
		log.Warn("no companies found in initial search")
		return &Result{}, nil
	}

	records, _ = funnel.FilterNoise(records,
		p.cfg.Filters.ExcludedTypes, p.cfg.Filters.NegativeKeywords, p.cfg.Filters.MinReviewCount)
	if len(records) == 0 {
		log.Warn("no companies passed noise filtering")
		return &Result{Discovered: discovered}, nil
	}

	records = p.enricher.Precheck(ctx, records)
	if len(records) == 0 {
		log.Warn("no companies passed pre-check")
		return &Result{Discovered: discovered}, nil
	}

	records = p.enricher.Evaluate(ctx, records)
	if len(records) == 0 {
		log.Warn("no companies were evaluated")
		return &Result{Discovered: discovered}, nil
	}

	// Rank by the model's fit judgment and take the top slice for the
	// website gate; detail lookups are the expensive step.
	funnel.Rank(records)
	topN := opts.TopN
	if topN <= 0 {
		topN = 20
	}
	if len(records) > topN {
		records = records[:topN]
	}

	if !opts.SkipWebsiteGate {
		withWebsites, _ := p.gate.Filter(ctx, records)
		if len(withWebsites) > 0 {
			records = withWebsites
		} else {
			// The gate starving is not fatal: fall back to the ranked
			// candidates without website confirmation.
			log.Warn("no companies passed website validation, keeping evaluated companies")
		}
	}

	profile := funnel.WebsiteRequiredProfile(p.cfg.Scoring, p.cfg.USStates)
	for _, rec := range records {
		funnel.Score(rec, profile)
	}
	high, medium, low := funnel.Categorize(records, p.cfg.Scoring.FitThresholds)
	final := make([]*model.BusinessRecord, 0, len(high)+len(medium)+len(low))
	final = append(final, high...)
	final = append(final, medium...)
	final = append(final, low...)
	if len(final) == 0 {
		log.Warn("no companies reached a fit category")
		return &Result{Discovered: discovered}, nil
	}

	return p.finish(ctx, "refined", discovered, final)
}

// RunComprehensive executes the legacy flow: flat discovery sweep, noise
// filter, the legacy ICP admission gate, LLM evaluation, then export.
func (p *Pipeline) RunComprehensive(ctx context.Context) (*Result, error) {
	log := zap.L().With(zap.String("pipeline", "comprehensive"))
	log.Info("pipeline starting")

	records := p.searcher.SearchComprehensive(ctx)
	discovered := len(records)
	if discovered == 0 {
		log.Warn("no companies found in initial search")
		return &Result{}, nil
	}

	records, _ = funnel.FilterNoise(records,
		p.cfg.Filters.ExcludedTypes, p.cfg.Filters.NegativeKeywords, p.cfg.Filters.MinReviewCount)
	if len(records) == 0 {
		log.Warn("no companies passed noise filtering")
		return &Result{Discovered: discovered}, nil
	}

	records = funnel.Admit(records, funnel.LegacyProfile(p.cfg.Scoring, p.cfg.USStates))
	if len(records) == 0 {
		log.Warn("no companies met the minimum ICP score")
		return &Result{Discovered: discovered}, nil
	}

	records = p.enricher.Evaluate(ctx, records)
	if len(records) == 0 {
		log.Warn("no companies were evaluated")
		return &Result{Discovered: discovered}, nil
	}

	return p.finish(ctx, "comprehensive", discovered, records)
}

// finish exports the final list and records the run.
func (p *Pipeline) finish(ctx context.Context, mode string, discovered int, records []*model.BusinessRecord) (*Result, error) {
	outputFile, err := export.Save(records, p.cfg.Output, time.Now())
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: export")
	}

	usage := p.enricher.Usage()
	result := &Result{
		OutputFile: outputFile,
		Discovered: discovered,
		Exported:   len(records),
		Usage:      usage,
		Records:    records,
	}

	if p.store != nil {
		runID, err := p.store.SaveRun(ctx, store.Run{
			Mode:       mode,
			Status:     "completed",
			Discovered: discovered,
			Exported:   len(records),
			OutputFile: outputFile,
		}, records)
		if err != nil {
			zap.L().Warn("pipeline: save run failed", zap.Error(err))
		} else {
			result.RunID = runID
		}
	}

	zap.L().Info("pipeline complete",
		zap.String("mode", mode),
		zap.Int("discovered", discovered),
		zap.Int("exported", len(records)),
		zap.String("output_file", outputFile),
		zap.Int("llm_calls", usage.Calls),
		zap.Float64("estimated_usd", usage.EstimatedUSD),
	)
	return result, nil
}
