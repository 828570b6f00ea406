package enrich

import (
	"context"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/prospector/internal/config"
	"github.com/sells-group/prospector/internal/cost"
	"github.com/sells-group/prospector/internal/model"
	"github.com/sells-group/prospector/pkg/anthropic"
)

// Enricher runs the LLM pre-check and evaluation stages. Calls are strictly
// sequential; the limiters pace the configured fixed delay between calls to
// respect rate limits.
type Enricher struct {
	ai              anthropic.Client
	model           string
	cfg             config.AIConfig
	http            *http.Client
	precheckLimiter *rate.Limiter
	evalLimiter     *rate.Limiter
	costs           *cost.Tracker
}

// New creates an Enricher from the AI config.
func New(ai anthropic.Client, modelID string, cfg config.AIConfig) *Enricher {
	return &Enricher{
		ai:              ai,
		model:           modelID,
		cfg:             cfg,
		http:            &http.Client{Timeout: 10 * time.Second},
		precheckLimiter: pacing(cfg.PrecheckDelayMillis),
		evalLimiter:     pacing(cfg.EvaluationDelayMillis),
		costs: cost.NewTracker(cost.Rate{
			InputPerMTok:  cfg.InputCostPerMTok,
			OutputPerMTok: cfg.OutputCostPerMTok,
		}),
	}
}

// Usage returns the token tally and estimated spend so far.
func (e *Enricher) Usage() cost.Summary {
	return e.costs.Summary()
}

// pacing builds a limiter enforcing one call per delay interval. A zero or
// negative delay disables pacing.
func pacing(delayMillis int) *rate.Limiter {
	if delayMillis <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(time.Duration(delayMillis)*time.Millisecond), 1)
}

// Precheck keeps records the model judges to have reliable business
// information. A call failure drops only that record; the pipeline continues.
func (e *Enricher) Precheck(ctx context.Context, records []*model.BusinessRecord) []*model.BusinessRecord {
	log := zap.L().With(zap.String("stage", "precheck"))
	var passed []*model.BusinessRecord

	for _, rec := range records {
		if ctx.Err() != nil {
			return passed
		}
		if err := e.precheckLimiter.Wait(ctx); err != nil {
			return passed
		}

		prompt := BuildPrecheckPrompt(rec)
		resp, err := e.ai.CreateMessage(ctx, anthropic.MessageRequest{
			Model:     e.model,
			MaxTokens: e.cfg.PrecheckMaxTokens,
			System:    e.cfg.PrecheckSystemRole,
			Messages:  []anthropic.Message{{Role: "user", Content: prompt}},
		})
		if err != nil {
			log.Warn("precheck call failed", zap.String("name", rec.Name), zap.Error(err))
			continue
		}
		e.costs.Record(resp.Usage.InputTokens, resp.Usage.OutputTokens)

		if strings.HasPrefix(strings.ToLower(strings.TrimSpace(resp.Text())), "yes") {
			passed = append(passed, rec)
			log.Debug("passed precheck", zap.String("name", rec.Name))
		} else {
			log.Debug("failed precheck", zap.String("name", rec.Name))
		}
	}

	log.Info("precheck complete", zap.Int("passed", len(passed)), zap.Int("total", len(records)))
	return passed
}

// Evaluate runs the structured assessment over every record. Enrichment is
// best-effort: a failed call or unparseable response leaves the record in
// the output with default fields rather than dropping it.
func (e *Enricher) Evaluate(ctx context.Context, records []*model.BusinessRecord) []*model.BusinessRecord {
	log := zap.L().With(zap.String("stage", "evaluation"))
	var enriched []*model.BusinessRecord

	for _, rec := range records {
		if ctx.Err() != nil {
			return enriched
		}
		if err := e.evalLimiter.Wait(ctx); err != nil {
			return enriched
		}

		var excerpt string
		if rec.Website != "" {
			text, err := FetchSiteExcerpt(ctx, e.http, rec.Website, e.cfg.SiteExcerptMaxChars)
			if err != nil {
				log.Debug("site excerpt unavailable", zap.String("website", rec.Website), zap.Error(err))
			} else {
				excerpt = text
			}
		}

		prompt := BuildEvaluationPrompt(rec, excerpt)
		resp, err := e.ai.CreateMessage(ctx, anthropic.MessageRequest{
			Model:     e.model,
			MaxTokens: e.cfg.EvaluationMaxTokens,
			System:    e.cfg.EvaluationSystemRole,
			Messages:  []anthropic.Message{{Role: "user", Content: prompt}},
		})
		if err != nil {
			log.Warn("evaluation call failed", zap.String("name", rec.Name), zap.Error(err))
			rec.AIEvaluation = "Error: " + err.Error()
			rec.AIFitCategory = model.AIFitUnknown
			rec.AIReasoning = "Evaluation failed"
			rec.AIPeopleAssessment = "Not available"
			rec.AIRevenueAssessment = "Unknown"
			enriched = append(enriched, rec)
			continue
		}
		e.costs.Record(resp.Usage.InputTokens, resp.Usage.OutputTokens)

		text := resp.Text()
		rec.AIEvaluation = text
		fields, _ := ParseEvaluation(text)
		fields.Apply(rec)
		enriched = append(enriched, rec)

		log.Debug("evaluated",
			zap.String("name", rec.Name),
			zap.String("fit", string(rec.AIFitCategory)),
			zap.String("revenue", rec.AIRevenueAssessment),
		)
	}

	log.Info("evaluation complete", zap.Int("evaluated", len(enriched)))
	return enriched
}
