package funnel

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/prospector/internal/model"
	"github.com/sells-group/prospector/pkg/places"
)

// maxWebsiteBytes limits how much of a candidate site is downloaded for the
// business-indicator check.
const maxWebsiteBytes = 512 * 1024

// WebsiteGate keeps only records with a reachable, business-relevant website.
type WebsiteGate struct {
	places     places.Client
	http       *http.Client
	indicators []string
	delay      time.Duration
}

// NewWebsiteGate creates a website requirement gate. timeout bounds each
// site fetch; delay paces the detail lookups.
func NewWebsiteGate(pc places.Client, indicators []string, timeout, delay time.Duration) *WebsiteGate {
	return &WebsiteGate{
		places:     pc,
		http:       &http.Client{Timeout: timeout},
		indicators: indicators,
		delay:      delay,
	}
}

// Filter keeps a record only when its place ID is present, the detail lookup
// succeeds, the website field is non-empty, and the site validates. Every
// failure mode counts as an exclusion; nothing propagates past this stage.
func (g *WebsiteGate) Filter(ctx context.Context, records []*model.BusinessRecord) (kept []*model.BusinessRecord, excluded int) {
	log := zap.L().With(zap.String("stage", "website_gate"))

	for _, rec := range records {
		if ctx.Err() != nil {
			return kept, excluded
		}

		if rec.PlaceID == "" {
			excluded++
			continue
		}

		details, err := g.places.Details(ctx, rec.PlaceID)
		if err != nil {
			log.Debug("detail lookup failed", zap.String("name", rec.Name), zap.Error(err))
			excluded++
			continue
		}

		if details.Website == "" {
			log.Debug("no website", zap.String("name", rec.Name))
			excluded++
			continue
		}

		if !g.ValidateWebsite(ctx, details.Website) {
			log.Debug("invalid website", zap.String("name", rec.Name), zap.String("website", details.Website))
			excluded++
			continue
		}

		rec.Website = details.Website
		rec.Phone = details.FormattedPhoneNumber
		rec.WebsiteValid = true
		kept = append(kept, rec)
		log.Debug("website validated", zap.String("name", rec.Name), zap.String("website", details.Website))

		if g.delay > 0 {
			time.Sleep(g.delay)
		}
	}

	log.Info("website gate complete", zap.Int("kept", len(kept)), zap.Int("excluded", excluded))
	return kept, excluded
}

// ValidateWebsite fetches the site and checks the body contains at least one
// business indicator term. Network errors, timeouts, and non-200 statuses
// all read as invalid. Matching is case-insensitive substring against the
// configured term list.
func (g *WebsiteGate) ValidateWebsite(ctx context.Context, website string) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, website, nil)
	if err != nil {
		return false
	}

	resp, err := g.http.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return false
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxWebsiteBytes))
	if err != nil {
		return false
	}

	content := strings.ToLower(string(body))
	for _, indicator := range g.indicators {
		if indicator != "" && strings.Contains(content, strings.ToLower(indicator)) {
			return true
		}
	}
	return false
}
