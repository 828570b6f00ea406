// Package search drives candidate discovery: it turns (city, keyword) pairs
// into deduplicated BusinessRecords via the places API.
package search

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/prospector/internal/config"
	"github.com/sells-group/prospector/internal/model"
	"github.com/sells-group/prospector/pkg/places"
)

// Searcher owns the discovery state for a single pipeline run. The seen set
// is scoped to the Searcher, never shared across runs.
type Searcher struct {
	places   places.Client
	cfg      config.SearchConfig
	usStates map[string]bool
	seen     map[string]struct{}
}

// New creates a Searcher with a fresh dedup set.
func New(pc places.Client, cfg config.SearchConfig, usStates []string) *Searcher {
	states := make(map[string]bool, len(usStates))
	for _, s := range usStates {
		states[s] = true
	}
	return &Searcher{
		places:   pc,
		cfg:      cfg,
		usStates: states,
		seen:     make(map[string]struct{}),
	}
}

// SearchCompanies geocodes the city and fetches nearby businesses for the
// keyword. Geocode or search failures log and return an empty list; no error
// escapes a single query. Results already seen this run are skipped.
func (s *Searcher) SearchCompanies(ctx context.Context, city, keyword string, radius int) []*model.BusinessRecord {
	log := zap.L().With(zap.String("city", city), zap.String("keyword", keyword))

	lat, lng, err := s.places.Geocode(ctx, city)
	if err != nil {
		log.Warn("geocode failed", zap.Error(err))
		return nil
	}

	results, err := s.places.NearbySearch(ctx, lat, lng, keyword, radius)
	if err != nil {
		log.Warn("nearby search failed", zap.Error(err))
		return nil
	}

	var records []*model.BusinessRecord
	for _, p := range results {
		if p.PlaceID == "" {
			continue
		}
		if _, ok := s.seen[p.PlaceID]; ok {
			continue
		}
		s.seen[p.PlaceID] = struct{}{}

		records = append(records, &model.BusinessRecord{
			PlaceID:      p.PlaceID,
			Name:         p.Name,
			Address:      p.Vicinity,
			City:         city,
			State:        s.ExtractState(p.Vicinity),
			CategoryTags: strings.Join(p.Types, ", "),
			KeywordUsed:  keyword,
			Rating:       p.Rating,
			ReviewCount:  p.UserRatingsTotal,
		})
	}

	log.Debug("search complete", zap.Int("new_records", len(records)))
	return records
}

// ExtractState scans the uppercased address tokens for a known state code.
// Returns "" when none match.
func (s *Searcher) ExtractState(address string) string {
	if address == "" {
		return ""
	}
	for _, word := range strings.Fields(strings.ToUpper(address)) {
		word = strings.Trim(word, ",.")
		if s.usStates[word] {
			return word
		}
	}
	return ""
}

// SearchOptimized runs the refined discovery pass: tier-1 cities against the
// core ICP keywords at the wide radius, then tier-2 cities against the
// peripheral keywords at the tight radius. It caps the combined output at
// MaxResults, cutting over to the peripheral pass only if the core pass
// leaves room.
func (s *Searcher) SearchOptimized(ctx context.Context) (core, peripheral []*model.BusinessRecord) {
	log := zap.L().With(zap.String("stage", "discovery"))
	max := s.cfg.MaxResults

	log.Info("core ICP searches starting",
		zap.Int("cities", len(s.cfg.Tier1Cities)),
		zap.Int("keywords", len(s.cfg.CoreKeywords)),
	)
	for _, city := range s.cfg.Tier1Cities {
		for _, keyword := range s.cfg.CoreKeywords {
			if ctx.Err() != nil {
				return core, peripheral
			}
			found := s.SearchCompanies(ctx, city, keyword, s.cfg.Tier1Radius)
			core = append(core, found...)
			if len(core) >= max {
				log.Info("core search hit cap", zap.Int("results", len(core)))
				return core[:max], nil
			}
		}
	}
	log.Info("core searches complete", zap.Int("results", len(core)))

	log.Info("peripheral searches starting",
		zap.Int("cities", len(s.cfg.Tier2Cities)),
		zap.Int("keywords", len(s.cfg.PeripheralKeywords)),
	)
	for _, city := range s.cfg.Tier2Cities {
		for _, keyword := range s.cfg.PeripheralKeywords {
			if ctx.Err() != nil {
				return core, peripheral
			}
			found := s.SearchCompanies(ctx, city, keyword, s.cfg.Tier2Radius)
			peripheral = append(peripheral, found...)
			if len(core)+len(peripheral) >= max {
				remaining := max - len(core)
				if remaining < 0 {
					remaining = 0
				}
				log.Info("peripheral search hit cap", zap.Int("results", len(peripheral)))
				return core, peripheral[:remaining]
			}
		}
	}
	log.Info("peripheral searches complete", zap.Int("results", len(peripheral)))

	return core, peripheral
}

// SearchComprehensive runs the legacy flat sweep over the comprehensive city
// and keyword lists with a fixed delay between queries, stopping once
// MaxResults records have accumulated.
func (s *Searcher) SearchComprehensive(ctx context.Context) []*model.BusinessRecord {
	log := zap.L().With(zap.String("stage", "discovery"))
	delay := time.Duration(s.cfg.DelayMillis) * time.Millisecond

	total := len(s.cfg.ComprehensiveCities) * len(s.cfg.ComprehensiveKeywords)
	log.Info("comprehensive search starting", zap.Int("total_searches", total))

	var all []*model.BusinessRecord
	for _, city := range s.cfg.ComprehensiveCities {
		for _, keyword := range s.cfg.ComprehensiveKeywords {
			if ctx.Err() != nil {
				return all
			}
			found := s.SearchCompanies(ctx, city, keyword, s.cfg.Tier1Radius)
			all = append(all, found...)

			if len(all) >= s.cfg.MaxResults {
				log.Info("comprehensive search hit cap", zap.Int("results", len(all)))
				return all
			}
			if delay > 0 {
				time.Sleep(delay)
			}
		}
	}

	log.Info("comprehensive search complete", zap.Int("results", len(all)))
	return all
}
