package pipeline

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/prospector/internal/config"
	"github.com/sells-group/prospector/internal/enrich"
	"github.com/sells-group/prospector/internal/funnel"
	"github.com/sells-group/prospector/internal/model"
	"github.com/sells-group/prospector/internal/search"
	"github.com/sells-group/prospector/internal/store"
	"github.com/sells-group/prospector/pkg/anthropic"
	"github.com/sells-group/prospector/pkg/places"
)

func floatPtr(f float64) *float64 { return &f }
func intPtr(n int) *int           { return &n }

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Search: config.SearchConfig{
			MaxResults:            10,
			Tier1Radius:           50000,
			Tier2Radius:           25000,
			Tier1Cities:           []string{"Austin, TX"},
			CoreKeywords:          []string{"medical device"},
			ComprehensiveCities:   []string{"Austin, TX"},
			ComprehensiveKeywords: []string{"medical device"},
		},
		Filters: config.FilterConfig{
			ExcludedTypes:      []string{"restaurant"},
			NegativeKeywords:   []string{"cafe"},
			MinReviewCount:     3,
			BusinessIndicators: []string{"about us", "company"},
			WebsiteTimeoutSecs: 5,
		},
		Scoring: config.ScoringConfig{
			ICPWeights: config.ICPWeights{
				USLocation: 1, HighRating: 1, GoodRating: 0.5,
				BusinessType: 1, IndustryKeyword: 2, SizeKeyword: 1,
			},
			MinICPScore: 2,
			WebsiteRequiredWeights: config.WebsiteRequiredWeights{
				IndustryMatch: 3, WebsiteRequired: 2, HighRating: 2,
				GoodRating: 1, SizeIndicator: 1, USLocation: 1, BusinessType: 1,
			},
			RatingThresholds: config.RatingThresholds{
				HighRating: 3.5, HighReviews: 10, GoodRating: 3.0, GoodReviews: 5,
			},
			FitThresholds: config.FitThresholds{HighFit: 7, MediumFit: 5, LowFit: 3},
			CoreTerms:     []string{"medical", "manufacturing", "consulting"},
			SizeTerms:     []string{"small", "boutique"},
		},
		AI: config.AIConfig{
			PrecheckMaxTokens:   10,
			EvaluationMaxTokens: 500,
			SiteExcerptMaxChars: 1200,
		},
		Output: config.OutputConfig{
			FilenamePrefix:    "prospecting_results",
			Format:            "csv",
			Dir:               t.TempDir(),
			SortByFitCategory: true,
			SortByRating:      true,
		},
		USStates: []string{"CA", "TX", "NC", "NY"},
	}
}

func newTestPipeline(t *testing.T, cfg *config.Config, pc places.Client, ai anthropic.Client) (*Pipeline, store.Store) {
	t.Helper()

	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.Migrate(context.Background()))

	searcher := search.New(pc, cfg.Search, cfg.USStates)
	enricher := enrich.New(ai, "test-model", cfg.AI)
	gate := funnel.NewWebsiteGate(pc, cfg.Filters.BusinessIndicators,
		time.Duration(cfg.Filters.WebsiteTimeoutSecs)*time.Second, 0)

	return New(cfg, searcher, enricher, gate, st), st
}

func precheckRequest() any {
	return mock.MatchedBy(func(req anthropic.MessageRequest) bool { return req.MaxTokens == 10 })
}

func evaluationRequest() any {
	return mock.MatchedBy(func(req anthropic.MessageRequest) bool { return req.MaxTokens == 500 })
}

func TestRunRefined_EndToEnd(t *testing.T) {
	site := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = fmt.Fprint(w, "<html><body><h1>About Us</h1>Our company builds devices.</body></html>")
	}))
	defer site.Close()

	cfg := testConfig(t)

	pc := new(mockPlacesClient)
	pc.On("Geocode", mock.Anything, "Austin, TX").Return(30.27, -97.74, nil)
	pc.On("NearbySearch", mock.Anything, 30.27, -97.74, "medical device", 50000).Return([]places.Place{
		{
			PlaceID:          "p1",
			Name:             "Acme Medical Devices",
			Vicinity:         "100 Congress Ave, Austin, TX",
			Types:            []string{"establishment", "business"},
			Rating:           floatPtr(4.5),
			UserRatingsTotal: intPtr(20),
		},
		{
			PlaceID:          "p2",
			Name:             "Joe's Cafe", // noise
			Vicinity:         "200 Congress Ave, Austin, TX",
			Types:            []string{"establishment"},
			Rating:           floatPtr(4.9),
			UserRatingsTotal: intPtr(200),
		},
	}, nil)
	pc.On("Details", mock.Anything, "p1").Return(&places.PlaceDetails{
		Website:              site.URL,
		FormattedPhoneNumber: "(512) 555-0101",
	}, nil)

	ai := new(mockAnthropicClient)
	ai.On("CreateMessage", mock.Anything, precheckRequest()).Return(textResponse("Yes"), nil)
	ai.On("CreateMessage", mock.Anything, evaluationRequest()).Return(textResponse(
		"ai_fit_category: High: ICP match\n"+
			"ai_reasoning: Yes: regulated industry\n"+
			"ai_people_assessment: Technical team\n"+
			"ai_revenue_assessment: Mid ($5-50M)"), nil)

	p, _ := newTestPipeline(t, cfg, pc, ai)
	result, err := p.RunRefined(context.Background(), Options{})

	require.NoError(t, err)
	assert.Equal(t, 2, result.Discovered)
	assert.Equal(t, 1, result.Exported)
	assert.NotEmpty(t, result.OutputFile)
	assert.NotEmpty(t, result.RunID)

	require.Len(t, result.Records, 1)
	rec := result.Records[0]
	assert.Equal(t, "Acme Medical Devices", rec.Name)
	assert.Equal(t, site.URL, rec.Website)
	assert.True(t, rec.WebsiteValid)
	assert.Equal(t, model.AIFitHigh, rec.AIFitCategory)
	// industry 3 + website 2 + high rating 2 + US 1 + business type 1
	assert.InDelta(t, 9.0, rec.ICPScore, 0.001)
	assert.Equal(t, model.HighFit, rec.FitCategory)
}

func TestRunRefined_EmptyDiscoveryShortCircuits(t *testing.T) {
	cfg := testConfig(t)

	pc := new(mockPlacesClient)
	pc.On("Geocode", mock.Anything, mock.Anything).Return(30.27, -97.74, nil)
	pc.On("NearbySearch", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return([]places.Place{}, nil)

	ai := new(mockAnthropicClient)

	p, _ := newTestPipeline(t, cfg, pc, ai)
	result, err := p.RunRefined(context.Background(), Options{})

	require.NoError(t, err)
	assert.Equal(t, 0, result.Discovered)
	assert.Empty(t, result.OutputFile)
	ai.AssertNotCalled(t, "CreateMessage", mock.Anything, mock.Anything)
}

func TestRunRefined_WebsiteGateStarvationFallsBack(t *testing.T) {
	cfg := testConfig(t)

	pc := new(mockPlacesClient)
	pc.On("Geocode", mock.Anything, "Austin, TX").Return(30.27, -97.74, nil)
	pc.On("NearbySearch", mock.Anything, 30.27, -97.74, "medical device", 50000).Return([]places.Place{
		{
			PlaceID:          "p1",
			Name:             "Acme Medical Devices",
			Vicinity:         "100 Congress Ave, Austin, TX",
			Types:            []string{"establishment", "business"},
			Rating:           floatPtr(4.5),
			UserRatingsTotal: intPtr(20),
		},
	}, nil)
	pc.On("Details", mock.Anything, "p1").Return(nil, fmt.Errorf("quota exceeded"))

	ai := new(mockAnthropicClient)
	ai.On("CreateMessage", mock.Anything, precheckRequest()).Return(textResponse("Yes"), nil)
	ai.On("CreateMessage", mock.Anything, evaluationRequest()).Return(textResponse(
		"ai_fit_category: High: ICP match"), nil)

	p, _ := newTestPipeline(t, cfg, pc, ai)
	result, err := p.RunRefined(context.Background(), Options{})

	require.NoError(t, err)
	// The gate starving keeps the evaluated candidates; scoring then runs
	// without website points: industry 3 + high rating 2 + US 1 + type 1.
	require.Len(t, result.Records, 1)
	rec := result.Records[0]
	assert.False(t, rec.WebsiteValid)
	assert.InDelta(t, 7.0, rec.ICPScore, 0.001)
	assert.Equal(t, model.HighFit, rec.FitCategory)
}

func TestRunRefined_SkipWebsiteGate(t *testing.T) {
	cfg := testConfig(t)

	pc := new(mockPlacesClient)
	pc.On("Geocode", mock.Anything, "Austin, TX").Return(30.27, -97.74, nil)
	pc.On("NearbySearch", mock.Anything, 30.27, -97.74, "medical device", 50000).Return([]places.Place{
		{
			PlaceID:          "p1",
			Name:             "Acme Medical Devices",
			Vicinity:         "100 Congress Ave, Austin, TX",
			Types:            []string{"establishment"},
			Rating:           floatPtr(4.5),
			UserRatingsTotal: intPtr(20),
		},
	}, nil)

	ai := new(mockAnthropicClient)
	ai.On("CreateMessage", mock.Anything, precheckRequest()).Return(textResponse("Yes"), nil)
	ai.On("CreateMessage", mock.Anything, evaluationRequest()).Return(textResponse(
		"ai_fit_category: High: ICP match"), nil)

	p, _ := newTestPipeline(t, cfg, pc, ai)
	result, err := p.RunRefined(context.Background(), Options{SkipWebsiteGate: true})

	require.NoError(t, err)
	require.Len(t, result.Records, 1)
	pc.AssertNotCalled(t, "Details", mock.Anything, mock.Anything)
}

func TestRunComprehensive_EndToEnd(t *testing.T) {
	cfg := testConfig(t)

	pc := new(mockPlacesClient)
	pc.On("Geocode", mock.Anything, "Austin, TX").Return(30.27, -97.74, nil)
	pc.On("NearbySearch", mock.Anything, 30.27, -97.74, "medical device", 50000).Return([]places.Place{
		{
			PlaceID:          "p1",
			Name:             "Acme Medical Devices",
			Vicinity:         "100 Congress Ave, Austin, TX",
			Types:            []string{"establishment"},
			Rating:           floatPtr(4.5),
			UserRatingsTotal: intPtr(20),
		},
		{
			PlaceID:          "p2",
			Name:             "Pop-Up Vendor", // too few reviews, noise-filtered
			Vicinity:         "200 Congress Ave, Austin, TX",
			Rating:           floatPtr(5.0),
			UserRatingsTotal: intPtr(2),
		},
	}, nil)

	ai := new(mockAnthropicClient)
	ai.On("CreateMessage", mock.Anything, evaluationRequest()).Return(textResponse(
		"ai_fit_category: High: established US manufacturer"), nil)

	p, st := newTestPipeline(t, cfg, pc, ai)
	result, err := p.RunComprehensive(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 2, result.Discovered)
	assert.Equal(t, 1, result.Exported)

	require.Len(t, result.Records, 1)
	rec := result.Records[0]
	assert.Equal(t, "Acme Medical Devices", rec.Name)
	// Legacy admission: US 1 + high rating 1 + establishment 1 + industry 2.
	assert.InDelta(t, 5.0, rec.ICPScore, 0.001)
	assert.Equal(t, model.AIFitHigh, rec.AIFitCategory)

	// The run and its prospects land in the store.
	require.NotEmpty(t, result.RunID)
	saved, err := st.GetProspects(context.Background(), result.RunID)
	require.NoError(t, err)
	require.Len(t, saved, 1)
	assert.Equal(t, "Acme Medical Devices", saved[0].Name)
}

func TestRunComprehensive_NothingAdmitted(t *testing.T) {
	cfg := testConfig(t)
	// A keyword outside the core and size term lists earns no keyword points.
	cfg.Search.ComprehensiveKeywords = []string{"local business"}

	pc := new(mockPlacesClient)
	pc.On("Geocode", mock.Anything, "Austin, TX").Return(30.27, -97.74, nil)
	pc.On("NearbySearch", mock.Anything, 30.27, -97.74, "local business", 50000).Return([]places.Place{
		{
			PlaceID:          "p1",
			Name:             "Unrelated Overseas Ltd",
			Vicinity:         "1 High St, London",
			UserRatingsTotal: intPtr(10),
		},
	}, nil)

	ai := new(mockAnthropicClient)

	p, _ := newTestPipeline(t, cfg, pc, ai)
	result, err := p.RunComprehensive(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, result.Discovered)
	assert.Equal(t, 0, result.Exported)
	ai.AssertNotCalled(t, "CreateMessage", mock.Anything, mock.Anything)
}
