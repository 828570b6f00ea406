package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Places    PlacesConfig    `yaml:"places" mapstructure:"places"`
	Anthropic AnthropicConfig `yaml:"anthropic" mapstructure:"anthropic"`
	Search    SearchConfig    `yaml:"search" mapstructure:"search"`
	Filters   FilterConfig    `yaml:"filters" mapstructure:"filters"`
	Scoring   ScoringConfig   `yaml:"scoring" mapstructure:"scoring"`
	AI        AIConfig        `yaml:"ai" mapstructure:"ai"`
	Output    OutputConfig    `yaml:"output" mapstructure:"output"`
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	USStates  []string        `yaml:"us_states" mapstructure:"us_states"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// PlacesConfig holds places API credentials.
type PlacesConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// AnthropicConfig holds Anthropic API settings.
type AnthropicConfig struct {
	Key   string `yaml:"key" mapstructure:"key"`
	Model string `yaml:"model" mapstructure:"model"`
}

// SearchConfig configures the discovery stage.
type SearchConfig struct {
	MaxResults            int      `yaml:"max_results" mapstructure:"max_results"`
	Tier1Radius           int      `yaml:"tier_1_radius" mapstructure:"tier_1_radius"`
	Tier2Radius           int      `yaml:"tier_2_radius" mapstructure:"tier_2_radius"`
	Tier1Cities           []string `yaml:"tier_1_cities" mapstructure:"tier_1_cities"`
	Tier2Cities           []string `yaml:"tier_2_cities" mapstructure:"tier_2_cities"`
	CoreKeywords          []string `yaml:"core_icp_keywords" mapstructure:"core_icp_keywords"`
	PeripheralKeywords    []string `yaml:"peripheral_keywords" mapstructure:"peripheral_keywords"`
	ComprehensiveCities   []string `yaml:"comprehensive_cities" mapstructure:"comprehensive_cities"`
	ComprehensiveKeywords []string `yaml:"comprehensive_keywords" mapstructure:"comprehensive_keywords"`
	DelayMillis           int      `yaml:"delay_millis" mapstructure:"delay_millis"`
}

// FilterConfig configures the noise filter and website gate.
type FilterConfig struct {
	ExcludedTypes      []string `yaml:"excluded_types" mapstructure:"excluded_types"`
	NegativeKeywords   []string `yaml:"negative_keywords" mapstructure:"negative_keywords"`
	MinReviewCount     int      `yaml:"min_review_count" mapstructure:"min_review_count"`
	BusinessIndicators []string `yaml:"business_indicators" mapstructure:"business_indicators"`
	WebsiteTimeoutSecs int      `yaml:"website_timeout_secs" mapstructure:"website_timeout_secs"`
	WebsiteDelayMillis int      `yaml:"website_delay_millis" mapstructure:"website_delay_millis"`
}

// ScoringConfig configures both ICP scoring profiles and the fit thresholds.
type ScoringConfig struct {
	ICPWeights             ICPWeights             `yaml:"icp_weights" mapstructure:"icp_weights"`
	MinICPScore            float64                `yaml:"min_icp_score" mapstructure:"min_icp_score"`
	WebsiteRequiredWeights WebsiteRequiredWeights `yaml:"website_required_weights" mapstructure:"website_required_weights"`
	RatingThresholds       RatingThresholds       `yaml:"rating_thresholds" mapstructure:"rating_thresholds"`
	FitThresholds          FitThresholds          `yaml:"fit_thresholds" mapstructure:"fit_thresholds"`
	CoreTerms              []string               `yaml:"core_terms" mapstructure:"core_terms"`
	SizeTerms              []string               `yaml:"size_terms" mapstructure:"size_terms"`
}

// ICPWeights are the legacy admission-gate profile weights. GoodRating is
// fractional on purpose; the legacy funnel scores in half points.
type ICPWeights struct {
	USLocation      float64 `yaml:"us_location" mapstructure:"us_location"`
	HighRating      float64 `yaml:"high_rating" mapstructure:"high_rating"`
	GoodRating      float64 `yaml:"good_rating" mapstructure:"good_rating"`
	BusinessType    float64 `yaml:"business_type" mapstructure:"business_type"`
	IndustryKeyword float64 `yaml:"industry_keyword" mapstructure:"industry_keyword"`
	SizeKeyword     float64 `yaml:"size_keyword" mapstructure:"size_keyword"`
}

// WebsiteRequiredWeights are the refined profile weights.
type WebsiteRequiredWeights struct {
	IndustryMatch   float64 `yaml:"industry_match" mapstructure:"industry_match"`
	WebsiteRequired float64 `yaml:"website_required" mapstructure:"website_required"`
	HighRating      float64 `yaml:"high_rating" mapstructure:"high_rating"`
	GoodRating      float64 `yaml:"good_rating" mapstructure:"good_rating"`
	SizeIndicator   float64 `yaml:"size_indicator" mapstructure:"size_indicator"`
	USLocation      float64 `yaml:"us_location" mapstructure:"us_location"`
	BusinessType    float64 `yaml:"business_type" mapstructure:"business_type"`
}

// RatingThresholds are the popularity tier cut points.
type RatingThresholds struct {
	HighRating  float64 `yaml:"high_rating" mapstructure:"high_rating"`
	HighReviews int     `yaml:"high_reviews" mapstructure:"high_reviews"`
	GoodRating  float64 `yaml:"good_rating" mapstructure:"good_rating"`
	GoodReviews int     `yaml:"good_reviews" mapstructure:"good_reviews"`
}

// FitThresholds are the descending fit-category cut points.
type FitThresholds struct {
	HighFit   float64 `yaml:"high_fit" mapstructure:"high_fit"`
	MediumFit float64 `yaml:"medium_fit" mapstructure:"medium_fit"`
	LowFit    float64 `yaml:"low_fit" mapstructure:"low_fit"`
}

// AIConfig configures the LLM enrichment stages.
type AIConfig struct {
	PrecheckDelayMillis   int     `yaml:"precheck_delay_millis" mapstructure:"precheck_delay_millis"`
	EvaluationDelayMillis int     `yaml:"evaluation_delay_millis" mapstructure:"evaluation_delay_millis"`
	PrecheckMaxTokens     int64   `yaml:"precheck_max_tokens" mapstructure:"precheck_max_tokens"`
	EvaluationMaxTokens   int64   `yaml:"evaluation_max_tokens" mapstructure:"evaluation_max_tokens"`
	SiteExcerptMaxChars   int     `yaml:"site_excerpt_max_chars" mapstructure:"site_excerpt_max_chars"`
	PrecheckSystemRole    string  `yaml:"precheck_system_role" mapstructure:"precheck_system_role"`
	EvaluationSystemRole  string  `yaml:"evaluation_system_role" mapstructure:"evaluation_system_role"`
	InputCostPerMTok      float64 `yaml:"input_cost_per_mtok" mapstructure:"input_cost_per_mtok"`
	OutputCostPerMTok     float64 `yaml:"output_cost_per_mtok" mapstructure:"output_cost_per_mtok"`
}

// OutputConfig configures the export stage.
type OutputConfig struct {
	FilenamePrefix    string `yaml:"filename_prefix" mapstructure:"filename_prefix"`
	Format            string `yaml:"format" mapstructure:"format"` // "csv" or "xlsx"
	Dir               string `yaml:"dir" mapstructure:"dir"`
	SortByFitCategory bool   `yaml:"sort_by_fit_category" mapstructure:"sort_by_fit_category"`
	SortByRating      bool   `yaml:"sort_by_rating" mapstructure:"sort_by_rating"`
}

// StoreConfig configures the run-history database.
type StoreConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("PROSPECTOR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("anthropic.model", "claude-haiku-4-5-20251001")

	v.SetDefault("search.max_results", 100)
	v.SetDefault("search.tier_1_radius", 50000)
	v.SetDefault("search.tier_2_radius", 25000)
	v.SetDefault("search.delay_millis", 500)
	v.SetDefault("search.tier_1_cities", []string{
		"New York, NY", "Los Angeles, CA", "Chicago, IL",
		"Houston, TX", "Phoenix, AZ", "Philadelphia, PA",
		"San Antonio, TX", "San Diego, CA", "Dallas, TX", "San Jose, CA",
	})
	v.SetDefault("search.tier_2_cities", []string{
		"Raleigh, NC", "Salt Lake City, UT", "Austin, TX",
		"Pittsburgh, PA", "Kansas City, MO", "Nashville, TN",
		"Charlotte, NC", "Denver, CO", "Portland, OR",
		"Minneapolis, MN", "Cleveland, OH", "Cincinnati, OH",
	})
	v.SetDefault("search.core_icp_keywords", []string{
		"medical device", "manufacturing", "defense contractor",
		"biotech", "biotechnology", "consulting services",
		"professional services", "engineering services",
		"technical services", "aerospace", "healthcare technology",
		"defense systems", "military technology", "precision manufacturing",
	})
	v.SetDefault("search.peripheral_keywords", []string{
		"small business", "boutique", "family-owned",
		"specialized consulting", "IT services", "software development",
		"local business", "startup", "SMB", "independent business",
		"boutique consulting", "specialized services",
	})
	v.SetDefault("search.comprehensive_cities", []string{
		"New York, NY", "Los Angeles, CA", "Chicago, IL", "Houston, TX", "Phoenix, AZ",
		"Philadelphia, PA", "San Antonio, TX", "San Diego, CA", "Dallas, TX", "San Jose, CA",
		"Austin, TX", "Jacksonville, FL", "Fort Worth, TX", "Columbus, OH", "Charlotte, NC",
		"San Francisco, CA", "Indianapolis, IN", "Seattle, WA", "Denver, CO", "Boston, MA",
	})
	v.SetDefault("search.comprehensive_keywords", []string{
		"small business", "startup", "SMB", "local business",
		"medical device", "manufacturing", "defense contractor",
		"biotechnology", "healthcare technology", "aerospace",
		"consulting services", "professional services", "engineering services",
		"software development", "IT services", "management consulting",
	})

	v.SetDefault("filters.excluded_types", []string{
		"restaurant", "bar", "gym", "hotel", "salon",
		"retail", "grocery", "daycare", "real_estate",
		"auto_repair", "spa", "beauty_salon", "car_dealer",
		"gas_station", "pharmacy", "bank", "insurance_agency",
		"lawyer", "dentist", "doctor", "hospital", "clinic",
	})
	v.SetDefault("filters.negative_keywords", []string{
		"restaurant", "cafe", "bar", "gym", "hotel", "motel",
		"salon", "spa", "retail", "store", "shop", "grocery",
		"supermarket", "daycare", "childcare", "real estate",
		"auto repair", "car dealer", "gas station", "pharmacy",
		"bank", "insurance", "law firm", "dental", "medical center",
	})
	v.SetDefault("filters.min_review_count", 3)
	v.SetDefault("filters.business_indicators", []string{
		"about us", "company", "business", "services",
		"contact", "team", "professional", "consulting",
		"manufacturing", "medical", "technology", "solutions",
	})
	v.SetDefault("filters.website_timeout_secs", 10)
	v.SetDefault("filters.website_delay_millis", 100)

	v.SetDefault("scoring.icp_weights.us_location", 1.0)
	v.SetDefault("scoring.icp_weights.high_rating", 1.0)
	v.SetDefault("scoring.icp_weights.good_rating", 0.5)
	v.SetDefault("scoring.icp_weights.business_type", 1.0)
	v.SetDefault("scoring.icp_weights.industry_keyword", 2.0)
	v.SetDefault("scoring.icp_weights.size_keyword", 1.0)
	v.SetDefault("scoring.min_icp_score", 2.0)
	v.SetDefault("scoring.website_required_weights.industry_match", 3.0)
	v.SetDefault("scoring.website_required_weights.website_required", 2.0)
	v.SetDefault("scoring.website_required_weights.high_rating", 2.0)
	v.SetDefault("scoring.website_required_weights.good_rating", 1.0)
	v.SetDefault("scoring.website_required_weights.size_indicator", 1.0)
	v.SetDefault("scoring.website_required_weights.us_location", 1.0)
	v.SetDefault("scoring.website_required_weights.business_type", 1.0)
	v.SetDefault("scoring.rating_thresholds.high_rating", 3.5)
	v.SetDefault("scoring.rating_thresholds.high_reviews", 10)
	v.SetDefault("scoring.rating_thresholds.good_rating", 3.0)
	v.SetDefault("scoring.rating_thresholds.good_reviews", 5)
	v.SetDefault("scoring.fit_thresholds.high_fit", 7.0)
	v.SetDefault("scoring.fit_thresholds.medium_fit", 5.0)
	v.SetDefault("scoring.fit_thresholds.low_fit", 3.0)
	v.SetDefault("scoring.core_terms", []string{
		"medical", "manufacturing", "defense", "consulting", "engineering", "biotech",
	})
	v.SetDefault("scoring.size_terms", []string{
		"small", "boutique", "specialized", "startup", "family-owned",
	})

	v.SetDefault("ai.precheck_delay_millis", 300)
	v.SetDefault("ai.evaluation_delay_millis", 300)
	v.SetDefault("ai.precheck_max_tokens", 10)
	v.SetDefault("ai.evaluation_max_tokens", 500)
	v.SetDefault("ai.site_excerpt_max_chars", 1200)
	v.SetDefault("ai.precheck_system_role",
		"You are a B2B sales expert evaluating business information quality.")
	v.SetDefault("ai.evaluation_system_role",
		"You are a B2B sales expert for regulated industries.")
	v.SetDefault("ai.input_cost_per_mtok", 1.0)
	v.SetDefault("ai.output_cost_per_mtok", 5.0)

	v.SetDefault("output.filename_prefix", "prospecting_results")
	v.SetDefault("output.format", "csv")
	v.SetDefault("output.dir", ".")
	v.SetDefault("output.sort_by_fit_category", true)
	v.SetDefault("output.sort_by_rating", true)

	v.SetDefault("store.path", "prospector.db")

	v.SetDefault("us_states", []string{
		"AL", "AK", "AZ", "AR", "CA", "CO", "CT", "DE", "FL", "GA",
		"HI", "ID", "IL", "IN", "IA", "KS", "KY", "LA", "ME", "MD",
		"MA", "MI", "MN", "MS", "MO", "MT", "NE", "NV", "NH", "NJ",
		"NM", "NY", "NC", "ND", "OH", "OK", "OR", "PA", "RI", "SC",
		"SD", "TN", "TX", "UT", "VT", "VA", "WA", "WV", "WI", "WY", "DC",
	})
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
