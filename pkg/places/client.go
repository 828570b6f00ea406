// Package places implements a client for the Google Maps geocoding and
// Places APIs, covering the three lookups the discovery funnel needs.
package places

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/prospector/internal/resilience"
)

const defaultBaseURL = "https://maps.googleapis.com/maps/api"

// Client performs places API operations.
type Client interface {
	Geocode(ctx context.Context, address string) (lat, lng float64, err error)
	NearbySearch(ctx context.Context, lat, lng float64, keyword string, radius int) ([]Place, error)
	Details(ctx context.Context, placeID string) (*PlaceDetails, error)
}

// Place is one business returned by nearby search.
type Place struct {
	PlaceID          string   `json:"place_id"`
	Name             string   `json:"name"`
	Vicinity         string   `json:"vicinity"`
	Types            []string `json:"types"`
	Rating           *float64 `json:"rating,omitempty"`
	UserRatingsTotal *int     `json:"user_ratings_total,omitempty"`
	BusinessStatus   string   `json:"business_status,omitempty"`
}

// PlaceDetails is the detail lookup result for a single place.
type PlaceDetails struct {
	Website              string   `json:"website"`
	FormattedPhoneNumber string   `json:"formatted_phone_number"`
	Types                []string `json:"types"`
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		c.baseURL = url
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithRetry overrides the default retry behavior.
func WithRetry(cfg resilience.Config) Option {
	return func(c *httpClient) {
		c.retry = cfg
	}
}

type httpClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
	retry   resilience.Config
}

// NewClient creates a places API client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: 10 * time.Second,
		},
		retry: resilience.DefaultConfig(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

type geocodeResponse struct {
	Status  string `json:"status"`
	Results []struct {
		Geometry struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
	} `json:"results"`
}

func (c *httpClient) Geocode(ctx context.Context, address string) (float64, float64, error) {
	params := url.Values{
		"address": {address},
		"key":     {c.apiKey},
	}

	var result geocodeResponse
	if err := c.getJSON(ctx, "/geocode/json", params, &result); err != nil {
		return 0, 0, err
	}

	if result.Status != "OK" || len(result.Results) == 0 {
		return 0, 0, eris.Errorf("places: geocode %q returned status %s", address, result.Status)
	}

	loc := result.Results[0].Geometry.Location
	return loc.Lat, loc.Lng, nil
}

type nearbyResponse struct {
	Status  string  `json:"status"`
	Results []Place `json:"results"`
}

func (c *httpClient) NearbySearch(ctx context.Context, lat, lng float64, keyword string, radius int) ([]Place, error) {
	params := url.Values{
		"location": {strconv.FormatFloat(lat, 'f', -1, 64) + "," + strconv.FormatFloat(lng, 'f', -1, 64)},
		"radius":   {strconv.Itoa(radius)},
		"type":     {"establishment"},
		"keyword":  {keyword},
		"key":      {c.apiKey},
	}

	var result nearbyResponse
	if err := c.getJSON(ctx, "/place/nearbysearch/json", params, &result); err != nil {
		return nil, err
	}

	// ZERO_RESULTS is a successful empty search, not an error.
	if result.Status == "ZERO_RESULTS" {
		return nil, nil
	}
	if result.Status != "OK" {
		return nil, eris.Errorf("places: nearby search %q returned status %s", keyword, result.Status)
	}

	return result.Results, nil
}

type detailsResponse struct {
	Status string       `json:"status"`
	Result PlaceDetails `json:"result"`
}

func (c *httpClient) Details(ctx context.Context, placeID string) (*PlaceDetails, error) {
	params := url.Values{
		"place_id": {placeID},
		"fields":   {"website,formatted_phone_number,types"},
		"key":      {c.apiKey},
	}

	var result detailsResponse
	if err := c.getJSON(ctx, "/place/details/json", params, &result); err != nil {
		return nil, err
	}

	if result.Status != "OK" {
		return nil, eris.Errorf("places: details %s returned status %s", placeID, result.Status)
	}

	return &result.Result, nil
}

// transientError marks a failure worth another attempt: connection errors
// and the retryable HTTP statuses.
type transientError struct {
	err error
}

func (t transientError) Error() string { return t.err.Error() }
func (t transientError) Unwrap() error { return t.err }

func isTransient(err error) bool {
	var t transientError
	return errors.As(err, &t)
}

func (c *httpClient) getJSON(ctx context.Context, path string, params url.Values, out any) error {
	return resilience.Do(ctx, c.retry, isTransient, func(ctx context.Context) error {
		return c.fetchJSON(ctx, path, params, out)
	})
}

func (c *httpClient) fetchJSON(ctx context.Context, path string, params url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return eris.Wrap(err, "places: create request")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return transientError{eris.Wrap(err, "places: send request")}
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return transientError{eris.Wrap(err, "places: read response")}
	}

	if resp.StatusCode != http.StatusOK {
		statusErr := eris.Errorf("places: unexpected status %d: %s", resp.StatusCode, string(body))
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			return transientError{statusErr}
		}
		return statusErr
	}

	if err := json.Unmarshal(body, out); err != nil {
		return eris.Wrap(err, "places: unmarshal response")
	}

	return nil
}
