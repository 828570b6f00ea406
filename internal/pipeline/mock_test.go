package pipeline

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/sells-group/prospector/pkg/anthropic"
	"github.com/sells-group/prospector/pkg/places"
)

// --- Places mock ---

type mockPlacesClient struct {
	mock.Mock
}

func (m *mockPlacesClient) Geocode(ctx context.Context, address string) (float64, float64, error) {
	args := m.Called(ctx, address)
	return args.Get(0).(float64), args.Get(1).(float64), args.Error(2)
}

func (m *mockPlacesClient) NearbySearch(ctx context.Context, lat, lng float64, keyword string, radius int) ([]places.Place, error) {
	args := m.Called(ctx, lat, lng, keyword, radius)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]places.Place), args.Error(1)
}

func (m *mockPlacesClient) Details(ctx context.Context, placeID string) (*places.PlaceDetails, error) {
	args := m.Called(ctx, placeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*places.PlaceDetails), args.Error(1)
}

// --- Anthropic mock ---

type mockAnthropicClient struct {
	mock.Mock
}

func (m *mockAnthropicClient) CreateMessage(ctx context.Context, req anthropic.MessageRequest) (*anthropic.MessageResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*anthropic.MessageResponse), args.Error(1)
}

func textResponse(text string) *anthropic.MessageResponse {
	return &anthropic.MessageResponse{
		Content: []anthropic.ContentBlock{{Type: "text", Text: text}},
	}
}
