package funnel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/prospector/internal/model"
)

func intPtr(n int) *int          { return &n }
func floatPtr(f float64) *float64 { return &f }

func TestFilterNoise_ExcludedType(t *testing.T) {
	records := []*model.BusinessRecord{
		{Name: "Acme Manufacturing", CategoryTags: "establishment, point_of_interest", ReviewCount: intPtr(10)},
		{Name: "Corner Bistro", CategoryTags: "Restaurant, food, establishment", ReviewCount: intPtr(50)},
	}

	kept, excluded := FilterNoise(records, []string{"restaurant"}, nil, 0)

	require.Len(t, kept, 1)
	assert.Equal(t, "Acme Manufacturing", kept[0].Name)
	assert.Equal(t, 1, excluded)
}

func TestFilterNoise_NegativeKeywordInName(t *testing.T) {
	records := []*model.BusinessRecord{
		{Name: "Joe's CAFE", CategoryTags: "establishment", ReviewCount: intPtr(10)},
		{Name: "Joseph Consulting", CategoryTags: "establishment", ReviewCount: intPtr(10)},
	}

	kept, excluded := FilterNoise(records, nil, []string{"cafe"}, 0)

	require.Len(t, kept, 1)
	assert.Equal(t, "Joseph Consulting", kept[0].Name)
	assert.Equal(t, 1, excluded)
}

func TestFilterNoise_MinReviewCount(t *testing.T) {
	records := []*model.BusinessRecord{
		{Name: "Established Co", ReviewCount: intPtr(3)},
		{Name: "Sparse Co", ReviewCount: intPtr(2)},
		{Name: "Unreviewed Co"}, // nil count coerces to 0
	}

	kept, excluded := FilterNoise(records, nil, nil, 3)

	require.Len(t, kept, 1)
	assert.Equal(t, "Established Co", kept[0].Name)
	assert.Equal(t, 2, excluded)
}

func TestFilterNoise_PreservesOrderAndIsIdempotent(t *testing.T) {
	records := []*model.BusinessRecord{
		{Name: "First", ReviewCount: intPtr(5)},
		{Name: "Noise Cafe", ReviewCount: intPtr(5)},
		{Name: "Second", ReviewCount: intPtr(5)},
		{Name: "Third", ReviewCount: intPtr(5)},
	}

	kept, excluded := FilterNoise(records, nil, []string{"cafe"}, 3)
	require.Len(t, kept, 3)
	assert.Equal(t, 1, excluded)
	assert.Equal(t, "First", kept[0].Name)
	assert.Equal(t, "Second", kept[1].Name)
	assert.Equal(t, "Third", kept[2].Name)

	again, excludedAgain := FilterNoise(kept, nil, []string{"cafe"}, 3)
	assert.Equal(t, kept, again)
	assert.Equal(t, 0, excludedAgain)
}

func TestFilterNoise_EmptyInput(t *testing.T) {
	kept, excluded := FilterNoise(nil, []string{"restaurant"}, []string{"cafe"}, 3)
	assert.Empty(t, kept)
	assert.Equal(t, 0, excluded)
}
