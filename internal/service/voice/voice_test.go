package voice

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashwinyue/travacasa/internal/config"
	"github.com/ashwinyue/travacasa/internal/model"
	"github.com/ashwinyue/travacasa/internal/repository"
	"github.com/ashwinyue/travacasa/internal/service/websearch"
	"github.com/ashwinyue/travacasa/internal/testutil"
)

func TestProcessTranscript(t *testing.T) {
	tests := []struct {
		name       string
		transcript string
		want       Query
	}{
		{
			name:       "fillers removed and location after marker",
			transcript: "Um show me like a cabin near Aspen",
			want: Query{
				Processed: "show me a cabin near aspen",
				Location:  "aspen",
				Type:      "cabin",
				Keywords:  []string{"show", "cabin", "near", "aspen"},
			},
		},
		{
			name:       "multi word marker",
			transcript: "hotels close to the eiffel tower",
			want: Query{
				Processed: "hotels close to the eiffel tower",
				Location:  "the eiffel tower",
				Type:      "hotel",
				Keywords:  []string{"hotels", "close", "the", "eiffel", "tower"},
			},
		},
		{
			name:       "no marker uses whole phrase",
			transcript: "  Basically beach villas  ",
			want: Query{
				Processed: "beach villas",
				Location:  "beach villas",
				Type:      "villa",
				Keywords:  []string{"beach", "villas"},
			},
		},
		{
			name:       "trailing marker ignored",
			transcript: "somewhere to stay in",
			want: Query{
				Processed: "somewhere to stay in",
				Location:  "somewhere to stay in",
				Keywords:  []string{"somewhere", "stay"},
			},
		},
		{
			name:       "filler inside word kept",
			transcript: "umbrella rentals in Goa",
			want: Query{
				Processed: "umbrella rentals in goa",
				Location:  "goa",
				Keywords:  []string{"umbrella", "rentals", "goa"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ProcessTranscript(tt.transcript)
			tt.want.Original = tt.transcript
			assert.Equal(t, &tt.want, got)
		})
	}
}

func newTestService(t *testing.T) *Service {
	t.Helper()
	db := testutil.NewTestDB(t)
	testutil.SeedListings(t, db)
	web := websearch.NewService(context.Background(), &config.WebSearchConfig{Enabled: false})
	return NewService(repository.NewListingRepository(db), web)
}

func TestService_SearchMatchesListings(t *testing.T) {
	svc := newTestService(t)

	result, err := svc.Search(context.Background(), "find apartments in paris")
	require.NoError(t, err)

	assert.Equal(t, "paris", result.Query.Location)
	require.Len(t, result.Listings, 3)
	for _, h := range result.Listings {
		assert.Equal(t, "Paris", h.Location)
		assert.Equal(t, HitType, h.Type)
	}
	// 创建时间倒序
	assert.Equal(t, "Left Bank Luxury Suite", result.Listings[0].Title)
	assert.Empty(t, result.Web)
	assert.Empty(t, result.WebSource)
	assert.Equal(t, []Suggestion{
		{Text: "Paris", Type: "location", Count: 3},
		{Text: "city apartments", Type: "category"},
	}, result.Suggestions)
}

func TestService_SearchFallsBackToWeb(t *testing.T) {
	svc := newTestService(t)

	result, err := svc.Search(context.Background(), "uh mountain cabin near Reykjavik")
	require.NoError(t, err)

	assert.Empty(t, result.Listings)
	assert.NotNil(t, result.Listings)
	assert.Equal(t, websearch.SourceSuggestions, result.WebSource)
	require.Len(t, result.Web, 3)
	assert.Equal(t, "Visit reykjavik - Travel Guide", result.Web[0].Title)
	assert.Equal(t, []Suggestion{{Text: "mountain cabins", Type: "category"}}, result.Suggestions)
}

func TestService_SuggestionsCapped(t *testing.T) {
	svc := newTestService(t)

	q := &Query{
		Location: "a",
		Keywords: []string{"beach", "mountain", "city", "luxury", "budget"},
	}
	suggestions, err := svc.Suggestions(context.Background(), q)
	require.NoError(t, err)

	// Paris / Malibu / Goa / Aspen 包含 "a"，再加 5 个分类
	assert.Len(t, suggestions, maxSuggestions)
	assert.Equal(t, "location", suggestions[0].Type)
	assert.Equal(t, "category", suggestions[maxSuggestions-1].Type)
}

type brokenStore struct{ repository.ListingStore }

func (brokenStore) Search(context.Context, *repository.ListingQuery) ([]*model.Listing, error) {
	return nil, errors.New("connection reset")
}

func TestService_SearchStoreError(t *testing.T) {
	svc := NewService(brokenStore{}, nil)

	_, err := svc.Search(context.Background(), "villas in malibu")
	assert.ErrorContains(t, err, "connection reset")
}
