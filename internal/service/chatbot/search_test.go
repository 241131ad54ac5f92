package chatbot

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashwinyue/travacasa/internal/repository"
	"github.com/ashwinyue/travacasa/internal/testutil"
)

var testBounds = PriceBounds{BudgetMax: 150, LuxuryMin: 200}

func newFixtureSearch(t *testing.T) *ListingSearch {
	t.Helper()
	db := testutil.NewTestDB(t)
	testutil.SeedListings(t, db)
	return NewListingSearch(repository.NewListingRepository(db), 5, testBounds)
}

func TestSearchTerms(t *testing.T) {
	tests := []struct {
		name    string
		message string
		want    []string
	}{
		{name: "location and property noun", message: "Show me cheap apartments in Paris", want: []string{"Paris", "apartment"}},
		{name: "multi word location", message: "Hotels in New York City please", want: []string{"New York City", "hotel"}},
		{name: "keywords capped at three", message: "cabins with fireplace and mountain views", want: []string{"cabin", "fireplace", "mountain"}},
		{name: "short words fall back", message: "any spa?", want: []string{"spa"}},
		{name: "only stop words", message: "I want to book a stay", want: nil},
		{name: "punctuation only", message: "??", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SearchTerms(tt.message))
		})
	}
}

func TestListingSearch_QueryPriceBounds(t *testing.T) {
	s := NewListingSearch(nil, 0, testBounds)

	tests := []struct {
		name      string
		message   string
		wantBelow *float64
		wantAbove *float64
	}{
		{name: "budget", message: "something cheap", wantBelow: float(150)},
		{name: "affordable", message: "Affordable rooms", wantBelow: float(150)},
		{name: "luxury", message: "a luxury suite", wantAbove: float(200)},
		{name: "premium", message: "premium villas", wantAbove: float(200)},
		{name: "budget wins over luxury", message: "cheap but luxury", wantBelow: float(150)},
		{name: "no signal", message: "villas in Goa"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := s.Query(tt.message)
			assert.Equal(t, tt.wantBelow, q.PriceBelow)
			assert.Equal(t, tt.wantAbove, q.PriceAbove)
			assert.Equal(t, defaultSearchLimit, q.Limit)
		})
	}
}

func float(v float64) *float64 { return &v }

func TestListingSearch_Search(t *testing.T) {
	s := newFixtureSearch(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		message string
		want    []string
	}{
		{name: "cheap apartments in Paris", message: "Show me cheap apartments in Paris", want: []string{"Montmartre Studio", "Eiffel View Apartment"}},
		{name: "luxury villas", message: "luxury villas", want: []string{"Malibu Beach Villa"}},
		{name: "location only", message: "Anything in Goa?", want: []string{"Goa Beach Hut"}},
		{name: "no terms returns newest", message: "I want to book a stay", want: []string{
			"Manhattan Skyline Loft", "Goa Beach Hut", "Aspen Mountain Cabin", "Malibu Beach Villa", "Left Bank Luxury Suite",
		}},
		{name: "nothing matches", message: "castles in Transylvania", want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.Search(ctx, tt.message)
			require.NoError(t, err)

			titles := make([]string, 0, len(got))
			for _, r := range got {
				titles = append(titles, r.Title)
			}
			assert.Equal(t, tt.want, titles)
		})
	}
}

func TestListingSearch_ResultAnnotations(t *testing.T) {
	s := newFixtureSearch(t)

	got, err := s.Search(context.Background(), "Eiffel")
	require.NoError(t, err)
	require.Len(t, got, 1)

	r := got[0]
	assert.NotEmpty(t, r.ID)
	assert.Equal(t, "4.5", r.Rating)
	assert.Equal(t, 2, r.ReviewCount)
	assert.Equal(t, "Paris", r.Location)
	assert.Equal(t, "France", r.Country)
	assert.Equal(t, 120.0, r.Price)
	assert.NotEmpty(t, r.Image)
	assert.True(t, strings.HasSuffix(r.Description, "in the heart ..."))
	assert.Len(t, []rune(r.Description), descriptionLimit+3)

	got, err = s.Search(context.Background(), "Malibu")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "No ratings yet", got[0].Rating)
	assert.Equal(t, "Oceanfront villa with pool and direct beach access.", got[0].Description)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "exactly10!", truncate("exactly10!", 10))
	assert.Equal(t, "abc...", truncate("abcdef", 3))
	assert.Equal(t, "héé...", truncate("hééllo", 3))
}

func TestIsPropertyQuery(t *testing.T) {
	tests := []struct {
		message string
		intent  Intent
		want    bool
	}{
		{message: "Show me apartments", intent: IntentSearch, want: true},
		{message: "yes", intent: IntentBooking, want: true},
		{message: "anything under 100?", intent: IntentGeneral, want: false},
		{message: "any rooms free?", intent: IntentGeneral, want: true},
		{message: "hello", intent: IntentGreeting, want: false},
		{message: "I need help", intent: IntentSupport, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			assert.Equal(t, tt.want, IsPropertyQuery(tt.message, tt.intent))
		})
	}
}
