package chatbot

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashwinyue/travacasa/internal/service/session"
)

func sampleListings() []ListingResult {
	return []ListingResult{
		{ID: "l1", Title: "Eiffel View Apartment", Location: "Paris", Country: "France", Price: 120, Rating: "4.5", ReviewCount: 2, Description: "Bright apartment"},
		{ID: "l2", Title: "Montmartre Studio", Location: "Paris", Country: "France", Price: 95.5, Rating: "No ratings yet", Description: "Charming studio"},
	}
}

func TestPromptBuilder_DatabaseBlock(t *testing.T) {
	b := NewPromptBuilder(5)

	t.Run("listings", func(t *testing.T) {
		p, err := b.Build(&GenerateRequest{Message: "Paris please", SearchRan: true, Listings: sampleListings()})
		require.NoError(t, err)

		assert.Equal(t, systemPersona, p.System)
		assert.Equal(t, "Paris please", p.Message)
		assert.Contains(t, p.Body, "AVAILABLE PROPERTIES FROM DATABASE:")
		assert.Contains(t, p.Body, "1. Eiffel View Apartment")
		assert.Contains(t, p.Body, "   - Price: $120 per night")
		assert.Contains(t, p.Body, "   - Price: $95.5 per night")
		assert.Contains(t, p.Body, "   - Rating: 4.5 (2 reviews)")
		assert.Contains(t, p.Body, "   - Property ID: l2")
		assert.Contains(t, p.Body, "User: Paris please\nAssistant:")
		assert.Contains(t, p.Full(), "You are TravaCasa AI Assistant")
	})

	t.Run("searched without results", func(t *testing.T) {
		p, err := b.Build(&GenerateRequest{Message: "castles", SearchRan: true})
		require.NoError(t, err)
		assert.Contains(t, p.Body, noListingsNote)
		assert.NotContains(t, p.Body, "AVAILABLE PROPERTIES")
	})

	t.Run("not searched", func(t *testing.T) {
		p, err := b.Build(&GenerateRequest{Message: "hello"})
		require.NoError(t, err)
		assert.NotContains(t, p.Body, "AVAILABLE PROPERTIES")
		assert.NotContains(t, p.Body, "NOTE:")
	})
}

func TestPromptBuilder_History(t *testing.T) {
	var history []session.Exchange
	for i := 0; i < 7; i++ {
		role := session.RoleUser
		if i%2 == 1 {
			role = session.RoleAssistant
		}
		history = append(history, session.Exchange{Role: role, Text: fmt.Sprintf("turn-%d", i)})
	}

	p, err := NewPromptBuilder(5).Build(&GenerateRequest{
		Message: "next",
		History: history,
		Context: []any{"prefers quiet areas"},
	})
	require.NoError(t, err)

	assert.NotContains(t, p.Body, "turn-0")
	assert.NotContains(t, p.Body, "turn-1")
	assert.Contains(t, p.Body, "User: turn-2")
	assert.Contains(t, p.Body, "Assistant: turn-3")
	assert.Contains(t, p.Body, "User: turn-6")
	assert.Contains(t, p.Body, "- prefers quiet areas")
}

func TestFormatPrice(t *testing.T) {
	assert.Equal(t, "120", formatPrice(120))
	assert.Equal(t, "100", formatPrice(100))
	assert.Equal(t, "95.5", formatPrice(95.5))
	assert.Equal(t, "99.99", formatPrice(99.99))
}
