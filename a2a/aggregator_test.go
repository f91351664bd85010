package a2a

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cardServer(t *testing.T, card AgentCard, delay time.Duration) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != WellKnownCardPath {
			http.NotFound(w, r)
			return
		}
		if delay > 0 {
			time.Sleep(delay)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(card)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestCardResolver_Resolve(t *testing.T) {
	want := AgentCard{
		Name:        "product",
		Description: "Answers product questions",
		Version:     "1.0.0",
		Skills: []AgentSkill{
			{ID: "lookup", Name: "Product Lookup", Tags: []string{"catalog"}},
		},
	}
	srv := cardServer(t, want, 0)

	resolver := NewCardResolver()
	got, err := resolver.Resolve(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, want.Name, got.Name)
	assert.Equal(t, want.Skills, got.Skills)
}

func TestCardResolver_Non200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)

	resolver := NewCardResolver()
	_, err := resolver.Resolve(context.Background(), srv.URL)
	assert.Error(t, err)
}

func TestCardAggregator_PreservesInputOrder(t *testing.T) {
	// The slower endpoint comes first; completion order must not leak into
	// catalog order.
	slow := cardServer(t, AgentCard{Name: "slow"}, 50*time.Millisecond)
	fast := cardServer(t, AgentCard{Name: "fast"}, 0)

	agg := NewCardAggregator()
	cards, err := agg.Fetch(context.Background(), []string{slow.URL, fast.URL})
	require.NoError(t, err)
	require.Len(t, cards, 2)
	assert.Equal(t, "slow", cards[0].Name)
	assert.Equal(t, "fast", cards[1].Name)
}

func TestCardAggregator_OneFailureFailsAll(t *testing.T) {
	ok := cardServer(t, AgentCard{Name: "ok"}, 0)
	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	t.Cleanup(bad.Close)

	agg := NewCardAggregator()
	cards, err := agg.Fetch(context.Background(), []string{ok.URL, bad.URL})
	assert.Nil(t, cards)
	require.Error(t, err)

	var discErr *DiscoveryError
	require.ErrorAs(t, err, &discErr)
	assert.Equal(t, bad.URL, discErr.URL)
}

func TestCardAggregator_EmptyEndpoints(t *testing.T) {
	agg := NewCardAggregator()
	cards, err := agg.Fetch(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, cards)
}
