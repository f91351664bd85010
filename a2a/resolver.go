package a2a

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// CardResolverOptions configure a CardResolver.
type CardResolverOptions struct {
	// HTTPClient performs the card fetches. Defaults to a client with a
	// 10 second timeout.
	HTTPClient *http.Client
}

// CardResolver fetches an agent's capability card from its well-known path.
type CardResolver struct {
	client *http.Client
}

// NewCardResolver constructs a CardResolver with optional overrides.
func NewCardResolver(optFns ...func(o *CardResolverOptions)) *CardResolver {
	opts := CardResolverOptions{
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &CardResolver{client: opts.HTTPClient}
}

// Resolve fetches and decodes the capability card served by baseURL.
func (r *CardResolver) Resolve(ctx context.Context, baseURL string) (AgentCard, error) {
	cardURL := strings.TrimSuffix(baseURL, "/") + WellKnownCardPath

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, cardURL, nil)
	if err != nil {
		return AgentCard{}, fmt.Errorf("failed to build card request: %w", err)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return AgentCard{}, fmt.Errorf("failed to fetch agent card: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return AgentCard{}, fmt.Errorf("agent card fetch returned status %d", resp.StatusCode)
	}

	var card AgentCard
	if err := json.NewDecoder(resp.Body).Decode(&card); err != nil {
		return AgentCard{}, fmt.Errorf("failed to decode agent card: %w", err)
	}

	return card, nil
}
