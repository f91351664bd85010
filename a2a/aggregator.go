package a2a

import (
	"context"
	"sync"

	"github.com/cksruf91/a2a-server-client/logging"
)

// CardAggregatorOptions configure a CardAggregator.
type CardAggregatorOptions struct {
	// Resolver fetches individual cards. Defaults to NewCardResolver().
	Resolver *CardResolver
	// Logger receives per-endpoint fetch diagnostics.
	Logger logging.Logger
}

// CardAggregator queries each known specialist endpoint for its capability
// card and produces a combined catalog preserving input order.
//
// Aggregation is all-or-nothing: if any endpoint's card cannot be retrieved
// the whole call fails with a DiscoveryError. Callers needing partial
// tolerance must retry per endpoint themselves. The aggregator performs no
// caching across calls; wrap it if cards should be reused.
type CardAggregator struct {
	resolver *CardResolver
	logger   logging.Logger
}

// NewCardAggregator constructs a CardAggregator with optional overrides.
func NewCardAggregator(optFns ...func(o *CardAggregatorOptions)) *CardAggregator {
	opts := CardAggregatorOptions{
		Resolver: NewCardResolver(),
		Logger:   logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &CardAggregator{resolver: opts.Resolver, logger: opts.Logger}
}

// Fetch retrieves the capability card of every endpoint, returning cards in
// input order. Fetches run concurrently; completion order does not affect the
// catalog. The first failure cancels outstanding fetches and fails the call.
func (a *CardAggregator) Fetch(ctx context.Context, endpoints []string) ([]AgentCard, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	cards := make([]AgentCard, len(endpoints))
	errCh := make(chan error, len(endpoints))

	var wg sync.WaitGroup
	for i, url := range endpoints {
		wg.Add(1)
		go func(i int, url string) {
			defer wg.Done()
			card, err := a.resolver.Resolve(ctx, url)
			if err != nil {
				a.logger.Warn("agent card fetch failed", "url", url, "error", err)
				errCh <- &DiscoveryError{URL: url, Err: err}
				cancel()
				return
			}
			a.logger.Debug("agent card fetched", "url", url, "agent", card.Name)
			cards[i] = card
		}(i, url)
	}
	wg.Wait()
	close(errCh)

	if err := <-errCh; err != nil {
		return nil, err
	}
	return cards, nil
}
