package host

import (
	"context"
	"strings"

	"github.com/cksruf91/a2a-server-client/classify"
	"github.com/cksruf91/a2a-server-client/core"
)

// StreamAdapter exposes a HostAgent over the streaming-agent contract so the
// task executor can drive it: it emits a working outcome while the dispatch
// is in flight and classifies the final answer into a terminal outcome.
type StreamAdapter struct {
	host       *HostAgent
	classifier *classify.Classifier
}

// StreamAdapterOptions configure a StreamAdapter.
type StreamAdapterOptions struct {
	// Classifier maps raw answers to outcomes. Defaults to NewClassifier().
	Classifier *classify.Classifier
}

// NewStreamAdapter wraps the host agent for task execution.
func NewStreamAdapter(h *HostAgent, optFns ...func(o *StreamAdapterOptions)) *StreamAdapter {
	opts := StreamAdapterOptions{
		Classifier: classify.NewClassifier(),
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &StreamAdapter{host: h, classifier: opts.Classifier}
}

// Name implements core.StreamingAgent.
func (s *StreamAdapter) Name() string { return s.host.Name() }

// Stream implements core.StreamingAgent. Outcomes are delivered over an
// unbuffered channel, one in flight at a time; both channels close when the
// dispatch finishes. The context id carries the conversation room so session
// continuity survives across tasks.
func (s *StreamAdapter) Stream(ctx context.Context, query, contextID, taskID string) (<-chan core.Outcome, <-chan error) {
	outcomes := make(chan core.Outcome)
	errs := make(chan error, 1)

	go func() {
		defer close(outcomes)
		defer close(errs)

		if strings.TrimSpace(query) == "" {
			errs <- ErrEmptyQuery
			return
		}

		if !s.send(ctx, outcomes, core.WorkingOutcome("Processing request...")) {
			return
		}

		resp, err := s.host.Complete(ctx, ChatRequest{Question: query, RoomID: contextID})
		if err != nil {
			errs <- err
			return
		}
		s.send(ctx, outcomes, s.classifier.Classify(resp.Message))
	}()

	return outcomes, errs
}

func (s *StreamAdapter) send(ctx context.Context, out chan<- core.Outcome, o core.Outcome) bool {
	select {
	case <-ctx.Done():
		return false
	case out <- o:
		return true
	}
}
