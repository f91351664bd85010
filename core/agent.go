package core

import "context"

// StreamingAgent is the single invocation contract the task bridge consumes.
//
// Stream starts processing the query bound to a conversation context and task
// and returns a lazy sequence of outcomes plus a terminal error channel.
//
// Semantics & Guarantees:
//   - The outcomes channel is unbuffered: the producer advances only when the
//     consumer pulls, so at most one outcome is ever in flight.
//   - Outcomes are delivered in production order; implementations must never
//     reorder or coalesce them.
//   - The outcomes channel is closed when the producer is done (a terminal
//     outcome was emitted, the context was cancelled, or an error occurred).
//   - The error channel carries at most one terminal error then closes
//     (buffered size 1). An error means the sequence ended abnormally before
//     a terminal outcome.
//   - Consumers may stop pulling at any point; producers must honor context
//     cancellation rather than block forever on a send.
type StreamingAgent interface {
	// Name returns the agent identifier used to label emitted artifacts.
	Name() string

	// Stream begins an invocation for the given query within a conversation
	// context and task.
	Stream(ctx context.Context, query, contextID, taskID string) (<-chan Outcome, <-chan error)
}
