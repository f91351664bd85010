package a2a

import (
	"errors"
	"fmt"
)

// ErrUnsupportedOperation is returned for protocol operations the host does
// not implement, such as task cancellation. Callers receive it immediately;
// no best-effort attempt is made.
var ErrUnsupportedOperation = errors.New("unsupported operation")

// DiscoveryError reports a failed capability card fetch. One failing endpoint
// fails the aggregation as a whole; no partial catalog is produced.
type DiscoveryError struct {
	URL string // Endpoint whose card could not be retrieved
	Err error  // Underlying cause
}

func (e *DiscoveryError) Error() string {
	return fmt.Sprintf("capability discovery failed for %s: %v", e.URL, e.Err)
}

// Unwrap exposes the underlying cause for errors.Is / errors.As.
func (e *DiscoveryError) Unwrap() error { return e.Err }
