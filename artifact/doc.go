// Package artifact provides storage for task output payloads keyed by
// conversation context. The bridge persists each completed task's artifact
// here in addition to emitting it as a lifecycle event.
package artifact
