package a2a

import (
	"github.com/google/uuid"
)

// EventQueue is the external sink the bridge writes lifecycle events to. The
// protocol server behind it owns delivery to the remote caller.
type EventQueue interface {
	Enqueue(event Event) error
}

// TaskUpdater emits lifecycle events for a single task. It mirrors the helper
// the protocol contract defines: status updates, artifact attachment and the
// terminal completion marker, all bound to one (taskID, contextID) pair.
type TaskUpdater struct {
	queue     EventQueue
	taskID    string
	contextID string
}

// NewTaskUpdater constructs an updater bound to the given task.
func NewTaskUpdater(queue EventQueue, taskID, contextID string) *TaskUpdater {
	return &TaskUpdater{queue: queue, taskID: taskID, contextID: contextID}
}

// UpdateStatus enqueues a status transition, optionally carrying a message.
// Final marks the last status event the task will emit.
func (u *TaskUpdater) UpdateStatus(state TaskState, msg *Message, final bool) error {
	return u.queue.Enqueue(TaskStatusUpdateEvent{
		Kind:      "status-update",
		TaskID:    u.taskID,
		ContextID: u.contextID,
		Status:    TaskStatus{State: state, Message: msg, Timestamp: nowTimestamp()},
		Final:     final,
	})
}

// AddArtifact enqueues a named artifact composed of the given parts.
func (u *TaskUpdater) AddArtifact(parts []Part, name string) error {
	return u.queue.Enqueue(TaskArtifactUpdateEvent{
		Kind:      "artifact-update",
		TaskID:    u.taskID,
		ContextID: u.contextID,
		Artifact:  Artifact{ArtifactID: uuid.NewString(), Name: name, Parts: parts},
		LastChunk: true,
	})
}

// Complete enqueues the terminal completed status.
func (u *TaskUpdater) Complete() error {
	return u.UpdateStatus(TaskStateCompleted, nil, true)
}

// Fail enqueues the terminal failed status carrying the error text so the
// failure surfaces to the external protocol rather than being swallowed.
func (u *TaskUpdater) Fail(err error) error {
	msg := NewAgentTextMessage(err.Error(), u.contextID, u.taskID)
	return u.UpdateStatus(TaskStateFailed, &msg, true)
}
