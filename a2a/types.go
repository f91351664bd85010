package a2a

import (
	"time"

	"github.com/google/uuid"
)

// WellKnownCardPath is the fixed discovery path serving an agent's card.
const WellKnownCardPath = "/.well-known/agent-card.json"

// AgentCapabilities declares optional protocol features an agent supports.
type AgentCapabilities struct {
	Streaming              bool `json:"streaming,omitempty"`
	PushNotifications      bool `json:"pushNotifications,omitempty"`
	StateTransitionHistory bool `json:"stateTransitionHistory,omitempty"`
}

// AgentSkill describes one capability a specialist advertises. ID is unique
// within its card; Tags and Examples guide the host model's tool selection.
type AgentSkill struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Tags        []string `json:"tags,omitempty"`
	Examples    []string `json:"examples,omitempty"`
}

// AgentCard conveys key information about an agent: overall details (name,
// description, url, version), supported modalities and the ordered set of
// skills it can perform. Cards are immutable once fetched.
type AgentCard struct {
	Name                              string            `json:"name"`
	Description                       string            `json:"description"`
	URL                               string            `json:"url"`
	Version                           string            `json:"version"`
	DefaultInputModes                 []string          `json:"defaultInputModes,omitempty"`
	DefaultOutputModes                []string          `json:"defaultOutputModes,omitempty"`
	Capabilities                      AgentCapabilities `json:"capabilities"`
	Skills                            []AgentSkill      `json:"skills"`
	SupportsAuthenticatedExtendedCard bool              `json:"supportsAuthenticatedExtendedCard,omitempty"`
}

// TaskState enumerates the lifecycle states of a task.
type TaskState string

const (
	// TaskStateSubmitted marks a freshly created task before any work happened.
	TaskStateSubmitted TaskState = "submitted"
	// TaskStateWorking marks a task whose agent is producing output.
	TaskStateWorking TaskState = "working"
	// TaskStateInputRequired marks a task paused until the caller answers.
	TaskStateInputRequired TaskState = "input-required"
	// TaskStateCompleted marks normal terminal completion.
	TaskStateCompleted TaskState = "completed"
	// TaskStateFailed marks abnormal terminal completion.
	TaskStateFailed TaskState = "failed"
)

// Terminal reports whether the state permits no further transitions.
func (s TaskState) Terminal() bool {
	return s == TaskStateCompleted || s == TaskStateInputRequired || s == TaskStateFailed
}

// Part is one wire-level content segment: plain text or structured data,
// discriminated by Kind.
type Part struct {
	Kind string         `json:"kind"`
	Text string         `json:"text,omitempty"`
	Data map[string]any `json:"data,omitempty"`
}

// NewTextPart builds a text part.
func NewTextPart(text string) Part { return Part{Kind: "text", Text: text} }

// NewDataPart builds a structured data part.
func NewDataPart(data map[string]any) Part { return Part{Kind: "data", Data: data} }

// Message is a single conversational unit exchanged between caller, host and
// specialists. ContextID / TaskID bind it to an ongoing conversation or task.
type Message struct {
	Kind      string `json:"kind"`
	MessageID string `json:"messageId"`
	Role      string `json:"role"`
	Parts     []Part `json:"parts"`
	ContextID string `json:"contextId,omitempty"`
	TaskID    string `json:"taskId,omitempty"`
}

// NewUserMessage builds a caller-authored text message.
func NewUserMessage(text string) Message {
	return Message{
		Kind:      "message",
		MessageID: uuid.NewString(),
		Role:      "user",
		Parts:     []Part{NewTextPart(text)},
	}
}

// NewAgentTextMessage builds an agent-authored text message bound to a task.
func NewAgentTextMessage(text, contextID, taskID string) Message {
	return Message{
		Kind:      "message",
		MessageID: uuid.NewString(),
		Role:      "agent",
		Parts:     []Part{NewTextPart(text)},
		ContextID: contextID,
		TaskID:    taskID,
	}
}

// JoinedText concatenates the text of all text parts in order.
func (m Message) JoinedText() string {
	var out string
	for _, p := range m.Parts {
		if p.Kind == "text" {
			out += p.Text
		}
	}
	return out
}

// TaskStatus pairs a lifecycle state with an optional explanatory message.
type TaskStatus struct {
	State     TaskState `json:"state"`
	Message   *Message  `json:"message,omitempty"`
	Timestamp string    `json:"timestamp,omitempty"`
}

// Artifact is a named output produced by a completed task.
type Artifact struct {
	ArtifactID string `json:"artifactId"`
	Name       string `json:"name,omitempty"`
	Parts      []Part `json:"parts"`
}

// Task is the unit of work tracked through the lifecycle state machine for
// one caller interaction. Once the bridge begins executing a task no other
// component may mutate its state.
type Task struct {
	Kind      string     `json:"kind"`
	ID        string     `json:"id"`
	ContextID string     `json:"contextId"`
	Status    TaskStatus `json:"status"`
	Artifacts []Artifact `json:"artifacts,omitempty"`
	History   []Message  `json:"history,omitempty"`
}

// NewTask creates a submitted task from the caller's message, minting ids as
// needed and recording the message in the task history.
func NewTask(msg Message) *Task {
	contextID := msg.ContextID
	if contextID == "" {
		contextID = uuid.NewString()
	}
	taskID := msg.TaskID
	if taskID == "" {
		taskID = uuid.NewString()
	}
	return &Task{
		Kind:      "task",
		ID:        taskID,
		ContextID: contextID,
		Status:    TaskStatus{State: TaskStateSubmitted, Timestamp: nowTimestamp()},
		History:   []Message{msg},
	}
}

// Event is the closed set of records the bridge enqueues to the external
// event sink: the created Task itself, status updates and artifact updates.
type Event interface{ isEvent() }

// isEvent implements the Event interface for Task.
func (*Task) isEvent() {}

// TaskStatusUpdateEvent reports a task state transition. Final marks the last
// status event the task will ever emit.
type TaskStatusUpdateEvent struct {
	Kind      string     `json:"kind"`
	TaskID    string     `json:"taskId"`
	ContextID string     `json:"contextId"`
	Status    TaskStatus `json:"status"`
	Final     bool       `json:"final"`
}

// isEvent implements the Event interface for TaskStatusUpdateEvent.
func (TaskStatusUpdateEvent) isEvent() {}

// TaskArtifactUpdateEvent attaches an artifact to a task.
type TaskArtifactUpdateEvent struct {
	Kind      string   `json:"kind"`
	TaskID    string   `json:"taskId"`
	ContextID string   `json:"contextId"`
	Artifact  Artifact `json:"artifact"`
	LastChunk bool     `json:"lastChunk"`
}

// isEvent implements the Event interface for TaskArtifactUpdateEvent.
func (TaskArtifactUpdateEvent) isEvent() {}

func nowTimestamp() string { return time.Now().UTC().Format(time.RFC3339Nano) }
