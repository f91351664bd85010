package core

// OutcomeKind categorizes the payload carried by an Outcome.
type OutcomeKind string

const (
	// OutcomeKindText marks plain text content.
	OutcomeKindText OutcomeKind = "text"
	// OutcomeKindData marks structured (decoded JSON) content.
	OutcomeKindData OutcomeKind = "data"
	// OutcomeKindNone marks an outcome whose payload could not be classified.
	OutcomeKindNone OutcomeKind = ""
)

// Outcome is one classified unit of a streaming agent's output. The task
// bridge collapses a sequence of outcomes into the external task lifecycle:
// Complete ends the task normally, RequireUserInput ends it waiting for the
// caller, anything else is an intermediate working update.
//
// Complete and RequireUserInput are mutually exclusive terminal signals; an
// outcome carrying neither keeps the task in its working state.
type Outcome struct {
	Kind             OutcomeKind `json:"response_type"`
	Complete         bool        `json:"is_task_complete"`
	RequireUserInput bool        `json:"require_user_input"`
	Content          any         `json:"content"`
}

// Terminal reports whether this outcome ends consumption of the stream.
func (o Outcome) Terminal() bool { return o.Complete || o.RequireUserInput }

// Text returns the content rendered as a string. Structured content is
// returned empty; use Data for the decoded form.
func (o Outcome) Text() string {
	if s, ok := o.Content.(string); ok {
		return s
	}
	return ""
}

// Data returns the structured content map, or nil for text outcomes.
func (o Outcome) Data() map[string]any {
	if m, ok := o.Content.(map[string]any); ok {
		return m
	}
	return nil
}

// WorkingOutcome builds an intermediate progress outcome with the given text.
func WorkingOutcome(text string) Outcome {
	return Outcome{Kind: OutcomeKindText, Content: text}
}

// CompletedTextOutcome builds a terminal text outcome.
func CompletedTextOutcome(text string) Outcome {
	return Outcome{Kind: OutcomeKindText, Complete: true, Content: text}
}

// CompletedDataOutcome builds a terminal structured outcome.
func CompletedDataOutcome(data map[string]any) Outcome {
	return Outcome{Kind: OutcomeKindData, Complete: true, Content: data}
}

// InputRequiredOutcome builds a terminal outcome asking the caller a question.
func InputRequiredOutcome(question string) Outcome {
	return Outcome{Kind: OutcomeKindText, RequireUserInput: true, Content: question}
}
