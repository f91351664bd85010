// Package classify turns raw agent output into exactly one structured
// outcome. Payloads may arrive as already-decoded maps or as free text that
// optionally embeds JSON in a fenced code block; classification never fails
// the surrounding task.
package classify

import (
	"encoding/json"
	"regexp"

	"github.com/cksruf91/a2a-server-client/core"
	"github.com/cksruf91/a2a-server-client/logging"
)

// fencePatterns are tried in fixed priority order against raw text. The first
// match wins; its captured body is then parsed as JSON with a plain-text
// fallback.
var fencePatterns = []*regexp.Regexp{
	regexp.MustCompile("(?s)```\\n(.*?)\\n```"),
	regexp.MustCompile("(?s)```json\\s*(.*?)\\s*```"),
	regexp.MustCompile("(?s)```tool_outputs\\s*(.*?)\\s*```"),
}

// fallbackMessage is the generic terminal text used when classification
// itself blows up; the task keeps moving regardless.
const fallbackMessage = "Could not complete the request. Please try again."

// ClassifierOptions configure a Classifier.
type ClassifierOptions struct {
	Logger logging.Logger
}

// Classifier parses raw text or structured payloads emitted by an agent into
// a fixed set of structured outcomes.
type Classifier struct {
	logger logging.Logger
}

// NewClassifier constructs a Classifier with optional overrides.
func NewClassifier(optFns ...func(o *ClassifierOptions)) *Classifier {
	opts := ClassifierOptions{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Classifier{logger: opts.Logger}
}

// Classify produces exactly one outcome for the raw payload.
//
// Structured maps carrying status=input_required plus a question classify as
// an input-required outcome; any other map is a terminal data outcome. Text
// is scanned for fenced JSON (plain, json and tool_outputs fences in that
// order) before attempting to parse the whole payload; unparseable text is a
// terminal text outcome. A panic during classification is recovered into a
// generic terminal text outcome — classification failure is never fatal.
func (c *Classifier) Classify(raw any) (outcome core.Outcome) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("classification panicked", "panic", r)
			outcome = core.CompletedTextOutcome(fallbackMessage)
		}
	}()

	switch v := raw.(type) {
	case map[string]any:
		return classifyStructured(v)
	case string:
		return c.classifyText(v)
	case nil:
		return core.CompletedTextOutcome("")
	default:
		// Anything else round-trips through JSON into a map or stays text.
		if b, err := json.Marshal(v); err == nil {
			var m map[string]any
			if err := json.Unmarshal(b, &m); err == nil {
				return classifyStructured(m)
			}
			return core.CompletedTextOutcome(string(b))
		}
		return core.CompletedTextOutcome(fallbackMessage)
	}
}

func classifyStructured(data map[string]any) core.Outcome {
	if status, ok := data["status"].(string); ok && status == "input_required" {
		if question, ok := data["question"].(string); ok {
			return core.InputRequiredOutcome(question)
		}
	}
	return core.CompletedDataOutcome(data)
}

func (c *Classifier) classifyText(text string) core.Outcome {
	for _, pattern := range fencePatterns {
		match := pattern.FindStringSubmatch(text)
		if match == nil {
			continue
		}
		body := match[1]
		if m, ok := parseJSONObject(body); ok {
			return classifyStructured(m)
		}
		c.logger.Debug("fenced content is not JSON, treating as text")
		return core.CompletedTextOutcome(body)
	}

	if m, ok := parseJSONObject(text); ok {
		return classifyStructured(m)
	}
	return core.CompletedTextOutcome(text)
}

// parseJSONObject decodes s when it holds a JSON object.
func parseJSONObject(s string) (map[string]any, bool) {
	var m map[string]any
	if err := json.Unmarshal([]byte(s), &m); err != nil || m == nil {
		return nil, false
	}
	return m, true
}
