package tool

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/cksruf91/a2a-server-client/a2a"
)

// Invoker relays a text message to a specialist endpoint and returns its
// reply text. *a2a.Client satisfies this; tests supply fakes.
type Invoker interface {
	SendText(ctx context.Context, text string) (string, error)
}

// AgentTool exposes one discovered specialist as an invocable tool. The
// tool's name and description derive from the specialist's capability card so
// the model can match caller intent against advertised skills; calling the
// tool relays the message to the specialist and returns its answer.
type AgentTool struct {
	card    a2a.AgentCard
	invoker Invoker
}

// NewAgentTool builds a tool around a capability card using a default client
// bound to the card's URL.
func NewAgentTool(card a2a.AgentCard) *AgentTool {
	return NewAgentToolWithInvoker(card, a2a.NewClient(card.URL))
}

// NewAgentToolWithInvoker builds a tool around a capability card with an
// explicit invoker.
func NewAgentToolWithInvoker(card a2a.AgentCard, invoker Invoker) *AgentTool {
	return &AgentTool{card: card, invoker: invoker}
}

// Card returns the specialist's capability card.
func (t *AgentTool) Card() a2a.AgentCard { return t.card }

// Name returns a function-safe identifier derived from the card name,
// prefixed so the model can tell specialists apart from local functions.
func (t *AgentTool) Name() string {
	return "send_message_to_" + sanitizeName(t.card.Name)
}

// Description summarizes the specialist and its skills for the model.
func (t *AgentTool) Description() string {
	var b strings.Builder
	b.WriteString(t.card.Description)
	for _, skill := range t.card.Skills {
		b.WriteString(fmt.Sprintf("\nSkill %s: %s", skill.Name, skill.Description))
		if len(skill.Tags) > 0 {
			b.WriteString(fmt.Sprintf(" (tags: %s)", strings.Join(skill.Tags, ", ")))
		}
	}
	return b.String()
}

// Parameters describes the single message argument.
func (t *AgentTool) Parameters() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"message": map[string]interface{}{
				"type":        "string",
				"description": "The message to send to the agent.",
			},
		},
		"required": []string{"message"},
	}
}

// Call relays the message argument to the specialist and returns its reply.
func (t *AgentTool) Call(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	message, ok := args["message"].(string)
	if !ok || message == "" {
		return nil, NewToolError(t.Name(), "missing required argument: message", "VALIDATION_ERROR")
	}

	reply, err := t.invoker.SendText(ctx, message)
	if err != nil {
		return nil, fmt.Errorf("specialist invocation failed: %w", err)
	}
	return reply, nil
}

var nameSanitizer = regexp.MustCompile(`[^a-z0-9_]+`)

// sanitizeName lowercases and replaces characters models reject in function names.
func sanitizeName(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = strings.ReplaceAll(s, " ", "_")
	s = nameSanitizer.ReplaceAllString(s, "_")
	return strings.Trim(s, "_")
}
