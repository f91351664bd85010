package tool

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cksruf91/a2a-server-client/a2a"
)

// Interface compliance (compile-time assertion)
var _ Tool = (*AgentTool)(nil)

type fakeInvoker struct {
	sent  []string
	reply string
	err   error
}

func (f *fakeInvoker) SendText(ctx context.Context, text string) (string, error) {
	f.sent = append(f.sent, text)
	return f.reply, f.err
}

func productCard() a2a.AgentCard {
	return a2a.AgentCard{
		Name:        "Product Agent",
		Description: "Answers product questions.",
		URL:         "http://product.local",
		Skills: []a2a.AgentSkill{
			{ID: "pricing", Name: "Pricing", Description: "Looks up prices", Tags: []string{"catalog", "price"}},
		},
	}
}

func TestAgentTool_NameDerivesFromCard(t *testing.T) {
	at := NewAgentToolWithInvoker(productCard(), &fakeInvoker{})
	assert.Equal(t, "send_message_to_product_agent", at.Name())
}

func TestAgentTool_NameSanitization(t *testing.T) {
	card := productCard()
	card.Name = "  Héllo / World! Agent "
	at := NewAgentToolWithInvoker(card, &fakeInvoker{})
	assert.Regexp(t, `^send_message_to_[a-z0-9_]+$`, at.Name())
}

func TestAgentTool_DescriptionIncludesSkills(t *testing.T) {
	at := NewAgentToolWithInvoker(productCard(), &fakeInvoker{})
	desc := at.Description()
	assert.Contains(t, desc, "Answers product questions.")
	assert.Contains(t, desc, "Pricing")
	assert.Contains(t, desc, "catalog, price")
}

func TestAgentTool_CallRelaysMessage(t *testing.T) {
	invoker := &fakeInvoker{reply: "It costs $10"}
	at := NewAgentToolWithInvoker(productCard(), invoker)

	result, err := at.Call(context.Background(), map[string]interface{}{"message": "price?"})
	require.NoError(t, err)
	assert.Equal(t, "It costs $10", result)
	assert.Equal(t, []string{"price?"}, invoker.sent)
}

func TestAgentTool_CallMissingMessage(t *testing.T) {
	at := NewAgentToolWithInvoker(productCard(), &fakeInvoker{})

	_, err := at.Call(context.Background(), map[string]interface{}{})
	require.Error(t, err)

	var toolErr *ToolError
	require.ErrorAs(t, err, &toolErr)
	assert.Equal(t, "VALIDATION_ERROR", toolErr.Code)
}

func TestAgentTool_CallPropagatesInvokerError(t *testing.T) {
	invokerErr := errors.New("connection refused")
	at := NewAgentToolWithInvoker(productCard(), &fakeInvoker{err: invokerErr})

	_, err := at.Call(context.Background(), map[string]interface{}{"message": "price?"})
	require.ErrorIs(t, err, invokerErr)
}
