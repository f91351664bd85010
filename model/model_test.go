package model

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cksruf91/a2a-server-client/core"
)

// Interface compliance (compile-time assertion)
var _ Model = (*MockModel)(nil)

func drain(t *testing.T, respCh <-chan Response, errCh <-chan error) ([]Response, error) {
	t.Helper()
	var out []Response
	for r := range respCh {
		out = append(out, r)
	}
	return out, <-errCh
}

func TestMockModel_CannedResponse(t *testing.T) {
	m := NewMockModel("mock", "mock")
	m.AddResponse("hello", "Hi!")

	respCh, errCh := m.Generate(context.Background(), Request{
		Contents: []core.Content{core.NewTextContent("user", "hello")},
	})
	responses, err := drain(t, respCh, errCh)
	require.NoError(t, err)
	require.Len(t, responses, 1)
	assert.False(t, responses[0].Partial)
	assert.Equal(t, "Hi!", responses[0].Content.JoinedText())
	assert.Equal(t, "stop", responses[0].FinishReason)
	require.NotNil(t, responses[0].Usage)
	assert.Equal(t, len("hello")+len("Hi!"), responses[0].Usage.TotalTokens)
}

func TestMockModel_StreamingEmitsPartials(t *testing.T) {
	m := NewMockModel("mock", "mock")
	m.AddResponse("hello", "abc")

	respCh, errCh := m.Generate(context.Background(), Request{
		Contents: []core.Content{core.NewTextContent("user", "hello")},
		Stream:   true,
	})
	responses, err := drain(t, respCh, errCh)
	require.NoError(t, err)
	require.Len(t, responses, 4) // 3 partial chars + final

	var streamed string
	for _, r := range responses[:3] {
		assert.True(t, r.Partial)
		streamed += r.Content.JoinedText()
	}
	assert.Equal(t, "abc", streamed)
	assert.False(t, responses[3].Partial)
	assert.Equal(t, "abc", responses[3].Content.JoinedText())
}

func TestMockModel_ScriptedToolCallRound(t *testing.T) {
	m := NewMockModel("mock", "mock")
	m.AddToolCallResponse("delegate", core.FunctionCall{ID: "1", Name: "send_message_to_product", Arguments: "{}"})
	m.AddResponse("delegate", "done")

	// First round: tool calls.
	contents := []core.Content{core.NewTextContent("user", "delegate")}
	respCh, errCh := m.Generate(context.Background(), Request{Contents: contents})
	responses, err := drain(t, respCh, errCh)
	require.NoError(t, err)
	require.Len(t, responses, 1)
	assert.Equal(t, "tool_calls", responses[0].FinishReason)
	calls := responses[0].Content.FunctionCalls()
	require.Len(t, calls, 1)
	assert.Equal(t, "send_message_to_product", calls[0].Name)

	// Second round: a tool response is present, so the canned text answers.
	contents = append(contents, responses[0].Content, core.Content{
		Role: "tool",
		Parts: []core.Part{core.FunctionResponsePart{FunctionResponse: core.FunctionResponse{
			ID: "1", Name: "send_message_to_product", Response: "result",
		}}},
	})
	respCh, errCh = m.Generate(context.Background(), Request{Contents: contents})
	responses, err = drain(t, respCh, errCh)
	require.NoError(t, err)
	require.Len(t, responses, 1)
	assert.Equal(t, "done", responses[0].Content.JoinedText())
}

func TestMockModel_NoContentsFails(t *testing.T) {
	m := NewMockModel("mock", "mock")
	respCh, errCh := m.Generate(context.Background(), Request{})
	responses, err := drain(t, respCh, errCh)
	assert.Empty(t, responses)
	assert.Error(t, err)
}
