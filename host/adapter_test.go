package host

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cksruf91/a2a-server-client/core"
	"github.com/cksruf91/a2a-server-client/model"
)

// Interface compliance (compile-time assertion)
var _ core.StreamingAgent = (*StreamAdapter)(nil)

func collect(t *testing.T, outcomes <-chan core.Outcome, errs <-chan error) ([]core.Outcome, error) {
	t.Helper()
	var got []core.Outcome
	for o := range outcomes {
		got = append(got, o)
	}
	return got, <-errs
}

func TestStreamAdapter_WorkingThenTerminal(t *testing.T) {
	llm := model.NewMockModel("mock", "mock")
	llm.AddResponse("hello", "Hi there!")
	h := newTestHost(t, llm, &fakeTool{name: "send_message_to_product"})
	adapter := NewStreamAdapter(h)

	outcomes, errs := adapter.Stream(context.Background(), "hello", "ctx-1", "task-1")
	got, err := collect(t, outcomes, errs)
	require.NoError(t, err)

	require.Len(t, got, 2)
	assert.False(t, got[0].Terminal())
	assert.True(t, got[1].Terminal())
	assert.Equal(t, "Hi there!", got[1].Text())
}

func TestStreamAdapter_ClassifiesFencedJSON(t *testing.T) {
	llm := model.NewMockModel("mock", "mock")
	llm.AddResponse("book it", "```json\n{\"status\": \"input_required\", \"question\": \"Which date?\"}\n```")
	h := newTestHost(t, llm, &fakeTool{name: "send_message_to_product"})
	adapter := NewStreamAdapter(h)

	outcomes, errs := adapter.Stream(context.Background(), "book it", "ctx-1", "task-1")
	got, err := collect(t, outcomes, errs)
	require.NoError(t, err)

	final := got[len(got)-1]
	assert.True(t, final.RequireUserInput)
	assert.Equal(t, "Which date?", final.Text())
}

func TestStreamAdapter_BlankQueryFailsBeforeModelCall(t *testing.T) {
	llm := &capturingModel{}
	h := newTestHost(t, llm, &fakeTool{name: "send_message_to_product"})
	adapter := NewStreamAdapter(h)

	outcomes, errs := adapter.Stream(context.Background(), "  ", "ctx-1", "task-1")
	got, err := collect(t, outcomes, errs)
	require.ErrorIs(t, err, ErrEmptyQuery)
	assert.Empty(t, got)
	assert.Empty(t, llm.lastReq.Contents, "model must not be invoked")
}
