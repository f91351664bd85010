package a2a

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rpcServer(t *testing.T, result any) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "2.0", req.JSONRPC)
		assert.Equal(t, "message/send", req.Method)
		assert.NotEmpty(t, req.Params.Message.Parts)

		raw, err := json.Marshal(result)
		require.NoError(t, err)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(rpcResponse{JSONRPC: "2.0", ID: req.ID, Result: raw})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_SendMessage_MessageResult(t *testing.T) {
	srv := rpcServer(t, NewAgentTextMessage("hello back", "ctx-1", "task-1"))

	client := NewClient(srv.URL)
	result, err := client.SendMessage(context.Background(), NewUserMessage("hello"))
	require.NoError(t, err)
	require.NotNil(t, result.Message)
	assert.Nil(t, result.Task)
	assert.Equal(t, "hello back", result.Text())
}

func TestClient_SendMessage_TaskResult(t *testing.T) {
	task := NewTask(NewUserMessage("hello"))
	task.Status.State = TaskStateCompleted
	task.Artifacts = []Artifact{
		{ArtifactID: "a1", Name: "result", Parts: []Part{NewTextPart("task answer")}},
	}
	srv := rpcServer(t, task)

	client := NewClient(srv.URL)
	result, err := client.SendMessage(context.Background(), NewUserMessage("hello"))
	require.NoError(t, err)
	require.NotNil(t, result.Task)
	assert.Equal(t, TaskStateCompleted, result.Task.Status.State)
	assert.Equal(t, "task answer", result.Text())
}

func TestClient_SendText_RPCError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(rpcResponse{
			JSONRPC: "2.0",
			Error:   &rpcError{Code: -32603, Message: "agent exploded"},
		})
	}))
	t.Cleanup(srv.Close)

	client := NewClient(srv.URL)
	_, err := client.SendText(context.Background(), "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "agent exploded")
}

func TestSendMessageResult_TextFallbacks(t *testing.T) {
	// Data artifact renders as JSON.
	task := &Task{
		Kind: "task",
		Artifacts: []Artifact{
			{Parts: []Part{NewDataPart(map[string]any{"total": 3.0})}},
		},
	}
	assert.JSONEq(t, `{"total":3}`, SendMessageResult{Task: task}.Text())

	// No artifacts falls back to the status message.
	msg := NewAgentTextMessage("need more info", "c", "t")
	task = &Task{Kind: "task", Status: TaskStatus{State: TaskStateInputRequired, Message: &msg}}
	assert.Equal(t, "need more info", SendMessageResult{Task: task}.Text())

	// Empty result renders empty.
	assert.Equal(t, "", SendMessageResult{}.Text())
}
