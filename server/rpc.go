package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/cksruf91/a2a-server-client/a2a"
)

// JSON-RPC 2.0 error codes used by the task endpoint.
const (
	codeParseError     = -32700
	codeInvalidRequest = -32600
	codeMethodNotFound = -32601
	codeInternalError  = -32603
	codeUnsupportedOp  = -32004
)

type rpcRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  any             `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
}

type sendParams struct {
	Message a2a.Message `json:"message"`
}

// handleRPC serves the protocol task surface: message/send runs one caller
// interaction through the executor and returns the terminal task.
func (s *Server) handleRPC(w http.ResponseWriter, r *http.Request) {
	var req rpcRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeRPC(w, rpcResponse{JSONRPC: "2.0", Error: &rpcError{Code: codeParseError, Message: "parse error"}})
		return
	}

	switch req.Method {
	case "message/send":
		s.handleMessageSend(w, r, req)
	case "tasks/cancel":
		writeRPC(w, rpcResponse{JSONRPC: "2.0", ID: req.ID, Error: &rpcError{
			Code:    codeUnsupportedOp,
			Message: a2a.ErrUnsupportedOperation.Error(),
		}})
	default:
		writeRPC(w, rpcResponse{JSONRPC: "2.0", ID: req.ID, Error: &rpcError{
			Code:    codeMethodNotFound,
			Message: "method not found: " + req.Method,
		}})
	}
}

func (s *Server) handleMessageSend(w http.ResponseWriter, r *http.Request, req rpcRequest) {
	var params sendParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		writeRPC(w, rpcResponse{JSONRPC: "2.0", ID: req.ID, Error: &rpcError{
			Code:    codeInvalidRequest,
			Message: "invalid params",
		}})
		return
	}

	reqCtx := &a2a.RequestContext{Message: params.Message}
	if params.Message.TaskID != "" {
		task, err := s.tasks.Get(params.Message.TaskID)
		if err != nil && !errors.Is(err, a2a.ErrTaskNotFound) {
			writeRPC(w, rpcResponse{JSONRPC: "2.0", ID: req.ID, Error: &rpcError{
				Code:    codeInternalError,
				Message: err.Error(),
			}})
			return
		}
		reqCtx.Task = task
	}

	recorder := newTaskRecorder(reqCtx.Task)
	execErr := s.executor.Execute(r.Context(), reqCtx, recorder)

	task := recorder.Task()
	if task != nil {
		if err := s.tasks.Save(task); err != nil {
			s.logger.Warn("failed to persist task", "task_id", task.ID, "error", err)
		}
	}

	if execErr != nil && task == nil {
		writeRPC(w, rpcResponse{JSONRPC: "2.0", ID: req.ID, Error: &rpcError{
			Code:    codeInternalError,
			Message: execErr.Error(),
		}})
		return
	}
	// A failed execution still produced a terminal (failed) task; the caller
	// reads the failure from the task status.
	writeRPC(w, rpcResponse{JSONRPC: "2.0", ID: req.ID, Result: task})
}

// taskRecorder is an in-process event queue that folds the executor's event
// stream back into a task snapshot for the synchronous RPC response. For a
// continued task the prior snapshot seeds the fold.
type taskRecorder struct {
	task *a2a.Task
}

func newTaskRecorder(seed *a2a.Task) *taskRecorder { return &taskRecorder{task: seed} }

// Enqueue implements a2a.EventQueue.
func (r *taskRecorder) Enqueue(ev a2a.Event) error {
	switch e := ev.(type) {
	case *a2a.Task:
		r.task = e
	case a2a.TaskStatusUpdateEvent:
		if r.task != nil {
			r.task.Status = e.Status
		}
	case a2a.TaskArtifactUpdateEvent:
		if r.task != nil {
			r.task.Artifacts = append(r.task.Artifacts, e.Artifact)
		}
	}
	return nil
}

// Task returns the folded task snapshot, nil when no task event was seen.
func (r *taskRecorder) Task() *a2a.Task { return r.task }

func writeRPC(w http.ResponseWriter, resp rpcResponse) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}
