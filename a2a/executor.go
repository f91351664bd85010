package a2a

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/cksruf91/a2a-server-client/core"
	"github.com/cksruf91/a2a-server-client/logging"
)

// RequestContext carries the inbound message and, when the conversation
// already has one, the current task. Execute sets Task when it creates one so
// the protocol server can persist it.
type RequestContext struct {
	Message Message
	Task    *Task
}

// AgentExecutor is the execution contract the protocol server drives. Execute
// runs one caller interaction to a terminal lifecycle event; Cancel requests
// termination of an in-flight task.
type AgentExecutor interface {
	Execute(ctx context.Context, reqCtx *RequestContext, queue EventQueue) error
	Cancel(ctx context.Context, reqCtx *RequestContext, queue EventQueue) error
}

// TaskExecutorOptions configure a task executor.
type TaskExecutorOptions struct {
	// ArtifactStore persists completed artifact payloads. Optional; when nil
	// artifacts are only emitted as events.
	ArtifactStore core.ArtifactStore
	// Logger receives lifecycle diagnostics.
	Logger logging.Logger
}

// taskExecutor bridges a streaming agent onto the task lifecycle. It owns all
// task state transitions: it pulls outcomes one at a time in production order
// and emits exactly the event sequence the protocol requires...
//
//	zero or more  status-update(working, final=false)
//	then exactly one of
//	  artifact-update + status-update(completed, final=true)
//	  status-update(input-required, final=true)
//	  status-update(failed, final=true)
//
// Consumption halts on the first terminal outcome; whatever the producer
// still has buffered is discarded. This closing contract is what guarantees
// at most one terminal transition per task even against a misbehaving agent.
type taskExecutor struct {
	agent     core.StreamingAgent
	artifacts core.ArtifactStore
	logger    logging.Logger
}

// NewTaskExecutor creates the bridge around a streaming agent.
func NewTaskExecutor(agent core.StreamingAgent, optFns ...func(o *TaskExecutorOptions)) AgentExecutor {
	opts := TaskExecutorOptions{
		Logger: logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &taskExecutor{agent: agent, artifacts: opts.ArtifactStore, logger: opts.Logger}
}

// ErrNoTerminalOutcome reports a producer that ended its sequence without
// ever yielding a completion or input-required outcome.
var ErrNoTerminalOutcome = errors.New("agent stream ended without a terminal outcome")

// Execute drives one caller interaction through the task lifecycle.
func (e *taskExecutor) Execute(ctx context.Context, reqCtx *RequestContext, queue EventQueue) error {
	task := reqCtx.Task
	if task == nil {
		task = NewTask(reqCtx.Message)
		if err := queue.Enqueue(task); err != nil {
			return fmt.Errorf("failed to enqueue task: %w", err)
		}
		reqCtx.Task = task
	}

	updater := NewTaskUpdater(queue, task.ID, task.ContextID)
	e.logger.Info("executing agent", "agent", e.agent.Name(), "task_id", task.ID, "context_id", task.ContextID)

	// Cancelling the derived context on return unblocks a producer still
	// trying to send after the early stop.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	outcomes, errs := e.agent.Stream(ctx, reqCtx.Message.JoinedText(), task.ContextID, task.ID)

	for outcome := range outcomes {
		switch {
		case outcome.Complete && !outcome.RequireUserInput:
			return e.complete(task, outcome, updater)

		case outcome.RequireUserInput:
			msg := NewAgentTextMessage(outcome.Text(), task.ContextID, task.ID)
			if err := updater.UpdateStatus(TaskStateInputRequired, &msg, true); err != nil {
				return err
			}
			task.Status.State = TaskStateInputRequired
			return nil

		default:
			msg := NewAgentTextMessage(outcome.Text(), task.ContextID, task.ID)
			if err := updater.UpdateStatus(TaskStateWorking, &msg, false); err != nil {
				return err
			}
			task.Status.State = TaskStateWorking
		}
	}

	// The producer closed without a terminal outcome: either it failed or it
	// simply stopped. Both end the task as failed so the caller is never left
	// with a dangling working task.
	err := <-errs
	if err == nil {
		err = ErrNoTerminalOutcome
	}
	e.logger.Error("agent stream failed", "agent", e.agent.Name(), "task_id", task.ID, "error", err)
	if failErr := updater.Fail(err); failErr != nil {
		return failErr
	}
	task.Status.State = TaskStateFailed
	return err
}

// complete emits the artifact plus completed status for a normal completion.
func (e *taskExecutor) complete(task *Task, outcome core.Outcome, updater *TaskUpdater) error {
	var part Part
	if outcome.Kind == core.OutcomeKindData && outcome.Data() != nil {
		part = NewDataPart(outcome.Data())
	} else {
		part = NewTextPart(outcome.Text())
	}

	name := fmt.Sprintf("%s-result", e.agent.Name())
	if err := updater.AddArtifact([]Part{part}, name); err != nil {
		return err
	}
	if e.artifacts != nil {
		if data, err := json.Marshal(outcome.Content); err == nil {
			if err := e.artifacts.Save(task.ContextID, name, data); err != nil {
				e.logger.Warn("artifact persistence failed", "task_id", task.ID, "error", err)
			}
		}
	}
	if err := updater.Complete(); err != nil {
		return err
	}
	task.Status.State = TaskStateCompleted
	return nil
}

// Cancel always fails fast: cancellation is not part of this host's contract.
func (e *taskExecutor) Cancel(ctx context.Context, reqCtx *RequestContext, queue EventQueue) error {
	return ErrUnsupportedOperation
}
