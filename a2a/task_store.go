package a2a

import (
	"errors"
	"sync"
)

// ErrTaskNotFound is returned when no task exists for the requested id.
var ErrTaskNotFound = errors.New("task not found")

// TaskStore persists tasks across turns of a conversation. Implementations
// must be safe for concurrent use. Stored tasks are transient collaborator
// state; the bridge remains the only writer of task status once execution of
// a task has begun.
type TaskStore interface {
	Get(taskID string) (*Task, error)
	Save(task *Task) error
	Delete(taskID string) error
}

// InMemoryTaskStore is a volatile TaskStore keeping tasks in a process-local
// map. Tasks are cloned on the way in and out so callers never share the
// stored instance.
type InMemoryTaskStore struct {
	mu    sync.RWMutex
	tasks map[string]*Task
}

// NewInMemoryTaskStore constructs an empty in-memory task store.
func NewInMemoryTaskStore() *InMemoryTaskStore {
	return &InMemoryTaskStore{tasks: make(map[string]*Task)}
}

// Get returns a copy of the stored task or ErrTaskNotFound.
func (s *InMemoryTaskStore) Get(taskID string) (*Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	task, ok := s.tasks[taskID]
	if !ok {
		return nil, ErrTaskNotFound
	}
	return cloneTask(task), nil
}

// Save stores a copy of the task keyed by its id.
func (s *InMemoryTaskStore) Save(task *Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks[task.ID] = cloneTask(task)
	return nil
}

// Delete removes the task if present or returns ErrTaskNotFound.
func (s *InMemoryTaskStore) Delete(taskID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tasks[taskID]; !ok {
		return ErrTaskNotFound
	}
	delete(s.tasks, taskID)
	return nil
}

func cloneTask(t *Task) *Task {
	cp := *t
	cp.Artifacts = append([]Artifact(nil), t.Artifacts...)
	cp.History = append([]Message(nil), t.History...)
	return &cp
}
