// Package store maintains the client-side view of the remote task
// collection. All reads and writes go through the store: mutations are
// applied optimistically and rolled back when the backend rejects them,
// so the local list never diverges permanently from the server.
package store

import (
	"context"
	"errors"
	"iter"
	"strings"
	"sync"
)

// Task represents a named, owned, executable command mirrored from the
// backend. LastOutput holds the output of the most recent execute; it is
// transient and never sent to the backend.
type Task struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Owner      string `json:"owner"`
	Command    string `json:"command"`
	LastOutput string `json:"-"`
}

// State tags an entry's reconciliation status.
type State int

const (
	// Confirmed means the entry matches the last successful server read.
	Confirmed State = iota
	// Pending means an optimistic mutation is awaiting the backend.
	Pending
	// RollingBack means the backend rejected the mutation and the local
	// change is being reversed.
	RollingBack
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case Confirmed:
		return "confirmed"
	case Pending:
		return "pending"
	case RollingBack:
		return "rolling_back"
	default:
		return "unknown"
	}
}

// Entry is a read-only view of one task and its reconciliation state.
type Entry struct {
	Task  Task
	State State
}

// Backend is the remote API the store reconciles against.
type Backend interface {
	// ListTasks returns the full collection in server order.
	ListTasks(ctx context.Context) ([]Task, error)

	// CreateTask stores a new task remotely.
	CreateTask(ctx context.Context, t Task) error

	// DeleteTask removes a task remotely.
	DeleteTask(ctx context.Context, id string) error

	// RunTask executes a task's command remotely and returns its output.
	// Partial output may accompany a non-nil error.
	RunTask(ctx context.Context, id string) (string, error)
}

type entry struct {
	task  Task
	state State
}

// Store owns the local task list. The presentation layer only reads
// snapshots; every mutation goes through a store operation.
type Store struct {
	backend Backend

	mu            sync.Mutex
	entries       []*entry
	pendingDelete map[string]bool

	lockMu sync.Mutex
	locks  map[string]*sync.Mutex
}

// New creates a store backed by the given API.
func New(backend Backend) *Store {
	return &Store{
		backend:       backend,
		pendingDelete: make(map[string]bool),
		locks:         make(map[string]*sync.Mutex),
	}
}

// idLock returns the lock serializing operations on one task id.
// Operations on unrelated ids proceed concurrently.
func (s *Store) idLock(id string) *sync.Mutex {
	s.lockMu.Lock()
	defer s.lockMu.Unlock()

	lk, ok := s.locks[id]
	if !ok {
		lk = &sync.Mutex{}
		s.locks[id] = lk
	}
	return lk
}

// List refreshes the local list from the backend and returns it in
// server order. On failure the last known-good list is kept untouched.
// Entries with an in-flight optimistic create stay in the list; ids with
// an in-flight optimistic delete are excluded even if the server still
// reports them.
func (s *Store) List(ctx context.Context) ([]Task, error) {
	remote, err := s.backend.ListTasks(ctx)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	prev := make(map[string]*entry, len(s.entries))
	for _, e := range s.entries {
		prev[e.task.ID] = e
	}

	seen := make(map[string]bool, len(remote))
	next := make([]*entry, 0, len(remote))
	for _, t := range remote {
		if s.pendingDelete[t.ID] {
			continue
		}
		seen[t.ID] = true
		if old, ok := prev[t.ID]; ok {
			// Keep transient output across refreshes.
			t.LastOutput = old.task.LastOutput
		}
		next = append(next, &entry{task: t, state: Confirmed})
	}

	// Optimistic creates the server does not know about yet.
	for _, e := range s.entries {
		if e.state != Confirmed && !seen[e.task.ID] {
			next = append(next, e)
		}
	}

	s.entries = next
	return s.tasksLocked(), nil
}

// Create validates the task, appends it optimistically and issues the
// remote create. A remote rejection removes the entry again and surfaces
// CreateFailed carrying the original task.
func (s *Store) Create(ctx context.Context, t Task) error {
	if err := validate(t); err != nil {
		return err
	}

	lk := s.idLock(t.ID)
	lk.Lock()
	defer lk.Unlock()

	e := &entry{task: t, state: Pending}
	s.mu.Lock()
	s.entries = append(s.entries, e)
	s.mu.Unlock()

	if err := s.backend.CreateTask(ctx, t); err != nil {
		s.mu.Lock()
		e.state = RollingBack
		s.removeEntryLocked(e)
		s.mu.Unlock()
		return &CreateFailed{Task: t, Err: err}
	}

	s.mu.Lock()
	e.state = Confirmed
	s.mu.Unlock()
	return nil
}

// Search returns a lazy, restartable view of the local list filtered by
// case-insensitive substring match on the task name. Each traversal reads
// a fresh snapshot; no network call, no mutation.
func (s *Store) Search(query string) iter.Seq[Task] {
	q := strings.ToLower(query)
	return func(yield func(Task) bool) {
		for _, e := range s.Snapshot() {
			if strings.Contains(strings.ToLower(e.Task.Name), q) {
				if !yield(e.Task) {
					return
				}
			}
		}
	}
}

// Remove deletes a task optimistically and issues the remote delete.
// A remote rejection restores the entry at its original position and
// surfaces DeleteFailed. A remote not-found means another client already
// deleted the task; the late caller gets NotFoundError and the entry
// stays removed.
func (s *Store) Remove(ctx context.Context, id string) error {
	lk := s.idLock(id)
	lk.Lock()
	defer lk.Unlock()

	s.mu.Lock()
	idx := s.indexLocked(id)
	if idx < 0 {
		s.mu.Unlock()
		return &NotFoundError{ID: id}
	}
	e := s.entries[idx]
	e.state = Pending
	s.entries = append(s.entries[:idx], s.entries[idx+1:]...)
	s.pendingDelete[id] = true
	s.mu.Unlock()

	err := s.backend.DeleteTask(ctx, id)

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.pendingDelete, id)

	if err != nil {
		var nf *NotFoundError
		if errors.As(err, &nf) {
			// Deleted remotely by someone else; last write wins.
			return err
		}
		e.state = Confirmed
		if idx > len(s.entries) {
			idx = len(s.entries)
		}
		s.entries = append(s.entries[:idx], append([]*entry{e}, s.entries[idx:]...)...)
		return &DeleteFailed{Task: e.task, Err: err}
	}
	return nil
}

// Execute runs a task's command remotely. On success the output is
// recorded as the task's LastOutput and returned. On failure the caller
// receives ExecutionFailed with whatever partial output came back.
func (s *Store) Execute(ctx context.Context, id string) (string, error) {
	lk := s.idLock(id)
	lk.Lock()
	defer lk.Unlock()

	s.mu.Lock()
	idx := s.indexLocked(id)
	if idx < 0 {
		s.mu.Unlock()
		return "", &NotFoundError{ID: id}
	}
	s.mu.Unlock()

	output, err := s.backend.RunTask(ctx, id)
	if err != nil {
		var nf *NotFoundError
		if errors.As(err, &nf) {
			return "", err
		}
		return "", &ExecutionFailed{ID: id, Output: output, Err: err}
	}

	s.mu.Lock()
	if idx := s.indexLocked(id); idx >= 0 {
		s.entries[idx].task.LastOutput = output
	}
	s.mu.Unlock()
	return output, nil
}

// Snapshot returns a read-only copy of the local list for rendering.
// Pending entries are included with their state so the presentation
// layer can mark them distinctly.
func (s *Store) Snapshot() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Entry, len(s.entries))
	for i, e := range s.entries {
		out[i] = Entry{Task: e.task, State: e.state}
	}
	return out
}

// Tasks returns the current local list without states.
func (s *Store) Tasks() []Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tasksLocked()
}

func (s *Store) tasksLocked() []Task {
	out := make([]Task, len(s.entries))
	for i, e := range s.entries {
		out[i] = e.task
	}
	return out
}

func (s *Store) indexLocked(id string) int {
	for i, e := range s.entries {
		if e.task.ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) removeEntryLocked(target *entry) {
	for i, e := range s.entries {
		if e == target {
			s.entries = append(s.entries[:i], s.entries[i+1:]...)
			return
		}
	}
}

func validate(t Task) error {
	switch {
	case t.ID == "":
		return &ValidationError{Field: "id"}
	case t.Name == "":
		return &ValidationError{Field: "name"}
	case t.Owner == "":
		return &ValidationError{Field: "owner"}
	case t.Command == "":
		return &ValidationError{Field: "command"}
	}
	return nil
}
