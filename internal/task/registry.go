package task

import (
	"fmt"
	"sync"
)

// ErrNotFound is returned when a task id is not in the registry.
// ErrDuplicate is returned when a task id is already taken.
var (
	ErrNotFound  = fmt.Errorf("task not found")
	ErrDuplicate = fmt.Errorf("task id already exists")
)

// Registry is the server's authoritative task collection.
// Tasks are kept in insertion order; clients mirror that order.
type Registry struct {
	mu    sync.RWMutex
	order []string
	tasks map[string]Task
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		tasks: make(map[string]Task),
	}
}

// Add stores a new task. Returns ErrDuplicate if the id is taken.
func (r *Registry) Add(t Task) error {
	if err := t.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.tasks[t.ID]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicate, t.ID)
	}

	r.tasks[t.ID] = t
	r.order = append(r.order, t.ID)
	return nil
}

// Get returns a task by id.
func (r *Registry) Get(id string) (Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.tasks[id]
	if !ok {
		return Task{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return t, nil
}

// Remove deletes a task by id. Returns ErrNotFound if absent.
func (r *Registry) Remove(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.tasks[id]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	delete(r.tasks, id)
	for i, existing := range r.order {
		if existing == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

// List returns all tasks in insertion order.
func (r *Registry) List() *List {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tasks := make([]Task, 0, len(r.order))
	for _, id := range r.order {
		tasks = append(tasks, r.tasks[id])
	}

	return &List{
		Tasks: tasks,
		Total: len(tasks),
	}
}

// Exists checks if a task id is registered.
func (r *Registry) Exists(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.tasks[id]
	return ok
}
