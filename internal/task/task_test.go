package task

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTask_Validate(t *testing.T) {
	valid := Task{ID: "1", Name: "Build", Owner: "alice", Command: "make"}
	assert.NoError(t, valid.Validate())

	assert.Error(t, Task{Name: "Build", Owner: "alice", Command: "make"}.Validate())
	assert.Error(t, Task{ID: "1", Owner: "alice", Command: "make"}.Validate())
	assert.Error(t, Task{ID: "1", Name: "Build", Command: "make"}.Validate())
	assert.Error(t, Task{ID: "1", Name: "Build", Owner: "alice"}.Validate())
}

func TestRegistry_AddAndGet(t *testing.T) {
	r := NewRegistry()

	err := r.Add(Task{ID: "1", Name: "Build", Owner: "alice", Command: "make"})
	require.NoError(t, err)

	got, err := r.Get("1")
	require.NoError(t, err)
	assert.Equal(t, "Build", got.Name)
	assert.Equal(t, "alice", got.Owner)
}

func TestRegistry_AddDuplicate(t *testing.T) {
	r := NewRegistry()

	require.NoError(t, r.Add(Task{ID: "1", Name: "Build", Owner: "alice", Command: "make"}))

	err := r.Add(Task{ID: "1", Name: "Other", Owner: "bob", Command: "true"})
	assert.ErrorIs(t, err, ErrDuplicate)

	// Original task untouched
	got, err := r.Get("1")
	require.NoError(t, err)
	assert.Equal(t, "Build", got.Name)
}

func TestRegistry_AddInvalid(t *testing.T) {
	r := NewRegistry()

	err := r.Add(Task{ID: "1", Name: "Build"})
	assert.Error(t, err)
	assert.False(t, r.Exists("1"))
}

func TestRegistry_GetMissing(t *testing.T) {
	r := NewRegistry()

	_, err := r.Get("nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRegistry_Remove(t *testing.T) {
	r := NewRegistry()

	require.NoError(t, r.Add(Task{ID: "1", Name: "Build", Owner: "alice", Command: "make"}))
	require.NoError(t, r.Remove("1"))

	assert.False(t, r.Exists("1"))
	assert.ErrorIs(t, r.Remove("1"), ErrNotFound)
}

func TestRegistry_ListOrder(t *testing.T) {
	r := NewRegistry()

	require.NoError(t, r.Add(Task{ID: "b", Name: "Second", Owner: "alice", Command: "true"}))
	require.NoError(t, r.Add(Task{ID: "a", Name: "First", Owner: "alice", Command: "true"}))
	require.NoError(t, r.Add(Task{ID: "c", Name: "Third", Owner: "bob", Command: "true"}))

	list := r.List()
	require.Equal(t, 3, list.Total)
	assert.Equal(t, "b", list.Tasks[0].ID)
	assert.Equal(t, "a", list.Tasks[1].ID)
	assert.Equal(t, "c", list.Tasks[2].ID)

	// Removal preserves the order of the remaining tasks
	require.NoError(t, r.Remove("a"))
	list = r.List()
	require.Equal(t, 2, list.Total)
	assert.Equal(t, "b", list.Tasks[0].ID)
	assert.Equal(t, "c", list.Tasks[1].ID)
}

func TestRegistry_ListEmpty(t *testing.T) {
	r := NewRegistry()

	list := r.List()
	assert.Equal(t, 0, list.Total)
	assert.Empty(t, list.Tasks)
}
