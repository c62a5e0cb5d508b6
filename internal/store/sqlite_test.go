package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskchat/internal/types"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "taskchat.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.EnsureProject(context.Background(), "proj-1"))
	return s
}

func TestCreateAndLoadTasks(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	root, err := s.CreateTask(ctx, "proj-1", types.TaskDescriptor{
		Title:       "Add auth",
		Description: "OAuth2 flow",
		Priority:    types.PriorityHigh,
	}, "")
	require.NoError(t, err)
	assert.NotEmpty(t, root.ID)
	assert.True(t, root.IsRoot())
	assert.Equal(t, types.PriorityHigh, root.Priority)

	child, err := s.CreateTask(ctx, "proj-1", types.TaskDescriptor{
		Title:    "Add login form",
		Priority: types.PriorityMedium,
		Order:    1,
	}, root.ID)
	require.NoError(t, err)
	assert.Equal(t, root.ID, child.ParentID)

	tasks, err := s.LoadTasks(ctx, "proj-1")
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, "Add auth", tasks[0].Title)
	assert.Equal(t, "OAuth2 flow", tasks[0].Description)
	assert.Equal(t, root.ID, tasks[1].ParentID)
}

func TestCreateTaskRejectsMissingParent(t *testing.T) {
	s := newTestStore(t)

	_, err := s.CreateTask(context.Background(), "proj-1",
		types.TaskDescriptor{Title: "Orphaned", Priority: types.PriorityMedium}, "task-nope")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrParentNotFound)
}

func TestCreateTaskRejectsCrossProjectParent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.EnsureProject(ctx, "proj-2"))

	root, err := s.CreateTask(ctx, "proj-1",
		types.TaskDescriptor{Title: "Root", Priority: types.PriorityMedium}, "")
	require.NoError(t, err)

	_, err = s.CreateTask(ctx, "proj-2",
		types.TaskDescriptor{Title: "Stray child", Priority: types.PriorityMedium}, root.ID)
	assert.ErrorIs(t, err, ErrParentNotFound)
}

func TestCreateTaskRejectsEmptyTitle(t *testing.T) {
	s := newTestStore(t)
	_, err := s.CreateTask(context.Background(), "proj-1", types.TaskDescriptor{}, "")
	assert.ErrorIs(t, err, ErrEmptyTitle)
}

func TestCreateAndLoadMemories(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	m, err := s.CreateMemory(ctx, "proj-1", "Use Postgres", "Chosen over MySQL for jsonb.", types.MemoryDecision)
	require.NoError(t, err)
	assert.NotEmpty(t, m.ID)
	assert.Equal(t, types.MemoryDecision, m.Type)

	memories, err := s.LoadMemories(ctx, "proj-1")
	require.NoError(t, err)
	require.Len(t, memories, 1)
	assert.Equal(t, "Use Postgres", memories[0].Title)
	assert.Equal(t, "Chosen over MySQL for jsonb.", memories[0].Content)
}

func TestLoadEmptyProject(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	tasks, err := s.LoadTasks(ctx, "proj-1")
	require.NoError(t, err)
	assert.Empty(t, tasks)

	memories, err := s.LoadMemories(ctx, "proj-1")
	require.NoError(t, err)
	assert.Empty(t, memories)
}

func TestEnsureProjectIdempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.EnsureProject(ctx, "proj-1"))
	require.NoError(t, s.EnsureProject(ctx, "proj-1"))
}
