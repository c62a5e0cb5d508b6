// Package store owns persistence of projects, tasks and memories.
// The orchestrator core depends only on the Store interface; the SQLite
// implementation lives alongside it in this package.
package store

import (
	"context"
	"errors"

	"taskchat/internal/types"
)

// Store errors.
var (
	// ErrProjectNotFound is returned when a project id is unknown.
	ErrProjectNotFound = errors.New("project not found")

	// ErrParentNotFound is returned when a task's parent id does not
	// exist within the same project.
	ErrParentNotFound = errors.New("parent task not found")

	// ErrEmptyTitle is returned when a task or memory has no title.
	ErrEmptyTitle = errors.New("title cannot be empty")
)

// Store is the storage collaborator consumed by the orchestration core.
// All calls are atomic per call; the core never caches results across
// turns and re-reads task ids before each parent resolution.
type Store interface {
	// EnsureProject creates the project row if it does not exist yet.
	EnsureProject(ctx context.Context, projectID string) error

	// LoadTasks returns all tasks of a project ordered by creation.
	LoadTasks(ctx context.Context, projectID string) ([]types.Task, error)

	// CreateTask persists a descriptor under the given parent. An empty
	// parentID creates a root task. The parent, when set, must already
	// exist in the same project.
	CreateTask(ctx context.Context, projectID string, desc types.TaskDescriptor, parentID string) (types.Task, error)

	// LoadMemories returns all memories of a project ordered by creation.
	LoadMemories(ctx context.Context, projectID string) ([]types.Memory, error)

	// CreateMemory persists a memory.
	CreateMemory(ctx context.Context, projectID string, title, content string, typ types.MemoryType) (types.Memory, error)

	// Close releases the underlying resources.
	Close() error
}
