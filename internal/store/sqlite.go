package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"taskchat/internal/logging"
	"taskchat/internal/types"
)

const schema = `
CREATE TABLE IF NOT EXISTS projects (
	id         TEXT PRIMARY KEY,
	created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS tasks (
	id          TEXT PRIMARY KEY,
	project_id  TEXT NOT NULL REFERENCES projects(id),
	title       TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	priority    TEXT NOT NULL DEFAULT 'medium',
	position    INTEGER NOT NULL DEFAULT 0,
	parent_id   TEXT,
	completed   INTEGER NOT NULL DEFAULT 0,
	created_at  INTEGER NOT NULL,
	updated_at  INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_tasks_project ON tasks(project_id);
CREATE INDEX IF NOT EXISTS idx_tasks_parent ON tasks(parent_id);

CREATE TABLE IF NOT EXISTS memories (
	id         TEXT PRIMARY KEY,
	project_id TEXT NOT NULL REFERENCES projects(id),
	title      TEXT NOT NULL,
	content    TEXT NOT NULL DEFAULT '',
	type       TEXT NOT NULL DEFAULT 'note',
	created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_memories_project ON memories(project_id);
`

// SQLiteStore implements Store on a local SQLite database using the
// pure-Go modernc driver. Writes are serialized by a mutex; SQLite
// handles one writer at a time anyway and the per-turn write volume is
// a handful of rows.
type SQLiteStore struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteStore creates or opens the database at dbPath and ensures
// the schema exists. The parent directory is created when missing.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dbPath == "" {
		return nil, fmt.Errorf("database path required")
	}
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	logging.StoreDebug("sqlite store ready at %s", dbPath)
	return &SQLiteStore{db: db}, nil
}

// NewMemoryStore opens an in-memory database, used by tests and the
// CLI's --ephemeral mode.
func NewMemoryStore() (*SQLiteStore, error) {
	return NewSQLiteStore("file::memory:?cache=shared")
}

func (s *SQLiteStore) EnsureProject(ctx context.Context, projectID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO projects (id, created_at) VALUES (?, ?)`,
		projectID, time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("ensure project %s: %w", projectID, err)
	}
	return nil
}

func (s *SQLiteStore) LoadTasks(ctx context.Context, projectID string) ([]types.Task, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, description, priority, position, COALESCE(parent_id, ''), completed, created_at, updated_at
		FROM tasks WHERE project_id = ? ORDER BY created_at, position`, projectID)
	if err != nil {
		return nil, fmt.Errorf("load tasks for %s: %w", projectID, err)
	}
	defer rows.Close()

	var tasks []types.Task
	for rows.Next() {
		var (
			t                  types.Task
			priority           string
			completed          int
			createdMs, updated int64
		)
		if err := rows.Scan(&t.ID, &t.Title, &t.Description, &priority, &t.Order,
			&t.ParentID, &completed, &createdMs, &updated); err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		t.ProjectID = projectID
		t.Priority = types.Priority(priority)
		t.Completed = completed != 0
		t.CreatedAt = time.UnixMilli(createdMs).UTC()
		t.UpdatedAt = time.UnixMilli(updated).UTC()
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func (s *SQLiteStore) CreateTask(ctx context.Context, projectID string, desc types.TaskDescriptor, parentID string) (types.Task, error) {
	if desc.Title == "" {
		return types.Task{}, ErrEmptyTitle
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if parentID != "" {
		var one int
		err := s.db.QueryRowContext(ctx,
			`SELECT 1 FROM tasks WHERE id = ? AND project_id = ?`, parentID, projectID).Scan(&one)
		if err == sql.ErrNoRows {
			return types.Task{}, fmt.Errorf("%w: %s", ErrParentNotFound, parentID)
		}
		if err != nil {
			return types.Task{}, fmt.Errorf("check parent %s: %w", parentID, err)
		}
	}

	now := time.Now().UTC()
	task := types.Task{
		ID:          "task-" + uuid.NewString(),
		ProjectID:   projectID,
		Title:       desc.Title,
		Description: desc.Description,
		Priority:    desc.Priority,
		Order:       desc.Order,
		ParentID:    parentID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	var parent any
	if parentID != "" {
		parent = parentID
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tasks (id, project_id, title, description, priority, position, parent_id, completed, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, 0, ?, ?)`,
		task.ID, projectID, task.Title, task.Description, string(task.Priority),
		task.Order, parent, now.UnixMilli(), now.UnixMilli())
	if err != nil {
		return types.Task{}, fmt.Errorf("insert task: %w", err)
	}

	logging.StoreDebug("created task %s (parent=%q) in project %s", task.ID, parentID, projectID)
	return task, nil
}

func (s *SQLiteStore) LoadMemories(ctx context.Context, projectID string) ([]types.Memory, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, content, type, created_at
		FROM memories WHERE project_id = ? ORDER BY created_at`, projectID)
	if err != nil {
		return nil, fmt.Errorf("load memories for %s: %w", projectID, err)
	}
	defer rows.Close()

	var memories []types.Memory
	for rows.Next() {
		var (
			m         types.Memory
			typ       string
			createdMs int64
		)
		if err := rows.Scan(&m.ID, &m.Title, &m.Content, &typ, &createdMs); err != nil {
			return nil, fmt.Errorf("scan memory: %w", err)
		}
		m.ProjectID = projectID
		m.Type = types.MemoryType(typ)
		m.CreatedAt = time.UnixMilli(createdMs).UTC()
		memories = append(memories, m)
	}
	return memories, rows.Err()
}

func (s *SQLiteStore) CreateMemory(ctx context.Context, projectID string, title, content string, typ types.MemoryType) (types.Memory, error) {
	if title == "" {
		return types.Memory{}, ErrEmptyTitle
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	memory := types.Memory{
		ID:        "mem-" + uuid.NewString(),
		ProjectID: projectID,
		Title:     title,
		Content:   content,
		Type:      typ,
		CreatedAt: now,
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO memories (id, project_id, title, content, type, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		memory.ID, projectID, title, content, string(typ), now.UnixMilli())
	if err != nil {
		return types.Memory{}, fmt.Errorf("insert memory: %w", err)
	}

	logging.StoreDebug("created memory %s (%s) in project %s", memory.ID, typ, projectID)
	return memory, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
