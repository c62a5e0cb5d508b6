// Package types provides shared domain types for taskchat.
// All other internal packages depend on this one; it depends on nothing
// but the standard library, which keeps the import graph acyclic.
package types

import (
	"strings"
	"time"
)

// Priority is the urgency level of a task.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// ParsePriority normalizes a free-form priority string.
// Model output is unreliable; anything unrecognized becomes medium.
func ParsePriority(s string) Priority {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low", "minor":
		return PriorityLow
	case "high", "urgent", "critical":
		return PriorityHigh
	default:
		return PriorityMedium
	}
}

// TaskDescriptor is a pre-persistence task proposed by the model.
// It exists only for the duration of a single turn; the store turns it
// into a Task when the orchestrator executes the create_task tool.
type TaskDescriptor struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Priority    Priority `json:"priority"`
	Order       int      `json:"order"`

	// ParentRef is the model's proposed parent. It may name a real task
	// id, an id invented by the model, or be empty for a root task.
	// Parent resolution decides what it actually means.
	ParentRef string `json:"parent_task_id"`
}

// Task is a persisted task owned by the storage layer.
type Task struct {
	ID          string    `json:"id"`
	ProjectID   string    `json:"project_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Priority    Priority  `json:"priority"`
	Order       int       `json:"order"`
	ParentID    string    `json:"parent_id,omitempty"` // empty = root
	Completed   bool      `json:"completed"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// IsRoot reports whether the task has no parent.
func (t Task) IsRoot() bool { return t.ParentID == "" }

// MemoryType tags what kind of knowledge a memory records.
type MemoryType string

const (
	MemoryDecision MemoryType = "decision"
	MemorySpec     MemoryType = "spec"
	MemoryNote     MemoryType = "note"
)

// ParseMemoryType normalizes a free-form memory type string.
func ParseMemoryType(s string) MemoryType {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "decision":
		return MemoryDecision
	case "spec", "specification":
		return MemorySpec
	default:
		return MemoryNote
	}
}

// Memory is a persisted piece of project knowledge. Memories are flat;
// they never participate in parent/child relationships.
type Memory struct {
	ID        string     `json:"id"`
	ProjectID string     `json:"project_id"`
	Title     string     `json:"title"`
	Content   string     `json:"content"`
	Type      MemoryType `json:"type"`
	CreatedAt time.Time  `json:"created_at"`
}

// Exchange is one prior user/system message pair.
type Exchange struct {
	UserText   string    `json:"user_text"`
	SystemText string    `json:"system_text"`
	Timestamp  time.Time `json:"timestamp"`
}

// ProjectContext describes the project the conversation is about.
type ProjectContext struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	TechStack   string `json:"tech_stack"`
}

// ConversationContext carries everything the orchestrator may need for
// one turn. It is constructed fresh by the caller and treated as
// immutable for the duration of the turn.
type ConversationContext struct {
	Exchanges        []Exchange
	Summary          string
	RelevantTasks    []Task
	RelevantMemories []Memory
	Project          ProjectContext
}

// ToolResult is the uniform envelope every tool invocation returns.
// Tools never propagate a raw fault; failures are reported here with
// Success=false and a human-readable message.
type ToolResult struct {
	Success  bool           `json:"success"`
	Message  string         `json:"message"`
	Payload  map[string]any `json:"payload,omitempty"`
	Warnings []string       `json:"warnings,omitempty"`
}

// CreatedID returns the "id" payload entry, if the tool reported one.
func (r *ToolResult) CreatedID() string {
	if r == nil || r.Payload == nil {
		return ""
	}
	if id, ok := r.Payload["id"].(string); ok {
		return id
	}
	return ""
}

// TurnType classifies the outcome of a processed turn.
type TurnType string

const (
	TurnChat        TurnType = "chat"
	TurnTaskCreated TurnType = "task_created"
	TurnError       TurnType = "error"
)

// TurnResult is what ProcessTurn hands back to the transport layer.
// Every exit path of the orchestrator produces a well-formed TurnResult;
// no fault is ever surfaced to the caller as an error.
type TurnResult struct {
	Response string   `json:"response"`
	Tasks    []Task   `json:"tasks"`
	Memories []Memory `json:"memories"`
	Type     TurnType `json:"type"`
}
