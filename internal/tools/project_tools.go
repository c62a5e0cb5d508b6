package tools

import (
	"context"
	"fmt"

	"taskchat/internal/store"
	"taskchat/internal/types"
)

// Tool names dispatched by the orchestrator.
const (
	ToolCreateTask   = "create_task"
	ToolCreateMemory = "create_memory"
)

// NewCreateTaskTool builds the create_task tool backed by the given
// store. Arguments: project_id, title (required); description,
// priority, order, parent_id (optional).
func NewCreateTaskTool(st store.Store) *Tool {
	return &Tool{
		Name:        ToolCreateTask,
		Description: "Create a task in the project, optionally under a parent task.",
		Schema: Schema{
			Required: []string{"project_id", "title"},
			Properties: map[string]Property{
				"project_id":  {Type: "string", Description: "Project the task belongs to"},
				"title":       {Type: "string", Description: "Short task title"},
				"description": {Type: "string", Description: "Longer task description"},
				"priority":    {Type: "string", Description: "Task priority", Enum: []any{"low", "medium", "high"}, Default: "medium"},
				"order":       {Type: "integer", Description: "Position within its siblings"},
				"parent_id":   {Type: "string", Description: "Id of an existing parent task"},
			},
		},
		Execute: func(ctx context.Context, args map[string]any) (*types.ToolResult, error) {
			desc := types.TaskDescriptor{
				Title:       ArgString(args, "title"),
				Description: ArgString(args, "description"),
				Priority:    types.ParsePriority(ArgString(args, "priority")),
			}
			if order, ok := ArgInt(args, "order"); ok {
				desc.Order = order
			}

			task, err := st.CreateTask(ctx, ArgString(args, "project_id"), desc, ArgString(args, "parent_id"))
			if err != nil {
				return nil, fmt.Errorf("create task %q: %w", desc.Title, err)
			}
			return &types.ToolResult{
				Success: true,
				Message: fmt.Sprintf("created task %q", task.Title),
				Payload: map[string]any{"id": task.ID, "task": task},
			}, nil
		},
	}
}

// NewCreateMemoryTool builds the create_memory tool backed by the given
// store. Arguments: project_id, title (required); content, type
// (optional, defaults to note).
func NewCreateMemoryTool(st store.Store) *Tool {
	return &Tool{
		Name:        ToolCreateMemory,
		Description: "Record a project memory: a decision, a spec fragment or a note.",
		Schema: Schema{
			Required: []string{"project_id", "title"},
			Properties: map[string]Property{
				"project_id": {Type: "string", Description: "Project the memory belongs to"},
				"title":      {Type: "string", Description: "Short memory title"},
				"content":    {Type: "string", Description: "Memory body"},
				"type":       {Type: "string", Description: "Kind of memory", Enum: []any{"decision", "spec", "note"}, Default: "note"},
			},
		},
		Execute: func(ctx context.Context, args map[string]any) (*types.ToolResult, error) {
			title := ArgString(args, "title")
			memory, err := st.CreateMemory(ctx, ArgString(args, "project_id"), title,
				ArgString(args, "content"), types.ParseMemoryType(ArgString(args, "type")))
			if err != nil {
				return nil, fmt.Errorf("create memory %q: %w", title, err)
			}
			return &types.ToolResult{
				Success: true,
				Message: fmt.Sprintf("recorded %s %q", memory.Type, memory.Title),
				Payload: map[string]any{"id": memory.ID, "memory": memory},
			}, nil
		},
	}
}

// RegisterProjectTools registers the standard task/memory tools.
func RegisterProjectTools(r *Registry, st store.Store) {
	r.MustRegister(NewCreateTaskTool(st))
	r.MustRegister(NewCreateMemoryTool(st))
}
