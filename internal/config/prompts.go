package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Prompts holds the instruction templates for the two model calls the
// orchestrator makes per turn. Operators can override them by dropping
// a prompts.yaml next to config.json; missing fields keep defaults.
type Prompts struct {
	// ClassifySystem is the system instruction for the intent
	// classification call.
	ClassifySystem string `yaml:"classify_system"`

	// BreakdownSystem is the system instruction for the task
	// decomposition call.
	BreakdownSystem string `yaml:"breakdown_system"`

	// ChatSystem is the system instruction for plain conversational
	// answers.
	ChatSystem string `yaml:"chat_system"`
}

// DefaultPrompts returns the built-in instruction templates.
func DefaultPrompts() Prompts {
	return Prompts{
		ClassifySystem: `You classify one chat message from a software project conversation.
Respond with ONLY a JSON object, no prose:
{"intent": "create_tasks" | "record_memory" | "question" | "chat", "confidence": 0.0-1.0, "memory_type": "decision"|"spec"|"note", "reason": "short"}
Use "create_tasks" only when the user clearly asks for work to be planned or added.
Use "record_memory" when the message states a decision, spec detail or fact worth keeping.
When unsure, prefer "chat" with low confidence.`,

		BreakdownSystem: `You break a feature request into concrete development tasks.
Respond with ONLY a JSON array, no prose:
[{"title": "...", "description": "...", "priority": "low"|"medium"|"high", "order": 0, "parent_task_id": null}]
The first task should be the root deliverable; subtasks may reference an earlier task by its position (1-based) in "parent_task_id".
Keep titles short and imperative. 3 to 7 tasks.`,

		ChatSystem: `You are a concise assistant for a software project management tool.
Answer the user's message helpfully using the provided project context. Plain text, no JSON.`,
	}
}

// PromptsPath returns the prompts file path inside the workspace.
func PromptsPath(workspace string) string {
	return filepath.Join(workspace, Dir, "prompts.yaml")
}

// LoadPrompts reads prompt overrides from prompts.yaml, returning
// defaults when the file is absent.
func LoadPrompts(workspace string) (Prompts, error) {
	prompts := DefaultPrompts()

	data, err := os.ReadFile(PromptsPath(workspace))
	if os.IsNotExist(err) {
		return prompts, nil
	}
	if err != nil {
		return prompts, fmt.Errorf("read prompts: %w", err)
	}

	var overrides Prompts
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return prompts, fmt.Errorf("parse prompts: %w", err)
	}
	if overrides.ClassifySystem != "" {
		prompts.ClassifySystem = overrides.ClassifySystem
	}
	if overrides.BreakdownSystem != "" {
		prompts.BreakdownSystem = overrides.BreakdownSystem
	}
	if overrides.ChatSystem != "" {
		prompts.ChatSystem = overrides.ChatSystem
	}
	return prompts, nil
}
