// Package orchestrator owns one conversation turn end to end: it
// classifies intent, asks the model for a task breakdown, repairs the
// parent linkage, dispatches tool calls and composes the reply.
//
// The turn is a straight-line state machine:
//
//	Classify -> Breakdown -> Resolve -> Execute -> Compose -> Done
//
// Breakdown, Resolve and Execute are skipped for conversational turns.
// ProcessTurn never returns an error: every failure mode degrades to a
// well-formed TurnResult.
package orchestrator

import (
	"context"
	"strings"

	"taskchat/internal/config"
	"taskchat/internal/llm"
	"taskchat/internal/logging"
	"taskchat/internal/parser"
	"taskchat/internal/resolve"
	"taskchat/internal/store"
	"taskchat/internal/tools"
	"taskchat/internal/types"
)

// fallbackReply is what the user sees when the model cannot be reached.
const fallbackReply = "I wasn't able to process that request right now. Please try again in a moment."

// apologyReply is what the user sees when every tool call failed.
// Internal fault text never leaks into it.
const apologyReply = "I understood what you asked for, but I couldn't save the results. Nothing was created; please try again."

// Orchestrator processes conversation turns. It holds no per-turn
// state; a single instance serves concurrent conversations.
type Orchestrator struct {
	model    llm.Client
	store    store.Store
	registry *tools.Registry
	prompts  config.Prompts

	// maxResponse is the reply size budget enforced by Bound.
	maxResponse int
}

// New wires an orchestrator from its collaborators.
func New(model llm.Client, st store.Store, registry *tools.Registry, prompts config.Prompts, maxResponse int) *Orchestrator {
	if maxResponse <= 0 {
		maxResponse = 4000
	}
	return &Orchestrator{
		model:       model,
		store:       st,
		registry:    registry,
		prompts:     prompts,
		maxResponse: maxResponse,
	}
}

// ProcessTurn runs one full turn. activeTaskID may be empty; when set,
// new root tasks are parented to it. The returned TurnResult is always
// well-formed; its reply never exceeds the configured size budget.
func (o *Orchestrator) ProcessTurn(ctx context.Context, message, projectID string, convCtx types.ConversationContext, activeTaskID string) *types.TurnResult {
	result := o.processTurn(ctx, message, projectID, convCtx, activeTaskID)
	result.Response = Bound(result.Response, o.maxResponse)
	if result.Tasks == nil {
		result.Tasks = []types.Task{}
	}
	if result.Memories == nil {
		result.Memories = []types.Memory{}
	}
	return result
}

func (o *Orchestrator) processTurn(ctx context.Context, message, projectID string, convCtx types.ConversationContext, activeTaskID string) *types.TurnResult {
	if err := ctx.Err(); err != nil {
		return &types.TurnResult{Response: fallbackReply, Type: types.TurnChat}
	}

	// Classify.
	cls := o.classify(ctx, message, convCtx)
	logging.OrchDebug("turn classified as %s (confidence=%.2f)", cls.Intent, cls.Confidence)

	switch cls.Intent {
	case intentCreateTasks:
		return o.taskCreationTurn(ctx, message, projectID, convCtx, activeTaskID)
	case intentRecordMemory:
		return o.memoryTurn(ctx, message, projectID, cls)
	default:
		return o.conversationalTurn(ctx, message, convCtx)
	}
}

// taskCreationTurn runs Breakdown -> Resolve -> Execute -> Compose.
func (o *Orchestrator) taskCreationTurn(ctx context.Context, message, projectID string, convCtx types.ConversationContext, activeTaskID string) *types.TurnResult {
	// Breakdown.
	raw, err := o.model.CompleteWithSystem(ctx, o.prompts.BreakdownSystem, o.buildBreakdownPrompt(message, convCtx))
	if err != nil {
		logging.OrchWarn("breakdown model call failed: %v", err)
		return &types.TurnResult{Response: fallbackReply, Type: types.TurnChat}
	}

	descs, ok := parser.Parse(raw)
	if !ok {
		// The model answered but not with anything task-shaped; treat
		// its text as a conversational reply rather than failing the
		// turn.
		logging.OrchWarn("breakdown output had no recoverable tasks, degrading to chat")
		return &types.TurnResult{Response: raw, Type: types.TurnChat}
	}

	if err := ctx.Err(); err != nil {
		return &types.TurnResult{Response: fallbackReply, Type: types.TurnChat}
	}

	// Resolve. Existing ids are re-read here, not cached from the
	// conversation context, so concurrent turns on the same project
	// cannot leave us resolving against a stale id set.
	existing := make(map[string]bool)
	if tasks, err := o.store.LoadTasks(ctx, projectID); err == nil {
		for _, t := range tasks {
			existing[t.ID] = true
		}
	} else {
		logging.OrchWarn("loading existing tasks failed, resolving against empty set: %v", err)
	}
	resolutions := resolve.Resolve(descs, existing, activeTaskID)

	// Execute.
	outcome := o.execute(ctx, projectID, resolutions)

	// Compose.
	return o.composeTaskReply(outcome)
}

// memoryTurn records one memory and confirms it.
func (o *Orchestrator) memoryTurn(ctx context.Context, message, projectID string, cls classification) *types.TurnResult {
	res := o.registry.Execute(ctx, tools.ToolCreateMemory, map[string]any{
		"project_id": projectID,
		"title":      memoryTitle(message),
		"content":    message,
		"type":       string(cls.MemoryType),
	})
	if !res.Success {
		logging.OrchWarn("create_memory failed: %s", res.Message)
		return &types.TurnResult{Response: apologyReply, Type: types.TurnError}
	}

	var memories []types.Memory
	if m, ok := res.Payload["memory"].(types.Memory); ok {
		memories = append(memories, m)
	}
	return &types.TurnResult{
		Response: "Noted. I recorded that as a " + string(cls.MemoryType) + " for this project.",
		Memories: memories,
		Type:     types.TurnTaskCreated,
	}
}

// conversationalTurn answers without touching any tool.
func (o *Orchestrator) conversationalTurn(ctx context.Context, message string, convCtx types.ConversationContext) *types.TurnResult {
	reply, err := o.model.CompleteWithSystem(ctx, o.prompts.ChatSystem, o.buildChatPrompt(message, convCtx))
	if err != nil || strings.TrimSpace(reply) == "" {
		if err != nil {
			logging.OrchWarn("chat model call failed: %v", err)
		}
		return &types.TurnResult{Response: fallbackReply, Type: types.TurnChat}
	}
	return &types.TurnResult{Response: reply, Type: types.TurnChat}
}

// memoryTitle derives a short title from the message text.
func memoryTitle(message string) string {
	title := strings.TrimSpace(message)
	if i := strings.IndexAny(title, "\n"); i > 0 {
		title = title[:i]
	}
	const maxTitle = 80
	if len(title) > maxTitle {
		title = strings.TrimSpace(title[:maxTitle])
	}
	if title == "" {
		title = "Untitled note"
	}
	return title
}
