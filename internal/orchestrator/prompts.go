package orchestrator

import (
	"fmt"
	"strings"

	"taskchat/internal/types"
)

// historyWindow caps how many prior exchanges are replayed into a
// prompt. Older turns are represented by the running summary instead.
const historyWindow = 5

// relevantLimit caps how many tasks/memories are listed in a prompt.
const relevantLimit = 10

// buildClassifyPrompt gives the classifier the message plus just enough
// context to tell a work request from small talk.
func (o *Orchestrator) buildClassifyPrompt(message string, convCtx types.ConversationContext) string {
	var sb strings.Builder

	writeProject(&sb, convCtx.Project)
	if convCtx.Summary != "" {
		sb.WriteString("## Conversation Summary\n\n")
		sb.WriteString(convCtx.Summary)
		sb.WriteString("\n\n")
	}
	writeHistory(&sb, convCtx.Exchanges)

	sb.WriteString("## Message To Classify\n\n")
	sb.WriteString(message)
	return sb.String()
}

// buildBreakdownPrompt gives the decomposition call the full project
// picture: context, existing relevant tasks (so the model can reference
// real ids) and recorded memories.
func (o *Orchestrator) buildBreakdownPrompt(message string, convCtx types.ConversationContext) string {
	var sb strings.Builder

	writeProject(&sb, convCtx.Project)

	if len(convCtx.RelevantTasks) > 0 {
		sb.WriteString("## Existing Tasks\n\n")
		for i, t := range convCtx.RelevantTasks {
			if i == relevantLimit {
				break
			}
			fmt.Fprintf(&sb, "- %s: %s (%s)\n", t.ID, t.Title, t.Priority)
		}
		sb.WriteString("\n")
	}

	if len(convCtx.RelevantMemories) > 0 {
		sb.WriteString("## Project Memories\n\n")
		for i, m := range convCtx.RelevantMemories {
			if i == relevantLimit {
				break
			}
			fmt.Fprintf(&sb, "- [%s] %s: %s\n", m.Type, m.Title, m.Content)
		}
		sb.WriteString("\n")
	}

	writeHistory(&sb, convCtx.Exchanges)

	sb.WriteString("## Request To Break Down\n\n")
	sb.WriteString(message)
	return sb.String()
}

// buildChatPrompt folds project context and recent history into a
// plain question-answering prompt.
func (o *Orchestrator) buildChatPrompt(message string, convCtx types.ConversationContext) string {
	var sb strings.Builder

	writeProject(&sb, convCtx.Project)
	if convCtx.Summary != "" {
		sb.WriteString("## Conversation Summary\n\n")
		sb.WriteString(convCtx.Summary)
		sb.WriteString("\n\n")
	}

	if len(convCtx.RelevantTasks) > 0 {
		sb.WriteString("## Relevant Tasks\n\n")
		for i, t := range convCtx.RelevantTasks {
			if i == relevantLimit {
				break
			}
			status := "open"
			if t.Completed {
				status = "done"
			}
			fmt.Fprintf(&sb, "- %s (%s, %s)\n", t.Title, t.Priority, status)
		}
		sb.WriteString("\n")
	}

	writeHistory(&sb, convCtx.Exchanges)

	sb.WriteString("## Current Message\n\n")
	sb.WriteString(message)
	return sb.String()
}

func writeProject(sb *strings.Builder, p types.ProjectContext) {
	if p.Name == "" && p.Description == "" && p.TechStack == "" {
		return
	}
	sb.WriteString("## Project\n\n")
	if p.Name != "" {
		fmt.Fprintf(sb, "Name: %s\n", p.Name)
	}
	if p.Description != "" {
		fmt.Fprintf(sb, "Description: %s\n", p.Description)
	}
	if p.TechStack != "" {
		fmt.Fprintf(sb, "Stack: %s\n", p.TechStack)
	}
	sb.WriteString("\n")
}

// writeHistory includes the last few exchanges so replies stay
// anchored to the recent conversation.
func writeHistory(sb *strings.Builder, exchanges []types.Exchange) {
	if len(exchanges) == 0 {
		return
	}
	sb.WriteString("## Recent Conversation\n\n")
	start := 0
	if len(exchanges) > historyWindow {
		start = len(exchanges) - historyWindow
	}
	for _, ex := range exchanges[start:] {
		fmt.Fprintf(sb, "**user**: %s\n\n", ex.UserText)
		if ex.SystemText != "" {
			fmt.Fprintf(sb, "**assistant**: %s\n\n", ex.SystemText)
		}
	}
	sb.WriteString("---\n\n")
}
