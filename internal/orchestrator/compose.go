package orchestrator

import (
	"fmt"
	"strings"

	"taskchat/internal/types"
)

// composeTaskReply turns the Execute outcome into the user-visible
// reply. Internal fault text stays in the logs; the reply only ever
// says what was created and how much could not be saved.
func (o *Orchestrator) composeTaskReply(out outcome) *types.TurnResult {
	failures := 0
	for _, res := range out.results {
		if res != nil && !res.Success {
			failures++
		}
	}

	if len(out.tasks) == 0 {
		return &types.TurnResult{Response: apologyReply, Type: types.TurnError}
	}

	var sb strings.Builder
	if len(out.tasks) == 1 {
		sb.WriteString("I created 1 task:\n\n")
	} else {
		fmt.Fprintf(&sb, "I created %d tasks:\n\n", len(out.tasks))
	}
	for _, t := range out.tasks {
		indent := ""
		if !t.IsRoot() {
			indent = "  "
		}
		fmt.Fprintf(&sb, "%s- **%s** (%s)\n", indent, t.Title, t.Priority)
	}
	if failures > 0 {
		fmt.Fprintf(&sb, "\n%d task(s) could not be saved.\n", failures)
	}

	return &types.TurnResult{
		Response: sb.String(),
		Tasks:    out.tasks,
		Type:     types.TurnTaskCreated,
	}
}
