package orchestrator

import (
	"context"
	"encoding/json"
	"strings"

	"taskchat/internal/logging"
	"taskchat/internal/types"
)

// Intents the classifier can return.
const (
	intentCreateTasks  = "create_tasks"
	intentRecordMemory = "record_memory"
	intentQuestion     = "question"
	intentChat         = "chat"
)

// minConfidence is the threshold below which actionable intents are
// demoted to chat. Creating artifacts speculatively is worse than
// asking the user to rephrase.
const minConfidence = 0.5

// classification is the constrained JSON shape the classify call must
// produce.
type classification struct {
	Intent     string           `json:"intent"`
	Confidence float64          `json:"confidence"`
	MemoryType types.MemoryType `json:"memory_type"`
	Reason     string           `json:"reason"`
}

// classify runs the intent classification model call. Any failure mode
// (transport, malformed JSON, unknown intent, low confidence) resolves
// to a chat classification; this function never fails the turn.
func (o *Orchestrator) classify(ctx context.Context, message string, convCtx types.ConversationContext) classification {
	fallback := classification{Intent: intentChat}

	raw, err := o.model.CompleteWithSystem(ctx, o.prompts.ClassifySystem, o.buildClassifyPrompt(message, convCtx))
	if err != nil {
		logging.OrchWarn("classification model call failed: %v", err)
		return fallback
	}

	jsonStr := extractObject(raw)
	if jsonStr == "" {
		logging.OrchDebug("no JSON object in classification response")
		return fallback
	}

	var cls classification
	if err := json.Unmarshal([]byte(jsonStr), &cls); err != nil {
		logging.OrchDebug("classification parse failed: %v", err)
		return fallback
	}

	cls.Intent = strings.ToLower(strings.TrimSpace(cls.Intent))
	switch cls.Intent {
	case intentCreateTasks, intentRecordMemory:
		if cls.Confidence < minConfidence {
			logging.OrchDebug("demoting %s (confidence %.2f) to chat", cls.Intent, cls.Confidence)
			return fallback
		}
	case intentQuestion, intentChat:
		cls.Intent = intentChat
	default:
		return fallback
	}

	if cls.Intent == intentRecordMemory {
		cls.MemoryType = types.ParseMemoryType(string(cls.MemoryType))
	}
	return cls
}

// extractObject finds the first JSON object in a response, tolerating
// markdown wrappers and surrounding prose. The scan is depth-counted
// and string-aware.
func extractObject(response string) string {
	start := strings.Index(response, "{")
	if start == -1 {
		return ""
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(response); i++ {
		c := response[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return response[start : i+1]
			}
		}
	}
	return ""
}
