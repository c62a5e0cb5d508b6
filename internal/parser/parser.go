// Package parser recovers a typed task breakdown from raw model output.
//
// The model is asked for a JSON array of task objects but only usually
// complies: output arrives wrapped in markdown fences, preceded by prose,
// or as a plain bulleted list. Parse runs an explicit fallback chain
// instead of a single decode:
//
//	direct JSON decode -> embedded [...] extraction -> heuristic lines
//
// Each stage is a pure func(string) ([]descriptor, bool); the first stage
// that succeeds wins. Parse never returns an error and never panics.
package parser

import (
	"encoding/json"
	"regexp"
	"strings"

	"taskchat/internal/logging"
	"taskchat/internal/types"
)

// rawDescriptor mirrors the JSON contract given to the model. Fields are
// loose on purpose; normalization happens after decode.
type rawDescriptor struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Priority    string          `json:"priority"`
	Order       *int            `json:"order"`
	ParentRef   json.RawMessage `json:"parent_task_id"`
}

// Parse extracts an ordered list of task descriptors from raw model text.
// The second return value is false only on total failure, in which case
// the descriptor slice is empty. Duplicate titles (case-insensitive,
// trimmed) are dropped, first occurrence kept.
func Parse(raw string) ([]types.TaskDescriptor, bool) {
	for _, stage := range []struct {
		name string
		fn   func(string) ([]types.TaskDescriptor, bool)
	}{
		{"direct", decodeDirect},
		{"embedded", decodeEmbedded},
		{"heuristic", heuristicLines},
	} {
		if descs, ok := stage.fn(raw); ok {
			logging.ParserDebug("breakdown recovered via %s stage (%d tasks)", stage.name, len(descs))
			return dedupe(descs), true
		}
	}

	logging.ParserDebug("breakdown parse failed on all stages (%d bytes of input)", len(raw))
	return nil, false
}

// decodeDirect decodes the whole input as a JSON array of task objects.
func decodeDirect(raw string) ([]types.TaskDescriptor, bool) {
	return decodeArray(strings.TrimSpace(raw))
}

// decodeEmbedded scans for bracket-delimited substrings and decodes the
// first one that yields tasks. The scan is depth-counted and
// string-aware so brackets inside JSON string values do not terminate
// it early; it spans lines, which handles both markdown fences and
// arrays buried mid-prose. Stray bracketed fragments in prose (like
// citation markers) fail the decode and the scan moves on.
func decodeEmbedded(raw string) ([]types.TaskDescriptor, bool) {
	for start := 0; ; {
		offset := strings.Index(raw[start:], "[")
		if offset == -1 {
			return nil, false
		}
		start += offset

		if end := matchBracket(raw, start); end != -1 {
			if descs, ok := decodeArray(raw[start : end+1]); ok {
				return descs, true
			}
		}
		start++
	}
}

// matchBracket returns the index of the ] balancing the [ at start, or
// -1 when the text ends before it closes.
func matchBracket(raw string, start int) int {
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(raw); i++ {
		c := raw[i]
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
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// decodeArray is the shared decode+normalize step for the two JSON stages.
func decodeArray(candidate string) ([]types.TaskDescriptor, bool) {
	var raws []rawDescriptor
	if err := json.Unmarshal([]byte(candidate), &raws); err != nil {
		return nil, false
	}

	descs := make([]types.TaskDescriptor, 0, len(raws))
	for _, r := range raws {
		title := strings.TrimSpace(r.Title)
		if title == "" {
			continue
		}
		d := types.TaskDescriptor{
			Title:       title,
			Description: strings.TrimSpace(r.Description),
			Priority:    types.ParsePriority(r.Priority),
			Order:       len(descs),
			ParentRef:   decodeParentRef(r.ParentRef),
		}
		if r.Order != nil {
			d.Order = *r.Order
		}
		descs = append(descs, d)
	}
	if len(descs) == 0 {
		return nil, false
	}
	return descs, true
}

// decodeParentRef accepts the shapes models actually emit for parent ids:
// a string, a number, JSON null, or the field missing entirely.
func decodeParentRef(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if s == "null" || s == "none" {
			return ""
		}
		return strings.TrimSpace(s)
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}

// taskMarker matches lines that read like list items: "TODO ...",
// "1. ...", "1) ...", "- ..." or "* ...".
var taskMarker = regexp.MustCompile(`^(?:TODO[:\s]|\d+[.)]\s+|[-*]\s+)(.+)$`)

// heuristicLines is the last-resort stage: every line that looks like a
// task marker becomes a title-only descriptor.
func heuristicLines(raw string) ([]types.TaskDescriptor, bool) {
	var descs []types.TaskDescriptor
	for _, line := range strings.Split(raw, "\n") {
		m := taskMarker.FindStringSubmatch(strings.TrimSpace(line))
		if m == nil {
			continue
		}
		title := strings.TrimSpace(m[1])
		if title == "" {
			continue
		}
		descs = append(descs, types.TaskDescriptor{
			Title:    title,
			Priority: types.PriorityMedium,
			Order:    len(descs),
		})
	}
	if len(descs) == 0 {
		return nil, false
	}
	return descs, true
}

// dedupe drops descriptors whose normalized title was already seen,
// preserving first-seen order.
func dedupe(descs []types.TaskDescriptor) []types.TaskDescriptor {
	seen := make(map[string]bool, len(descs))
	out := descs[:0]
	for _, d := range descs {
		key := strings.ToLower(strings.TrimSpace(d.Title))
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, d)
	}
	return out
}
