package orchestrator

import "strings"

// actionKeywords mark paragraphs worth keeping when a reply must
// shrink: they reference the work itself rather than pleasantries.
var actionKeywords = []string{
	"task", "create", "next", "step", "priority", "done", "todo", "plan",
}

// sentenceKeep is how many leading sentences survive the second
// reduction stage.
const sentenceKeep = 3

// ellipsis is appended on hard truncation. Truncation is silent by
// design: no "[response truncated]" notice is shown to the user.
// (Product decision carried over; confirm before changing.)
const ellipsis = "..."

// Bound returns text reduced to at most max bytes. It is a pure
// function: deterministic, and idempotent because any output is itself
// under budget. Reduction is staged, mildest first:
//
//  1. keep the first paragraph plus action-relevant paragraphs
//  2. keep the first few sentences of the result
//  3. hard-truncate with a trailing ellipsis inside the budget
func Bound(text string, max int) string {
	if max <= 0 {
		return ""
	}
	if len(text) <= max {
		return text
	}

	reduced := keepActionParagraphs(text)
	if len(reduced) <= max {
		return reduced
	}

	reduced = keepLeadingSentences(reduced)
	if len(reduced) <= max {
		return reduced
	}

	if max <= len(ellipsis) {
		return ellipsis[:max]
	}
	return reduced[:max-len(ellipsis)] + ellipsis
}

// keepActionParagraphs keeps the first paragraph unconditionally and
// any later paragraph that mentions an action keyword.
func keepActionParagraphs(text string) string {
	paragraphs := strings.Split(text, "\n\n")
	kept := paragraphs[:1]
	for _, p := range paragraphs[1:] {
		lower := strings.ToLower(p)
		for _, kw := range actionKeywords {
			if strings.Contains(lower, kw) {
				kept = append(kept, p)
				break
			}
		}
	}
	return strings.Join(kept, "\n\n")
}

// keepLeadingSentences keeps the first sentenceKeep sentences, using
// the ". " boundary. The terminal period of a kept non-final sentence
// is restored by the join.
func keepLeadingSentences(text string) string {
	sentences := strings.SplitN(text, ". ", sentenceKeep+1)
	if len(sentences) <= sentenceKeep {
		return text
	}
	return strings.Join(sentences[:sentenceKeep], ". ") + "."
}
