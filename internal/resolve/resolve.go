// Package resolve decides the effective parent for each task descriptor
// in a batch. Model-proposed parent references are frequently invalid:
// ids that do not exist, references to other tasks in the same batch, or
// missing entirely. Resolution fixes all of that in a single forward
// pass so the storage layer only ever sees parents that exist.
package resolve

import (
	"strconv"
	"strings"

	"taskchat/internal/logging"
	"taskchat/internal/types"
)

// NoParent marks a resolution with no parent dependency at all.
const NoParent = -1

// Resolution pairs a descriptor with its effective parent.
//
// Batch-local parents cannot be expressed as an id because ids are
// assigned by the store at creation time. When a descriptor's parent is
// an earlier descriptor in the same batch, ParentIndex holds that
// descriptor's batch position and ParentID is empty; the executor
// substitutes the real id once the earlier creation has completed.
type Resolution struct {
	Desc types.TaskDescriptor

	// ParentID is a pre-existing task id, or empty.
	ParentID string

	// ParentIndex is the batch position of a parent created earlier in
	// this same batch, or NoParent.
	ParentIndex int
}

// Root reports whether the resolved task has no parent at all.
func (r Resolution) Root() bool {
	return r.ParentID == "" && r.ParentIndex == NoParent
}

// Resolve computes effective parent linkage for a batch of descriptors.
//
// Policy, evaluated per descriptor in declaration order:
//   - no parent reference: parented to the active task when one was
//     supplied; otherwise to the first root created in this batch (a
//     breakdown is one root plus its subtasks); the first such
//     descriptor becomes that root
//   - reference resolves to an earlier descriptor in this batch (by
//     1-based position or by title): batch-local parent, which is how
//     multi-level breakdowns arrive in one response
//   - reference matches a pre-existing task id: parented there
//   - anything else is an orphan reference: re-parented to the first
//     batch root, or made a root itself if there is none yet
//
// Every result points backward into already-resolved or pre-existing
// tasks, so no dangling reference or cycle can reach the store.
// Resolve is deterministic and never fails.
func Resolve(descs []types.TaskDescriptor, existing map[string]bool, activeTaskID string) []Resolution {
	out := make([]Resolution, 0, len(descs))

	// index maps the keys later descriptors use to reference earlier
	// ones. Real ids do not exist yet, so models fall back to the
	// task's position or its title.
	index := make(map[string]int, len(descs)*2)
	firstRoot := NoParent

	for i, d := range descs {
		r := Resolution{Desc: d, ParentIndex: NoParent}
		ref := strings.TrimSpace(d.ParentRef)

		switch {
		case ref == "" && activeTaskID != "":
			r.ParentID = activeTaskID
		case ref == "":
			r.ParentIndex = firstRoot // NoParent before the first root
		case hasRef(index, ref):
			r.ParentIndex = lookupRef(index, ref)
		case existing[ref]:
			r.ParentID = ref
		default:
			r.ParentIndex = firstRoot
			logging.ResolveDebug("orphan parent ref %q re-parented to batch index %d", ref, firstRoot)
		}

		if r.Root() && firstRoot == NoParent {
			firstRoot = i
		}

		index[strconv.Itoa(i+1)] = i
		if key := refKey(d.Title); key != "" {
			index[key] = i
		}
		out = append(out, r)
	}
	return out
}

func refKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func hasRef(index map[string]int, ref string) bool {
	if _, ok := index[ref]; ok {
		return true
	}
	_, ok := index[refKey(ref)]
	return ok
}

func lookupRef(index map[string]int, ref string) int {
	if i, ok := index[ref]; ok {
		return i
	}
	return index[refKey(ref)]
}
