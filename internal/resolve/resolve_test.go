package resolve

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskchat/internal/types"
)

func desc(title, parentRef string) types.TaskDescriptor {
	return types.TaskDescriptor{Title: title, Priority: types.PriorityMedium, ParentRef: parentRef}
}

func TestResolveBogusAndNullAttachToBatchRoot(t *testing.T) {
	// Root becomes the batch root; Child1's invented parent id and
	// Child2's missing parent both land under it.
	batch := []types.TaskDescriptor{
		desc("Root", ""),
		desc("Child1", "bogus"),
		desc("Child2", ""),
	}

	res := Resolve(batch, nil, "")
	require.Len(t, res, 3)

	assert.True(t, res[0].Root())
	assert.Equal(t, 0, res[1].ParentIndex)
	assert.Empty(t, res[1].ParentID)
	assert.Equal(t, 0, res[2].ParentIndex)
	assert.Empty(t, res[2].ParentID)
}

func TestResolveActiveTaskAdoptsRoots(t *testing.T) {
	batch := []types.TaskDescriptor{
		desc("Step one", ""),
		desc("Step two", ""),
	}
	existing := map[string]bool{"T1": true}

	res := Resolve(batch, existing, "T1")
	require.Len(t, res, 2)

	// No new root is created; both steps belong to the active task.
	assert.Equal(t, "T1", res[0].ParentID)
	assert.Equal(t, NoParent, res[0].ParentIndex)
	assert.Equal(t, "T1", res[1].ParentID)
}

func TestResolvePreExistingParent(t *testing.T) {
	batch := []types.TaskDescriptor{desc("Subtask", "task-42")}
	existing := map[string]bool{"task-42": true}

	res := Resolve(batch, existing, "")
	require.Len(t, res, 1)
	assert.Equal(t, "task-42", res[0].ParentID)
	assert.Equal(t, NoParent, res[0].ParentIndex)
}

func TestResolveBatchLocalByPosition(t *testing.T) {
	// Models reference earlier batch tasks by 1-based position when no
	// real id exists yet.
	batch := []types.TaskDescriptor{
		desc("Build API", ""),
		desc("Add routes", "1"),
		desc("Add handlers", "2"),
	}

	res := Resolve(batch, nil, "")
	require.Len(t, res, 3)
	assert.True(t, res[0].Root())
	assert.Equal(t, 0, res[1].ParentIndex)
	assert.Equal(t, 1, res[2].ParentIndex)
}

func TestResolveBatchLocalByTitle(t *testing.T) {
	batch := []types.TaskDescriptor{
		desc("Build API", ""),
		desc("Add routes", "build api"),
	}

	res := Resolve(batch, nil, "")
	require.Len(t, res, 2)
	assert.Equal(t, 0, res[1].ParentIndex)
}

func TestResolveOrphanWithNoBatchRootBecomesRoot(t *testing.T) {
	batch := []types.TaskDescriptor{desc("Lonely", "nonexistent")}

	res := Resolve(batch, map[string]bool{"T1": true}, "")
	require.Len(t, res, 1)
	assert.True(t, res[0].Root())
}

func TestResolveMultiLevelMixedBatch(t *testing.T) {
	existing := map[string]bool{"task-9": true}
	batch := []types.TaskDescriptor{
		desc("Epic", ""),
		desc("Feature A", "Epic"),
		desc("Subfeature A1", "Feature A"),
		desc("Chore", "task-9"),
		desc("Stray", "made-up-id"),
	}

	res := Resolve(batch, existing, "")
	require.Len(t, res, 5)

	assert.True(t, res[0].Root())
	assert.Equal(t, 0, res[1].ParentIndex)
	assert.Equal(t, 1, res[2].ParentIndex)
	assert.Equal(t, "task-9", res[3].ParentID)
	assert.Equal(t, 0, res[4].ParentIndex, "orphan re-parents to the batch root")
}

func TestResolveEmptyBatch(t *testing.T) {
	assert.Empty(t, Resolve(nil, nil, ""))
}

func TestResolveDeterministic(t *testing.T) {
	batch := []types.TaskDescriptor{
		desc("A", ""),
		desc("B", "zzz"),
		desc("C", "1"),
	}
	first := Resolve(batch, nil, "")
	second := Resolve(batch, nil, "")
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("resolution not deterministic (-first +second):\n%s", diff)
	}
}
