package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskchat/internal/types"
)

func TestParseDirectJSON(t *testing.T) {
	raw := `[
		{"title": "Set up database", "description": "Postgres schema", "priority": "high", "order": 0},
		{"title": "Add login endpoint", "priority": "low", "order": 1, "parent_task_id": "task-9"}
	]`

	descs, ok := Parse(raw)
	require.True(t, ok)
	require.Len(t, descs, 2)

	assert.Equal(t, "Set up database", descs[0].Title)
	assert.Equal(t, "Postgres schema", descs[0].Description)
	assert.Equal(t, types.PriorityHigh, descs[0].Priority)
	assert.Equal(t, 0, descs[0].Order)
	assert.Empty(t, descs[0].ParentRef)

	assert.Equal(t, "Add login endpoint", descs[1].Title)
	assert.Equal(t, types.PriorityLow, descs[1].Priority)
	assert.Equal(t, "task-9", descs[1].ParentRef)
}

func TestParseDefaults(t *testing.T) {
	descs, ok := Parse(`[{"title": "One"}, {"title": "Two"}]`)
	require.True(t, ok)
	require.Len(t, descs, 2)

	for i, d := range descs {
		assert.Equal(t, types.PriorityMedium, d.Priority, "priority defaults to medium")
		assert.Equal(t, i, d.Order, "order defaults to position")
		assert.Empty(t, d.ParentRef)
	}
}

func TestParseEmbeddedArray(t *testing.T) {
	t.Run("markdown fenced", func(t *testing.T) {
		raw := "Here is the breakdown you asked for:\n```json\n" +
			`[{"title": "Write tests"}, {"title": "Ship it"}]` +
			"\n```\nLet me know if you want changes."

		descs, ok := Parse(raw)
		require.True(t, ok)
		require.Len(t, descs, 2)
		assert.Equal(t, "Write tests", descs[0].Title)
		assert.Equal(t, "Ship it", descs[1].Title)
	})

	t.Run("array mid prose spanning lines", func(t *testing.T) {
		raw := "Sure! I'd break it down as [\n {\"title\": \"Design API\"},\n {\"title\": \"Implement API\"}\n] which covers everything."

		descs, ok := Parse(raw)
		require.True(t, ok)
		require.Len(t, descs, 2)
		assert.Equal(t, "Design API", descs[0].Title)
	})

	t.Run("stray bracket fragment before the array", func(t *testing.T) {
		raw := `Per step [1] of the plan: [{"title": "Add caching"}]`

		descs, ok := Parse(raw)
		require.True(t, ok)
		require.Len(t, descs, 1)
		assert.Equal(t, "Add caching", descs[0].Title)
	})

	t.Run("brackets inside string values", func(t *testing.T) {
		raw := `Breakdown: [{"title": "Parse [config] files", "description": "handle ] in strings"}]`

		descs, ok := Parse(raw)
		require.True(t, ok)
		require.Len(t, descs, 1)
		assert.Equal(t, "Parse [config] files", descs[0].Title)
	})
}

func TestParseHeuristicLines(t *testing.T) {
	raw := `I couldn't produce JSON, but here's what I'd do:

1. Create the user model
2) Hash passwords
- Add session middleware
* Write integration tests
TODO: document the auth flow

Hope that helps!`

	descs, ok := Parse(raw)
	require.True(t, ok)
	require.Len(t, descs, 5)

	assert.Equal(t, "Create the user model", descs[0].Title)
	assert.Equal(t, "Hash passwords", descs[1].Title)
	assert.Equal(t, "Add session middleware", descs[2].Title)
	assert.Equal(t, "Write integration tests", descs[3].Title)
	assert.Equal(t, "document the auth flow", descs[4].Title)

	for i, d := range descs {
		assert.Empty(t, d.Description)
		assert.Equal(t, types.PriorityMedium, d.Priority)
		assert.Equal(t, i, d.Order)
	}
}

func TestParseTotalFailure(t *testing.T) {
	descs, ok := Parse("The weather is nice today.")
	assert.False(t, ok)
	assert.Empty(t, descs)
}

func TestParseEmptyInput(t *testing.T) {
	descs, ok := Parse("")
	assert.False(t, ok)
	assert.Empty(t, descs)
}

func TestParseDedupe(t *testing.T) {
	raw := `[
		{"title": "Add auth"},
		{"title": "add auth "},
		{"title": "Add logging"},
		{"title": "ADD AUTH"}
	]`

	descs, ok := Parse(raw)
	require.True(t, ok)
	require.Len(t, descs, 2)
	assert.Equal(t, "Add auth", descs[0].Title)
	assert.Equal(t, "Add logging", descs[1].Title)
}

func TestParseSkipsUntitledObjects(t *testing.T) {
	descs, ok := Parse(`[{"title": ""}, {"description": "no title"}, {"title": "Real"}]`)
	require.True(t, ok)
	require.Len(t, descs, 1)
	assert.Equal(t, "Real", descs[0].Title)
}

func TestParseParentRefShapes(t *testing.T) {
	raw := `[
		{"title": "A", "parent_task_id": null},
		{"title": "B", "parent_task_id": "none"},
		{"title": "C", "parent_task_id": 7},
		{"title": "D", "parent_task_id": " task-1 "}
	]`

	descs, ok := Parse(raw)
	require.True(t, ok)
	require.Len(t, descs, 4)
	assert.Empty(t, descs[0].ParentRef)
	assert.Empty(t, descs[1].ParentRef)
	assert.Equal(t, "7", descs[2].ParentRef)
	assert.Equal(t, "task-1", descs[3].ParentRef)
}
