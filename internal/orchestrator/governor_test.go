package orchestrator

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBoundUnderBudgetUnchanged(t *testing.T) {
	text := "Short reply."
	assert.Equal(t, text, Bound(text, 100))
}

func TestBoundNeverExceedsBudget(t *testing.T) {
	inputs := []string{
		strings.Repeat("word ", 500),
		"First paragraph.\n\n" + strings.Repeat("No keywords here at all! ", 50),
		"A task plan.\n\nNext step: create the schema.\n\n" + strings.Repeat("filler task text ", 100),
		strings.Repeat("One sentence. ", 200),
	}
	for _, text := range inputs {
		for _, max := range []int{10, 50, 200, 1000} {
			got := Bound(text, max)
			assert.LessOrEqual(t, len(got), max, "budget %d", max)
		}
	}
}

func TestBoundIdempotent(t *testing.T) {
	text := "Intro paragraph about the request.\n\n" +
		"The first task covers the schema. The second task covers the API. " +
		"The third covers tests. The fourth covers deployment. And more prose follows here.\n\n" +
		"Unrelated pleasantries with nothing relevant."

	for _, max := range []int{20, 80, 150, 10000} {
		once := Bound(text, max)
		twice := Bound(once, max)
		assert.Equal(t, once, twice, "budget %d", max)
	}
}

func TestBoundKeepsFirstAndActionParagraphs(t *testing.T) {
	text := "Here's what I did for you today.\n\n" +
		"Lovely weather we're having, isn't it?\n\n" +
		"The next step is to create the login task."

	got := Bound(text, len(text)-1)
	assert.Contains(t, got, "Here's what I did")
	assert.Contains(t, got, "next step")
	assert.NotContains(t, got, "weather")
}

func TestBoundSentencePrefix(t *testing.T) {
	// One long paragraph stuffed with keywords so the paragraph stage
	// cannot help; the sentence stage must.
	text := "The task is big. The plan has steps. The priority is high. " +
		"More task detail follows. Even more plan detail. Final task remark."

	got := Bound(text, len(text)-1)
	require.LessOrEqual(t, len(got), len(text)-1)
	assert.Equal(t, "The task is big. The plan has steps. The priority is high.", got)
}

func TestBoundHardTruncate(t *testing.T) {
	text := strings.Repeat("task ", 100) // keyword-dense, unsplittable
	got := Bound(text, 20)
	assert.Len(t, got, 20)
	assert.True(t, strings.HasSuffix(got, "..."))
}

func TestBoundTinyBudget(t *testing.T) {
	assert.Equal(t, "..", Bound("anything at all", 2))
	assert.Equal(t, "", Bound("anything", 0))
}

func TestBoundDeterministic(t *testing.T) {
	text := strings.Repeat("plan the task. ", 40)
	assert.Equal(t, Bound(text, 64), Bound(text, 64))
}
