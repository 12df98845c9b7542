package testutil

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thruflo/hsfit/internal/grid"
	"github.com/thruflo/hsfit/internal/state"
)

// AssertBoxesEqual asserts that two box lists are equal, element by element
// and in order.
func AssertBoxesEqual(t *testing.T, expected, actual []grid.Box) {
	t.Helper()
	if diff := cmp.Diff(expected, actual); diff != "" {
		t.Errorf("boxes mismatch (-want +got):\n%s", diff)
	}
}

// AssertBoxesWithin asserts that every box satisfies
// 0 <= Lower <= Upper <= numBreaks(Level, dim)-1 in every dimension.
func AssertBoxesWithin(t *testing.T, boxes []grid.Box, numBreaks func(level, dim int) int) {
	t.Helper()

	for i, box := range boxes {
		require.Len(t, box.Upper, len(box.Lower), "box[%d] corners differ in length", i)
		for dim := range box.Lower {
			last := numBreaks(box.Level, dim) - 1
			assert.GreaterOrEqual(t, box.Lower[dim], 0, "box[%d].Lower[%d]", i, dim)
			assert.LessOrEqual(t, box.Lower[dim], box.Upper[dim], "box[%d] dim %d", i, dim)
			assert.LessOrEqual(t, box.Upper[dim], last, "box[%d].Upper[%d]", i, dim)
		}
	}
}

// AssertHistoryLength asserts that history has the expected number of entries.
func AssertHistoryLength(t *testing.T, history []state.History, expected int) {
	t.Helper()
	assert.Len(t, history, expected, "history length mismatch")
}

// AssertHistoryImproves asserts that the last entry has a lower max error
// than the first.
func AssertHistoryImproves(t *testing.T, history []state.History) {
	t.Helper()
	require.NotEmpty(t, history, "history is empty")
	first, last := history[0], history[len(history)-1]
	assert.Less(t, last.MaxError, first.MaxError, "max error did not improve")
}
