package dedup

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/agentic-research/flowline/internal/trie"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRemoveSubsets_ExactDuplicateRemoved(t *testing.T) {
	got, err := RemoveSubsets([][]int{{1, 2}, {1, 2}, {3}})
	require.NoError(t, err)

	// The kept set is {[1 2], [3]}; shortest-first processing keeps [3] first.
	assert.ElementsMatch(t, [][]int{{1, 2}, {3}}, got)
	if diff := cmp.Diff([][]int{{3}, {1, 2}}, got); diff != "" {
		t.Errorf("kept order mismatch (-want +got):\n%s", diff)
	}
}

func TestRemoveSubsets_PrefixesAreNotEliminated(t *testing.T) {
	got, err := RemoveSubsets([][]int{{1, 2, 3}, {1, 2}, {4, 5}})
	require.NoError(t, err)

	want := [][]int{{1, 2}, {4, 5}, {1, 2, 3}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("RemoveSubsets mismatch (-want +got):\n%s", diff)
	}
}

func TestRemoveSubsets_StableAmongEqualLengths(t *testing.T) {
	in := [][]string{
		{"c", "d"},
		{"a"},
		{"a", "b"},
		{"z"},
		{"c", "d"},
	}
	got, err := RemoveSubsets(in)
	require.NoError(t, err)

	want := [][]string{{"a"}, {"z"}, {"c", "d"}, {"a", "b"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("RemoveSubsets mismatch (-want +got):\n%s", diff)
	}
}

func TestRemoveSubsets_DoesNotMutateInput(t *testing.T) {
	in := [][]int{{3, 4, 5}, {1}, {3, 4, 5}}
	snapshot := [][]int{{3, 4, 5}, {1}, {3, 4, 5}}

	got, err := RemoveSubsets(in)
	require.NoError(t, err)
	assert.Equal(t, snapshot, in)

	// Output paths are copies.
	got[0][0] = 99
	assert.Equal(t, 1, in[1][0])
}

func TestRemoveSubsets_EmptyInputs(t *testing.T) {
	got, err := RemoveSubsets[int](nil)
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = RemoveSubsets([][]int{{}, {}, {7}})
	require.NoError(t, err)
	assert.Len(t, got, 2, "the empty path is kept once")
	assert.Empty(t, got[0])
	assert.Equal(t, []int{7}, got[1])
}

func TestRemoveSubsets_MalformedPath(t *testing.T) {
	_, err := RemoveSubsets([][]any{{"a"}, {"b", []string{"x"}}})
	assert.ErrorIs(t, err, trie.ErrMalformedPath)
	assert.Contains(t, err.Error(), "path 1")
}

func TestRun_LogsSummary(t *testing.T) {
	var buf bytes.Buffer
	d := New(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))

	_, err := Run(d, [][]string{{"a"}, {"a"}})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "dropping repeated path")
	assert.Contains(t, out, "in=2")
	assert.Contains(t, out, "kept=1")
}
