package tester

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nihei9/ltsc/align"
	"github.com/nihei9/ltsc/allow"
	"github.com/nihei9/ltsc/tree"
)

func boundaryAlignment(word string, letterPhones ...align.Pair) *align.Alignment {
	path := append([]align.Pair{{Phone: allow.Boundary, Letter: allow.Boundary}}, letterPhones...)
	path = append(path, align.Pair{Phone: allow.Boundary, Letter: allow.Boundary})
	return &align.Alignment{Word: word, Path: path}
}

func TestRun_AllCorrect(t *testing.T) {
	a := boundaryAlignment("ab", align.Pair{Phone: "x", Letter: "a"}, align.Pair{Phone: "y", Letter: "b"})
	rules := map[string]tree.Node{
		"a": &tree.Leaf{Majority: "x"},
		"b": &tree.Leaf{Majority: "y"},
	}
	r := Run([]*align.Alignment{a}, rules)
	assert.Equal(t, 1, r.Correct)
	assert.Equal(t, 1, r.Total)
	assert.Empty(t, r.Mismatches)
	assert.Equal(t, 1.0, r.Accuracy())
}

func TestRun_Mismatch(t *testing.T) {
	a := boundaryAlignment("ab", align.Pair{Phone: "x", Letter: "a"}, align.Pair{Phone: "y", Letter: "b"})
	rules := map[string]tree.Node{
		"a": &tree.Leaf{Majority: "x"},
		"b": &tree.Leaf{Majority: "z"},
	}
	r := Run([]*align.Alignment{a}, rules)
	assert.Equal(t, 0, r.Correct)
	require.Len(t, r.Mismatches, 1)
	assert.Equal(t, []string{"x", "z"}, r.Mismatches[0].Predicted)
}

func TestRun_NormalizesEpsilonAndFusion(t *testing.T) {
	a := boundaryAlignment("ab", align.Pair{Phone: allow.Epsilon, Letter: "a"}, align.Pair{Phone: "x-y", Letter: "b"})
	rules := map[string]tree.Node{
		"a": &tree.Leaf{Majority: allow.Epsilon},
		"b": &tree.Leaf{Majority: "x-y"},
	}
	r := Run([]*align.Alignment{a}, rules)
	assert.Equal(t, 1, r.Correct)
}

func TestRun_UntrainedLetter(t *testing.T) {
	a := boundaryAlignment("ab", align.Pair{Phone: "x", Letter: "a"}, align.Pair{Phone: "y", Letter: "b"})
	rules := map[string]tree.Node{"a": &tree.Leaf{Majority: "x"}}
	r := Run([]*align.Alignment{a}, rules)
	assert.Equal(t, 0, r.Correct)
	require.Len(t, r.Mismatches, 1)
}
