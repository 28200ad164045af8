package wfst

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nihei9/ltsc/allow"
	"github.com/nihei9/ltsc/tree"
)

func TestLower_WorkedExample(t *testing.T) {
	root := &tree.Internal{
		Cond: tree.Condition{Feature: "n.name", Value: "c"},
		Yes:  &tree.Leaf{Majority: "x"},
		No:   &tree.Leaf{Majority: "y"},
	}
	links := Lower(root)
	assert.Equal(t, []Link{
		{From: "s1", Label: "_n.name_is_c_", To: "s2"},
		{From: "s1", Label: "_not_n.name_is_c_", To: "s3"},
		{From: "s2", Label: "x"},
		{From: "s3", Label: "y"},
	}, links)
}

func TestLower_TranslatesEpsilon(t *testing.T) {
	links := Lower(&tree.Leaf{Majority: allow.Epsilon})
	assert.Equal(t, []Link{{From: "s1", Label: "epsilon"}}, links)
}

func TestWriteRegularGrammar(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/a.rg"
	links := []Link{
		{From: "s1", Label: "_n.name_is_c_", To: "s2"},
		{From: "s2", Label: "x"},
	}
	err := WriteRegularGrammar(path, links)
	require.NoError(t, err)
}
