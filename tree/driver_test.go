package tree

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nihei9/ltsc/feature"
)

func TestWriteFeatFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.feats")
	rows := []feature.Row{
		{Label: "x", Center: "a", POS: ""},
	}
	require.NoError(t, WriteFeatFile(path, rows))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, rows[0].String()+"\n", string(b))
}

func TestWriteFeatDesc(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "desc")
	rows := []feature.Row{
		{Label: "x", Left: [4]string{"0", "0", "0", "0"}, Center: "a", Right: [4]string{"b", "0", "0", "0"}, POS: ""},
		{Label: "y", Left: [4]string{"a", "0", "0", "0"}, Center: "b", Right: [4]string{"0", "0", "0", "0"}, POS: ""},
	}
	require.NoError(t, WriteFeatDesc(path, feature.Names, rows))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	s := string(b)
	assert.Contains(t, s, "(Relation.LTS.down.name")
	assert.Contains(t, s, "x y")
}

func TestWriteSyntheticTreeAndReadTree(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lts.a.tree")
	leaf := SyntheticLeaf([]string{"x", "y"})
	require.NoError(t, WriteSyntheticTree(path, leaf))

	n, err := ReadTree(path)
	require.NoError(t, err)
	got, ok := n.(*Leaf)
	require.True(t, ok)
	assert.Equal(t, leaf.Majority, got.Majority)
}

func TestMergeAndWriteRulesRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "en_lts_rules.scm")

	trees := map[string]Node{
		"b": &Leaf{Majority: "y"},
		"a": &Leaf{Majority: "x"},
	}
	merged := Merge(trees)
	require.Len(t, merged, 2)
	assert.Equal(t, "a", merged[0].Letter)
	assert.Equal(t, "b", merged[1].Letter)

	require.NoError(t, WriteRules(path, "en_lts_rules", merged))

	back, err := ReadRules(path)
	require.NoError(t, err)
	require.Len(t, back, 2)
	assert.Equal(t, "x", back["a"].(*Leaf).Majority)
	assert.Equal(t, "y", back["b"].(*Leaf).Majority)
}
