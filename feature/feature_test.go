package feature

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nihei9/ltsc/align"
	"github.com/nihei9/ltsc/allow"
)

func TestBuild_WorkedExample(t *testing.T) {
	a := &align.Alignment{
		Word: "ab",
		POS:  "",
		Path: []align.Pair{
			{Phone: allow.Boundary, Letter: allow.Boundary},
			{Phone: "x", Letter: "a"},
			{Phone: "y", Letter: "b"},
			{Phone: allow.Boundary, Letter: allow.Boundary},
		},
	}

	rows := Build(a)
	require.Len(t, rows, 2)

	assert.Equal(t, Row{
		Label:  "x",
		Left:   [4]string{"0", "0", "0", "0"},
		Center: "a",
		Right:  [4]string{"b", "0", "0", "0"},
		POS:    "",
	}, rows[0])

	assert.Equal(t, Row{
		Label:  "y",
		Left:   [4]string{"a", "0", "0", "0"},
		Center: "b",
		Right:  [4]string{"0", "0", "0", "0"},
		POS:    "",
	}, rows[1])

	assert.Equal(t, []string{"x", "0", "0", "0", "0", "a", "b", "0", "0", "0", ""}, rows[0].Fields())
	assert.Equal(t, []string{"y", "0", "0", "0", "a", "b", "0", "0", "0", "0", ""}, rows[1].Fields())
}

func TestBuild_LongerWord(t *testing.T) {
	a := &align.Alignment{
		Word: "abcde",
		POS:  "noun",
		Path: []align.Pair{
			{Phone: allow.Boundary, Letter: allow.Boundary},
			{Phone: "p1", Letter: "a"},
			{Phone: "p2", Letter: "b"},
			{Phone: "p3", Letter: "c"},
			{Phone: "p4", Letter: "d"},
			{Phone: "p5", Letter: "e"},
			{Phone: allow.Boundary, Letter: allow.Boundary},
		},
	}

	rows := Build(a)
	require.Len(t, rows, 5)

	// Centered row: two letters of context on each side, the outer two
	// slots padded with NotALetter.
	mid := rows[2]
	assert.Equal(t, "c", mid.Center)
	assert.Equal(t, [4]string{"b", "a", "0", "0"}, mid.Left)
	assert.Equal(t, [4]string{"d", "e", "0", "0"}, mid.Right)
	assert.Equal(t, "noun", mid.POS)
}

func TestShardByCenter(t *testing.T) {
	rows := []Row{
		{Center: "a", Label: "x"},
		{Center: "b", Label: "y"},
		{Center: "a", Label: "z"},
	}
	shards := ShardByCenter(rows)
	require.Len(t, shards, 2)
	assert.Len(t, shards["a"], 2)
	assert.Len(t, shards["b"], 1)
}

func TestBaseNameAndIsIgnored(t *testing.T) {
	assert.True(t, IsIgnored("p.p.p.p.name ignore"))
	assert.Equal(t, "p.p.p.p.name", BaseName("p.p.p.p.name ignore"))
	assert.False(t, IsIgnored("p.name"))
	assert.Equal(t, "p.name", BaseName("p.name"))
}

func TestValidateNames(t *testing.T) {
	assert.NoError(t, ValidateNames(Names[:]))
	assert.Error(t, ValidateNames([]string{"too", "short"}))
}
