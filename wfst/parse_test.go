package wfst

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// A hand-built WFST fixture for the tree lowered in TestLower_WorkedExample:
// s1 tests n.name is c, s2 is a terminal "x", s3 is a terminal "y". Tree
// numbers are the WFST builder's own internal numbering, distinct from the
// regular grammar's sN state names.
const fixtureWFST = `EST_File wave
EST_Header_End
((1 nonfinal 1) (_not_n.name_is_c_ 0 3) (_n.name_is_c_ 0 2))
((2 nonfinal 0) (x 0 -1))
((3 nonfinal 0) (y 0 -1))
`

func writeFixture(t *testing.T) string {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.tree.wfst")
	require.NoError(t, os.WriteFile(path, []byte(fixtureWFST), 0644))
	return path
}

func TestParseWFSTFile(t *testing.T) {
	path := writeFixture(t)
	phones := NewPhoneTable()
	rules, next, err := ParseWFSTFile(path, 0, phones)
	require.NoError(t, err)
	require.Len(t, rules, 3)

	assert.Equal(t, 4, rules[0].Feat) // n.name
	assert.Equal(t, int('c'), rules[0].Val)
	assert.Equal(t, 1, rules[0].QTrue)
	assert.Equal(t, 2, rules[0].QFalse)

	assert.Equal(t, 255, rules[1].Feat)
	assert.Equal(t, -1, rules[1].QTrue)
	assert.Equal(t, -1, rules[1].QFalse)

	assert.Equal(t, 3, next)
	assert.Equal(t, []string{"epsilon", "x", "y"}, phones.Phones())
}

func TestFeatureID_Unknown(t *testing.T) {
	_, err := FeatureID("bogus")
	require.Error(t, err)
}

func TestPhoneTable_InternReusesIndex(t *testing.T) {
	pt := NewPhoneTable()
	a := pt.Intern("x")
	b := pt.Intern("x")
	assert.Equal(t, a, b)
	assert.Equal(t, 1, a)
}
