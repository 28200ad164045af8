package align

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nihei9/ltsc/allow"
	"github.com/nihei9/ltsc/lexicon"
)

func tinyTable(t *testing.T) *allow.Table {
	tbl, err := allow.New(map[string][]string{
		"#": {"#"},
		"a": {"x", allow.Epsilon},
		"b": {allow.Epsilon, "x"},
	})
	require.NoError(t, err)
	return tbl
}

func TestEnumerateAll_TwoPaths(t *testing.T) {
	tbl := tinyTable(t)
	phones := padPhones([]string{"x"})
	letters := padLetters("ab")

	paths := enumerateAll(phones, letters, tbl, 1000)
	require.Len(t, paths, 2)
	for _, p := range paths {
		require.Len(t, p, 4)
		assert.Equal(t, allow.Boundary, p[0].Phone)
		assert.Equal(t, allow.Boundary, p[3].Phone)
	}
}

func TestBest_TieBreakPrefersLaterEpsilon(t *testing.T) {
	tbl := tinyTable(t)
	cooc := NewCooccurTable(tbl)
	// Uniform normalized scores: both paths score equally, so the
	// tie-break (larger index-weighted epsilon sum) must decide.
	a, fail := Best("ab", "", []string{"x"}, cooc, tbl, Budget{})
	require.Nil(t, fail)
	require.NotNil(t, a)

	// path: (#,#) (eps,a) (x,b) (#,#)  -> epsilon at index 1
	// path: (#,#) (x,a) (eps,b) (#,#)  -> epsilon at index 2, wins tie
	require.Len(t, a.Path, 4)
	assert.Equal(t, "x", a.Path[1].Phone)
	assert.Equal(t, allow.Epsilon, a.Path[2].Phone)
}

func TestAlignment_Validate(t *testing.T) {
	tbl := tinyTable(t)
	cooc := NewCooccurTable(tbl)
	a, fail := Best("ab", "", []string{"x"}, cooc, tbl, Budget{})
	require.Nil(t, fail)
	assert.NoError(t, a.Validate())
}

func TestAccumulate_Normalization(t *testing.T) {
	tbl := tinyTable(t)
	lex := lexicon.Lexicon{
		"ab": {{POS: "", Phones: []string{"x"}}},
	}

	cooc, failures := Accumulate(lex, tbl, Budget{})
	assert.Empty(t, failures)

	norm := cooc.Normalize()
	for _, letter := range norm.Letters() {
		var sum float64
		for _, phone := range tbl.Phones(letter) {
			sum += norm.Score(letter, phone)
		}
		if sum != 0 {
			assert.InDelta(t, 1.0, sum, 1e-9, letter)
		}
	}
}
