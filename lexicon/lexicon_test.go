package lexicon

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nihei9/ltsc/allow"
)

func TestLoad_Flat(t *testing.T) {
	src := `("ab" nil (x y))
("cd" verb (z))
`
	lex, err := Load(strings.NewReader(src), LoadOptions{Flat: true})
	require.NoError(t, err)
	require.Len(t, lex["ab"], 1)
	assert.Equal(t, []string{"x", "y"}, lex["ab"][0].Phones)
	assert.Equal(t, "verb", lex["cd"][0].POS)
}

func TestLoad_Syllables_WithStress(t *testing.T) {
	src := `("hello" nil (((hh ax) 0) ((l ow) 1)))`
	lex, err := Load(strings.NewReader(src), LoadOptions{
		StressVowels: ParseStressVowels([]string{"ax", "ow"}),
	})
	require.NoError(t, err)
	require.Len(t, lex["hello"], 1)
	assert.Equal(t, []string{"hh", "ax0", "l", "ow1"}, lex["hello"][0].Phones)
}

func TestLoad_MagicHeader(t *testing.T) {
	src := "MNCL\n(\"ab\" nil (x y))\n"
	lex, err := Load(strings.NewReader(src), LoadOptions{Flat: true})
	require.NoError(t, err)
	assert.Len(t, lex["ab"], 1)
}

func TestFilter(t *testing.T) {
	raw := map[string][]string{"#": {"#"}}
	for r := 'a'; r <= 'z'; r++ {
		raw[string(r)] = []string{"x"}
	}
	allowed, err := allow.New(raw)
	require.NoError(t, err)

	lex := Lexicon{
		"ab":    {{POS: "nil", Phones: []string{"x"}}},
		"hello": {{POS: "nil", Phones: []string{"x"}}},
		"WORLD": {{POS: "nil", Phones: []string{"x"}}},
	}

	out, err := Filter(lex, FilterOptions{
		MinLength:             4,
		Lowercase:             true,
		RequireAllowedLetters: true,
		Allowables:            allowed,
	})
	require.NoError(t, err)

	got := out.Words()
	assert.Equal(t, []string{"hello", "world"}, got)
}

func TestFilter_MissingAllowables(t *testing.T) {
	_, err := Filter(Lexicon{"ab": nil}, FilterOptions{RequireAllowedLetters: true})
	assert.Error(t, err)
}
