// Package lexicon loads a pronunciation lexicon in the festival-style
// s-expression format and filters it down to the entries worth training
// letter-to-sound rules on.
package lexicon

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/nihei9/ltsc/allow"
	lerr "github.com/nihei9/ltsc/error"
	"github.com/nihei9/ltsc/sexpr"
)

// Heteronym is one (part of speech, flat phone sequence) pronunciation of
// a word. Syllables are discarded once flattened; only the flat sequence
// survives past loading.
type Heteronym struct {
	POS    string
	Phones []string
}

// Lexicon maps a word to every heteronym pronunciation recorded for it.
type Lexicon map[string][]Heteronym

// Words returns the lexicon's words in sorted order, matching the
// deterministic iteration order every downstream stage (alignment,
// feature sharding) relies on.
func (l Lexicon) Words() []string {
	ws := make([]string, 0, len(l))
	for w := range l {
		ws = append(ws, w)
	}
	sort.Strings(ws)
	return ws
}

// LoadOptions controls how raw entries are turned into flat phone
// sequences.
type LoadOptions struct {
	// Flat selects flat mode: the body is already a flat phone sequence
	// rather than a list of syllables.
	Flat bool
	// StressVowels names the phones that receive an appended stress
	// digit when flattening syllables. Ignored when Flat is true.
	StressVowels map[string]bool
}

// Load reads every entry of a lexicon file. Each non-empty line is one
// s-expression `(word pos body)`, matching spec §4.2 and §6. A leading
// MNCL magic header line, if present, is discarded.
func Load(r io.Reader, opts LoadOptions) (Lexicon, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	body := sexpr.StripMagicHeader(string(src))

	lex := Lexicon{}
	sc := bufio.NewScanner(strings.NewReader(body))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	row := 0
	for sc.Scan() {
		row++
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		v, err := sexpr.Read(line)
		if err != nil {
			return nil, lerr.NewAt(lerr.KindMalformedInput, fmt.Errorf("lexicon line: %w", err), row)
		}
		word, het, err := parseEntry(v, opts)
		if err != nil {
			return nil, lerr.NewAt(lerr.KindMalformedInput, err, row)
		}
		lex[word] = append(lex[word], het)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return lex, nil
}

func parseEntry(v *sexpr.Value, opts LoadOptions) (string, Heteronym, error) {
	if v.Kind != sexpr.KindList || len(v.List) != 3 {
		return "", Heteronym{}, fmt.Errorf("entry must be a 3-element list, got %v", v)
	}
	word := v.List[0].Text()
	pos := v.List[1].Text()
	body := v.List[2]

	var phones []string
	if opts.Flat {
		if body.Kind != sexpr.KindList {
			return "", Heteronym{}, fmt.Errorf("flat body must be a list of phones, got %v", body)
		}
		for _, p := range body.List {
			phones = append(phones, p.Text())
		}
	} else {
		var err error
		phones, err = flattenSyllables(body, opts.StressVowels)
		if err != nil {
			return "", Heteronym{}, err
		}
	}

	return word, Heteronym{POS: pos, Phones: phones}, nil
}

// flattenSyllables concatenates each syllable's phones, appending the
// syllable's stress digit to phones whose name is in stressVowels.
func flattenSyllables(body *sexpr.Value, stressVowels map[string]bool) ([]string, error) {
	if body.Kind != sexpr.KindList {
		return nil, fmt.Errorf("syllable body must be a list, got %v", body)
	}
	var phones []string
	for _, syl := range body.List {
		if syl.Kind != sexpr.KindList || len(syl.List) != 2 {
			return nil, fmt.Errorf("syllable must be (phones stress), got %v", syl)
		}
		phoneList := syl.List[0]
		if phoneList.Kind != sexpr.KindList {
			return nil, fmt.Errorf("syllable phones must be a list, got %v", phoneList)
		}
		stress := syl.List[1].Text()
		for _, p := range phoneList.List {
			name := p.Text()
			if stressVowels[name] {
				phones = append(phones, name+stress)
			} else {
				phones = append(phones, name)
			}
		}
	}
	return phones, nil
}

// FilterOptions controls Filter's predicates.
type FilterOptions struct {
	// MinLength is the minimum word length; words shorter than this are
	// dropped. Zero or negative disables the check. Default is 4 per
	// spec §6.
	MinLength int
	// Lowercase lowercases every surviving word before it becomes the
	// filtered lexicon's key.
	Lowercase bool
	// RequireAllowedLetters drops words containing a letter absent from
	// Allowables. When set, Allowables must be non-nil.
	RequireAllowedLetters bool
	Allowables            *allow.Table
}

// Filter applies the minimum-length, casing and allowed-letter predicates
// from spec §4.2, returning a new Lexicon keyed by the (possibly
// lowercased) surviving words.
func Filter(lex Lexicon, opts FilterOptions) (Lexicon, error) {
	if opts.RequireAllowedLetters && opts.Allowables == nil {
		return nil, lerr.New(lerr.KindMissingAllowables, fmt.Errorf("filter requires an allowables table"))
	}

	out := Lexicon{}
	for _, word := range lex.Words() {
		if opts.MinLength > 0 && len([]rune(word)) < opts.MinLength {
			continue
		}
		filtered := word
		if opts.Lowercase {
			filtered = strings.ToLower(filtered)
		}
		if opts.RequireAllowedLetters {
			candidate := strings.ToLower(word)
			if !allLettersAllowed(candidate, opts.Allowables) {
				continue
			}
		}
		out[filtered] = append(out[filtered], lex[word]...)
	}
	return out, nil
}

func allLettersAllowed(word string, table *allow.Table) bool {
	for _, r := range word {
		if !table.HasLetter(string(r)) {
			return false
		}
	}
	return true
}

// ParseStressVowels builds a StressVowels set from a list of phone names,
// as supplied on the CLI or in a config file.
func ParseStressVowels(names []string) map[string]bool {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return set
}
