// Package allow loads and queries the Allowables table: the mapping from
// a letter to the set of phones (and the epsilon sentinel) it may align
// to.
package allow

import (
	"encoding/json"
	"fmt"
	"os"

	lerr "github.com/nihei9/ltsc/error"
)

// Epsilon is the sentinel phone label for a silent-letter alignment.
const Epsilon = "_epsilon_"

// Boundary is the word/phone-sequence boundary symbol. Allowables must map
// it to itself.
const Boundary = "#"

// Table is an Allowables table: letter -> set of phones it may align to.
type Table struct {
	phones map[string]map[string]bool
}

// New builds a Table from a raw letter->phones mapping, as decoded from
// JSON.
func New(raw map[string][]string) (*Table, error) {
	t := &Table{phones: make(map[string]map[string]bool, len(raw))}
	for letter, phones := range raw {
		set := make(map[string]bool, len(phones))
		for _, p := range phones {
			set[p] = true
		}
		t.phones[letter] = set
	}
	if !t.Allows(Boundary, Boundary) {
		return nil, lerr.New(lerr.KindMalformedInput, fmt.Errorf("allowables must map %q to [%q]", Boundary, Boundary))
	}
	return t, nil
}

// Load reads an Allowables table from a JSON file of the shape
// { "letter": ["phone", ...] }.
func Load(path string) (*Table, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var raw map[string][]string
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil, lerr.New(lerr.KindMalformedInput, fmt.Errorf("parsing allowables %s: %w", path, err))
	}
	return New(raw)
}

// Allows reports whether phone is a legal alignment target for letter.
func (t *Table) Allows(letter, phone string) bool {
	set, ok := t.phones[letter]
	if !ok {
		return false
	}
	return set[phone]
}

// AllowsFusion reports whether the two-phone fusion "p1-p2" is a legal
// alignment target for letter.
func (t *Table) AllowsFusion(letter, p1, p2 string) bool {
	return t.Allows(letter, p1+"-"+p2)
}

// AllowsEpsilon reports whether letter may align to an epsilon insertion.
func (t *Table) AllowsEpsilon(letter string) bool {
	return t.Allows(letter, Epsilon)
}

// Letters returns every letter with an entry in the table, in no
// particular order.
func (t *Table) Letters() []string {
	out := make([]string, 0, len(t.phones))
	for l := range t.phones {
		out = append(out, l)
	}
	return out
}

// HasLetter reports whether letter has any entry at all in the table.
func (t *Table) HasLetter(letter string) bool {
	_, ok := t.phones[letter]
	return ok
}

// Phones returns the set of phone labels (including Epsilon and any fused
// "p1-p2" pairs) allowed for letter, in no particular order.
func (t *Table) Phones(letter string) []string {
	set, ok := t.phones[letter]
	if !ok {
		return nil
	}
	out := make([]string, 0, len(set))
	for p := range set {
		out = append(out, p)
	}
	return out
}

// NonEpsilonPhones returns the phones allowed for letter excluding the
// epsilon sentinel and any fused two-phone entries (those containing a
// "-").
func (t *Table) NonEpsilonPhones(letter string) []string {
	set, ok := t.phones[letter]
	if !ok {
		return nil
	}
	out := make([]string, 0, len(set))
	for p := range set {
		if p == Epsilon {
			continue
		}
		if containsHyphen(p) {
			continue
		}
		out = append(out, p)
	}
	return out
}

func containsHyphen(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] == '-' {
			return true
		}
	}
	return false
}
