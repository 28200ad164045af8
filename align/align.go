// Package align implements the two-pass letter-to-phone alignment search:
// pass 1 enumerates every legal alignment to accumulate co-occurrence
// counts, pass 2 picks the single best-scoring alignment per lexicon
// entry.
package align

import (
	"fmt"
	"sort"
	"strings"

	"github.com/nihei9/ltsc/allow"
	lerr "github.com/nihei9/ltsc/error"
	"github.com/nihei9/ltsc/lexicon"
)

// Pair is one (phone, letter) step of an alignment.
type Pair struct {
	Phone  string
	Letter string
}

// Alignment is the full boundary-padded path for one lexicon entry.
type Alignment struct {
	Word   string
	POS    string
	Path   []Pair
}

// Failure records a lexicon entry with no legal alignment (spec
// §4.3/§7's AlignmentFailure, collected rather than fatal).
type Failure struct {
	Word   string
	POS    string
	Phones []string
	Reason string
}

// Budget bounds the alignment search so a pathological word (long, with
// many legal epsilon insertions) cannot make either pass run forever.
// Spec §9 open question (b) flags pass 1's enumeration as worst-case
// exponential; ltsc resolves it by capping the number of distinct paths
// pass 1 will accumulate per entry, and the number of recursive calls
// pass 2 will make per entry. Both default to generous values that only
// bite on pathological inputs.
type Budget struct {
	MaxPathsPerEntry int
	MaxStepsPerEntry int
}

// DefaultBudget is used when a zero Budget is supplied.
var DefaultBudget = Budget{MaxPathsPerEntry: 20000, MaxStepsPerEntry: 200000}

func (b Budget) orDefault() Budget {
	if b.MaxPathsPerEntry <= 0 {
		b.MaxPathsPerEntry = DefaultBudget.MaxPathsPerEntry
	}
	if b.MaxStepsPerEntry <= 0 {
		b.MaxStepsPerEntry = DefaultBudget.MaxStepsPerEntry
	}
	return b
}

func padLetters(word string) []string {
	runes := []rune(word)
	out := make([]string, 0, len(runes)+2)
	out = append(out, allow.Boundary)
	for _, r := range runes {
		out = append(out, string(r))
	}
	out = append(out, allow.Boundary)
	return out
}

func padPhones(phones []string) []string {
	out := make([]string, 0, len(phones)+2)
	out = append(out, allow.Boundary)
	out = append(out, phones...)
	out = append(out, allow.Boundary)
	return out
}

// Accumulate runs pass 1 over every entry of lex: it enumerates all legal
// alignments, accumulates co-occurrence counts into a fresh CooccurTable,
// and collects entries with zero legal alignments into the returned
// failure list.
func Accumulate(lex lexicon.Lexicon, table *allow.Table, budget Budget) (*CooccurTable, []Failure) {
	budget = budget.orDefault()
	cooc := NewCooccurTable(table)
	var failures []Failure

	for _, word := range lex.Words() {
		letters := padLetters(word)
		for _, het := range lex[word] {
			phones := padPhones(het.Phones)
			paths := enumerateAll(phones, letters, table, budget.MaxPathsPerEntry)
			if len(paths) == 0 {
				failures = append(failures, Failure{
					Word: word, POS: het.POS, Phones: het.Phones,
					Reason: "no legal alignment under allowables",
				})
				continue
			}
			for _, path := range paths {
				for _, pair := range path {
					cooc.add(pair.Phone, pair.Letter, scoreOf(pair.Phone))
				}
			}
		}
	}
	return cooc, failures
}

func scoreOf(phone string) float64 {
	if phone == allow.Epsilon {
		return 0.1
	}
	return 1.0
}

// enumerateAll enumerates every alignment of phones against letters that
// is legal under table, stopping early once cap distinct paths have been
// found.
func enumerateAll(phones, letters []string, table *allow.Table, cap int) [][]Pair {
	if len(phones) == 1 && len(letters) == 1 && phones[0] == allow.Boundary && letters[0] == allow.Boundary {
		return [][]Pair{{{Phone: allow.Boundary, Letter: allow.Boundary}}}
	}
	if len(letters) == 0 {
		return nil
	}

	var out [][]Pair
	l0 := letters[0]

	if table.AllowsEpsilon(l0) {
		for _, rest := range enumerateAll(phones, letters[1:], table, cap-len(out)) {
			out = append(out, prepend(Pair{Phone: allow.Epsilon, Letter: l0}, rest))
			if len(out) >= cap {
				return out
			}
		}
	}
	if len(phones) >= 1 && table.Allows(l0, phones[0]) {
		for _, rest := range enumerateAll(phones[1:], letters[1:], table, cap-len(out)) {
			out = append(out, prepend(Pair{Phone: phones[0], Letter: l0}, rest))
			if len(out) >= cap {
				return out
			}
		}
	}
	if len(phones) >= 2 && table.AllowsFusion(l0, phones[0], phones[1]) {
		fused := phones[0] + "-" + phones[1]
		for _, rest := range enumerateAll(phones[2:], letters[1:], table, cap-len(out)) {
			out = append(out, prepend(Pair{Phone: fused, Letter: l0}, rest))
			if len(out) >= cap {
				return out
			}
		}
	}
	return out
}

func prepend(p Pair, rest []Pair) []Pair {
	out := make([]Pair, 0, len(rest)+1)
	out = append(out, p)
	out = append(out, rest...)
	return out
}

// best tracks the running best path found by the pass-2 search.
type best struct {
	path         []Pair
	score        float64
	epsilonIndex int
	found        bool
}

func (b *best) consider(path []Pair, score float64) {
	epsIdx := epsilonIndexSum(path)
	switch {
	case !b.found || score > b.score:
		b.found = true
		b.path = append([]Pair(nil), path...)
		b.score = score
		b.epsilonIndex = epsIdx
	case score == b.score && epsIdx > b.epsilonIndex:
		b.path = append([]Pair(nil), path...)
		b.epsilonIndex = epsIdx
	}
}

func epsilonIndexSum(path []Pair) int {
	sum := 0
	for i, p := range path {
		if p.Phone == allow.Epsilon {
			sum += i
		}
	}
	return sum
}

// Best runs pass 2 for a single entry: find the maximum-scoring alignment
// under the normalized co-occurrence table, breaking ties by the larger
// index-weighted epsilon count (spec §4.3 pass 2).
func Best(word, pos string, phonesIn []string, cooc *CooccurTable, table *allow.Table, budget Budget) (*Alignment, *Failure) {
	budget = budget.orDefault()
	letters := padLetters(word)
	phones := padPhones(phonesIn)

	b := &best{}
	steps := 0
	searchBest(phones, letters, table, cooc, nil, 0, b, &steps, budget.MaxStepsPerEntry)

	if !b.found {
		return nil, &Failure{Word: word, POS: pos, Phones: phonesIn, Reason: "no legal alignment under allowables"}
	}
	return &Alignment{Word: word, POS: pos, Path: b.path}, nil
}

func searchBest(phones, letters []string, table *allow.Table, cooc *CooccurTable, path []Pair, score float64, b *best, steps *int, maxSteps int) {
	*steps++
	if *steps > maxSteps {
		return
	}
	if len(letters) == 0 {
		b.consider(path, score)
		return
	}

	l0 := letters[0]

	if table.AllowsEpsilon(l0) {
		p := append(append([]Pair(nil), path...), Pair{Phone: allow.Epsilon, Letter: l0})
		searchBest(phones, letters[1:], table, cooc, p, score+cooc.Score(l0, allow.Epsilon), b, steps, maxSteps)
	}
	if len(phones) >= 1 && table.Allows(l0, phones[0]) {
		p := append(append([]Pair(nil), path...), Pair{Phone: phones[0], Letter: l0})
		searchBest(phones[1:], letters[1:], table, cooc, p, score+cooc.Score(l0, phones[0]), b, steps, maxSteps)
	}
	if len(phones) >= 2 && table.AllowsFusion(l0, phones[0], phones[1]) {
		fused := phones[0] + "-" + phones[1]
		p := append(append([]Pair(nil), path...), Pair{Phone: fused, Letter: l0})
		searchBest(phones[2:], letters[1:], table, cooc, p, score+cooc.Score(l0, fused), b, steps, maxSteps)
	}
}

// Report collects everything pass 2 produced across a full lexicon: the
// successful alignments and the entries that failed.
type Report struct {
	Aligned []*Alignment
	Failed  []Failure
}

// AlignLexicon runs pass 2 over every entry of lex.
func AlignLexicon(lex lexicon.Lexicon, cooc *CooccurTable, table *allow.Table, budget Budget) *Report {
	r := &Report{}
	for _, word := range lex.Words() {
		for _, het := range lex[word] {
			a, fail := Best(word, het.POS, het.Phones, cooc, table, budget)
			if fail != nil {
				r.Failed = append(r.Failed, *fail)
				continue
			}
			r.Aligned = append(r.Aligned, a)
		}
	}
	return r
}

// String renders an alignment as the "( ( l1 l2 … ) pos p1 p2 … )" file
// line format from spec §6.
func (a *Alignment) String() string {
	var letters, phones []string
	for _, p := range a.Path[1 : len(a.Path)-1] {
		letters = append(letters, p.Letter)
		phones = append(phones, p.Phone)
	}
	return fmt.Sprintf("( ( %s ) %s %s )", strings.Join(letters, " "), a.POS, strings.Join(phones, " "))
}

// Validate checks the structural invariants spec §3/§8 require of every
// alignment: boundary-padded length and matching boundary endpoints.
func (a *Alignment) Validate() error {
	if len(a.Path) != len([]rune(a.Word))+2 {
		return lerr.New(lerr.KindMalformedInput, fmt.Errorf("alignment length %d does not match word %q length+2", len(a.Path), a.Word))
	}
	first, last := a.Path[0], a.Path[len(a.Path)-1]
	if first.Phone != allow.Boundary || first.Letter != allow.Boundary || last.Phone != allow.Boundary || last.Letter != allow.Boundary {
		return lerr.New(lerr.KindMalformedInput, fmt.Errorf("alignment for %q must start and end with (#,#)", a.Word))
	}
	return nil
}

// SortedFailureWords returns the words from fs in sorted order, used for
// deterministic failure-sample reporting.
func SortedFailureWords(fs []Failure) []string {
	ws := make([]string, len(fs))
	for i, f := range fs {
		ws[i] = f.Word
	}
	sort.Strings(ws)
	return ws
}
