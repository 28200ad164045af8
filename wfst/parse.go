package wfst

import (
	"fmt"
	"os"
	"strings"

	lerr "github.com/nihei9/ltsc/error"
	"github.com/nihei9/ltsc/sexpr"
)

// featureIDs are the eight positional-offset features a trained tree may
// split on, in the order the C emitter's packed feat byte expects. The
// central letter's own identity (offset 0, "name") can never be a split
// feature inside its own per-letter tree, so it has no id here; a
// condition naming it (or anything else) is an UnknownFeature.
var featureIDs = map[string]int{
	"p.p.p.p.name": 0,
	"p.p.p.name":   1,
	"p.p.name":     2,
	"p.name":       3,
	"n.name":       4,
	"n.n.name":     5,
	"n.n.n.name":   6,
	"n.n.n.n.name": 7,
}

// FeatureID maps a condition's feature name to its packed-rule feat byte.
func FeatureID(name string) (int, error) {
	id, ok := featureIDs[name]
	if !ok {
		return 0, lerr.New(lerr.KindUnknownFeature, fmt.Errorf("unrecognized feature name %q in WFST label", name))
	}
	return id, nil
}

// PhoneTable is the shared, across-letters table of distinct terminal
// phone symbols; index 0 is always "epsilon" (spec §8's Phone table
// invariant).
type PhoneTable struct {
	phones []string
	index  map[string]int
}

// NewPhoneTable returns a table seeded with "epsilon" at index 0.
func NewPhoneTable() *PhoneTable {
	t := &PhoneTable{index: map[string]int{"epsilon": 0}}
	t.phones = append(t.phones, "epsilon")
	return t
}

// Intern returns phone's index, adding it to the table if not already
// present.
func (t *PhoneTable) Intern(phone string) int {
	if i, ok := t.index[phone]; ok {
		return i
	}
	i := len(t.phones)
	t.phones = append(t.phones, phone)
	t.index[phone] = i
	return i
}

// Phones returns the table's phones in index order.
func (t *PhoneTable) Phones() []string {
	return t.phones
}

// Rule is one row of the packed decision machine: a test (Feat, Val) and
// the two jump targets it selects between, or a terminal rule (QTrue ==
// QFalse == -1) whose Val is a phone table index.
type Rule struct {
	Feat   int
	Val    int
	QTrue  int
	QFalse int
}

// wfstRecord is one "((num marker nleafs) lbl1 lbl2)" entry from a parsed
// WFST file.
type wfstRecord struct {
	num      int64
	final    bool
	numLeafs int64
	lbl1     *sexpr.Value
	lbl2     *sexpr.Value
}

// ParseWFSTFile reads one letter's compiled WFST file and returns its rule
// rows, with jump targets numbered as global indices starting at
// startIndex, plus the next free global state index, so callers can chain
// this across every letter and concatenate the rows into one contiguous
// rule table.
//
// The WFST builder's own on-disk record order swaps which child carries
// the "true" branch: the *second* listed child (lbl2) is the yes-branch
// target and the *first* (lbl1) carries the condition label and the
// no-branch target. This asymmetry is inherited unchanged from the
// reference tool this package's output must interoperate with.
func ParseWFSTFile(path string, startIndex int, phones *PhoneTable) ([]Rule, int, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, 0, err
	}

	body, err := stripWFSTHeader(string(b))
	if err != nil {
		return nil, 0, err
	}

	records, err := parseWFSTRecords(body)
	if err != nil {
		return nil, 0, err
	}

	stateOf := make(map[int64]int, len(records))
	var rules []Rule
	index := startIndex
	for _, rec := range records {
		stateOf[rec.num] = index
		switch {
		case rec.final:
			index--
		case rec.numLeafs > 0 && strings.Contains(rec.lbl1.List[0].Text(), "_"):
			feat, err := FeatureID(condFeature(rec.lbl1.List[0].Text()))
			if err != nil {
				return nil, 0, err
			}
			val := condValueByte(rec.lbl1.List[0].Text())
			qTrueTree := rec.lbl2.List[2].Int
			qFalseTree := rec.lbl1.List[2].Int
			rules = append(rules, Rule{Feat: feat, Val: val, QTrue: int(qTrueTree), QFalse: int(qFalseTree)})
		default:
			val := phones.Intern(rec.lbl1.List[0].Text())
			rules = append(rules, Rule{Feat: 255, Val: val, QTrue: -1, QFalse: -1})
		}
		index++
	}

	// Resolve jump targets from tree numbers to the global rule index.
	for i := range rules {
		if rules[i].QTrue == -1 {
			continue
		}
		rules[i].QTrue = stateOf[int64(rules[i].QTrue)]
		rules[i].QFalse = stateOf[int64(rules[i].QFalse)]
	}
	return rules, index, nil
}

// stripWFSTHeader discards everything up to and including the
// "EST_Header_End" line.
func stripWFSTHeader(src string) (string, error) {
	lines := strings.Split(src, "\n")
	for i, line := range lines {
		if strings.HasPrefix(line, "EST_Header_End") {
			return strings.Join(lines[i+1:], " "), nil
		}
	}
	return "", lerr.New(lerr.KindMalformedInput, fmt.Errorf("WFST file has no EST_Header_End line"))
}

func parseWFSTRecords(body string) ([]*wfstRecord, error) {
	v, err := sexpr.Read("(" + body + ")")
	if err != nil {
		return nil, lerr.New(lerr.KindMalformedInput, fmt.Errorf("parsing WFST body: %w", err))
	}
	records := make([]*wfstRecord, 0, len(v.List))
	for _, entry := range v.List {
		if entry.Kind != sexpr.KindList || len(entry.List) < 1 || entry.List[0].Kind != sexpr.KindList || len(entry.List[0].List) != 3 {
			return nil, lerr.New(lerr.KindMalformedInput, fmt.Errorf("malformed WFST record: %s", entry.String()))
		}
		head := entry.List[0]
		rec := &wfstRecord{
			num:      head.List[0].Int,
			final:    head.List[1].IsSymbol("final"),
			numLeafs: head.List[2].Int,
		}
		if len(entry.List) > 1 {
			rec.lbl1 = entry.List[1]
		}
		if len(entry.List) > 2 {
			rec.lbl2 = entry.List[2]
		}
		records = append(records, rec)
	}
	return records, nil
}

// condFeature extracts the feature name from a condition label of the
// form "_feat_is_val_" or "_not_feat_is_val_".
func condFeature(label string) string {
	inner := strings.TrimSuffix(strings.TrimPrefix(strings.TrimPrefix(label, "_not_"), "_"), "_")
	parts := strings.SplitN(inner, "_is_", 2)
	if len(parts) != 2 {
		return inner
	}
	return parts[0]
}

// condValueByte extracts the single-character value from a condition
// label, matching the reference implementation's "the character just
// before the trailing underscore" convention.
func condValueByte(label string) int {
	trimmed := strings.TrimSuffix(label, "_")
	if trimmed == "" {
		return 0
	}
	r := []rune(trimmed)
	return int(r[len(r)-1])
}
