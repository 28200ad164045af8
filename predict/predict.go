// Package predict evaluates trained decision trees against a word to
// produce a phone sequence, the operation spec §4.7 describes.
package predict

import (
	"fmt"
	"strings"

	lerr "github.com/nihei9/ltsc/error"
	"github.com/nihei9/ltsc/tree"
)

// NotALetter is the out-of-range padding token, matching feature.NotALetter.
const NotALetter = "0"

// Boundary is the word-edge marker, matching allow.Boundary.
const Boundary = "#"

// padWidth is wider than the literal "[0,0,'#', …, '#',0,0]" padding spec
// §4.7 describes: two positions of padding only support offsets up to
// ±3, but the feature-name grammar also accepts (and must not panic on)
// the ignored ±4 offsets. Padding four positions on each side keeps every
// recognized offset name safely in bounds while leaving the single
// boundary symbol immediately adjacent to the first and last letters,
// exactly as in the original padding.
const padWidth = 4

// pad builds the context array a tree's offset conditions index into:
// padWidth zeros, the boundary symbol, the word's letters, the boundary
// symbol, padWidth zeros.
func pad(letters []string) []string {
	out := make([]string, 0, len(letters)+2*padWidth+2)
	for i := 0; i < padWidth; i++ {
		out = append(out, NotALetter)
	}
	out = append(out, Boundary)
	out = append(out, letters...)
	out = append(out, Boundary)
	for i := 0; i < padWidth; i++ {
		out = append(out, NotALetter)
	}
	return out
}

// offsets maps the recognized feature names to their positional offset
// from the central letter. p.p.p.p.name and n.n.n.n.name parse (spec
// §4.7 calls them "valid as tests") but a real trained tree never emits
// them, since the trainer's default --feat-names marks both " ignore".
var offsets = map[string]int{
	"name":         0,
	"n.name":       1,
	"n.n.name":     2,
	"n.n.n.name":   3,
	"n.n.n.n.name": 4,
	"p.name":       -1,
	"p.p.name":     -2,
	"p.p.p.name":   -3,
	"p.p.p.p.name": -4,
}

func offsetOf(feat string) (int, error) {
	off, ok := offsets[feat]
	if !ok {
		return 0, lerr.New(lerr.KindUnknownFeature, fmt.Errorf("unrecognized feature name %q", feat))
	}
	return off, nil
}

// Warning describes a non-fatal problem encountered while predicting a
// word, such as a letter with no trained tree.
type Warning struct {
	Word   string
	Letter string
	Reason string
}

func (w Warning) String() string {
	return fmt.Sprintf("%s: %s", w.Word, w.Reason)
}

// Word predicts the phone sequence for letters (already split, no
// boundary markers) using the per-letter trees in rules. It returns an
// empty slice and a Warning if any letter has no entry in rules, and a
// fatal error if a tree names a feature offset the predictor does not
// recognize.
func Word(letters []string, rules map[string]tree.Node) ([]string, *Warning, error) {
	padded := pad(letters)
	phones := make([]string, 0, len(letters))
	for i, letter := range letters {
		t, ok := rules[letter]
		if !ok {
			return nil, &Warning{Letter: letter, Reason: fmt.Sprintf("no trained tree for letter %q", letter)}, nil
		}
		center := padWidth + 1 + i // index of letters[i] inside padded
		phone, err := eval(t, padded, center)
		if err != nil {
			return nil, nil, err
		}
		phones = append(phones, phone)
	}
	return phones, nil, nil
}

func eval(n tree.Node, padded []string, center int) (string, error) {
	switch t := n.(type) {
	case *tree.Leaf:
		return t.Majority, nil
	case *tree.Internal:
		off, err := offsetOf(t.Cond.Feature)
		if err != nil {
			return "", err
		}
		idx := center + off
		var actual string
		if idx < 0 || idx >= len(padded) {
			actual = NotALetter
		} else {
			actual = padded[idx]
		}
		if actual == t.Cond.Value {
			return eval(t.Yes, padded, center)
		}
		return eval(t.No, padded, center)
	}
	return "", lerr.New(lerr.KindMalformedInput, fmt.Errorf("unknown tree node type"))
}

// Letters splits a word into its individual-letter slice, the shape Word
// expects.
func Letters(word string) []string {
	runes := []rune(word)
	out := make([]string, len(runes))
	for i, r := range runes {
		out[i] = string(r)
	}
	return out
}

// Normalize flattens a predicted phone sequence for comparison against a
// gold phone sequence: epsilon entries are dropped and fused "a-b" pairs
// are split into two phones, matching spec §4.6's test-time normalization.
func Normalize(phones []string) []string {
	const epsilon = "_epsilon_"
	out := make([]string, 0, len(phones))
	for _, p := range phones {
		if p == epsilon {
			continue
		}
		if idx := strings.IndexByte(p, '-'); idx >= 0 {
			out = append(out, p[:idx], p[idx+1:])
			continue
		}
		out = append(out, p)
	}
	return out
}
