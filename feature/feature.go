// Package feature builds decision-tree training rows from alignments.
package feature

import (
	"fmt"
	"strings"

	"github.com/nihei9/ltsc/align"
)

// NotALetter is the padding token used for context positions that fall
// outside the word, distinct from any real letter or the boundary symbol.
const NotALetter = "0"

// ContextWidth is the number of letters of context kept on each side of
// the central letter.
const ContextWidth = 4

// Row is one training sample: the emitted phone label plus its letter
// context and part of speech, in the fixed 11-field order spec §4.4
// requires (label, p-4..p-1, center, n+1..n+4, pos).
type Row struct {
	Label  string
	Left   [ContextWidth]string
	Center string
	Right  [ContextWidth]string
	POS    string
}

// Fields returns the row as 11 whitespace-ready tokens, in file order.
func (r Row) Fields() []string {
	out := make([]string, 0, 2+2*ContextWidth+1)
	out = append(out, r.Label)
	for i := ContextWidth - 1; i >= 0; i-- {
		out = append(out, r.Left[i])
	}
	out = append(out, r.Center)
	out = append(out, r.Right[:]...)
	out = append(out, r.POS)
	return out
}

func (r Row) String() string {
	return strings.Join(r.Fields(), " ")
}

// Build emits one training row per non-boundary pair in a's interior. The
// context window is built from the interior letters alone: the boundary
// pairs at either end of a.Path never appear as a context value, they only
// mark where the interior ends, beyond which context positions read
// NotALetter.
func Build(a *align.Alignment) []Row {
	interior := a.Path[1 : len(a.Path)-1]
	letters := make([]string, len(interior))
	for i, p := range interior {
		letters[i] = p.Letter
	}

	rows := make([]Row, len(interior))
	for i, p := range interior {
		rows[i] = Row{
			Label:  p.Phone,
			Left:   contextLeft(letters, i),
			Center: letters[i],
			Right:  contextRight(letters, i),
			POS:    a.POS,
		}
	}
	return rows
}

func contextLeft(letters []string, i int) [ContextWidth]string {
	var out [ContextWidth]string
	for k := 0; k < ContextWidth; k++ {
		// out[0] is the nearest left neighbour (p-1), out[3] the
		// farthest (p-4), matching Row.Fields' emission order which
		// writes p-4..p-1 left to right.
		idx := i - (k + 1)
		if idx < 0 {
			out[k] = NotALetter
		} else {
			out[k] = letters[idx]
		}
	}
	return out
}

func contextRight(letters []string, i int) [ContextWidth]string {
	var out [ContextWidth]string
	for k := 0; k < ContextWidth; k++ {
		idx := i + k + 1
		if idx >= len(letters) {
			out[k] = NotALetter
		} else {
			out[k] = letters[idx]
		}
	}
	return out
}

// BuildAll runs Build over every alignment and returns the combined rows.
func BuildAll(as []*align.Alignment) []Row {
	var rows []Row
	for _, a := range as {
		rows = append(rows, Build(a)...)
	}
	return rows
}

// ShardByCenter groups rows by their central letter, which is the unit of
// sharding the tree driver trains on.
func ShardByCenter(rows []Row) map[string][]Row {
	shards := make(map[string][]Row)
	for _, r := range rows {
		shards[r.Center] = append(shards[r.Center], r)
	}
	return shards
}

// Names are the 11 feature-column names, in row-field order, matching the
// default --feat-names list from spec §6. Entries suffixed " ignore" are
// written to the feature-description file but never tested against by the
// predictor.
var Names = [11]string{
	"Relation.LTS.down.name",
	"p.p.p.p.name ignore",
	"p.p.p.name",
	"p.p.name",
	"p.name",
	"name",
	"n.name",
	"n.n.name",
	"n.n.n.name",
	"n.n.n.n.name ignore",
	"pos ignore",
}

// BaseName strips a trailing " ignore" marker from a feature name.
func BaseName(name string) string {
	return strings.TrimSuffix(name, " ignore")
}

// IsIgnored reports whether name carries the " ignore" marker.
func IsIgnored(name string) bool {
	return strings.HasSuffix(name, " ignore")
}

// ValidateNames checks that names has exactly 11 entries, matching the
// fixed row shape Row.Fields produces.
func ValidateNames(names []string) error {
	if len(names) != len(Names) {
		return fmt.Errorf("feat-names must have %d entries, got %d", len(Names), len(names))
	}
	return nil
}
