// Package tester replays trained decision trees against gold alignments
// and reports word-level accuracy, the operation spec §4.6/§4.7 describe.
package tester

import (
	"fmt"
	"strings"

	"github.com/nihei9/ltsc/align"
	"github.com/nihei9/ltsc/predict"
	"github.com/nihei9/ltsc/tree"
)

// Mismatch records one word whose predicted phone sequence, after
// normalization, diverged from the gold sequence.
type Mismatch struct {
	Word      string
	Gold      []string
	Predicted []string
	Reason    string
}

func (m Mismatch) String() string {
	if m.Reason != "" {
		return fmt.Sprintf("%s: %s", m.Word, m.Reason)
	}
	return fmt.Sprintf("%s: expected %s, got %s", m.Word, strings.Join(m.Gold, " "), strings.Join(m.Predicted, " "))
}

// Result is the outcome of running Run over a set of alignments.
type Result struct {
	Correct    int
	Total      int
	Mismatches []Mismatch
}

// Accuracy is Correct/Total, or 0 when Total is 0.
func (r Result) Accuracy() float64 {
	if r.Total == 0 {
		return 0
	}
	return float64(r.Correct) / float64(r.Total)
}

// Run predicts each alignment's word letter by letter using rules and
// compares the normalized prediction against the normalized gold phone
// sequence. Every mismatch, including words with an untrained letter, is
// recorded in Result.Mismatches.
func Run(alignments []*align.Alignment, rules map[string]tree.Node) Result {
	var r Result
	for _, a := range alignments {
		r.Total++

		interior := a.Path[1 : len(a.Path)-1]
		letters := make([]string, len(interior))
		gold := make([]string, len(interior))
		for i, p := range interior {
			letters[i] = p.Letter
			gold[i] = p.Phone
		}

		predicted, warn, err := predict.Word(letters, rules)
		if err != nil {
			r.Mismatches = append(r.Mismatches, Mismatch{Word: a.Word, Reason: err.Error()})
			continue
		}
		if warn != nil {
			r.Mismatches = append(r.Mismatches, Mismatch{Word: a.Word, Reason: warn.Reason})
			continue
		}

		normGold := predict.Normalize(gold)
		normPred := predict.Normalize(predicted)
		if equalSlices(normGold, normPred) {
			r.Correct++
			continue
		}
		r.Mismatches = append(r.Mismatches, Mismatch{Word: a.Word, Gold: normGold, Predicted: normPred})
	}
	return r
}

func equalSlices(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
