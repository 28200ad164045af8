// Package wfst lowers a simplified decision tree to a regular grammar
// (spec §4.8 stage 1), and parses the weighted finite-state transducer an
// external builder compiles that grammar to (spec §4.8 stage 2) into the
// packed rule rows the C emitter serializes.
package wfst

import (
	"fmt"
	"os"
	"strings"

	"github.com/nihei9/ltsc/allow"
	"github.com/nihei9/ltsc/tree"
)

// Link is one arc of the lowered regular grammar. A terminal arc (To =="")
// carries a phone symbol as Label; an internal arc carries a feature test
// as Label and points at the state the test selects.
type Link struct {
	From  string
	Label string
	To    string
}

// Lower walks root and emits its regular-grammar arcs, numbering states
// s1, s2, … exactly as spec §4.8/§8 scenario 5 describes: the root is s1,
// and each internal node allocates its yes/no children as the next two
// unused state numbers.
func Lower(root tree.Node) []Link {
	links, _ := lower(root, nil, 1, 1)
	return links
}

func lower(n tree.Node, links []Link, numStates, thisNode int) ([]Link, int) {
	switch t := n.(type) {
	case *tree.Leaf:
		phone := t.Majority
		if phone == allow.Epsilon {
			phone = "epsilon"
		}
		return append(links, Link{From: state(thisNode), Label: phone}), numStates
	case *tree.Internal:
		yesState := numStates + 1
		noState := numStates + 2
		cond := fmt.Sprintf("%s_is_%s", t.Cond.Feature, t.Cond.Value)
		links = append(links,
			Link{From: state(thisNode), Label: "_" + cond + "_", To: state(yesState)},
			Link{From: state(thisNode), Label: "_not_" + cond + "_", To: state(noState)},
		)
		numStates += 2
		links, numStates = lower(t.Yes, links, numStates, yesState)
		links, numStates = lower(t.No, links, numStates, noState)
		return links, numStates
	}
	return links, numStates
}

func state(n int) string {
	return fmt.Sprintf("s%d", n)
}

// WriteRegularGrammar writes links to path in the
// "(RegularGrammar name nil ((sA -> \"lbl\" sB) …))" shape spec §4.8
// describes; the grammar name field is the literal symbol "name" for
// every letter, matching the reference tool's own output.
func WriteRegularGrammar(path string, links []Link) error {
	var sb strings.Builder
	sb.WriteString("(RegularGrammar\n name\n nil\n (\n")
	for _, l := range links {
		if l.To != "" {
			sb.WriteString(fmt.Sprintf("(%s -> \"%s\" %s)\n", l.From, l.Label, l.To))
		} else {
			sb.WriteString(fmt.Sprintf("(%s -> %s)\n", l.From, l.Label))
		}
	}
	sb.WriteString("))\n")
	return os.WriteFile(path, []byte(sb.String()), 0644)
}
