// Package tree implements the per-letter decision trees spec §4.5/§4.6
// describe: the S-expression shape an external tree learner (wagon)
// returns, simplification of its leaves, in-process merging into a single
// named ruleset, and serialization back to the same S-expression shape.
package tree

import (
	"fmt"
	"sort"

	"github.com/nihei9/ltsc/allow"
	lerr "github.com/nihei9/ltsc/error"
	"github.com/nihei9/ltsc/sexpr"
)

// Condition is the test an internal node applies: does the letter at
// Feature's positional offset equal Value.
type Condition struct {
	Feature string
	Value   string
}

func (c Condition) String() string {
	return fmt.Sprintf("(%s is %s)", c.Feature, c.Value)
}

// Node is either an *Internal or a *Leaf.
type Node interface {
	isNode()
}

// Internal carries a condition and the two subtrees it selects between.
type Internal struct {
	Cond Condition
	Yes  Node
	No   Node
}

func (*Internal) isNode() {}

// PhoneWeight is one observed-phone/weight pair kept at a leaf after
// simplification.
type PhoneWeight struct {
	Phone  string
	Weight float64
}

// Leaf carries the phone a letter in this context predicts (Majority) plus
// the weighted distribution of phones wagon observed there, kept only for
// inspection; prediction always uses Majority.
type Leaf struct {
	Majority string
	Dist     []PhoneWeight
}

func (*Leaf) isNode() {}

// Parse reads a wagon-format tree value and simplifies it in the same
// pass: training-count annotations and zero-weight entries are dropped
// from leaves, keeping only symbols (the majority phone) and nonzero
// weighted pairs, matching spec §4.5's "simplify" step.
func Parse(v *sexpr.Value) (Node, error) {
	if v == nil || v.Kind != sexpr.KindList {
		return nil, lerr.New(lerr.KindMalformedInput, fmt.Errorf("tree node must be a list"))
	}
	if isInternalShape(v) {
		cond, err := parseCondition(v.List[0])
		if err != nil {
			return nil, err
		}
		yes, err := Parse(v.List[1])
		if err != nil {
			return nil, err
		}
		no, err := Parse(v.List[2])
		if err != nil {
			return nil, err
		}
		return &Internal{Cond: cond, Yes: yes, No: no}, nil
	}
	if len(v.List) == 1 {
		return parseLeaf(v.List[0])
	}
	return nil, lerr.New(lerr.KindMalformedInput, fmt.Errorf("tree node has unexpected shape: %s", v.String()))
}

func isInternalShape(v *sexpr.Value) bool {
	if len(v.List) != 3 {
		return false
	}
	cond := v.List[0]
	return cond.Kind == sexpr.KindList && len(cond.List) == 3 && cond.List[1].IsSymbol("is")
}

func parseCondition(v *sexpr.Value) (Condition, error) {
	if v.Kind != sexpr.KindList || len(v.List) != 3 || !v.List[1].IsSymbol("is") {
		return Condition{}, lerr.New(lerr.KindMalformedInput, fmt.Errorf("malformed condition: %s", v.String()))
	}
	return Condition{Feature: v.List[0].Text(), Value: v.List[2].Text()}, nil
}

func parseLeaf(v *sexpr.Value) (*Leaf, error) {
	if v.Kind != sexpr.KindList {
		return nil, lerr.New(lerr.KindMalformedInput, fmt.Errorf("leaf body must be a list: %s", v.String()))
	}
	leaf := &Leaf{}
	for _, item := range v.List {
		switch {
		case item.Kind == sexpr.KindSymbol || item.Kind == sexpr.KindString:
			leaf.Majority = item.Text()
		case item.Kind == sexpr.KindList && len(item.List) == 2:
			w := numericValue(item.List[1])
			if w != 0 {
				leaf.Dist = append(leaf.Dist, PhoneWeight{Phone: item.List[0].Text(), Weight: w})
			}
		}
	}
	if leaf.Majority == "" && len(leaf.Dist) > 0 {
		leaf.Majority = maxWeightPhone(leaf.Dist)
	}
	if leaf.Majority == "" {
		return nil, lerr.New(lerr.KindMalformedInput, fmt.Errorf("leaf has no majority phone: %s", v.String()))
	}
	return leaf, nil
}

func numericValue(v *sexpr.Value) float64 {
	switch v.Kind {
	case sexpr.KindInt:
		return float64(v.Int)
	case sexpr.KindFloat:
		return v.Flt
	}
	return 0
}

func maxWeightPhone(dist []PhoneWeight) string {
	best := dist[0]
	for _, pw := range dist[1:] {
		if pw.Weight > best.Weight || (pw.Weight == best.Weight && pw.Phone < best.Phone) {
			best = pw
		}
	}
	return best.Phone
}

// SyntheticLeaf builds the hand-built leaf spec §4.5 requires for a letter
// with no training samples: uniform weight 1/K over its allowed
// non-epsilon phones, or a single epsilon leaf when it has none. The
// majority phone is the alphabetically first phone in the uniform set, a
// deterministic tie-break among equally weighted candidates.
func SyntheticLeaf(nonEpsilonPhones []string) *Leaf {
	if len(nonEpsilonPhones) == 0 {
		return &Leaf{Majority: allow.Epsilon}
	}
	phones := append([]string(nil), nonEpsilonPhones...)
	sort.Strings(phones)
	weight := 1.0 / float64(len(phones))
	dist := make([]PhoneWeight, len(phones))
	for i, p := range phones {
		dist[i] = PhoneWeight{Phone: p, Weight: weight}
	}
	return &Leaf{Majority: phones[0], Dist: dist}
}

// Sexpr renders n back into the wagon-shaped S-expression tree format
// spec §4.6's model file uses.
func Sexpr(n Node) *sexpr.Value {
	switch t := n.(type) {
	case *Internal:
		return sexpr.List(
			sexpr.List(sexpr.Symbol(t.Cond.Feature), sexpr.Symbol("is"), sexpr.Symbol(t.Cond.Value)),
			Sexpr(t.Yes),
			Sexpr(t.No),
		)
	case *Leaf:
		items := make([]*sexpr.Value, 0, len(t.Dist)+1)
		for _, pw := range t.Dist {
			items = append(items, sexpr.List(sexpr.Symbol(pw.Phone), sexpr.Float(pw.Weight)))
		}
		items = append(items, sexpr.Symbol(t.Majority))
		return sexpr.List(sexpr.List(items...))
	}
	return sexpr.List()
}
