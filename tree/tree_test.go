package tree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nihei9/ltsc/allow"
	"github.com/nihei9/ltsc/sexpr"
)

func TestParse_Leaf(t *testing.T) {
	v, err := sexpr.Read(`(((x 0.6) (y 0.4) x))`)
	require.NoError(t, err)

	n, err := Parse(v)
	require.NoError(t, err)

	leaf, ok := n.(*Leaf)
	require.True(t, ok)
	assert.Equal(t, "x", leaf.Majority)
	require.Len(t, leaf.Dist, 2)
	assert.Equal(t, "x", leaf.Dist[0].Phone)
	assert.Equal(t, 0.6, leaf.Dist[0].Weight)
}

func TestParse_DropsZeroWeights(t *testing.T) {
	v, err := sexpr.Read(`(((x 1.0) (y 0) x))`)
	require.NoError(t, err)

	n, err := Parse(v)
	require.NoError(t, err)

	leaf := n.(*Leaf)
	require.Len(t, leaf.Dist, 1)
	assert.Equal(t, "x", leaf.Dist[0].Phone)
}

func TestParse_Internal(t *testing.T) {
	v, err := sexpr.Read(`((n.name is a) (((x 1) x)) (((y 1) y)))`)
	require.NoError(t, err)

	n, err := Parse(v)
	require.NoError(t, err)

	internal, ok := n.(*Internal)
	require.True(t, ok)
	assert.Equal(t, Condition{Feature: "n.name", Value: "a"}, internal.Cond)

	yes, ok := internal.Yes.(*Leaf)
	require.True(t, ok)
	assert.Equal(t, "x", yes.Majority)

	no, ok := internal.No.(*Leaf)
	require.True(t, ok)
	assert.Equal(t, "y", no.Majority)
}

func TestSyntheticLeaf_Uniform(t *testing.T) {
	leaf := SyntheticLeaf([]string{"z", "a", "m"})
	assert.Equal(t, "a", leaf.Majority)
	require.Len(t, leaf.Dist, 3)
	for _, pw := range leaf.Dist {
		assert.InDelta(t, 1.0/3.0, pw.Weight, 1e-9)
	}
}

func TestSyntheticLeaf_NoPhones(t *testing.T) {
	leaf := SyntheticLeaf(nil)
	assert.Equal(t, allow.Epsilon, leaf.Majority)
	assert.Empty(t, leaf.Dist)
}

func TestSexpr_RoundTrip(t *testing.T) {
	orig := &Internal{
		Cond: Condition{Feature: "p.name", Value: "b"},
		Yes:  &Leaf{Majority: "x", Dist: []PhoneWeight{{Phone: "x", Weight: 1}}},
		No:   &Leaf{Majority: allow.Epsilon},
	}
	s := Sexpr(orig)
	v, err := sexpr.Read(s.String())
	require.NoError(t, err)

	parsed, err := Parse(v)
	require.NoError(t, err)
	internal := parsed.(*Internal)
	assert.Equal(t, orig.Cond, internal.Cond)
	assert.Equal(t, "x", internal.Yes.(*Leaf).Majority)
	assert.Equal(t, allow.Epsilon, internal.No.(*Leaf).Majority)
}
