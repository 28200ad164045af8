package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLayout_Paths(t *testing.T) {
	l := New("/work", "en")
	assert.Equal(t, "/work/en_lts_scratch", l.ScratchDir())
	assert.Equal(t, "/work/en_wfst", l.GrammarDir())
	assert.Equal(t, "/work/en_c", l.CDir())
	assert.Equal(t, "/work/en_lts_scratch/ltsdataTRAIN.a.feats", l.FeatFile("a"))
	assert.Equal(t, "/work/en_lts_scratch/lts.a.tree", l.TreeFile("a"))
	assert.Equal(t, "/work/en_lts_scratch/enLTS.desc", l.FeatDescFile("en"))
	assert.Equal(t, "/work/en_c/en_lts_rules.c", l.CFile("en"))
}

func TestLayout_Dirs(t *testing.T) {
	l := New("/work", "en")
	assert.Equal(t, []string{
		"/work/en_lts_scratch",
		"/work/en_wfst",
		"/work/en_c",
	}, l.Dirs())
}
