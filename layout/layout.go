// Package layout names the scratch and output directories and files the
// training pipeline writes, keyed off a working directory and a
// language prefix, so reruns with the same inputs always resolve to the
// same paths (spec §6's idempotent-scratch-directory requirement).
package layout

import "path/filepath"

// Layout resolves every path the pipeline stages write to or read from.
type Layout struct {
	scratch string
	wfst    string
	c       string
}

// New builds a Layout rooted at cwd, naming its three directories
// "<prefix>_lts_scratch", "<prefix>_wfst" and "<prefix>_c".
func New(cwd, prefix string) *Layout {
	return &Layout{
		scratch: filepath.Join(cwd, prefix+"_lts_scratch"),
		wfst:    filepath.Join(cwd, prefix+"_wfst"),
		c:       filepath.Join(cwd, prefix+"_c"),
	}
}

// Dirs returns the three top-level directories, in the order they should
// be created.
func (l *Layout) Dirs() []string {
	return []string{l.scratch, l.wfst, l.c}
}

// ScratchDir is the root of the tree-driver working area.
func (l *Layout) ScratchDir() string { return l.scratch }

// FeatFile is the per-letter feature row file wagon trains from.
func (l *Layout) FeatFile(letter string) string {
	return filepath.Join(l.scratch, "ltsdataTRAIN."+letter+".feats")
}

// TreeFile is the per-letter decision tree wagon writes back.
func (l *Layout) TreeFile(letter string) string {
	return filepath.Join(l.scratch, "lts."+letter+".tree")
}

// WagonLog is the per-letter wagon invocation log.
func (l *Layout) WagonLog(letter string) string {
	return filepath.Join(l.scratch, "wagon_"+letter+".log")
}

// FeatDescFile is the feature-value description consumed by wagon.
func (l *Layout) FeatDescFile(prefix string) string {
	return filepath.Join(l.scratch, prefix+"LTS.desc")
}

// RulesFile is the merged, serialized decision-tree forest.
func (l *Layout) RulesFile(prefix string) string {
	return filepath.Join(l.scratch, prefix+"_lts_rules.scm")
}

// TestLogFile is the per-mismatch tester log.
func (l *Layout) TestLogFile() string {
	return filepath.Join(l.scratch, "test.log")
}

// GrammarDir is the root of the tree-to-WFST lowering working area.
func (l *Layout) GrammarDir() string { return l.wfst }

// GrammarFile is the intermediate regular-grammar file for a letter.
func (l *Layout) GrammarFile(letter string) string {
	return filepath.Join(l.wfst, letter+".rg")
}

// WFSTFile is the compiled weighted finite-state transducer for a letter.
func (l *Layout) WFSTFile(letter string) string {
	return filepath.Join(l.wfst, letter+".wfst")
}

// WFSTBuildLog is the per-letter wfst_build invocation log.
func (l *Layout) WFSTBuildLog(letter string) string {
	return filepath.Join(l.wfst, "wfst_build_"+letter+".log")
}

// CDir is the root of the generated-C-source output area.
func (l *Layout) CDir() string { return l.c }

// CFile is the final generated C source, named after prefix.
func (l *Layout) CFile(prefix string) string {
	return filepath.Join(l.c, prefix+"_lts_rules.c")
}
