// Package emit serializes the trained, lowered, parsed rule set into the
// C source file mimic's runtime letter-to-sound engine loads: a packed
// rule table, a phone string table, and a sparse Unicode dispatch index
// from a letter's first code point to its rule table offset.
package emit

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	lerr "github.com/nihei9/ltsc/error"
	"github.com/nihei9/ltsc/utf8"
	"github.com/nihei9/ltsc/wfst"
)

// cHeader renders the boilerplate include block every generated file
// opens with.
func cHeader(prefix string) []string {
	return []string{
		"/*******************************************************/",
		fmt.Sprintf("/**  Autogenerated lts rules (regex) for lexicon %s     */", prefix),
		"/*******************************************************/",
		"",
		`#include "cst_string.h"`,
		`#include "cst_lts.h"`,
		`#include "cst_lexicon.h"`,
	}
}

// ruleStruct renders one packed rule row, folding (feat, val) into the
// single featval word spec §4.9 defines: the low 21 bits hold val and the
// high byte holds feat.
func ruleStruct(r wfst.Rule) (string, error) {
	if r.Val > 0x1FFFFF {
		return "", lerr.New(lerr.KindRuleOverflow, fmt.Errorf("rule value %d does not fit in 21 bits", r.Val))
	}
	if r.Feat > 0xFF {
		return "", lerr.New(lerr.KindRuleOverflow, fmt.Errorf("rule feature %d does not fit in 8 bits", r.Feat))
	}
	featval := (r.Val & 0x1FFFFF) | ((r.Feat & 0xFF) << 24)
	return fmt.Sprintf("{%d, %d, %d}", featval, r.QTrue, r.QFalse), nil
}

// RuleArray renders the packed rule table, terminated by the sentinel
// row {0, 0, 0} every reader relies on to find the end of the table.
func RuleArray(prefix string, rules []wfst.Rule) ([]string, error) {
	lines := []string{
		fmt.Sprintf("const cst_lts_rule %s_lts_model[%d] = ", prefix, len(rules)+1),
		"{",
	}
	rows := make([]string, len(rules))
	for i, r := range rules {
		row, err := ruleStruct(r)
		if err != nil {
			return nil, err
		}
		rows[i] = row
	}
	if len(rows) > 0 {
		lines = append(lines, "  "+strings.Join(rows, ",\n  ")+",")
	}
	lines = append(lines, "  {0, 0, 0}", "};", "")
	return lines, nil
}

// PhoneTable renders the phone string table a terminal rule's Val
// indexes into; index 0 is always "epsilon".
func PhoneTable(prefix string, phones []string) []string {
	lines := []string{
		"",
		fmt.Sprintf("const char * const %s_lts_phone_table[%d] = ", prefix, len(phones)+1),
		"{",
	}
	for _, p := range phones {
		lines = append(lines, fmt.Sprintf("    %q,", p))
	}
	lines = append(lines, "    NULL", "};")
	return lines
}

// letterTrie buckets each letter's rule-table start index by the UTF-8
// bytes of its single code point, one bucket per encoded length. It
// mirrors the C dispatch index's own tiering: a letter contributes to
// exactly one of the four levels, never more.
type letterTrie struct {
	level1 map[int]int
	level2 map[int]map[int]int
	level3 map[int]map[int]map[int]int
	level4 map[int]map[int]map[int]map[int]int
}

func newLetterTrie() *letterTrie {
	return &letterTrie{
		level1: map[int]int{},
		level2: map[int]map[int]int{},
		level3: map[int]map[int]map[int]int{},
		level4: map[int]map[int]map[int]map[int]int{},
	}
}

// classifyLetters buckets every letter's rule start index by its UTF-8
// byte length, applying the leading/continuation byte offsets spec §4.9
// specifies (-192/-224/-240 for the lead byte, -128 for each
// continuation byte) so every bucket index falls in the C array's
// bounds.
func classifyLetters(ranges []wfst.LetterRange) (*letterTrie, error) {
	t := newLetterTrie()
	for _, lr := range ranges {
		b, err := utf8.Decompose(lr.Letter)
		if err != nil {
			return nil, err
		}
		switch len(b) {
		case 1:
			t.level1[int(b[0])] = lr.Start
		case 2:
			k0 := int(b[0]) - 192
			if t.level2[k0] == nil {
				t.level2[k0] = map[int]int{}
			}
			t.level2[k0][int(b[1])-128] = lr.Start
		case 3:
			k0 := int(b[0]) - 224
			k1 := int(b[1]) - 128
			if t.level3[k0] == nil {
				t.level3[k0] = map[int]map[int]int{}
			}
			if t.level3[k0][k1] == nil {
				t.level3[k0][k1] = map[int]int{}
			}
			t.level3[k0][k1][int(b[2])-128] = lr.Start
		case 4:
			k0 := int(b[0]) - 240
			k1 := int(b[1]) - 128
			k2 := int(b[2]) - 128
			if t.level4[k0] == nil {
				t.level4[k0] = map[int]map[int]map[int]int{}
			}
			if t.level4[k0][k1] == nil {
				t.level4[k0][k1] = map[int]map[int]int{}
			}
			if t.level4[k0][k1][k2] == nil {
				t.level4[k0][k1][k2] = map[int]int{}
			}
			t.level4[k0][k1][k2][int(b[3])-128] = lr.Start
		default:
			return nil, lerr.New(lerr.KindMalformedInput, fmt.Errorf("letter %q encodes to %d UTF-8 bytes, want 1-4", lr.Letter, len(b)))
		}
	}
	return t, nil
}

// cVec renders a fixed-length C array literal, filling every index not
// present in values with missing.
func cVec(vartype, varname string, length int, values map[int]int, missing string) string {
	cells := make([]string, length)
	for i := range cells {
		cells[i] = missing
	}
	for k, v := range values {
		cells[k] = fmt.Sprintf("%d", v)
	}
	return fmt.Sprintf("%s %s[%d] = {%s};", vartype, varname, length, strings.Join(cells, ", "))
}

// cVecPtr is cVec's counterpart for arrays of pointers to deeper-level
// arrays, named by the caller rather than holding integers directly.
func cVecPtr(vartype, varname string, length int, values map[int]string, missing string) string {
	cells := make([]string, length)
	for i := range cells {
		cells[i] = missing
	}
	for k, v := range values {
		cells[k] = v
	}
	return fmt.Sprintf("%s %s[%d] = {%s};", vartype, varname, length, strings.Join(cells, ", "))
}

func sortedKeys1(m map[int]int) []int {
	ks := make([]int, 0, len(m))
	for k := range m {
		ks = append(ks, k)
	}
	sort.Ints(ks)
	return ks
}

func sortedKeys2(m map[int]map[int]int) []int {
	ks := make([]int, 0, len(m))
	for k := range m {
		ks = append(ks, k)
	}
	sort.Ints(ks)
	return ks
}

func sortedKeys3(m map[int]map[int]map[int]int) []int {
	ks := make([]int, 0, len(m))
	for k := range m {
		ks = append(ks, k)
	}
	sort.Ints(ks)
	return ks
}

func sortedKeys4(m map[int]map[int]map[int]map[int]int) []int {
	ks := make([]int, 0, len(m))
	for k := range m {
		ks = append(ks, k)
	}
	sort.Ints(ks)
	return ks
}

// LetterIndex renders the sparse Unicode dispatch index: up to four
// nested levels of C arrays, one tier per UTF-8 encoded length, plus the
// aggregating map_unicode_to_int struct spec §4.9 names. Variable names
// and array contents are built by iterating every level's keys in
// ascending order, so the same rule set always emits byte-identical C
// regardless of map iteration order.
func LetterIndex(prefix string, ranges []wfst.LetterRange) ([]string, error) {
	t, err := classifyLetters(ranges)
	if err != nil {
		return nil, err
	}

	var lines []string
	vecdef := prefix + "_lts_letter_index_v"
	const notFound = "-1"
	const freeable = "0"
	fields := []string{"NULL", "NULL", "NULL", "NULL", notFound, freeable}

	if len(t.level1) > 0 {
		name := vecdef + "1"
		lines = append(lines, cVec("const int32_t", name, 128, t.level1, "0"))
		fields[0] = "(int32_t *) " + name
	}

	if len(t.level2) > 0 {
		byKey := map[int]string{}
		for _, k0 := range sortedKeys2(t.level2) {
			name := fmt.Sprintf("%s2_%d", vecdef, k0)
			lines = append(lines, cVec("const int32_t", name, 64, t.level2[k0], "0"))
			byKey[k0] = name
		}
		name := vecdef + "2"
		lines = append(lines, cVecPtr("const int32_t *", name, 32, byKey, "NULL"))
		fields[1] = "(int32_t **) " + name
	}

	if len(t.level3) > 0 {
		byKey1 := map[int]string{}
		for _, k0 := range sortedKeys3(t.level3) {
			byKey2 := map[int]string{}
			for _, k1 := range sortedKeys2(t.level3[k0]) {
				name := fmt.Sprintf("%s3_%d_%d", vecdef, k0, k1)
				lines = append(lines, cVec("const int32_t", name, 64, t.level3[k0][k1], "0"))
				byKey2[k1] = name
			}
			name := fmt.Sprintf("%s3_%d", vecdef, k0)
			lines = append(lines, cVecPtr("const int32_t *", name, 64, byKey2, "NULL"))
			byKey1[k0] = name
		}
		name := vecdef + "3"
		lines = append(lines, cVecPtr("const int32_t **", name, 16, byKey1, "NULL"))
		fields[2] = "(int32_t ***) " + name
	}

	if len(t.level4) > 0 {
		byKey1 := map[int]string{}
		for _, k0 := range sortedKeys4(t.level4) {
			byKey2 := map[int]string{}
			for _, k1 := range sortedKeys3(t.level4[k0]) {
				byKey3 := map[int]string{}
				for _, k2 := range sortedKeys2(t.level4[k0][k1]) {
					name := fmt.Sprintf("%s4_%d_%d_%d", vecdef, k0, k1, k2)
					lines = append(lines, cVec("const int32_t", name, 64, t.level4[k0][k1][k2], "0"))
					byKey3[k2] = name
				}
				name := fmt.Sprintf("%s4_%d_%d", vecdef, k0, k1)
				lines = append(lines, cVecPtr("const int32_t *", name, 64, byKey3, "NULL"))
				byKey2[k1] = name
			}
			name := fmt.Sprintf("%s4_%d", vecdef, k0)
			lines = append(lines, cVecPtr("const int32_t **", name, 64, byKey2, "NULL"))
			byKey1[k0] = name
		}
		name := vecdef + "4"
		lines = append(lines, cVecPtr("const int32_t ***", name, 8, byKey1, "NULL"))
		fields[3] = "(int32_t ****) " + name
	}

	lines = append(lines, "", fmt.Sprintf("const map_unicode_to_int %s_lts_letter_index = {%s};", prefix, strings.Join(fields, ", ")))
	return lines, nil
}

// Write assembles the rule array, phone table and letter index into the
// single generated C source file spec §4.9 describes, and writes it
// under dir as "<prefix>_lts_rules.c".
func Write(dir, prefix string, rules []wfst.Rule, phones []string, ranges []wfst.LetterRange) (string, error) {
	ruleLines, err := RuleArray(prefix, rules)
	if err != nil {
		return "", err
	}
	indexLines, err := LetterIndex(prefix, ranges)
	if err != nil {
		return "", err
	}

	var out []string
	out = append(out, cHeader(prefix)...)
	out = append(out, ruleLines...)
	out = append(out, PhoneTable(prefix, phones)...)
	out = append(out, indexLines...)

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, prefix+"_lts_rules.c")
	if err := os.WriteFile(path, []byte(strings.Join(out, "\n")+"\n"), 0644); err != nil {
		return "", err
	}
	return path, nil
}
