package tree

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	lerr "github.com/nihei9/ltsc/error"
	"github.com/nihei9/ltsc/extproc"
	"github.com/nihei9/ltsc/feature"
	"github.com/nihei9/ltsc/layout"
	"github.com/nihei9/ltsc/sexpr"
)

// WriteFeatFile writes one feature row per line to path, the input format
// wagon trains from.
func WriteFeatFile(path string, rows []feature.Row) error {
	var sb strings.Builder
	for _, r := range rows {
		sb.WriteString(r.String())
		sb.WriteByte('\n')
	}
	return os.WriteFile(path, []byte(sb.String()), 0644)
}

// WriteFeatDesc writes the feature-value description file spec §4.5
// requires: every feature name paired with the sorted set of values
// observed for it across rows.
func WriteFeatDesc(path string, names [11]string, rows []feature.Row) error {
	var sb strings.Builder
	sb.WriteString("(\n")
	for i, name := range names {
		values := make(map[string]bool)
		for _, r := range rows {
			values[r.Fields()[i]] = true
		}
		sorted := make([]string, 0, len(values))
		for v := range values {
			sorted = append(sorted, v)
		}
		sort.Strings(sorted)
		sb.WriteString("(" + name + "\n")
		sb.WriteString(strings.Join(sorted, " "))
		sb.WriteString("\n)\n")
	}
	sb.WriteString(")\n")
	return os.WriteFile(path, []byte(sb.String()), 0644)
}

// TrainLetter invokes the external tree learner for one letter's feature
// rows and writes its decision tree to the letter's tree file in l.
func TrainLetter(ctx context.Context, logger zerolog.Logger, policy extproc.Policy, wagonPath string, stop int, l *layout.Layout, featDescFile, letter string) error {
	args := []string{
		"-data", l.FeatFile(letter),
		"-test", l.FeatFile(letter),
		"-desc", featDescFile,
		"-stop", strconv.Itoa(stop),
		"-output", l.TreeFile(letter),
	}
	return extproc.Run(ctx, logger, policy, wagonPath, args, l.WagonLog(letter))
}

// WriteSyntheticTree writes leaf directly as a letter's tree file, for a
// letter with no training samples (spec §4.5).
func WriteSyntheticTree(path string, leaf *Leaf) error {
	return os.WriteFile(path, []byte(Sexpr(leaf).String()+"\n"), 0644)
}

// ReadTree reads and parses a letter's tree file, skipping comment lines
// that start with ";" as wagon's own output does.
func ReadTree(path string) (Node, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var lines []string
	for _, line := range strings.Split(string(b), "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), ";") {
			continue
		}
		lines = append(lines, line)
	}
	v, err := sexpr.Read(strings.Join(lines, " "))
	if err != nil {
		return nil, err
	}
	return Parse(v)
}

// LetterTree pairs a letter with its trained tree, the unit merge and
// serialization work on.
type LetterTree struct {
	Letter string
	Tree   Node
}

// Merge sorts a letter->tree map into the deterministic order the rest of
// the pipeline (and the final C output) requires.
func Merge(trees map[string]Node) []LetterTree {
	letters := make([]string, 0, len(trees))
	for l := range trees {
		letters = append(letters, l)
	}
	sort.Strings(letters)
	out := make([]LetterTree, len(letters))
	for i, l := range letters {
		out[i] = LetterTree{Letter: l, Tree: trees[l]}
	}
	return out
}

// WriteRules serializes the merged forest to path in the
// "(set! name '((letter tree) …))" format spec §4.6 describes.
func WriteRules(path, name string, trees []LetterTree) error {
	var sb strings.Builder
	sb.WriteString(";; LTS rules\n")
	sb.WriteString(fmt.Sprintf("(set! %s '(\n", name))
	for _, lt := range trees {
		sb.WriteString(fmt.Sprintf("(%s %s)\n", lt.Letter, Sexpr(lt.Tree).String()))
	}
	sb.WriteString("))\n")
	return os.WriteFile(path, []byte(sb.String()), 0644)
}

// ReadRules parses a rules file written by WriteRules back into a
// letter->tree map.
func ReadRules(path string) (map[string]Node, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var lines []string
	for _, line := range strings.Split(string(b), "\n") {
		t := strings.TrimSpace(line)
		if strings.HasPrefix(t, ";") || strings.HasPrefix(t, "(set!") {
			continue
		}
		lines = append(lines, line)
	}
	body := strings.Join(lines, " ")
	body = strings.TrimSuffix(strings.TrimSpace(body), "))")
	v, err := sexpr.Read("(" + body + ")")
	if err != nil {
		return nil, lerr.New(lerr.KindMalformedInput, fmt.Errorf("parsing rules file %s: %w", path, err))
	}
	out := make(map[string]Node, len(v.List))
	for _, entry := range v.List {
		if entry.Kind != sexpr.KindList || len(entry.List) != 2 {
			return nil, lerr.New(lerr.KindMalformedInput, fmt.Errorf("malformed rule entry: %s", entry.String()))
		}
		letter := entry.List[0].Text()
		node, err := Parse(entry.List[1])
		if err != nil {
			return nil, err
		}
		out[letter] = node
	}
	return out, nil
}
