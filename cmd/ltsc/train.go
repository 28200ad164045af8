package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/nihei9/ltsc/align"
	"github.com/nihei9/ltsc/allow"
	"github.com/nihei9/ltsc/emit"
	"github.com/nihei9/ltsc/extproc"
	"github.com/nihei9/ltsc/feature"
	"github.com/nihei9/ltsc/layout"
	"github.com/nihei9/ltsc/lexicon"
	"github.com/nihei9/ltsc/tester"
	"github.com/nihei9/ltsc/tree"
	"github.com/nihei9/ltsc/wfst"
)

var trainFlags = struct {
	lexicon           *string
	allowables        *string
	langPrefix        *string
	flat              *bool
	noFlat            *bool
	minLength         *int
	lowercase         *bool
	invalidLetters    *bool
	wagonStop         *int
	featNames         *string
	subprocessLenient *bool
	testVerbose       *bool
}{}

func init() {
	cmd := &cobra.Command{
		Use:     "train",
		Short:   "Train a letter-to-sound rule set from a pronunciation lexicon",
		Example: `  ltsc train --lexicon cmudict.scm --allowables allowables.json --lang-prefix usenglish`,
		RunE:    runTrain,
	}
	trainFlags.lexicon = cmd.Flags().String("lexicon", "", "pronunciation lexicon file (required)")
	trainFlags.allowables = cmd.Flags().String("allowables", "", "allowables JSON file (required)")
	trainFlags.langPrefix = cmd.Flags().String("lang-prefix", "", "prefix naming every generated output (required)")
	trainFlags.flat = cmd.Flags().Bool("lexicon-fmt-flat", false, "lexicon entry bodies are already flat phone sequences")
	trainFlags.noFlat = cmd.Flags().Bool("lexicon-fmt-noflat", false, "lexicon entry bodies are syllable lists (default)")
	trainFlags.minLength = cmd.Flags().Int("filter-remove-shorter-than", 4, "drop words shorter than this many letters")
	trainFlags.lowercase = cmd.Flags().Bool("filter-lowercase", true, "lowercase surviving words")
	trainFlags.invalidLetters = cmd.Flags().Bool("filter-invalid-letters", true, "drop words containing a letter absent from allowables")
	trainFlags.wagonStop = cmd.Flags().Int("wagon-stop", 3, "wagon's -stop option: minimum samples per leaf")
	trainFlags.featNames = cmd.Flags().String("feat-names", "", "JSON list of the 11 feature column names (default: built-in list)")
	trainFlags.subprocessLenient = cmd.Flags().Bool("subprocess-lenient", false, "treat a nonzero wagon/wfst_build exit status as a warning instead of a fatal error")
	trainFlags.testVerbose = cmd.Flags().Bool("test-verbose", false, "print every mismatched word found while testing the trained forest")
	cmd.MarkFlagRequired("lexicon")
	cmd.MarkFlagRequired("allowables")
	cmd.MarkFlagRequired("lang-prefix")
	rootCmd.AddCommand(cmd)
}

func newLogger() zerolog.Logger {
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).With().Timestamp().Logger()
}

func runTrain(cmd *cobra.Command, args []string) error {
	logger := newLogger()
	ctx := context.Background()

	if *trainFlags.flat && *trainFlags.noFlat {
		return fmt.Errorf("--lexicon-fmt-flat and --lexicon-fmt-noflat are mutually exclusive")
	}

	wagonPath, err := extproc.Resolve("wagon", "WAGON")
	if err != nil {
		return err
	}
	wfstBuildPath, err := extproc.Resolve("wfst_build", "WFST_BUILD")
	if err != nil {
		return err
	}
	policy := extproc.Policy{Lenient: *trainFlags.subprocessLenient}

	table, err := allow.Load(*trainFlags.allowables)
	if err != nil {
		return err
	}

	lex, err := loadLexicon(*trainFlags.lexicon, *trainFlags.flat)
	if err != nil {
		return err
	}

	filtered, err := lexicon.Filter(lex, lexicon.FilterOptions{
		MinLength:             *trainFlags.minLength,
		Lowercase:             *trainFlags.lowercase,
		RequireAllowedLetters: *trainFlags.invalidLetters,
		Allowables:            table,
	})
	if err != nil {
		return err
	}
	logger.Info().Int("words", len(filtered)).Msg("filtered lexicon")

	names, err := loadFeatNames(*trainFlags.featNames)
	if err != nil {
		return err
	}

	prefix := *trainFlags.langPrefix
	cwd, err := os.Getwd()
	if err != nil {
		return err
	}
	lay := layout.New(cwd, prefix)
	for _, dir := range lay.Dirs() {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}

	cooc, pass1Failed := align.Accumulate(filtered, table, align.Budget{})
	cooc = cooc.Normalize()
	if len(pass1Failed) > 0 {
		logger.Warn().Int("count", len(pass1Failed)).Strs("sample", sampleWords(align.SortedFailureWords(pass1Failed), 10)).Msg("entries with no legal alignment (pass 1)")
	}

	report := align.AlignLexicon(filtered, cooc, table, align.Budget{})
	if len(report.Failed) > 0 {
		logger.Warn().Int("count", len(report.Failed)).Strs("sample", sampleWords(align.SortedFailureWords(report.Failed), 10)).Msg("entries with no legal alignment (pass 2)")
	}
	if len(report.Aligned) == 0 {
		return fmt.Errorf("no lexicon entry could be aligned under the given allowables")
	}
	logger.Info().Int("aligned", len(report.Aligned)).Msg("alignment complete")

	rows := feature.BuildAll(report.Aligned)
	shards := feature.ShardByCenter(rows)

	featDescFile := lay.FeatDescFile(prefix)
	if err := tree.WriteFeatDesc(featDescFile, names, rows); err != nil {
		return err
	}

	letters := trainableLetters(table)
	trees := make(map[string]tree.Node, len(letters))
	for i, letter := range letters {
		letterRows := shards[letter]
		if len(letterRows) == 0 {
			leaf := tree.SyntheticLeaf(table.NonEpsilonPhones(letter))
			if err := tree.WriteSyntheticTree(lay.TreeFile(letter), leaf); err != nil {
				return err
			}
		} else {
			if err := tree.WriteFeatFile(lay.FeatFile(letter), letterRows); err != nil {
				return err
			}
			if err := tree.TrainLetter(ctx, logger, policy, wagonPath, *trainFlags.wagonStop, lay, featDescFile, letter); err != nil {
				return err
			}
		}
		node, err := tree.ReadTree(lay.TreeFile(letter))
		if err != nil {
			return fmt.Errorf("reading trained tree for letter %q: %w", letter, err)
		}
		trees[letter] = node
		logger.Debug().Int("done", i+1).Int("total", len(letters)).Str("letter", letter).Msg("trained letter")
	}
	logger.Info().Int("letters", len(trees)).Msg("training complete")

	merged := tree.Merge(trees)
	if err := tree.WriteRules(lay.RulesFile(prefix), prefix, merged); err != nil {
		return err
	}

	result := tester.Run(report.Aligned, trees)
	logger.Info().Float64("accuracy", result.Accuracy()).Int("mismatches", len(result.Mismatches)).Msg("tested trained forest")
	if err := writeTestLog(lay.TestLogFile(), result); err != nil {
		return err
	}
	if *trainFlags.testVerbose {
		for _, m := range result.Mismatches {
			fmt.Fprintln(os.Stderr, m.String())
		}
	}

	for _, lt := range merged {
		links := wfst.Lower(lt.Tree)
		grammarFile := lay.GrammarFile(lt.Letter)
		if err := wfst.WriteRegularGrammar(grammarFile, links); err != nil {
			return err
		}
		wfstArgs := []string{"-heap", "10000000", "-type", "rg", "-detmin", "-o", lay.WFSTFile(lt.Letter), grammarFile}
		if err := extproc.Run(ctx, logger, policy, wfstBuildPath, wfstArgs, lay.WFSTBuildLog(lt.Letter)); err != nil {
			return err
		}
	}
	logger.Info().Int("letters", len(merged)).Msg("lowered every letter to a WFST")

	letterNames := make([]string, len(merged))
	for i, lt := range merged {
		letterNames[i] = lt.Letter
	}
	rules, ranges, phones, err := wfst.BuildRules(lay.WFSTFile, letterNames)
	if err != nil {
		return err
	}

	path, err := emit.Write(lay.CDir(), prefix, rules, phones.Phones(), ranges)
	if err != nil {
		return err
	}
	logger.Info().Str("path", path).Int("rules", len(rules)).Int("phones", len(phones.Phones())).Msg("wrote generated C source")

	return nil
}

func loadLexicon(path string, flat bool) (lexicon.Lexicon, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening lexicon %s: %w", path, err)
	}
	defer f.Close()
	return lexicon.Load(f, lexicon.LoadOptions{Flat: flat})
}

func loadFeatNames(path string) ([11]string, error) {
	var names [11]string
	if path == "" {
		return feature.Names, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return names, fmt.Errorf("reading feat-names %s: %w", path, err)
	}
	var list []string
	if err := json.Unmarshal(b, &list); err != nil {
		return names, fmt.Errorf("parsing feat-names %s: %w", path, err)
	}
	if err := feature.ValidateNames(list); err != nil {
		return names, err
	}
	copy(names[:], list)
	return names, nil
}

// trainableLetters returns every letter the allowables table names,
// excluding the boundary symbol, in sorted order, the fixed order every
// downstream stage (tree merge, WFST lowering, C emission) relies on.
func trainableLetters(table *allow.Table) []string {
	all := table.Letters()
	out := make([]string, 0, len(all))
	for _, l := range all {
		if l == allow.Boundary {
			continue
		}
		out = append(out, l)
	}
	sort.Strings(out)
	return out
}

func sampleWords(words []string, n int) []string {
	if len(words) <= n {
		return words
	}
	return words[:n]
}

func writeTestLog(path string, r tester.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	fmt.Fprintf(f, "accuracy: %.4f (%d/%d)\n", r.Accuracy(), r.Correct, r.Total)
	for _, m := range r.Mismatches {
		fmt.Fprintln(f, m.String())
	}
	return nil
}
