package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "ltsc",
	Short: "Train letter-to-sound rules from a pronunciation lexicon",
	Long: `ltsc trains a letter-to-sound decision-tree forest from a
pronunciation lexicon and compiles it to the C source a runtime speech
engine loads: it aligns each entry's letters against its phones, trains
one decision tree per letter, tests the trained forest against its own
training data, lowers each tree to a weighted finite-state transducer,
and emits the packed rule table that transducer set describes.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return err
	}
	return nil
}
