package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tabeebchat/triage/internal/cli"
)

func validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Load and cross-check the configured artifacts",
		Long: `Load all four artifacts exactly as serve would and run the full set of
consistency checks: label space sizes, vector dimensionality, corpus and
index alignment, and stored norms. Exits non-zero on the first failure.`,
		RunE: runValidate,
	}
}

func runValidate(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	eng, err := loadEngine(ctx, os.Stderr)
	if err != nil {
		return err
	}

	snap, err := eng.Snapshot()
	if err != nil {
		return err
	}

	fmt.Println(cli.FormatLoadSummary(len(snap.Categories()), snap.Vectorizer.Dim(), snap.Index.Size()))
	fmt.Println(cli.SuccessStyle.Render("All artifact checks passed."))
	return nil
}
