package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tabeebchat/triage/internal/cli"
	"github.com/tabeebchat/triage/internal/common"
)

func askCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ask <symptom text>",
		Short: "Run one triage query from the command line",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runAsk,
	}
}

func runAsk(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	eng, err := loadEngine(ctx, nil)
	if err != nil {
		return err
	}

	text := strings.Join(args, " ")
	result, err := eng.Triage(text)
	if err != nil {
		return common.NewUserError("failed to run triage", err)
	}

	fmt.Println(cli.FormatTriageResult(result))
	return nil
}
