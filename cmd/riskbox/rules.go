package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/comalice/riskbox/internal/presentation/tui"
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Explain the game",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := setup(cmd)
		if err != nil {
			return err
		}
		out, err := tui.NewRenderer()(tui.RulesMarkdown(cfg))
		if err != nil {
			return fmt.Errorf("failed to render rules: %w", err)
		}
		fmt.Fprint(cmd.OutOrStdout(), out)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(rulesCmd)
}
