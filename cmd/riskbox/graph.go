package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/comalice/riskbox/internal/game"
	"github.com/comalice/riskbox/internal/production"
)

var graphCmd = &cobra.Command{
	Use:       "graph <machine>",
	Short:     "Export a machine diagram",
	Long:      `Prints the game, player or box machine as Graphviz DOT or a Mermaid state diagram.`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"game", "player", "box"},
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := setup(cmd)
		if err != nil {
			return err
		}
		machines, err := game.NewMachines(cfg, nil)
		if err != nil {
			return err
		}
		def, ok := machines.ByID(args[0])
		if !ok {
			return fmt.Errorf("unknown machine %q (want game, player or box)", args[0])
		}

		var v production.DefaultVisualizer
		format, _ := cmd.Flags().GetString("format")
		switch format {
		case "dot":
			fmt.Fprint(cmd.OutOrStdout(), v.ExportDOT(def, ""))
		case "mermaid":
			fmt.Fprint(cmd.OutOrStdout(), v.ExportMermaid(def))
		default:
			return fmt.Errorf("unknown format %q (want dot or mermaid)", format)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().StringP("format", "f", "dot", "Output format (dot, mermaid)")
}
