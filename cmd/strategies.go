package cmd

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/PinjariAbdul/smart-task-analyser/internal/priority"
	"github.com/PinjariAbdul/smart-task-analyser/internal/server"
	"github.com/PinjariAbdul/smart-task-analyser/internal/ui"
)

var strategiesCmd = &cobra.Command{
	Use:   "strategies",
	Short: "List the supported scoring strategies",
	RunE: func(cmd *cobra.Command, _ []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")
		if !asJSON {
			ui.New(cmd.OutOrStdout()).Strategies(priority.Strategies())
			return nil
		}

		e, err := newEnv()
		if err != nil {
			return err
		}
		defer e.Close()
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(server.ListStrategies(e.svc.Options().DefaultStrategy))
	},
}

func init() {
	strategiesCmd.Flags().Bool("json", false, "print as JSON")
	rootCmd.AddCommand(strategiesCmd)
}
