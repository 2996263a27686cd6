package cmd

import (
	"github.com/spf13/cobra"
)

var suggestCmd = &cobra.Command{
	Use:   "suggest FILE",
	Short: "Show the top tasks to work on next",
	Long: `Runs the full analysis on a batch file and keeps the top N tasks.
N comes from --limit, the file's "limit", or suggest.limit in config, in
that order. Batches smaller than N are shown whole.`,
	Args: cobra.ExactArgs(1),
	RunE: runSuggest,
}

func init() {
	addRunFlags(suggestCmd)
	suggestCmd.Flags().IntP("limit", "n", 0, "number of tasks to suggest (default from file or config)")
	suggestCmd.Flags().Bool("json", false, "print the response body as JSON")
	rootCmd.AddCommand(suggestCmd)
}

func runSuggest(cmd *cobra.Command, args []string) error {
	e, err := newEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	ro := readRunFlags(cmd)
	failed, err := printOutcomes(cmd.OutOrStdout(), []outcome{e.runBatch(args[0], modeSuggest, ro)}, ro.asJSON)
	if err != nil {
		return err
	}
	return rejectedError(failed, 1)
}
