package cmd

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/PinjariAbdul/smart-task-analyser/internal/ui"
)

var validateCmd = &cobra.Command{
	Use:   "validate FILE...",
	Short: "Check batch files for invalid fields, unknown dependencies and cycles",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEnv()
		if err != nil {
			return err
		}
		defer e.Close()

		failed := e.validate(cmd.OutOrStdout(), args)
		return rejectedError(failed, len(args))
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

// validate runs the full pipeline on each file and reports only whether it
// would be accepted.
func (e *env) validate(w io.Writer, paths []string) (failed int) {
	p := ui.New(w)
	for _, o := range e.runBatches(paths, modeAnalyze, runOptions{}) {
		if o.err != nil {
			failed++
			p.Rejected(o.path, o.errorResult())
			continue
		}
		p.Valid(o.batch, o.resp)
	}
	return failed
}
