package main

import (
	"github.com/spf13/cobra"

	"invadmin/internal/cli"
	"invadmin/internal/jobs"
)

func newRootCmd() *cobra.Command {
	var opts jobs.ImportOptions

	cmd := &cobra.Command{
		Use:   "import-scrap [file.xlsx]",
		Short: "Import scrapped items from the first sheet of a workbook (upsert by name)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			runner, err := cli.Setup(cmd.OutOrStdout())
			if err != nil {
				return err
			}
			path := cli.InputPath(args, runner.Config.Jobs.ImportScrap.DefaultFile)
			_, err = runner.ImportScrap(cmd.Context(), path, opts)
			return err
		},
	}

	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "Normalize and validate rows without connecting to MongoDB")

	return cmd
}

func main() {
	cli.Execute(newRootCmd())
}
