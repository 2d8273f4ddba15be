package main

import (
	"github.com/spf13/cobra"

	"invadmin/internal/cli"
	"invadmin/internal/jobs"
)

func newRootCmd() *cobra.Command {
	var opts jobs.ImportOptions

	cmd := &cobra.Command{
		Use:   "migrate-users [file.csv]",
		Short: "Migrate employees from a latin-1 CSV into users (upsert by email)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			runner, err := cli.Setup(cmd.OutOrStdout())
			if err != nil {
				return err
			}
			path := cli.InputPath(args, runner.Config.Jobs.MigrateUsers.DefaultFile)
			_, err = runner.MigrateUsers(cmd.Context(), path, opts)
			return err
		},
	}

	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "Normalize and validate rows without connecting to MongoDB")

	return cmd
}

func main() {
	cli.Execute(newRootCmd())
}
