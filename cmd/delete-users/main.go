package main

import (
	"github.com/spf13/cobra"

	"invadmin/internal/cli"
	"invadmin/internal/services"
)

func newRootCmd() *cobra.Command {
	var (
		role string
		yes  bool
	)

	cmd := &cobra.Command{
		Use:   "delete-users",
		Short: "Delete every user with the given role after typed confirmation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			runner, err := cli.Setup(cmd.OutOrStdout())
			if err != nil {
				return err
			}

			var confirmer services.Confirmer = services.NewLineConfirmer(cmd.InOrStdin(), cmd.OutOrStdout())
			if yes {
				confirmer = services.AlwaysConfirm
			}

			_, err = runner.DeleteUsers(cmd.Context(), role, confirmer)
			return err
		},
	}

	cmd.Flags().StringVar(&role, "role", "", "Role to delete (default: jobs.delete_users.role, \"user\")")
	cmd.Flags().BoolVar(&yes, "yes", false, "Skip the interactive confirmation")

	return cmd
}

func main() {
	cli.Execute(newRootCmd())
}
