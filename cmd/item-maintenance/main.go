package main

import (
	"github.com/spf13/cobra"

	"invadmin/internal/cli"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "item-maintenance",
		Short: "Consistency repairs for the items collection",
	}

	root.AddCommand(&cobra.Command{
		Use:   "fix-totals",
		Short: "Recompute totalQuantity from quantity and assignment history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			runner, err := cli.Setup(cmd.OutOrStdout())
			if err != nil {
				return err
			}
			_, err = runner.FixTotals(cmd.Context())
			return err
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "fix-indexes",
		Short: "Replace the unique category index with a unique {category, name} index",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			runner, err := cli.Setup(cmd.OutOrStdout())
			if err != nil {
				return err
			}
			_, err = runner.FixIndexes(cmd.Context())
			return err
		},
	})

	return root
}

func main() {
	cli.Execute(newRootCmd())
}
