package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Check the database connection",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		provider, err := newProvider(cmd)
		if err != nil {
			return err
		}

		if err := provider.Ping(cmd.Context()); err != nil {
			return fmt.Errorf("error connecting to database: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Successful connection to %s database\n", provider.Driver())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(pingCmd)
}
