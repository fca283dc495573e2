package cli

import (
	"github.com/google/uuid"
	"github.com/matiscalella/fitzone/internal/console"
	"github.com/spf13/cobra"
)

var menuCmd = &cobra.Command{
	Use:   "menu",
	Short: "Open the interactive client menu",
	Args:  cobra.NoArgs,
	RunE:  runMenu,
}

func runMenu(cmd *cobra.Command, args []string) error {
	services, err := initServices(cmd)
	if err != nil {
		return err
	}

	sessionLogger := services.Logger.With("session_id", uuid.NewString())
	menu := console.NewMenu(services.ClientRepo, cmd.InOrStdin(), cmd.OutOrStdout(), sessionLogger)

	return menu.Run(cmd.Context())
}

func init() {
	rootCmd.AddCommand(menuCmd)
}
