package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/matiscalella/fitzone/internal/core/domain"
	"github.com/spf13/cobra"
)

var clientsDeleteYes bool

var clientsCmd = &cobra.Command{
	Use:   "clients",
	Short: "Manage gym clients",
	Long:  "List, inspect, add, update and delete gym client records",
}

var clientsAddCmd = &cobra.Command{
	Use:   "add <name> <surname> <membership-code>",
	Short: "Add a new client",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		code, err := parseMembershipCode(args[2])
		if err != nil {
			return err
		}

		services, err := initServices(cmd)
		if err != nil {
			return err
		}

		client := domain.NewClient(args[0], args[1], code)
		if _, err := services.ClientRepo.Save(cmd.Context(), client); err != nil {
			return fmt.Errorf("failed to add client: %w", err)
		}

		fmt.Fprintln(cmd.OutOrStdout(), "Client added successfully")
		fmt.Fprintf(cmd.OutOrStdout(), "Client ID: %d\n", client.ID)
		return nil
	},
}

var clientsGetCmd = &cobra.Command{
	Use:   "get <client-id>",
	Short: "Show a client",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseClientID(args[0])
		if err != nil {
			return err
		}

		services, err := initServices(cmd)
		if err != nil {
			return err
		}

		client, err := services.ClientRepo.FindByID(cmd.Context(), id)
		if err != nil {
			return fmt.Errorf("failed to get client: %w", err)
		}

		fmt.Fprintln(cmd.OutOrStdout(), client)
		return nil
	},
}

var clientsDeleteCmd = &cobra.Command{
	Use:   "delete <client-id>",
	Short: "Delete a client",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseClientID(args[0])
		if err != nil {
			return err
		}

		services, err := initServices(cmd)
		if err != nil {
			return err
		}

		// Confirm deletion
		if !clientsDeleteYes {
			fmt.Fprintf(cmd.OutOrStdout(), "Are you sure you want to delete client %d? (yes/no): ", id)
			confirm, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			if err != nil && !errors.Is(err, io.EOF) {
				return fmt.Errorf("failed to read confirmation: %w", err)
			}
			if strings.TrimSpace(confirm) != "yes" {
				fmt.Fprintln(cmd.OutOrStdout(), "Cancelled")
				return nil
			}
		}

		if err := services.ClientRepo.Delete(cmd.Context(), id); err != nil {
			return fmt.Errorf("failed to delete client: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Client %d deleted successfully\n", id)
		return nil
	},
}

var clientsUpdateCmd = &cobra.Command{
	Use:   "update <client-id> <name> <surname> <membership-code>",
	Short: "Update a client",
	Args:  cobra.ExactArgs(4),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseClientID(args[0])
		if err != nil {
			return err
		}
		code, err := parseMembershipCode(args[3])
		if err != nil {
			return err
		}

		services, err := initServices(cmd)
		if err != nil {
			return err
		}

		client := &domain.Client{
			ID:             id,
			Name:           args[1],
			Surname:        args[2],
			MembershipCode: code,
		}
		if err := services.ClientRepo.Update(cmd.Context(), client); err != nil {
			return fmt.Errorf("failed to update client: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Client %d updated successfully\n", id)
		return nil
	},
}

var clientsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all clients",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := initServices(cmd)
		if err != nil {
			return err
		}

		clients, err := services.ClientRepo.FindAll(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to list clients: %w", err)
		}

		if len(clients) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No clients found")
			return nil
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tSURNAME\tMEMBERSHIP CODE")
		for _, client := range clients {
			fmt.Fprintf(w, "%d\t%s\t%s\t%d\n",
				client.ID,
				client.Name,
				client.Surname,
				client.MembershipCode,
			)
		}
		w.Flush()

		return nil
	},
}

func parseClientID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid client id: %q", s)
	}
	return id, nil
}

func parseMembershipCode(s string) (int, error) {
	code, err := strconv.ParseInt(strings.TrimSpace(s), 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid membership code: %q", s)
	}
	return int(code), nil
}

func init() {
	rootCmd.AddCommand(clientsCmd)
	clientsCmd.AddCommand(clientsAddCmd)
	clientsCmd.AddCommand(clientsGetCmd)
	clientsCmd.AddCommand(clientsDeleteCmd)
	clientsCmd.AddCommand(clientsUpdateCmd)
	clientsCmd.AddCommand(clientsListCmd)

	clientsDeleteCmd.Flags().BoolVarP(&clientsDeleteYes, "yes", "y", false, "Delete without asking for confirmation")
}
