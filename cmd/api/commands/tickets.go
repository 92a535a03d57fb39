package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/supportdesk/ticketd/internal/adapters/repository"
	"github.com/supportdesk/ticketd/internal/application/services"
	"github.com/supportdesk/ticketd/internal/domain/entities"
	"github.com/supportdesk/ticketd/internal/infrastructure/logger"
	"github.com/supportdesk/ticketd/internal/ports"
)

// NewTicketsCommand creates the tickets command with subcommands. They work
// on the backing file directly, through the same service the server uses.
func NewTicketsCommand() *cobra.Command {
	ticketsCmd := &cobra.Command{
		Use:   "tickets",
		Short: "Ticket management commands",
		Long:  "List, create, update and delete tickets in the backing file without starting the server",
	}

	ticketsCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "Print the ticket collection",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := newTicketService(cmd)
			if err != nil {
				return err
			}
			collection, err := svc.ListTickets(cmd.Context())
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), collection)
		},
	})

	addCmd := &cobra.Command{
		Use:   "add",
		Short: "Append a ticket",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ticket, err := ticketFromFlags(cmd)
			if err != nil {
				return err
			}
			svc, err := newTicketService(cmd)
			if err != nil {
				return err
			}
			result, err := svc.CreateTicket(cmd.Context(), ticket)
			if err != nil {
				return err
			}
			return writeResult(cmd, result)
		},
	}
	addCmd.Flags().String("id", "", "Ticket ID (required)")
	addCmd.Flags().String("customer-name", "", "Customer name (required)")
	addCmd.Flags().String("issue-type", "", "Issue type (required)")
	addCmd.Flags().String("status", "", "Initial status")
	addCmd.Flags().StringToString("attr", nil, "Extra field as key=value; JSON values are stored as JSON")
	ticketsCmd.AddCommand(addCmd)

	ticketsCmd.AddCommand(&cobra.Command{
		Use:   "status <id> <status>",
		Short: "Set the status of a ticket",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := newTicketService(cmd)
			if err != nil {
				return err
			}
			result, err := svc.UpdateTicketStatus(cmd.Context(), ports.UpdateStatusRequest{
				ID:     args[0],
				Status: args[1],
			})
			if err != nil {
				return err
			}
			return writeResult(cmd, result)
		},
	})

	ticketsCmd.AddCommand(&cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a ticket",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := newTicketService(cmd)
			if err != nil {
				return err
			}
			result, err := svc.DeleteTicket(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return writeResult(cmd, result)
		},
	})

	return ticketsCmd
}

func newTicketService(cmd *cobra.Command) (*services.TicketService, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	// Logs go to stderr so stdout stays parseable.
	if cfg.Logger.Output != "file" {
		cfg.Logger.Output = "stderr"
	}
	cliLogger, err := logger.New(cfg.Logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	repo := repository.NewFileTicketRepository(cfg.Storage.Path)
	return services.NewTicketService(repo, cliLogger, services.WithStrictStorage(cfg.Storage.Strict)), nil
}

func ticketFromFlags(cmd *cobra.Command) (entities.Ticket, error) {
	flags := cmd.Flags()
	id, _ := flags.GetString("id")
	customerName, _ := flags.GetString("customer-name")
	issueType, _ := flags.GetString("issue-type")
	status, _ := flags.GetString("status")
	attrs, _ := flags.GetStringToString("attr")

	ticket := entities.Ticket{
		ID:           id,
		CustomerName: customerName,
		IssueType:    issueType,
		Status:       status,
	}

	for key, value := range attrs {
		key = strings.TrimSpace(key)
		if key == "" {
			return entities.Ticket{}, fmt.Errorf("empty attribute name")
		}
		raw := json.RawMessage(value)
		if !json.Valid(raw) {
			encoded, err := json.Marshal(value)
			if err != nil {
				return entities.Ticket{}, err
			}
			raw = encoded
		}
		if ticket.Attributes == nil {
			ticket.Attributes = make(map[string]json.RawMessage)
		}
		ticket.Attributes[key] = raw
	}

	return ticket, nil
}

func writeResult(cmd *cobra.Command, result *ports.MutationResult) error {
	if !result.Persisted {
		fmt.Fprintln(cmd.ErrOrStderr(), "warning: change was not written to the tickets file")
	}
	return writeJSON(cmd.OutOrStdout(), result.Ticket)
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
