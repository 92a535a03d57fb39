package ports

import (
	"context"

	"github.com/supportdesk/ticketd/internal/domain/entities"
)

// TicketService interface for ticket operations
type TicketService interface {
	ListTickets(ctx context.Context) (*entities.TicketCollection, error)
	CreateTicket(ctx context.Context, ticket entities.Ticket) (*MutationResult, error)
	UpdateTicketStatus(ctx context.Context, req UpdateStatusRequest) (*MutationResult, error)
	DeleteTicket(ctx context.Context, id string) (*MutationResult, error)
}

// Request/Response Types

// UpdateStatusRequest carries a status change for the ticket in the path.
type UpdateStatusRequest struct {
	ID     string `param:"id" json:"-"`
	Status string `json:"status" validate:"required"`
}

// MutationResult is the outcome of a create, status update or delete.
//
// Persisted is false when the change was applied in memory but the
// rewrite of the backing store failed. The caller still gets the ticket.
type MutationResult struct {
	Ticket    entities.Ticket
	Persisted bool
}
