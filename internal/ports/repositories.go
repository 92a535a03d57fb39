package ports

import (
	"context"

	"github.com/supportdesk/ticketd/internal/domain/entities"
)

// TicketRepository defines the interface for ticket persistence.
//
// The whole collection is loaded and saved as one document; there is no
// per-ticket access.
type TicketRepository interface {
	// Load reads the full collection. A missing backing store is an
	// empty collection, not an error.
	Load(ctx context.Context) (*entities.TicketCollection, error)
	// Save replaces the full collection.
	Save(ctx context.Context, collection *entities.TicketCollection) error
	// Check reports whether the backing store can be reached.
	Check(ctx context.Context) error
	// Location describes where the collection lives, for logs.
	Location() string
}

// Storage operations reported to a StorageObserver.
const (
	StorageOpLoad = "load"
	StorageOpSave = "save"
)

// StorageObserver receives the outcome of every repository call made by
// the ticket service.
type StorageObserver interface {
	ObserveStorage(op string, err error)
}
