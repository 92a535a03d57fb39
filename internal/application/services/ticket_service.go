package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/supportdesk/ticketd/internal/domain/entities"
	"github.com/supportdesk/ticketd/internal/infrastructure/logger"
	"github.com/supportdesk/ticketd/internal/ports"
)

// TicketService handles ticket operations.
//
// Every call re-reads the whole collection from the repository and every
// mutation rewrites it. Mutations hold the write lock for the full
// read-modify-write so concurrent requests in this process cannot lose
// each other's changes.
type TicketService struct {
	repo     ports.TicketRepository
	observer ports.StorageObserver
	logger   *logger.Logger
	strict   bool

	mu sync.RWMutex
}

var _ ports.TicketService = (*TicketService)(nil)

// TicketServiceOption configures a TicketService
type TicketServiceOption func(*TicketService)

// WithStrictStorage makes storage failures fail the mutation instead of
// being logged and ignored.
func WithStrictStorage(strict bool) TicketServiceOption {
	return func(s *TicketService) {
		s.strict = strict
	}
}

// WithStorageObserver reports every repository call to observer.
func WithStorageObserver(observer ports.StorageObserver) TicketServiceOption {
	return func(s *TicketService) {
		s.observer = observer
	}
}

// NewTicketService creates a new ticket service
func NewTicketService(repo ports.TicketRepository, logger *logger.Logger, opts ...TicketServiceOption) *TicketService {
	s := &TicketService{
		repo:   repo,
		logger: logger.WithComponent("ticket_service"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ListTickets returns the full collection. It never fails on storage
// errors: an unreadable file is an empty collection.
func (s *TicketService) ListTickets(ctx context.Context) (*entities.TicketCollection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	collection, err := s.repo.Load(ctx)
	s.observe(ports.StorageOpLoad, err)
	if err != nil {
		s.logger.LogStorageFailure(ports.StorageOpLoad, s.repo.Location(), err, true)
		return entities.NewTicketCollection(), nil
	}

	return collection, nil
}

// CreateTicket appends a ticket. Ids are not checked for uniqueness.
func (s *TicketService) CreateTicket(ctx context.Context, ticket entities.Ticket) (*ports.MutationResult, error) {
	if !ticket.HasRequiredFields() {
		return nil, entities.ErrMissingFields
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	collection, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	collection.Append(ticket)

	return s.persist(ctx, "create", collection, ticket)
}

// UpdateTicketStatus sets the status of the first ticket with the given id.
func (s *TicketService) UpdateTicketStatus(ctx context.Context, req ports.UpdateStatusRequest) (*ports.MutationResult, error) {
	if req.Status == "" {
		return nil, entities.ErrStatusRequired
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	collection, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	ticket, err := collection.UpdateStatus(req.ID, req.Status)
	if err != nil {
		return nil, fmt.Errorf("update status of ticket %q: %w", req.ID, err)
	}

	return s.persist(ctx, "update_status", collection, ticket)
}

// DeleteTicket removes the first ticket with the given id.
func (s *TicketService) DeleteTicket(ctx context.Context, id string) (*ports.MutationResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	collection, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	ticket, err := collection.Remove(id)
	if err != nil {
		return nil, fmt.Errorf("delete ticket %q: %w", id, err)
	}

	return s.persist(ctx, "delete", collection, ticket)
}

// load reads the collection for a mutation. Outside strict mode a failed
// read falls back to an empty collection, which the following save will
// write over the unreadable file.
func (s *TicketService) load(ctx context.Context) (*entities.TicketCollection, error) {
	collection, err := s.repo.Load(ctx)
	s.observe(ports.StorageOpLoad, err)
	if err == nil {
		return collection, nil
	}

	s.logger.LogStorageFailure(ports.StorageOpLoad, s.repo.Location(), err, !s.strict)
	if s.strict {
		return nil, fmt.Errorf("%w: %v", entities.ErrStorageUnavailable, err)
	}
	return entities.NewTicketCollection(), nil
}

func (s *TicketService) persist(ctx context.Context, action string, collection *entities.TicketCollection, ticket entities.Ticket) (*ports.MutationResult, error) {
	err := s.repo.Save(ctx, collection)
	s.observe(ports.StorageOpSave, err)
	if err != nil {
		s.logger.LogStorageFailure(ports.StorageOpSave, s.repo.Location(), err, !s.strict)
		if s.strict {
			return nil, fmt.Errorf("%w: %v", entities.ErrStorageUnavailable, err)
		}
	}

	persisted := err == nil
	s.logger.LogTicketMutation(action, ticket.ID, persisted, collection.Len())

	return &ports.MutationResult{Ticket: ticket, Persisted: persisted}, nil
}

func (s *TicketService) observe(op string, err error) {
	if s.observer != nil {
		s.observer.ObserveStorage(op, err)
	}
}
