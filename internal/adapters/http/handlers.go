package http

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/supportdesk/ticketd/internal/domain/entities"
	"github.com/supportdesk/ticketd/internal/ports"
)

// HeaderTicketPersisted tells the client whether a mutation reached disk.
const HeaderTicketPersisted = "X-Ticket-Persisted"

// Response messages
const (
	MsgTicketAdded        = "Ticket added successfully"
	MsgStatusUpdated      = "Ticket status updated"
	MsgTicketDeleted      = "Ticket deleted successfully"
	MsgMissingFields      = "Missing required fields"
	MsgStatusRequired     = "Status is required"
	MsgTicketNotFound     = "Ticket not found"
	MsgInvalidRequest     = "Invalid request format"
	MsgInvalidTicketID    = "Invalid ticket id"
	MsgStorageUnavailable = "Ticket storage unavailable"
)

// Request/Response types

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

type CreateTicketResponse struct {
	Message   string          `json:"message"`
	NewTicket entities.Ticket `json:"newTicket"`
}

type UpdateStatusResponse struct {
	Message string          `json:"message"`
	Ticket  entities.Ticket `json:"ticket"`
}

// DeleteTicketResponse lists the removed ticket as a one-element array.
type DeleteTicketResponse struct {
	Message       string            `json:"message"`
	DeletedTicket []entities.Ticket `json:"deletedTicket"`
}

// Utility functions

// mapServiceError converts a ticket service error to an HTTP error.
func mapServiceError(err error) *echo.HTTPError {
	switch {
	case errors.Is(err, entities.ErrMissingFields):
		return echo.NewHTTPError(http.StatusBadRequest, MsgMissingFields).SetInternal(err)
	case errors.Is(err, entities.ErrStatusRequired):
		return echo.NewHTTPError(http.StatusBadRequest, MsgStatusRequired).SetInternal(err)
	case errors.Is(err, entities.ErrTicketNotFound):
		return echo.NewHTTPError(http.StatusNotFound, MsgTicketNotFound).SetInternal(err)
	case errors.Is(err, entities.ErrStorageUnavailable):
		return echo.NewHTTPError(http.StatusInternalServerError, MsgStorageUnavailable).SetInternal(err)
	default:
		return echo.NewHTTPError(http.StatusInternalServerError).SetInternal(err)
	}
}

// ticketIDParam returns the decoded :id path parameter. The router leaves
// params escaped when the request carries a RawPath, e.g. for "a%2Fb".
func ticketIDParam(c echo.Context, raw string) (string, error) {
	if c.Request().URL.RawPath == "" {
		return raw, nil
	}
	id, err := url.PathUnescape(raw)
	if err != nil {
		return "", echo.NewHTTPError(http.StatusBadRequest, MsgInvalidTicketID).SetInternal(err)
	}
	return id, nil
}

// requestID returns the id set by the RequestID middleware, if any.
func requestID(c echo.Context) string {
	return c.Response().Header().Get(echo.HeaderXRequestID)
}

func setPersistedHeader(c echo.Context, result *ports.MutationResult) {
	c.Response().Header().Set(HeaderTicketPersisted, strconv.FormatBool(result.Persisted))
}
