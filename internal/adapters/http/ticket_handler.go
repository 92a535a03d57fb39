package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/supportdesk/ticketd/internal/domain/entities"
	"github.com/supportdesk/ticketd/internal/infrastructure/logger"
	"github.com/supportdesk/ticketd/internal/ports"
)

// TicketHandler handles ticket-related requests
type TicketHandler struct {
	ticketService ports.TicketService
	binder        echo.DefaultBinder
	logger        *logger.Logger
}

// NewTicketHandler creates a new ticket handler
func NewTicketHandler(ticketService ports.TicketService, logger *logger.Logger) *TicketHandler {
	return &TicketHandler{
		ticketService: ticketService,
		logger:        logger.WithComponent("ticket_handler"),
	}
}

// Register mounts the ticket routes on g
func (h *TicketHandler) Register(g *echo.Group) {
	g.GET("", h.ListTickets)
	g.HEAD("", h.ListTickets)
	g.POST("", h.CreateTicket)
	g.PATCH("/:id", h.UpdateTicketStatus)
	g.DELETE("/:id", h.DeleteTicket)
}

// ListTickets godoc
// @Summary List tickets
// @Description Return the whole ticket collection. Never fails: an unreadable store is an empty collection.
// @Tags tickets
// @Produce json
// @Success 200 {object} entities.TicketCollection
// @Router /tickets [get]
// @Router /tickets [head]
func (h *TicketHandler) ListTickets(c echo.Context) error {
	collection, err := h.ticketService.ListTickets(c.Request().Context())
	if err != nil {
		return h.serviceError(c, "list", err)
	}

	return c.JSON(http.StatusOK, collection)
}

// CreateTicket godoc
// @Summary Create a ticket
// @Description Append a ticket to the collection. Fields other than id, customerName, issueType and status are stored as sent.
// @Tags tickets
// @Accept json
// @Produce json
// @Param request body entities.Ticket true "Ticket data"
// @Success 201 {object} CreateTicketResponse
// @Failure 400 {object} ErrorResponse
// @Router /tickets [post]
func (h *TicketHandler) CreateTicket(c echo.Context) error {
	var ticket entities.Ticket
	// Body only; the ticket has no path or query fields. A body that is
	// not JSON is ignored and fails validation below.
	if err := h.binder.BindBody(c, &ticket); err != nil && !errors.Is(err, echo.ErrUnsupportedMediaType) {
		return echo.NewHTTPError(http.StatusBadRequest, MsgInvalidRequest).SetInternal(err)
	}

	if err := c.Validate(&ticket); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, ErrorResponse{
			Error:   MsgMissingFields,
			Details: err.Error(),
		})
	}

	result, err := h.ticketService.CreateTicket(c.Request().Context(), ticket)
	if err != nil {
		return h.serviceError(c, "create", err)
	}

	setPersistedHeader(c, result)
	return c.JSON(http.StatusCreated, CreateTicketResponse{
		Message:   MsgTicketAdded,
		NewTicket: result.Ticket,
	})
}

// UpdateTicketStatus godoc
// @Summary Update ticket status
// @Description Set the status of the first ticket with the given id
// @Tags tickets
// @Accept json
// @Produce json
// @Param id path string true "Ticket ID"
// @Param request body ports.UpdateStatusRequest true "New status"
// @Success 200 {object} UpdateStatusResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /tickets/{id} [patch]
func (h *TicketHandler) UpdateTicketStatus(c echo.Context) error {
	var req ports.UpdateStatusRequest
	if err := c.Bind(&req); err != nil && !errors.Is(err, echo.ErrUnsupportedMediaType) {
		return echo.NewHTTPError(http.StatusBadRequest, MsgInvalidRequest).SetInternal(err)
	}

	id, err := ticketIDParam(c, req.ID)
	if err != nil {
		return err
	}
	req.ID = id

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, MsgStatusRequired)
	}

	result, err := h.ticketService.UpdateTicketStatus(c.Request().Context(), req)
	if err != nil {
		return h.serviceError(c, "update_status", err)
	}

	setPersistedHeader(c, result)
	return c.JSON(http.StatusOK, UpdateStatusResponse{
		Message: MsgStatusUpdated,
		Ticket:  result.Ticket,
	})
}

// DeleteTicket godoc
// @Summary Delete a ticket
// @Description Remove the first ticket with the given id
// @Tags tickets
// @Produce json
// @Param id path string true "Ticket ID"
// @Success 200 {object} DeleteTicketResponse
// @Failure 404 {object} ErrorResponse
// @Router /tickets/{id} [delete]
func (h *TicketHandler) DeleteTicket(c echo.Context) error {
	id, err := ticketIDParam(c, c.Param("id"))
	if err != nil {
		return err
	}

	result, err := h.ticketService.DeleteTicket(c.Request().Context(), id)
	if err != nil {
		return h.serviceError(c, "delete", err)
	}

	setPersistedHeader(c, result)
	return c.JSON(http.StatusOK, DeleteTicketResponse{
		Message:       MsgTicketDeleted,
		DeletedTicket: []entities.Ticket{result.Ticket},
	})
}

// serviceError logs a failed service call against the request and maps it
// to an HTTP error.
func (h *TicketHandler) serviceError(c echo.Context, action string, err error) error {
	he := mapServiceError(err)
	log := h.logger.WithRequestID(requestID(c)).WithError(err)
	if he.Code >= http.StatusInternalServerError {
		log.Errorw("Ticket request failed", "action", action, "status", he.Code)
	} else {
		log.Debugw("Ticket request rejected", "action", action, "status", he.Code)
	}
	return he
}
