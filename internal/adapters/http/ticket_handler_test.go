package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/supportdesk/ticketd/internal/domain/entities"
	"github.com/supportdesk/ticketd/internal/infrastructure/logger"
	"github.com/supportdesk/ticketd/internal/ports"
)

// =====================================================================
// Mock service
// =====================================================================

type mockTicketService struct {
	collection *entities.TicketCollection
	result     *ports.MutationResult
	err        error

	created      *entities.Ticket
	statusUpdate *ports.UpdateStatusRequest
	deletedID    string
}

func (m *mockTicketService) ListTickets(_ context.Context) (*entities.TicketCollection, error) {
	return m.collection, m.err
}

func (m *mockTicketService) CreateTicket(_ context.Context, ticket entities.Ticket) (*ports.MutationResult, error) {
	m.created = &ticket
	return m.result, m.err
}

func (m *mockTicketService) UpdateTicketStatus(_ context.Context, req ports.UpdateStatusRequest) (*ports.MutationResult, error) {
	m.statusUpdate = &req
	return m.result, m.err
}

func (m *mockTicketService) DeleteTicket(_ context.Context, id string) (*ports.MutationResult, error) {
	m.deletedID = id
	return m.result, m.err
}

// =====================================================================
// Test helpers
// =====================================================================

type structValidator struct {
	validate *validator.Validate
}

func (v *structValidator) Validate(i interface{}) error {
	return v.validate.Struct(i)
}

func newTestEcho() *echo.Echo {
	e := echo.New()
	e.Validator = &structValidator{validate: validator.New()}
	return e
}

func newTestContext(e *echo.Echo, method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func requireHTTPError(t *testing.T, err error, code int, message string) {
	t.Helper()
	var he *echo.HTTPError
	require.True(t, errors.As(err, &he), "expected *echo.HTTPError, got %v", err)
	assert.Equal(t, code, he.Code)
	switch m := he.Message.(type) {
	case string:
		assert.Equal(t, message, m)
	case ErrorResponse:
		assert.Equal(t, message, m.Error)
	default:
		t.Fatalf("unexpected message type %T", he.Message)
	}
}

func ticketT1() entities.Ticket {
	return entities.Ticket{ID: "T1", CustomerName: "Alice", IssueType: "billing"}
}

// =====================================================================
// ListTickets
// =====================================================================

func TestTicketHandler_ListTickets(t *testing.T) {
	collection := entities.NewTicketCollection()
	collection.Append(ticketT1())
	svc := &mockTicketService{collection: collection}
	h := NewTicketHandler(svc, logger.NewNop())

	c, rec := newTestContext(newTestEcho(), http.MethodGet, "/tickets", "")
	require.NoError(t, h.ListTickets(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"tickets": [{"id": "T1", "customerName": "Alice", "issueType": "billing"}]}`, rec.Body.String())
}

func TestTicketHandler_ListTicketsEmpty(t *testing.T) {
	h := NewTicketHandler(&mockTicketService{collection: entities.NewTicketCollection()}, logger.NewNop())

	c, rec := newTestContext(newTestEcho(), http.MethodGet, "/tickets", "")
	require.NoError(t, h.ListTickets(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"tickets": []}`, rec.Body.String())
}

// =====================================================================
// CreateTicket
// =====================================================================

func TestTicketHandler_CreateTicket_Success(t *testing.T) {
	created := ticketT1()
	created.Attributes = map[string]json.RawMessage{"channel": json.RawMessage(`"email"`)}
	svc := &mockTicketService{result: &ports.MutationResult{Ticket: created, Persisted: true}}
	h := NewTicketHandler(svc, logger.NewNop())

	c, rec := newTestContext(newTestEcho(), http.MethodPost, "/tickets",
		`{"id": "T1", "customerName": "Alice", "issueType": "billing", "channel": "email"}`)
	require.NoError(t, h.CreateTicket(c))

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "true", rec.Header().Get(HeaderTicketPersisted))
	assert.JSONEq(t, `{
		"message": "Ticket added successfully",
		"newTicket": {"id": "T1", "customerName": "Alice", "issueType": "billing", "channel": "email"}
	}`, rec.Body.String())

	require.NotNil(t, svc.created)
	assert.Equal(t, "T1", svc.created.ID)
	assert.JSONEq(t, `"email"`, string(svc.created.Attributes["channel"]))
}

func TestTicketHandler_CreateTicket_NotPersisted(t *testing.T) {
	svc := &mockTicketService{result: &ports.MutationResult{Ticket: ticketT1(), Persisted: false}}
	h := NewTicketHandler(svc, logger.NewNop())

	c, rec := newTestContext(newTestEcho(), http.MethodPost, "/tickets",
		`{"id": "T1", "customerName": "Alice", "issueType": "billing"}`)
	require.NoError(t, h.CreateTicket(c))

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "false", rec.Header().Get(HeaderTicketPersisted))
}

func TestTicketHandler_CreateTicket_MissingFields(t *testing.T) {
	bodies := map[string]string{
		"missing id":            `{"customerName": "Alice", "issueType": "billing"}`,
		"missing customer name": `{"id": "T1", "issueType": "billing"}`,
		"missing issue type":    `{"id": "T1", "customerName": "Alice"}`,
		"empty id":              `{"id": "", "customerName": "Alice", "issueType": "billing"}`,
		"numeric id":            `{"id": 7, "customerName": "Alice", "issueType": "billing"}`,
		"empty object":          `{}`,
		"no body":               ``,
	}

	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			svc := &mockTicketService{}
			h := NewTicketHandler(svc, logger.NewNop())

			c, _ := newTestContext(newTestEcho(), http.MethodPost, "/tickets", body)
			err := h.CreateTicket(c)

			requireHTTPError(t, err, http.StatusBadRequest, MsgMissingFields)
			assert.Nil(t, svc.created)
		})
	}
}

func TestTicketHandler_CreateTicket_InvalidJSON(t *testing.T) {
	svc := &mockTicketService{}
	h := NewTicketHandler(svc, logger.NewNop())

	c, _ := newTestContext(newTestEcho(), http.MethodPost, "/tickets", `{"id": "T1",`)
	err := h.CreateTicket(c)

	requireHTTPError(t, err, http.StatusBadRequest, MsgInvalidRequest)
	assert.Nil(t, svc.created)
}

func TestTicketHandler_CreateTicket_StorageUnavailable(t *testing.T) {
	svc := &mockTicketService{err: fmt.Errorf("%w: disk full", entities.ErrStorageUnavailable)}
	h := NewTicketHandler(svc, logger.NewNop())

	c, _ := newTestContext(newTestEcho(), http.MethodPost, "/tickets",
		`{"id": "T1", "customerName": "Alice", "issueType": "billing"}`)
	err := h.CreateTicket(c)

	requireHTTPError(t, err, http.StatusInternalServerError, MsgStorageUnavailable)
}

// =====================================================================
// UpdateTicketStatus
// =====================================================================

func newPathContext(e *echo.Echo, method, id, body string) (echo.Context, *httptest.ResponseRecorder) {
	c, rec := newTestContext(e, method, "/tickets/"+id, body)
	c.SetPath("/tickets/:id")
	c.SetParamNames("id")
	c.SetParamValues(id)
	return c, rec
}

func TestTicketHandler_UpdateTicketStatus_Success(t *testing.T) {
	updated := ticketT1()
	updated.Status = "resolved"
	svc := &mockTicketService{result: &ports.MutationResult{Ticket: updated, Persisted: true}}
	h := NewTicketHandler(svc, logger.NewNop())

	c, rec := newPathContext(newTestEcho(), http.MethodPatch, "T1", `{"status": "resolved"}`)
	require.NoError(t, h.UpdateTicketStatus(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{
		"message": "Ticket status updated",
		"ticket": {"id": "T1", "customerName": "Alice", "issueType": "billing", "status": "resolved"}
	}`, rec.Body.String())

	require.NotNil(t, svc.statusUpdate)
	assert.Equal(t, ports.UpdateStatusRequest{ID: "T1", Status: "resolved"}, *svc.statusUpdate)
}

func TestTicketHandler_UpdateTicketStatus_StatusRequired(t *testing.T) {
	for name, body := range map[string]string{
		"missing": `{}`,
		"empty":   `{"status": ""}`,
		"no body": ``,
	} {
		t.Run(name, func(t *testing.T) {
			svc := &mockTicketService{}
			h := NewTicketHandler(svc, logger.NewNop())

			c, _ := newPathContext(newTestEcho(), http.MethodPatch, "T1", body)
			err := h.UpdateTicketStatus(c)

			requireHTTPError(t, err, http.StatusBadRequest, MsgStatusRequired)
			assert.Nil(t, svc.statusUpdate)
		})
	}
}

func TestTicketHandler_UpdateTicketStatus_NotFound(t *testing.T) {
	svc := &mockTicketService{err: fmt.Errorf("update: %w", entities.ErrTicketNotFound)}
	h := NewTicketHandler(svc, logger.NewNop())

	c, _ := newPathContext(newTestEcho(), http.MethodPatch, "T9", `{"status": "resolved"}`)
	err := h.UpdateTicketStatus(c)

	requireHTTPError(t, err, http.StatusNotFound, MsgTicketNotFound)
}

// =====================================================================
// DeleteTicket
// =====================================================================

func TestTicketHandler_DeleteTicket_Success(t *testing.T) {
	svc := &mockTicketService{result: &ports.MutationResult{Ticket: ticketT1(), Persisted: true}}
	h := NewTicketHandler(svc, logger.NewNop())

	c, rec := newPathContext(newTestEcho(), http.MethodDelete, "T1", "")
	require.NoError(t, h.DeleteTicket(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "T1", svc.deletedID)
	assert.JSONEq(t, `{
		"message": "Ticket deleted successfully",
		"deletedTicket": [{"id": "T1", "customerName": "Alice", "issueType": "billing"}]
	}`, rec.Body.String())
}

func TestTicketHandler_DeleteTicket_NotFound(t *testing.T) {
	svc := &mockTicketService{err: fmt.Errorf("delete: %w", entities.ErrTicketNotFound)}
	h := NewTicketHandler(svc, logger.NewNop())

	c, _ := newPathContext(newTestEcho(), http.MethodDelete, "T9", "")
	err := h.DeleteTicket(c)

	requireHTTPError(t, err, http.StatusNotFound, MsgTicketNotFound)
}

// =====================================================================
// Request edge cases
// =====================================================================

func TestTicketHandler_InvalidEscapedID(t *testing.T) {
	svc := &mockTicketService{}
	h := NewTicketHandler(svc, logger.NewNop())

	c, _ := newPathContext(newTestEcho(), http.MethodDelete, "x", "")
	c.SetParamValues("a%zz")
	c.Request().URL.RawPath = "/tickets/a%zz"
	err := h.DeleteTicket(c)

	requireHTTPError(t, err, http.StatusBadRequest, MsgInvalidTicketID)
	assert.Empty(t, svc.deletedID)
}

func TestTicketHandler_NonJSONBody(t *testing.T) {
	e := newTestEcho()
	newPlainContext := func(method, target, id string) echo.Context {
		req := httptest.NewRequest(method, target, strings.NewReader(`status=closed`))
		req.Header.Set(echo.HeaderContentType, echo.MIMETextPlain)
		c := e.NewContext(req, httptest.NewRecorder())
		if id != "" {
			c.SetPath("/tickets/:id")
			c.SetParamNames("id")
			c.SetParamValues(id)
		}
		return c
	}

	svc := &mockTicketService{}
	h := NewTicketHandler(svc, logger.NewNop())

	err := h.CreateTicket(newPlainContext(http.MethodPost, "/tickets", ""))
	requireHTTPError(t, err, http.StatusBadRequest, MsgMissingFields)
	assert.Nil(t, svc.created)

	err = h.UpdateTicketStatus(newPlainContext(http.MethodPatch, "/tickets/T1", "T1"))
	requireHTTPError(t, err, http.StatusBadRequest, MsgStatusRequired)
	assert.Nil(t, svc.statusUpdate)
}

func TestTicketHandler_FailureLogCarriesRequestID(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	svc := &mockTicketService{err: fmt.Errorf("%w: disk full", entities.ErrStorageUnavailable)}
	h := NewTicketHandler(svc, &logger.Logger{SugaredLogger: zap.New(core).Sugar()})

	c, _ := newPathContext(newTestEcho(), http.MethodDelete, "T1", "")
	c.Response().Header().Set(echo.HeaderXRequestID, "req-42")
	err := h.DeleteTicket(c)
	requireHTTPError(t, err, http.StatusInternalServerError, MsgStorageUnavailable)

	entries := logs.FilterMessage("Ticket request failed").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "req-42", fields["request_id"])
	assert.Equal(t, "delete", fields["action"])
	assert.Contains(t, fields["error"], "disk full")
}
