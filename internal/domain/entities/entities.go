package entities

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// Common errors
var (
	ErrTicketNotFound     = errors.New("ticket not found")
	ErrMissingFields      = errors.New("missing required fields")
	ErrStatusRequired     = errors.New("status is required")
	ErrStorageUnavailable = errors.New("ticket storage unavailable")
)

// JSON keys of the fields the service understands. Everything else on a
// ticket is carried through untouched.
const (
	fieldID           = "id"
	fieldCustomerName = "customerName"
	fieldIssueType    = "issueType"
	fieldStatus       = "status"

	fieldTickets = "tickets"
)

// Ticket represents a single support request.
//
// Only ID, CustomerName, IssueType and Status are interpreted. Any other
// field sent by the client lands in Attributes as raw JSON and is written
// back verbatim.
type Ticket struct {
	ID           string                     `json:"id" validate:"required"`
	CustomerName string                     `json:"customerName" validate:"required"`
	IssueType    string                     `json:"issueType" validate:"required"`
	Status       string                     `json:"status,omitempty"`
	Attributes   map[string]json.RawMessage `json:"-"`
}

// UnmarshalJSON decodes a ticket object. A known field holding something
// other than a JSON string is kept in Attributes instead of failing the
// whole document, so the record round-trips but never matches a lookup.
func (t *Ticket) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode ticket: %w", err)
	}
	if raw == nil {
		return fmt.Errorf("decode ticket: expected object, got null")
	}

	*t = Ticket{}
	for key, value := range raw {
		var dst *string
		switch key {
		case fieldID:
			dst = &t.ID
		case fieldCustomerName:
			dst = &t.CustomerName
		case fieldIssueType:
			dst = &t.IssueType
		case fieldStatus:
			dst = &t.Status
		}

		if dst != nil && isJSONString(value) {
			if err := json.Unmarshal(value, dst); err != nil {
				return fmt.Errorf("decode ticket field %q: %w", key, err)
			}
			// empty strings stay raw so the key survives a rewrite
			if *dst != "" {
				continue
			}
		}

		if t.Attributes == nil {
			t.Attributes = make(map[string]json.RawMessage)
		}
		t.Attributes[key] = value
	}
	return nil
}

// MarshalJSON encodes the ticket with its attributes. Non-empty known
// fields take precedence over a raw attribute of the same name.
func (t Ticket) MarshalJSON() ([]byte, error) {
	out := make(map[string]json.RawMessage, len(t.Attributes)+4)
	for key, value := range t.Attributes {
		out[key] = value
	}

	known := []struct {
		key   string
		value string
	}{
		{fieldID, t.ID},
		{fieldCustomerName, t.CustomerName},
		{fieldIssueType, t.IssueType},
		{fieldStatus, t.Status},
	}
	for _, f := range known {
		if f.value == "" {
			continue
		}
		encoded, err := json.Marshal(f.value)
		if err != nil {
			return nil, err
		}
		out[f.key] = encoded
	}

	return json.Marshal(out)
}

// HasRequiredFields reports whether the ticket can be created.
func (t *Ticket) HasRequiredFields() bool {
	return t.ID != "" && t.CustomerName != "" && t.IssueType != ""
}

// TicketCollection is the whole persisted document: an ordered list of
// tickets under the "tickets" key. Other top-level keys are preserved.
type TicketCollection struct {
	Tickets []Ticket                   `json:"tickets"`
	Extra   map[string]json.RawMessage `json:"-"`
}

// NewTicketCollection returns an empty collection.
func NewTicketCollection() *TicketCollection {
	return &TicketCollection{Tickets: []Ticket{}}
}

// UnmarshalJSON decodes the collection document. A missing or null
// "tickets" key yields an empty collection.
func (c *TicketCollection) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode ticket collection: %w", err)
	}
	if raw == nil {
		return fmt.Errorf("decode ticket collection: expected object, got null")
	}

	*c = TicketCollection{Tickets: []Ticket{}}
	if tickets, ok := raw[fieldTickets]; ok {
		delete(raw, fieldTickets)
		if !bytes.Equal(bytes.TrimSpace(tickets), []byte("null")) {
			if err := json.Unmarshal(tickets, &c.Tickets); err != nil {
				return fmt.Errorf("decode tickets: %w", err)
			}
		}
		if c.Tickets == nil {
			c.Tickets = []Ticket{}
		}
	}
	if len(raw) > 0 {
		c.Extra = raw
	}
	return nil
}

// MarshalJSON encodes the collection. Tickets is always an array.
func (c TicketCollection) MarshalJSON() ([]byte, error) {
	out := make(map[string]json.RawMessage, len(c.Extra)+1)
	for key, value := range c.Extra {
		out[key] = value
	}

	tickets := c.Tickets
	if tickets == nil {
		tickets = []Ticket{}
	}
	encoded, err := json.Marshal(tickets)
	if err != nil {
		return nil, err
	}
	out[fieldTickets] = encoded

	return json.Marshal(out)
}

// IndexOf returns the position of the first ticket with the given id, or
// -1. Ids are not unique; later duplicates are never returned.
func (c *TicketCollection) IndexOf(id string) int {
	for i := range c.Tickets {
		if c.Tickets[i].ID == id {
			return i
		}
	}
	return -1
}

// Append adds a ticket to the end of the collection.
func (c *TicketCollection) Append(ticket Ticket) {
	c.Tickets = append(c.Tickets, ticket)
}

// UpdateStatus overwrites the status of the first ticket matching id.
func (c *TicketCollection) UpdateStatus(id, status string) (Ticket, error) {
	i := c.IndexOf(id)
	if i < 0 {
		return Ticket{}, ErrTicketNotFound
	}
	c.Tickets[i].Status = status
	return c.Tickets[i], nil
}

// Remove deletes the first ticket matching id and returns it.
func (c *TicketCollection) Remove(id string) (Ticket, error) {
	i := c.IndexOf(id)
	if i < 0 {
		return Ticket{}, ErrTicketNotFound
	}
	removed := c.Tickets[i]
	c.Tickets = append(c.Tickets[:i], c.Tickets[i+1:]...)
	return removed, nil
}

// Len returns the number of tickets.
func (c *TicketCollection) Len() int {
	return len(c.Tickets)
}

func isJSONString(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '"'
}
