package service

import "github.com/google/uuid"

// Event types pushed to company subscribers
const (
	EventRecurringInvoiceCreated = "recurring_invoice.created"
)

type Event struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// EventPublisher delivers events to the connected clients of one company.
type EventPublisher interface {
	PublishToCompany(companyID uuid.UUID, event Event)
}

type noopPublisher struct{}

func (noopPublisher) PublishToCompany(uuid.UUID, Event) {}
