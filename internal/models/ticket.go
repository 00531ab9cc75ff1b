// internal/models/ticket.go
package models

import (
	"encoding/json"
	"time"
)

// Ticket statuses
const (
	TicketStatusOpen      = "open"
	TicketStatusDiagnosed = "diagnosed"
	TicketStatusAssigned  = "assigned"
	TicketStatusClosed    = "closed"
)

// Ticket is a maintenance request as held by the ticket store.
type Ticket struct {
	ID          string    `json:"id" db:"id"`
	Title       string    `json:"title" db:"title"`
	Description string    `json:"description" db:"description"`
	Category    string    `json:"category" db:"category"`
	Status      string    `json:"status" db:"status"`
	Diagnosis   string    `json:"diagnosis,omitempty" db:"diagnosis"`
	Priority    string    `json:"priority,omitempty" db:"priority"` // Urgent, High, Medium, Low
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt" db:"updated_at"`
}

// DiagnosisRecord is one row of a ticket's diagnosis history.
type DiagnosisRecord struct {
	ID              string          `json:"id" db:"id"`
	TicketID        string          `json:"ticketId" db:"ticket_id"`
	Category        string          `json:"category" db:"category"`
	Urgency         string          `json:"urgency" db:"urgency"`
	Severity        int             `json:"severity" db:"severity"`
	Confidence      float64         `json:"confidence" db:"confidence"`
	ContractorTypes []string        `json:"contractorTypes" db:"contractor_types"`
	Source          string          `json:"source" db:"source"`
	Payload         json.RawMessage `json:"payload" db:"payload"`
	CreatedAt       time.Time       `json:"createdAt" db:"created_at"`
}
