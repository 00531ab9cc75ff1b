// internal/workers/triage/diagnose-ticket/models.go
package diagnoseticket

import "maintenance-triage/internal/diagnosis"

type Input struct {
	TicketID    string `json:"ticketId"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Priority    string `json:"priority,omitempty"`
}

type Output struct {
	DiagnosisID string           `json:"diagnosisId"`
	TicketID    string           `json:"ticketId"`
	Result      diagnosis.Result `json:"result"`
}
