// internal/workers/triage/attach-diagnosis/models.go
package attachdiagnosis

import "maintenance-triage/internal/diagnosis"

type Input struct {
	TicketID    string           `json:"ticketId"`
	DiagnosisID string           `json:"diagnosisId"`
	Title       string           `json:"title,omitempty"`
	Result      diagnosis.Result `json:"result"`
}

type Output struct {
	TicketID   string `json:"ticketId"`
	Status     string `json:"status"`
	AttachedAt string `json:"attachedAt"`
	Indexed    bool   `json:"indexed"`
}
