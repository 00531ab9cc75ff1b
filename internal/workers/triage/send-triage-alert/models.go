// internal/workers/triage/send-triage-alert/models.go
package sendtriagealert

const (
	StatusSent    = "sent"
	StatusPartial = "partial"
	StatusSkipped = "skipped"

	ChannelEmail = "email"
	ChannelSMS   = "sms"
)

type Input struct {
	TicketID        string   `json:"ticketId"`
	Title           string   `json:"title"`
	Urgency         string   `json:"urgency"`
	ContractorTypes []string `json:"contractorTypes"`
	Summary         string   `json:"summary"`
	RecipientEmail  string   `json:"recipientEmail,omitempty"`
	RecipientPhone  string   `json:"recipientPhone,omitempty"`
}

type Output struct {
	NotificationID string   `json:"notificationId"`
	Status         string   `json:"status"`
	SentAt         string   `json:"sentAt,omitempty"`
	Channels       []string `json:"channels"`
	Reason         string   `json:"reason,omitempty"`
}

type recipient struct {
	email string
	phone string
}
