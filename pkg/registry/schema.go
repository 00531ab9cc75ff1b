package registry

type ActivityRegistry struct {
	Version     string     `json:"version"`
	LastUpdated string     `json:"lastUpdated"`
	Activities  []Activity `json:"activities"`
}

type Activity struct {
	ID           string                 `json:"id"`
	DisplayName  string                 `json:"displayName"`
	Description  string                 `json:"description"`
	Category     string                 `json:"category"`
	Version      string                 `json:"version"`
	TaskType     string                 `json:"taskType"`
	InputSchema  map[string]interface{} `json:"inputSchema"`
	OutputSchema map[string]interface{} `json:"outputSchema"`
	ErrorCodes   []string               `json:"errorCodes"`
	Timeout      string                 `json:"timeout"`
	Retries      int                    `json:"retries"`
	Tags         []string               `json:"tags"`
}

const (
	TaskDiagnoseTicket  = "diagnose-ticket"
	TaskAttachDiagnosis = "attach-diagnosis"
	TaskSendTriageAlert = "send-triage-alert"
)

func stringProp() map[string]interface{} {
	return map[string]interface{}{"type": "string"}
}

func requiredString() map[string]interface{} {
	return map[string]interface{}{"type": "string", "minLength": 1}
}

// DefaultRegistry returns the built-in definitions of the triage activities.
func DefaultRegistry() *ActivityRegistry {
	return &ActivityRegistry{
		Version:     "1.0.0",
		LastUpdated: "2026-10-01T00:00:00Z",
		Activities: []Activity{
			{
				ID:          "triage.ticket.diagnose",
				DisplayName: "Diagnose Ticket",
				Description: "Runs the rule-based diagnosis engine over a maintenance ticket",
				Category:    "triage",
				Version:     "1.0.0",
				TaskType:    TaskDiagnoseTicket,
				InputSchema: map[string]interface{}{
					"type":     "object",
					"required": []interface{}{"ticketId", "title", "category"},
					"properties": map[string]interface{}{
						"ticketId":    requiredString(),
						"title":       stringProp(),
						"description": stringProp(),
						"category":    stringProp(),
						"priority":    stringProp(),
					},
				},
				OutputSchema: map[string]interface{}{
					"type":     "object",
					"required": []interface{}{"diagnosisId", "ticketId", "result"},
				},
				ErrorCodes: []string{"DIAGNOSIS_INPUT_INVALID"},
				Timeout:    "25s",
				Retries:    1,
				Tags:       []string{"diagnosis", "rules"},
			},
			{
				ID:          "triage.ticket.attach",
				DisplayName: "Attach Diagnosis",
				Description: "Stores the diagnosis on the ticket and indexes it for search",
				Category:    "triage",
				Version:     "1.0.0",
				TaskType:    TaskAttachDiagnosis,
				InputSchema: map[string]interface{}{
					"type":     "object",
					"required": []interface{}{"ticketId", "diagnosisId", "result"},
					"properties": map[string]interface{}{
						"ticketId":    requiredString(),
						"diagnosisId": requiredString(),
						"result": map[string]interface{}{
							"type":     "object",
							"required": []interface{}{"diagnosis", "estimatedUrgency"},
						},
					},
				},
				OutputSchema: map[string]interface{}{
					"type":     "object",
					"required": []interface{}{"ticketId", "status", "attachedAt"},
				},
				ErrorCodes: []string{"DIAGNOSIS_INPUT_INVALID", "TICKET_NOT_FOUND", "DATABASE_UPDATE_FAILED"},
				Timeout:    "15s",
				Retries:    3,
				Tags:       []string{"postgres", "elasticsearch"},
			},
			{
				ID:          "triage.alert.send",
				DisplayName: "Send Triage Alert",
				Description: "Emails or texts the maintenance desk for High and Urgent tickets",
				Category:    "triage",
				Version:     "1.0.0",
				TaskType:    TaskSendTriageAlert,
				InputSchema: map[string]interface{}{
					"type":     "object",
					"required": []interface{}{"ticketId", "urgency"},
					"properties": map[string]interface{}{
						"ticketId": requiredString(),
						"title":    stringProp(),
						"urgency": map[string]interface{}{
							"type": "string",
							"enum": []interface{}{"Urgent", "High", "Medium", "Low"},
						},
						"contractorTypes": map[string]interface{}{
							"type":  "array",
							"items": stringProp(),
						},
						"summary":        stringProp(),
						"recipientEmail": stringProp(),
						"recipientPhone": stringProp(),
					},
				},
				OutputSchema: map[string]interface{}{
					"type":     "object",
					"required": []interface{}{"notificationId", "status"},
				},
				ErrorCodes: []string{"DIAGNOSIS_INPUT_INVALID", "NOTIFICATION_SEND_FAILED"},
				Timeout:    "15s",
				Retries:    3,
				Tags:       []string{"ses", "sns"},
			},
		},
	}
}
