// internal/workers/triage/send-triage-alert/handler.go
package sendtriagealert

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	snstypes "github.com/aws/aws-sdk-go-v2/service/sns/types"
	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"

	apperrors "maintenance-triage/internal/common/errors"
	"maintenance-triage/internal/common/logger"
	"maintenance-triage/internal/common/observability"
	"maintenance-triage/internal/common/validation"
	"maintenance-triage/internal/diagnosis"
)

const (
	TaskType = "send-triage-alert"

	smsMaxLength = 160
)

var (
	ErrInputInvalid           = errors.New("DIAGNOSIS_INPUT_INVALID")
	ErrNotificationSendFailed = errors.New("NOTIFICATION_SEND_FAILED")
)

// Define interfaces for mocking
type SESService interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

type SNSService interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// sendError carries the channel that failed so the job error names it.
type sendError struct {
	channel string
	err     error
}

func (e *sendError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrNotificationSendFailed, e.channel, e.err)
}

func (e *sendError) Unwrap() error { return ErrNotificationSendFailed }

type Handler struct {
	config     *Config
	db         *sql.DB
	sesClient  SESService
	snsClient  SNSService
	schema     map[string]interface{}
	obs        *observability.Observability
	errHandler *apperrors.ErrorHandler
	logger     logger.Logger
}

// NewHandler builds the worker. db is optional; without it alerts go to the configured
// default recipients.
func NewHandler(config *Config, db *sql.DB, sesClient SESService, snsClient SNSService, schema map[string]interface{}, obs *observability.Observability, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     config,
		db:         db,
		sesClient:  sesClient,
		snsClient:  snsClient,
		schema:     schema,
		obs:        obs,
		errHandler: apperrors.NewErrorHandler(log),
		logger:     log,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	start := time.Now()
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	var vars map[string]interface{}
	if err := json.Unmarshal([]byte(job.Variables), &vars); err != nil {
		h.fail(ctx, client, job, start, fmt.Errorf("%w: parse variables: %v", ErrInputInvalid, err))
		return
	}

	output, err := h.execute(ctx, vars)
	if err != nil {
		h.fail(ctx, client, job, start, err)
		return
	}

	h.obs.RecordJob(ctx, TaskType, "", time.Since(start))
	h.completeJob(ctx, client, job, output)
}

func (h *Handler) execute(ctx context.Context, vars map[string]interface{}) (*Output, error) {
	input, err := h.decodeInput(vars)
	if err != nil {
		return nil, err
	}

	notificationID := uuid.New().String()
	channels := alertChannels(diagnosis.Urgency(input.Urgency))
	if len(channels) == 0 {
		h.logger.Info("alert skipped", map[string]interface{}{
			"ticketId": input.TicketID,
			"urgency":  input.Urgency,
		})
		return skipped(notificationID, "urgency below alert threshold"), nil
	}

	to := h.resolveRecipient(ctx, input)

	var (
		sent      []string
		attempted int
		lastErr   error
	)
	for _, channel := range channels {
		var err error
		switch channel {
		case ChannelEmail:
			enabled := h.config.EmailEnabled && h.sesClient != nil
			if !enabled || !validation.ValidateEmail(to.email) {
				h.logger.Warn("email channel unavailable", map[string]interface{}{
					"ticketId": input.TicketID,
					"enabled":  enabled,
				})
				continue
			}
			attempted++
			err = h.sendEmail(ctx, to.email, emailSubject(h.config.SubjectLabel, input), emailBody(input))
		case ChannelSMS:
			enabled := h.config.SMSEnabled && h.snsClient != nil
			if !enabled || !validation.ValidatePhone(to.phone) {
				h.logger.Warn("sms channel unavailable", map[string]interface{}{
					"ticketId": input.TicketID,
					"enabled":  enabled,
				})
				continue
			}
			attempted++
			err = h.sendSMS(ctx, to.phone, smsMessage(input))
		}

		if err != nil {
			h.logger.Warn("alert delivery failed", map[string]interface{}{
				"ticketId": input.TicketID,
				"channel":  channel,
				"error":    err,
			})
			lastErr = &sendError{channel: channel, err: err}
			continue
		}
		sent = append(sent, channel)
	}

	if attempted == 0 {
		return skipped(notificationID, "no deliverable recipient"), nil
	}
	if len(sent) == 0 {
		return nil, lastErr
	}

	status := StatusSent
	if len(sent) < attempted {
		status = StatusPartial
	}

	h.logger.Info("alert sent", map[string]interface{}{
		"ticketId":       input.TicketID,
		"notificationId": notificationID,
		"urgency":        input.Urgency,
		"channels":       sent,
		"status":         status,
	})

	return &Output{
		NotificationID: notificationID,
		Status:         status,
		SentAt:         time.Now().UTC().Format(time.RFC3339),
		Channels:       sent,
	}, nil
}

func (h *Handler) decodeInput(vars map[string]interface{}) (*Input, error) {
	result, err := validation.ValidateInput(vars, h.schema)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInputInvalid, err)
	}
	if !result.Valid {
		return nil, fmt.Errorf("%w: %s", ErrInputInvalid, strings.Join(result.GetErrorMessages(), "; "))
	}

	raw, err := json.Marshal(vars)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInputInvalid, err)
	}
	var input Input
	if err := json.Unmarshal(raw, &input); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInputInvalid, err)
	}
	return &input, nil
}

// alertChannels maps urgency to delivery channels: High emails, Urgent also texts.
func alertChannels(u diagnosis.Urgency) []string {
	switch u {
	case diagnosis.UrgencyUrgent:
		return []string{ChannelEmail, ChannelSMS}
	case diagnosis.UrgencyHigh:
		return []string{ChannelEmail}
	default:
		return nil
	}
}

func skipped(notificationID, reason string) *Output {
	return &Output{
		NotificationID: notificationID,
		Status:         StatusSkipped,
		Channels:       []string{},
		Reason:         reason,
	}
}

// resolveRecipient starts from the configured defaults, applies the contact registered for the
// primary contractor type, then explicit job overrides.
func (h *Handler) resolveRecipient(ctx context.Context, input *Input) recipient {
	to := recipient{email: h.config.DefaultEmail, phone: h.config.DefaultPhone}

	if h.db != nil && len(input.ContractorTypes) > 0 {
		var email, phone string
		err := h.db.QueryRowContext(ctx, `
			SELECT email, phone FROM alert_recipients
			WHERE contractor_type = $1`, input.ContractorTypes[0]).Scan(&email, &phone)
		switch {
		case err == nil:
			if email != "" {
				to.email = email
			}
			if phone != "" {
				to.phone = phone
			}
		case errors.Is(err, sql.ErrNoRows):
		default:
			h.logger.Warn("recipient lookup failed", map[string]interface{}{
				"contractorType": input.ContractorTypes[0],
				"error":          err,
			})
		}
	}

	if input.RecipientEmail != "" {
		to.email = input.RecipientEmail
	}
	if input.RecipientPhone != "" {
		to.phone = input.RecipientPhone
	}
	return to
}

func emailSubject(label string, input *Input) string {
	title := input.Title
	if title == "" {
		title = "ticket " + input.TicketID
	}
	return fmt.Sprintf("[%s] %s priority: %s", label, input.Urgency, title)
}

func emailBody(input *Input) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Ticket: %s\n", input.TicketID)
	if input.Title != "" {
		fmt.Fprintf(&b, "Title: %s\n", input.Title)
	}
	fmt.Fprintf(&b, "Urgency: %s\n", input.Urgency)
	if len(input.ContractorTypes) > 0 {
		fmt.Fprintf(&b, "Contractors: %s\n", strings.Join(input.ContractorTypes, ", "))
	}
	if input.Summary != "" {
		b.WriteString("\n")
		b.WriteString(input.Summary)
		b.WriteString("\n")
	}
	return b.String()
}

func smsMessage(input *Input) string {
	msg := fmt.Sprintf("%s maintenance ticket %s", strings.ToUpper(input.Urgency), input.TicketID)
	if input.Title != "" {
		msg += ": " + input.Title
	}
	if len(input.ContractorTypes) > 0 {
		msg += ". Contractors: " + strings.Join(input.ContractorTypes, ", ")
	}
	return truncate(msg, smsMaxLength)
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-3]) + "..."
}

func (h *Handler) sendEmail(ctx context.Context, to, subject, body string) error {
	_, err := h.sesClient.SendEmail(ctx, &ses.SendEmailInput{
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(subject)},
			Body: &types.Body{
				Text: &types.Content{Data: aws.String(body)},
			},
		},
		Source: aws.String(h.config.FromEmail),
	})
	return err
}

func (h *Handler) sendSMS(ctx context.Context, to, message string) error {
	input := &sns.PublishInput{
		PhoneNumber: aws.String(to),
		Message:     aws.String(message),
	}
	if h.config.SenderID != "" {
		input.MessageAttributes = map[string]snstypes.MessageAttributeValue{
			"AWS.SNS.SMS.SenderID": {
				DataType:    aws.String("String"),
				StringValue: aws.String(h.config.SenderID),
			},
		}
	}
	_, err := h.snsClient.Publish(ctx, input)
	return err
}

func (h *Handler) fail(ctx context.Context, client worker.JobClient, job entities.Job, start time.Time, err error) {
	stdErr := toStandardError(err)
	h.obs.RecordJob(ctx, TaskType, string(stdErr.Code), time.Since(start))
	h.errHandler.HandleJobError(ctx, client, job, stdErr)
}

func toStandardError(err error) *apperrors.StandardError {
	var se *sendError
	switch {
	case errors.As(err, &se):
		return apperrors.NewNotificationSendFailedError(se.channel, se.err)
	case errors.Is(err, ErrInputInvalid):
		return apperrors.NewDiagnosisInputInvalidError(err.Error())
	}
	return apperrors.Normalize(err)
}

func (h *Handler) completeJob(ctx context.Context, client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}
	if _, err := cmd.Send(ctx); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}
	h.logger.Info("job completed successfully", map[string]interface{}{
		"jobKey": job.Key,
	})
}

func (h *Handler) Execute(ctx context.Context, vars map[string]interface{}) (*Output, error) {
	return h.execute(ctx, vars)
}
