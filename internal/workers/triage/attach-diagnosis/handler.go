// internal/workers/triage/attach-diagnosis/handler.go
package attachdiagnosis

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/lib/pq"

	apperrors "maintenance-triage/internal/common/errors"
	"maintenance-triage/internal/common/logger"
	"maintenance-triage/internal/common/observability"
	"maintenance-triage/internal/common/validation"
	"maintenance-triage/internal/models"
	"maintenance-triage/internal/search"
)

const (
	TaskType = "attach-diagnosis"
)

var (
	ErrInputInvalid         = errors.New("DIAGNOSIS_INPUT_INVALID")
	ErrTicketNotFound       = errors.New("TICKET_NOT_FOUND")
	ErrDatabaseUpdateFailed = errors.New("DATABASE_UPDATE_FAILED")
)

// TicketIndexer writes the diagnosed ticket to search. *search.Indexer satisfies it.
type TicketIndexer interface {
	IndexTicket(ctx context.Context, doc search.TicketDocument) error
}

type Handler struct {
	config     *Config
	db         *sql.DB
	indexer    TicketIndexer
	schema     map[string]interface{}
	obs        *observability.Observability
	errHandler *apperrors.ErrorHandler
	logger     logger.Logger
}

// NewHandler builds the worker. A nil indexer disables search indexing.
func NewHandler(config *Config, db *sql.DB, indexer TicketIndexer, schema map[string]interface{}, obs *observability.Observability, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     config,
		db:         db,
		indexer:    indexer,
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

	now := time.Now().UTC()
	record, err := newDiagnosisRecord(input, now)
	if err != nil {
		return nil, fmt.Errorf("%w: encode diagnosis: %v", ErrDatabaseUpdateFailed, err)
	}

	if err := h.store(ctx, input, record); err != nil {
		return nil, err
	}

	indexed := h.index(ctx, input, now)

	h.logger.Info("diagnosis attached", map[string]interface{}{
		"ticketId":    input.TicketID,
		"diagnosisId": input.DiagnosisID,
		"urgency":     record.Urgency,
		"indexed":     indexed,
	})

	return &Output{
		TicketID:   input.TicketID,
		Status:     models.TicketStatusDiagnosed,
		AttachedAt: now.Format(time.RFC3339),
		Indexed:    indexed,
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
	if !input.Result.EstimatedUrgency.Valid() {
		return nil, fmt.Errorf("%w: unknown urgency %q", ErrInputInvalid, input.Result.EstimatedUrgency)
	}
	return &input, nil
}

func newDiagnosisRecord(input *Input, at time.Time) (models.DiagnosisRecord, error) {
	payload, err := json.Marshal(input.Result)
	if err != nil {
		return models.DiagnosisRecord{}, err
	}
	contractors := input.Result.RecommendedContractorTypes
	if contractors == nil {
		contractors = []string{}
	}
	return models.DiagnosisRecord{
		ID:              input.DiagnosisID,
		TicketID:        input.TicketID,
		Category:        input.Result.Category.String(),
		Urgency:         string(input.Result.EstimatedUrgency),
		Severity:        input.Result.Severity,
		Confidence:      input.Result.Confidence,
		ContractorTypes: contractors,
		Source:          input.Result.Source,
		Payload:         payload,
		CreatedAt:       at,
	}, nil
}

// store updates the ticket and appends the history row in one transaction. Replaying the same
// diagnosis id leaves a single history row.
func (h *Handler) store(ctx context.Context, input *Input, record models.DiagnosisRecord) error {
	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin: %v", ErrDatabaseUpdateFailed, err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `
		UPDATE tickets
		SET diagnosis = $1, priority = $2, status = $3, updated_at = $4
		WHERE id = $5`,
		input.Result.Diagnosis,
		record.Urgency,
		models.TicketStatusDiagnosed,
		record.CreatedAt,
		input.TicketID,
	)
	if err != nil {
		return fmt.Errorf("%w: update ticket: %v", ErrDatabaseUpdateFailed, err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: rows affected: %v", ErrDatabaseUpdateFailed, err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", ErrTicketNotFound, input.TicketID)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO ticket_diagnoses (
			id, ticket_id, category, urgency, severity,
			confidence, contractor_types, source, payload, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO NOTHING`,
		record.ID,
		record.TicketID,
		record.Category,
		record.Urgency,
		record.Severity,
		record.Confidence,
		pq.Array(record.ContractorTypes),
		record.Source,
		[]byte(record.Payload),
		record.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("%w: insert diagnosis: %v", ErrDatabaseUpdateFailed, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit: %v", ErrDatabaseUpdateFailed, err)
	}
	return nil
}

// index reports whether the search write succeeded. Failures are logged only; the ticket
// store stays the source of truth.
func (h *Handler) index(ctx context.Context, input *Input, at time.Time) bool {
	if h.indexer == nil {
		return false
	}

	ctx, cancel := context.WithTimeout(ctx, h.config.IndexTimeout)
	defer cancel()

	doc := search.NewTicketDocument(input.TicketID, input.DiagnosisID, input.Title, input.Result, at)
	if err := h.indexer.IndexTicket(ctx, doc); err != nil {
		stdErr := apperrors.NewSearchIndexFailedError(input.TicketID, err)
		h.logger.Warn("search index failed", map[string]interface{}{
			"ticketId":  input.TicketID,
			"errorCode": string(stdErr.Code),
			"details":   stdErr.Details,
		})
		return false
	}
	return true
}

func (h *Handler) fail(ctx context.Context, client worker.JobClient, job entities.Job, start time.Time, err error) {
	stdErr := toStandardError(err)
	h.obs.RecordJob(ctx, TaskType, string(stdErr.Code), time.Since(start))
	h.errHandler.HandleJobError(ctx, client, job, stdErr)
}

func toStandardError(err error) *apperrors.StandardError {
	switch {
	case errors.Is(err, ErrInputInvalid):
		return apperrors.NewDiagnosisInputInvalidError(err.Error())
	case errors.Is(err, ErrTicketNotFound):
		return apperrors.NewTicketNotFoundError(strings.TrimPrefix(err.Error(), ErrTicketNotFound.Error()+": "))
	case errors.Is(err, ErrDatabaseUpdateFailed):
		return apperrors.NewDatabaseUpdateFailedError(err)
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
