// internal/workers/triage/diagnose-ticket/handler.go
package diagnoseticket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

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
	TaskType = "diagnose-ticket"
)

var (
	ErrInputInvalid = errors.New("DIAGNOSIS_INPUT_INVALID")
)

// Diagnoser produces a diagnosis for one ticket. *diagnosis.Engine satisfies it.
type Diagnoser interface {
	Diagnose(ctx context.Context, req diagnosis.Request) diagnosis.Result
}

type Handler struct {
	config     *Config
	engine     Diagnoser
	schema     map[string]interface{}
	obs        *observability.Observability
	errHandler *apperrors.ErrorHandler
	logger     logger.Logger
}

// NewHandler builds the worker. schema is the registry input schema for the task type; a nil
// schema skips validation.
func NewHandler(config *Config, engine Diagnoser, schema map[string]interface{}, obs *observability.Observability, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     config,
		engine:     engine,
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
	result, err := validation.ValidateInput(vars, h.schema)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInputInvalid, err)
	}
	if !result.Valid {
		return nil, fmt.Errorf("%w: %s", ErrInputInvalid, strings.Join(result.GetErrorMessages(), "; "))
	}

	input, err := decodeInput(vars)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInputInvalid, err)
	}

	res := h.engine.Diagnose(ctx, diagnosis.Request{
		Title:       input.Title,
		Description: input.Description,
		Category:    input.Category,
		Priority:    input.Priority,
	})

	diagnosisID := uuid.New().String()
	h.logger.Info("ticket diagnosed", map[string]interface{}{
		"ticketId":    input.TicketID,
		"diagnosisId": diagnosisID,
		"category":    res.Category.String(),
		"urgency":     string(res.EstimatedUrgency),
		"severity":    res.Severity,
		"source":      res.Source,
	})

	return &Output{
		DiagnosisID: diagnosisID,
		TicketID:    input.TicketID,
		Result:      res,
	}, nil
}

func decodeInput(vars map[string]interface{}) (*Input, error) {
	raw, err := json.Marshal(vars)
	if err != nil {
		return nil, err
	}
	var input Input
	if err := json.Unmarshal(raw, &input); err != nil {
		return nil, err
	}
	return &input, nil
}

func (h *Handler) fail(ctx context.Context, client worker.JobClient, job entities.Job, start time.Time, err error) {
	stdErr := toStandardError(err)
	h.obs.RecordJob(ctx, TaskType, string(stdErr.Code), time.Since(start))
	h.errHandler.HandleJobError(ctx, client, job, stdErr)
}

func toStandardError(err error) *apperrors.StandardError {
	if errors.Is(err, ErrInputInvalid) {
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
