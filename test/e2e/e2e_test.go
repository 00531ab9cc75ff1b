// test/e2e/e2e_test.go
package e2e

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"maintenance-triage/internal/common/config"
	"maintenance-triage/internal/common/database"
	"maintenance-triage/internal/common/logger"
	"maintenance-triage/internal/diagnosis"
	"maintenance-triage/internal/llm"
	"maintenance-triage/internal/models"
	"maintenance-triage/internal/search"
	"maintenance-triage/pkg/registry"

	attachdiagnosis "maintenance-triage/internal/workers/triage/attach-diagnosis"
	diagnoseticket "maintenance-triage/internal/workers/triage/diagnose-ticket"
	sendtriagealert "maintenance-triage/internal/workers/triage/send-triage-alert"
)

// ==========================
// Pipeline Fixtures
// ==========================

type outbox struct {
	mu     sync.Mutex
	emails []*ses.SendEmailInput
	sms    []*sns.PublishInput
}

func (o *outbox) SendEmail(_ context.Context, params *ses.SendEmailInput, _ ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.emails = append(o.emails, params)
	return &ses.SendEmailOutput{MessageId: aws.String(uuid.NewString())}, nil
}

func (o *outbox) Publish(_ context.Context, params *sns.PublishInput, _ ...func(*sns.Options)) (*sns.PublishOutput, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.sms = append(o.sms, params)
	return &sns.PublishOutput{MessageId: aws.String(uuid.NewString())}, nil
}

type pipeline struct {
	diagnose *diagnoseticket.Handler
	attach   *attachdiagnosis.Handler
	alert    *sendtriagealert.Handler
	mock     sqlmock.Sqlmock
	outbox   *outbox
	indexed  *int32
}

func newESServer(t *testing.T, indexed *int32) *elasticsearch.Client {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		if strings.HasSuffix(r.URL.Path, "/_count") {
			_, _ = w.Write([]byte(`{"count":12}`))
			return
		}
		atomic.AddInt32(indexed, 1)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"result":"created"}`))
	}))
	t.Cleanup(srv.Close)

	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses:    []string{srv.URL},
		DisableRetry: true,
	})
	require.NoError(t, err)
	return client
}

func newPipeline(t *testing.T, remote diagnosis.RemoteClassifier) *pipeline {
	log := logger.NewTestLogger(t)
	reg := registry.DefaultRegistry()
	require.NoError(t, reg.Validate())

	var indexed int32
	esClient := newESServer(t, &indexed)
	estimator := search.NewCountEstimator(esClient, "maintenance-tickets", diagnosis.FixedEstimator(-1), log)
	engine := diagnosis.NewEngine(diagnosis.Options{Remote: remote, Estimator: estimator, Logger: log})

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	box := &outbox{}
	alertCfg := sendtriagealert.LoadConfig()
	alertCfg.FromEmail = "triage@example.com"
	alertCfg.DefaultEmail = "desk@example.com"
	alertCfg.DefaultPhone = "+15550000001"

	return &pipeline{
		diagnose: diagnoseticket.NewHandler(diagnoseticket.LoadConfig(), engine,
			reg.InputSchema(registry.TaskDiagnoseTicket), nil, log),
		attach: attachdiagnosis.NewHandler(attachdiagnosis.LoadConfig(), db,
			search.NewIndexer(esClient, "maintenance-tickets", log),
			reg.InputSchema(registry.TaskAttachDiagnosis), nil, log),
		alert: sendtriagealert.NewHandler(alertCfg, nil, box, box,
			reg.InputSchema(registry.TaskSendTriageAlert), nil, log),
		mock:    mock,
		outbox:  box,
		indexed: &indexed,
	}
}

// toVars turns a worker output into the next job's variables, the way Zeebe merges them.
func toVars(t *testing.T, v interface{}, extra map[string]interface{}) map[string]interface{} {
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	var vars map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &vars))
	for k, val := range extra {
		vars[k] = val
	}
	return vars
}

type runResult struct {
	diagnosis *diagnoseticket.Output
	attach    *attachdiagnosis.Output
	alert     *sendtriagealert.Output
}

func (p *pipeline) run(t *testing.T, ticket models.Ticket, priority string) runResult {
	ctx := context.Background()

	diag, err := p.diagnose.Execute(ctx, map[string]interface{}{
		"ticketId":    ticket.ID,
		"title":       ticket.Title,
		"description": ticket.Description,
		"category":    ticket.Category,
		"priority":    priority,
	})
	require.NoError(t, err)

	p.mock.ExpectBegin()
	p.mock.ExpectExec(`UPDATE tickets`).
		WithArgs(diag.Result.Diagnosis, string(diag.Result.EstimatedUrgency), models.TicketStatusDiagnosed, sqlmock.AnyArg(), ticket.ID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	p.mock.ExpectExec(`INSERT INTO ticket_diagnoses`).
		WithArgs(diag.DiagnosisID, ticket.ID, diag.Result.Category.String(), string(diag.Result.EstimatedUrgency),
			diag.Result.Severity, diag.Result.Confidence, sqlmock.AnyArg(), diag.Result.Source, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	p.mock.ExpectCommit()

	attached, err := p.attach.Execute(ctx, toVars(t, diag, map[string]interface{}{"title": ticket.Title}))
	require.NoError(t, err)

	alert, err := p.alert.Execute(ctx, map[string]interface{}{
		"ticketId":        ticket.ID,
		"title":           ticket.Title,
		"urgency":         string(diag.Result.EstimatedUrgency),
		"contractorTypes": diag.Result.RecommendedContractorTypes,
		"summary":         strings.SplitN(diag.Result.Diagnosis, "\n", 2)[0],
	})
	require.NoError(t, err)
	require.NoError(t, p.mock.ExpectationsWereMet())

	return runResult{diagnosis: diag, attach: attached, alert: alert}
}

// ==========================
// Pipeline Tests
// ==========================

func TestPipeline_RulesOnly(t *testing.T) {
	tests := []struct {
		name         string
		ticket       models.Ticket
		priority     string
		wantCategory diagnosis.Category
		wantUrgency  diagnosis.Urgency
		wantAlert    string
		wantEmails   int
		wantSMS      int
	}{
		{
			name: "burst pipe pages the desk",
			ticket: models.Ticket{
				ID:          "ticket-burst",
				Title:       "Burst pipe in basement",
				Description: "A pipe burst and water is flooding the basement",
				Category:    "plumbing",
			},
			wantCategory: diagnosis.Plumbing,
			wantUrgency:  diagnosis.UrgencyUrgent,
			wantAlert:    sendtriagealert.StatusSent,
			wantEmails:   1,
			wantSMS:      1,
		},
		{
			name: "squeaky door is not alerted",
			ticket: models.Ticket{
				ID:       "ticket-door",
				Title:    "Door squeaks",
				Category: "general",
			},
			priority:     "low",
			wantCategory: diagnosis.General,
			wantUrgency:  diagnosis.UrgencyLow,
			wantAlert:    sendtriagealert.StatusSkipped,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newPipeline(t, nil)

			out := p.run(t, tt.ticket, tt.priority)

			assert.Equal(t, tt.wantCategory, out.diagnosis.Result.Category)
			assert.Equal(t, tt.wantUrgency, out.diagnosis.Result.EstimatedUrgency)
			assert.Equal(t, diagnosis.SourceRules, out.diagnosis.Result.Source)
			require.NotNil(t, out.diagnosis.Result.SimilarIssuesCount)
			assert.Equal(t, 12, *out.diagnosis.Result.SimilarIssuesCount)

			assert.Equal(t, models.TicketStatusDiagnosed, out.attach.Status)
			assert.True(t, out.attach.Indexed)
			assert.Equal(t, int32(1), atomic.LoadInt32(p.indexed))

			assert.Equal(t, tt.wantAlert, out.alert.Status)
			assert.Len(t, p.outbox.emails, tt.wantEmails)
			assert.Len(t, p.outbox.sms, tt.wantSMS)
		})
	}
}

func TestPipeline_RemoteModelWithCache(t *testing.T) {
	var calls int32
	llmServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		content := `{"diagnosis":"Corroded supply line under the sink","contractorType":["Plumbing"],"urgency":"Urgent","actions":["Close the angle stop","Replace the supply line"]}`
		raw, _ := json.Marshal(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"role": "assistant", "content": content}},
			},
		})
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(raw)
	}))
	defer llmServer.Close()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	log := logger.NewTestLogger(t)
	client := llm.NewClient(config.LLMConfig{
		BaseURL: llmServer.URL,
		APIKey:  "test-key",
		Model:   "gpt-4o-mini",
		Timeout: 5000,
	}, log)
	remote := llm.NewCachedClassifier(client, rdb, time.Hour, log)

	ticket := models.Ticket{
		ID:          "ticket-sink",
		Title:       "Kitchen sink leaking",
		Description: "Water is dripping from the supply line under the kitchen sink",
		Category:    "plumbing",
	}

	first := newPipeline(t, remote).run(t, ticket, "medium")
	second := newPipeline(t, remote).run(t, ticket, "medium")

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	for _, out := range []runResult{first, second} {
		assert.Equal(t, diagnosis.SourceRemote, out.diagnosis.Result.Source)
		assert.Equal(t, diagnosis.UrgencyUrgent, out.diagnosis.Result.EstimatedUrgency)
		assert.Equal(t, "Corroded supply line under the sink", out.diagnosis.Result.Diagnosis)
		assert.Equal(t, []string{"Close the angle stop", "Replace the supply line"}, out.diagnosis.Result.SuggestedActions)
		assert.Equal(t, sendtriagealert.StatusSent, out.alert.Status)
	}
}

// ==========================
// Live Ticket Store
// ==========================

// TestLive_TicketStore runs attach-diagnosis against the PostgreSQL configured in
// configs/config.yaml. It needs E2E_LIVE=1.
func TestLive_TicketStore(t *testing.T) {
	if os.Getenv("E2E_LIVE") == "" {
		t.Skip("set E2E_LIVE=1 to run against a live PostgreSQL")
	}

	cfg, err := config.Load()
	require.NoError(t, err)

	pg, err := database.NewPostgres(cfg.Database.Postgres)
	require.NoError(t, err)
	defer pg.Close()

	ctx := context.Background()
	require.NoError(t, pg.Ping(ctx))
	require.NoError(t, pg.EnsureSchema(ctx))

	ticket := models.Ticket{
		ID:          "e2e-" + uuid.NewString(),
		Title:       "No heat in unit 4B",
		Description: "The furnace is not working and the apartment is freezing",
		Category:    "hvac",
		Status:      models.TicketStatusOpen,
	}
	_, err = pg.DB.ExecContext(ctx,
		`INSERT INTO tickets (id, title, description, category, status) VALUES ($1, $2, $3, $4, $5)`,
		ticket.ID, ticket.Title, ticket.Description, ticket.Category, ticket.Status)
	require.NoError(t, err)

	log := logger.NewTestLogger(t)
	reg := registry.DefaultRegistry()
	engine := diagnosis.NewEngine(diagnosis.Options{Estimator: diagnosis.FixedEstimator(3), Logger: log})
	diag, err := diagnoseticket.NewHandler(diagnoseticket.LoadConfig(), engine, reg.InputSchema(registry.TaskDiagnoseTicket), nil, log).
		Execute(ctx, map[string]interface{}{
			"ticketId":    ticket.ID,
			"title":       ticket.Title,
			"description": ticket.Description,
			"category":    ticket.Category,
		})
	require.NoError(t, err)

	attach := attachdiagnosis.NewHandler(attachdiagnosis.LoadConfig(), pg.DB, nil, reg.InputSchema(registry.TaskAttachDiagnosis), nil, log)
	_, err = attach.Execute(ctx, toVars(t, diag, nil))
	require.NoError(t, err)

	var stored models.Ticket
	require.NoError(t, pg.DB.QueryRowContext(ctx,
		`SELECT status, priority, diagnosis FROM tickets WHERE id = $1`, ticket.ID).
		Scan(&stored.Status, &stored.Priority, &stored.Diagnosis))
	assert.Equal(t, models.TicketStatusDiagnosed, stored.Status)
	assert.Equal(t, string(diag.Result.EstimatedUrgency), stored.Priority)
	assert.Equal(t, diag.Result.Diagnosis, stored.Diagnosis)

	var history int
	require.NoError(t, pg.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM ticket_diagnoses WHERE ticket_id = $1`, ticket.ID).Scan(&history))
	assert.Equal(t, 1, history)
}
