package diagnosis

import (
	"context"
	"errors"
	"fmt"
	"time"

	apperrors "maintenance-triage/internal/common/errors"
	"maintenance-triage/internal/common/logger"
	"maintenance-triage/internal/common/metrics"
	"maintenance-triage/internal/common/observability"
	"maintenance-triage/internal/llm"
)

const (
	SourceRules  = "rules"
	SourceRemote = "remote-model"

	minimalDiagnosis = "Maintenance issue reported. A professional inspection is recommended to determine the cause."
	minimalAction    = "Contact a maintenance professional to inspect the issue"
)

// Request is one ticket submitted for diagnosis. An empty Priority means none was given.
type Request struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Priority    string `json:"priority,omitempty"`
}

// Result is the complete diagnosis of a request. It is returned by value and never shared.
type Result struct {
	Diagnosis                  string   `json:"diagnosis"`
	Confidence                 float64  `json:"confidence"`
	RecommendedContractorTypes []string `json:"recommendedContractorTypes"`
	EstimatedUrgency           Urgency  `json:"estimatedUrgency"`
	SuggestedActions           []string `json:"suggestedActions"`
	EstimatedCost              string   `json:"estimatedCost,omitempty"`
	EstimatedTime              string   `json:"estimatedTime,omitempty"`
	RootCauseAnalysis          string   `json:"rootCauseAnalysis,omitempty"`
	PartsNeeded                []string `json:"partsNeeded"`
	SafetyWarnings             []string `json:"safetyWarnings"`
	DIYRecommendation          string   `json:"diyRecommendation,omitempty"`
	PreventiveMaintenance      []string `json:"preventiveMaintenance"`
	SimilarIssuesCount         *int     `json:"similarIssuesCount,omitempty"`
	EnvironmentalImpact        string   `json:"environmentalImpact,omitempty"`
	WarrantyConsiderations     string   `json:"warrantyConsiderations,omitempty"`
	PredictiveMaintenance      string   `json:"predictiveMaintenance,omitempty"`

	Category Category `json:"category"`
	Severity int      `json:"severity"`
	Source   string   `json:"source"`
}

// RemoteClassifier is the optional remote model consulted before the rules.
type RemoteClassifier interface {
	Classify(ctx context.Context, prompt llm.Prompt) llm.Result
}

type Options struct {
	Remote        RemoteClassifier
	Estimator     SimilarIssuesEstimator
	Observability *observability.Observability
	Logger        logger.Logger
}

// Engine produces diagnoses. It is safe for concurrent use.
type Engine struct {
	remote    RemoteClassifier
	estimator SimilarIssuesEstimator
	obs       *observability.Observability
	logger    logger.Logger
}

func NewEngine(opts Options) *Engine {
	estimator := opts.Estimator
	if estimator == nil {
		estimator = NewTimeSeededEstimator()
	}
	return &Engine{
		remote:    opts.Remote,
		estimator: estimator,
		obs:       opts.Observability,
		logger:    logger.Component(opts.Logger, "diagnosis-engine"),
	}
}

// Diagnose never fails: remote errors fall back to the rules and an internal panic yields
// MinimalResult.
func (e *Engine) Diagnose(ctx context.Context, req Request) (res Result) {
	if ctx == nil {
		ctx = context.Background()
	}
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			e.log().Error("Diagnosis failed, returning minimal result", map[string]interface{}{
				"panic":    fmt.Sprint(r),
				"category": req.Category,
			})
			res = MinimalResult(req)
		}
		metrics.DiagnosisDuration.Observe(time.Since(start).Seconds())
		metrics.DiagnosesTotal.WithLabelValues(res.Category.String(), string(res.EstimatedUrgency), res.Source).Inc()
		e.obs.RecordDiagnosis(ctx, res.Category.String(), string(res.EstimatedUrgency), res.Source)
	}()

	var remote llm.Result
	if e.remote != nil {
		remote = e.remote.Classify(ctx, llm.Prompt{
			Title:       req.Title,
			Description: req.Description,
			Category:    req.Category,
			Priority:    req.Priority,
		})
		if !remote.OK() {
			e.recordFallback(remote.Err)
		}
	}

	a, confidence := assess(req)
	res = build(a, confidence)
	if remote.OK() {
		res = mergeRemote(a, res, remote.Reply)
	}
	res.SimilarIssuesCount = e.similarIssues(ctx, a.Category)

	e.log().Debug("Diagnosis produced", map[string]interface{}{
		"category": res.Category.String(),
		"severity": res.Severity,
		"urgency":  string(res.EstimatedUrgency),
		"source":   res.Source,
	})
	return res
}

func (e *Engine) recordFallback(err error) {
	if err == nil {
		err = errors.New("remote model returned no result")
	}
	reason := "failed"
	stdErr := apperrors.NewLLMClassificationFailedError(err)
	if errors.Is(err, llm.ErrRemoteTimeout) {
		reason = "timeout"
		stdErr = apperrors.NewLLMTimeoutError()
	}
	metrics.RemoteModelFallbacks.WithLabelValues(reason).Inc()

	fields := map[string]interface{}{
		"reason":        reason,
		"error":         err.Error(),
		"errorCode":     string(stdErr.Code),
		"errorCategory": apperrors.GetErrorCategory(stdErr.Code),
	}
	e.log().Warn("Remote model unavailable, using rule-based diagnosis", fields)
}

// log tolerates a zero-value Engine.
func (e *Engine) log() logger.Logger {
	if e.logger == nil {
		return logger.NewNoOpLogger()
	}
	return e.logger
}

func (e *Engine) similarIssues(ctx context.Context, c Category) *int {
	if e.estimator == nil {
		return nil
	}
	n := e.estimator.Estimate(ctx, c)
	if n < 0 {
		return nil
	}
	return &n
}

// assess runs the analysis stages, from normalisation to confidence.
func assess(req Request) (Assessment, float64) {
	text := normalize(req.Title, req.Description)
	category, matches := DetectCategory(text, ParseCategory(req.Category))
	details := ExtractDetails(category, text)
	severity := AssessSeverity(text, req.Priority, details)

	a := Assessment{
		Category: category,
		Details:  details,
		Severity: severity,
		Urgency:  ResolveUrgency(severity, req.Priority),
		Text:     text,
	}
	return a, ScoreConfidence(matches, len(category.Lexicon()), details)
}

// build runs every advisor over a and composes the report.
func build(a Assessment, confidence float64) Result {
	cost, duration := EstimateCostAndTime(a)
	res := Result{
		Confidence:                 confidence,
		RecommendedContractorTypes: ResolveContractorTypes(a.Category, a.Text, a.Details),
		EstimatedUrgency:           a.Urgency,
		SuggestedActions:           PlanActions(a),
		EstimatedCost:              cost,
		EstimatedTime:              duration,
		RootCauseAnalysis:          RootCause(a),
		PartsNeeded:                PartsNeeded(a),
		SafetyWarnings:             SafetyWarnings(a),
		DIYRecommendation:          DIYRecommendation(a),
		PreventiveMaintenance:      PreventiveMaintenance(a),
		EnvironmentalImpact:        EnvironmentalImpact(a),
		WarrantyConsiderations:     WarrantyConsiderations(a),
		PredictiveMaintenance:      PredictiveMaintenance(a),
		Category:                   a.Category,
		Severity:                   a.Severity,
		Source:                     SourceRules,
	}
	res.Diagnosis = ComposeReport(a, res)
	return res
}

// mergeRemote lays the remote reply over the rule-based result. Missing or invalid entries
// keep the rule-based values.
func mergeRemote(a Assessment, base Result, reply *llm.Reply) Result {
	if u, ok := ParseUrgency(reply.Urgency); ok && u != a.Urgency {
		a.Urgency = u
		base = build(a, base.Confidence)
	}

	res := base
	res.Source = SourceRemote

	if types := nonEmpty(reply.ContractorType); len(types) > 0 {
		res.RecommendedContractorTypes = dedupe(types)
	}
	if actions := nonEmpty(reply.Actions); len(actions) > 0 {
		res.SuggestedActions = actions
	}
	if reply.RootCause != "" {
		res.RootCauseAnalysis = reply.RootCause
	}
	if reply.EstimatedCost != "" {
		res.EstimatedCost = reply.EstimatedCost
	}
	if reply.EstimatedTime != "" {
		res.EstimatedTime = reply.EstimatedTime
	}

	if reply.Diagnosis != "" {
		res.Diagnosis = reply.Diagnosis
	} else {
		res.Diagnosis = ComposeReport(a, res)
	}
	return res
}

func nonEmpty(items []string) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		if it != "" {
			out = append(out, it)
		}
	}
	return out
}

// MinimalResult is the generic diagnosis returned when the pipeline cannot run.
func MinimalResult(req Request) Result {
	urgency, ok := ParseUrgency(req.Priority)
	if !ok {
		urgency = UrgencyMedium
	}
	return Result{
		Diagnosis:                  minimalDiagnosis,
		Confidence:                 MinConfidence,
		RecommendedContractorTypes: []string{General.ContractorType()},
		EstimatedUrgency:           urgency,
		SuggestedActions:           []string{minimalAction},
		PartsNeeded:                []string{},
		SafetyWarnings:             []string{},
		PreventiveMaintenance:      []string{},
		Category:                   General,
		Severity:                   urgencySeverity(urgency),
		Source:                     SourceRules,
	}
}

func urgencySeverity(u Urgency) int {
	switch u {
	case UrgencyUrgent:
		return 5
	case UrgencyHigh:
		return 4
	case UrgencyLow:
		return 2
	default:
		return 3
	}
}
