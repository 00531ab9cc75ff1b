package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"maintenance-triage/internal/common/logger"
	"maintenance-triage/internal/diagnosis"
)

// DefaultCountTimeout bounds the _count request so a slow cluster cannot stall a diagnosis.
const DefaultCountTimeout = 2 * time.Second

// CountEstimator counts indexed tickets that share the category. Any search failure is
// answered by the fallback estimator.
type CountEstimator struct {
	client   *elasticsearch.Client
	index    string
	fallback diagnosis.SimilarIssuesEstimator
	timeout  time.Duration
	logger   logger.Logger
}

func NewCountEstimator(client *elasticsearch.Client, index string, fallback diagnosis.SimilarIssuesEstimator, log logger.Logger) *CountEstimator {
	if fallback == nil {
		fallback = diagnosis.NewTimeSeededEstimator()
	}
	return &CountEstimator{
		client:   client,
		index:    index,
		fallback: fallback,
		timeout:  DefaultCountTimeout,
		logger:   logger.Component(log, "similar-issues"),
	}
}

func (e *CountEstimator) Estimate(ctx context.Context, category diagnosis.Category) int {
	countCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	n, err := e.count(countCtx, category)
	if err != nil {
		e.logger.Warn("Similar-issue count unavailable, using fallback estimate", map[string]interface{}{
			"category": category.String(),
			"error":    err.Error(),
		})
		return e.fallback.Estimate(ctx, category)
	}
	return n
}

func (e *CountEstimator) count(ctx context.Context, category diagnosis.Category) (int, error) {
	query, _ := json.Marshal(map[string]interface{}{
		"query": map[string]interface{}{
			"term": map[string]interface{}{"category": category.String()},
		},
	})

	req := esapi.CountRequest{
		Index: []string{e.index},
		Body:  bytes.NewReader(query),
	}

	res, err := req.Do(ctx, e.client)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrCountFailed, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return 0, fmt.Errorf("%w: %s", ErrCountFailed, res.Status())
	}

	var body struct {
		Count int `json:"count"`
	}
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return 0, fmt.Errorf("%w: decode: %v", ErrCountFailed, err)
	}
	return body.Count, nil
}
