// Package search keeps diagnosed tickets in Elasticsearch and answers similar-issue counts
// from that index.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"maintenance-triage/internal/common/logger"
	"maintenance-triage/internal/diagnosis"
)

var (
	ErrIndexFailed = errors.New("SEARCH_INDEX_FAILED")
	ErrCountFailed = errors.New("SEARCH_COUNT_FAILED")
)

// TicketDocument is the indexed form of a diagnosed ticket.
type TicketDocument struct {
	TicketID        string    `json:"ticketId"`
	DiagnosisID     string    `json:"diagnosisId"`
	Title           string    `json:"title,omitempty"`
	Diagnosis       string    `json:"diagnosis"`
	Category        string    `json:"category"`
	Urgency         string    `json:"urgency"`
	Severity        int       `json:"severity"`
	Confidence      float64   `json:"confidence"`
	ContractorTypes []string  `json:"contractorTypes"`
	Source          string    `json:"source"`
	IndexedAt       time.Time `json:"indexedAt"`
}

// NewTicketDocument flattens a diagnosis for indexing.
func NewTicketDocument(ticketID, diagnosisID, title string, res diagnosis.Result, at time.Time) TicketDocument {
	return TicketDocument{
		TicketID:        ticketID,
		DiagnosisID:     diagnosisID,
		Title:           title,
		Diagnosis:       res.Diagnosis,
		Category:        res.Category.String(),
		Urgency:         string(res.EstimatedUrgency),
		Severity:        res.Severity,
		Confidence:      res.Confidence,
		ContractorTypes: res.RecommendedContractorTypes,
		Source:          res.Source,
		IndexedAt:       at.UTC(),
	}
}

// Indexer writes ticket documents, keyed by ticket id, into one index.
type Indexer struct {
	client *elasticsearch.Client
	index  string
	logger logger.Logger
}

func NewIndexer(client *elasticsearch.Client, index string, log logger.Logger) *Indexer {
	return &Indexer{
		client: client,
		index:  index,
		logger: logger.Component(log, "search-indexer"),
	}
}

// IndexTicket upserts doc. Re-indexing the same ticket replaces the previous document.
func (i *Indexer) IndexTicket(ctx context.Context, doc TicketDocument) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("%w: encode document: %v", ErrIndexFailed, err)
	}

	req := esapi.IndexRequest{
		Index:      i.index,
		DocumentID: doc.TicketID,
		Body:       bytes.NewReader(body),
	}

	res, err := req.Do(ctx, i.client)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrIndexFailed, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("%w: %s", ErrIndexFailed, res.Status())
	}

	i.logger.Debug("Ticket indexed", map[string]interface{}{
		"index":    i.index,
		"ticketId": doc.TicketID,
	})
	return nil
}
