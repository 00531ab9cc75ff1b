// Package llm is the optional remote-model backend of the diagnosis engine. Every call
// returns a Result; failures are values, never panics, so the caller can fall back to the
// rule-based diagnosis.
package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrRemoteTimeout = errors.New("LLM_TIMEOUT")
	ErrRemoteFailed  = errors.New("LLM_CLASSIFICATION_FAILED")
)

// Prompt carries the ticket fields embedded in the user message.
type Prompt struct {
	Title       string
	Description string
	Category    string
	Priority    string
}

// Text renders the single user-role message sent to the model.
func (p Prompt) Text() string {
	priority := p.Priority
	if priority == "" {
		priority = "not specified"
	}

	var b strings.Builder
	b.WriteString("You are an expert maintenance technician triaging a property maintenance ticket.\n")
	fmt.Fprintf(&b, "Title: %s\n", p.Title)
	fmt.Fprintf(&b, "Category: %s\n", p.Category)
	fmt.Fprintf(&b, "Description: %s\n", p.Description)
	fmt.Fprintf(&b, "Priority: %s\n\n", priority)
	b.WriteString("Respond with a JSON object only, using these keys: ")
	b.WriteString(`"diagnosis" (string), "contractorType" (string or array of strings), `)
	b.WriteString(`"urgency" (one of Urgent, High, Medium, Low), "actions" (array of strings), `)
	b.WriteString(`"rootCause" (string), "estimatedCost" (string), "estimatedTime" (string).`)
	return b.String()
}

// ContractorTypes accepts either a single string or an array of strings.
type ContractorTypes []string

func (c *ContractorTypes) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		if single == "" {
			*c = nil
			return nil
		}
		*c = ContractorTypes{single}
		return nil
	}

	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return fmt.Errorf("contractorType: %w", err)
	}
	*c = many
	return nil
}

// Reply is the JSON document the model is asked to produce. Every key is optional.
type Reply struct {
	Diagnosis      string          `json:"diagnosis,omitempty"`
	ContractorType ContractorTypes `json:"contractorType,omitempty"`
	Urgency        string          `json:"urgency,omitempty"`
	Actions        []string        `json:"actions,omitempty"`
	RootCause      string          `json:"rootCause,omitempty"`
	EstimatedCost  string          `json:"estimatedCost,omitempty"`
	EstimatedTime  string          `json:"estimatedTime,omitempty"`
}

// Result is the outcome of one remote call: exactly one of Reply and Err is set.
type Result struct {
	Reply *Reply
	Err   error
}

// OK reports whether the call produced a usable reply.
func (r Result) OK() bool {
	return r.Err == nil && r.Reply != nil
}

func failed(format string, args ...interface{}) Result {
	return Result{Err: fmt.Errorf("%w: %s", ErrRemoteFailed, fmt.Sprintf(format, args...))}
}

// chat-completions wire types
type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// parseReply decodes the message content, tolerating a ```json fence around it.
func parseReply(content string) (*Reply, error) {
	content = strings.TrimSpace(content)
	if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```json")
		content = strings.TrimPrefix(content, "```")
		content = strings.TrimSuffix(strings.TrimSpace(content), "```")
		content = strings.TrimSpace(content)
	}
	if content == "" {
		return nil, errors.New("empty message content")
	}

	var reply Reply
	if err := json.Unmarshal([]byte(content), &reply); err != nil {
		return nil, fmt.Errorf("decode reply: %w", err)
	}
	return &reply, nil
}
