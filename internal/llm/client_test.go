package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"maintenance-triage/internal/common/config"
	"maintenance-triage/internal/common/logger"
)

func newTestClient(t *testing.T, url string, timeoutMs int) *Client {
	return NewClient(config.LLMConfig{
		BaseURL:     url,
		APIKey:      "test-key",
		Model:       "gpt-4o-mini",
		Timeout:     timeoutMs,
		Temperature: 0.2,
		MaxTokens:   800,
	}, logger.NewTestLogger(t))
}

func chatBody(content string) string {
	raw, _ := json.Marshal(map[string]interface{}{
		"choices": []map[string]interface{}{
			{"message": map[string]string{"role": "assistant", "content": content}},
		},
	})
	return string(raw)
}

var samplePrompt = Prompt{
	Title:       "Kitchen sink leaking",
	Description: "the kitchen sink is leaking under the cabinet",
	Category:    "Plumbing",
}

func TestClient_Classify_WireContract(t *testing.T) {
	var captured chatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(chatBody(`{"diagnosis":"Leaking trap","contractorType":"Plumbing","urgency":"High","actions":["Shut off the valve"]}`)))
	}))
	defer server.Close()

	res := newTestClient(t, server.URL, 5000).Classify(context.Background(), samplePrompt)

	require.True(t, res.OK(), "unexpected error: %v", res.Err)
	assert.Equal(t, "Leaking trap", res.Reply.Diagnosis)
	assert.Equal(t, ContractorTypes{"Plumbing"}, res.Reply.ContractorType)
	assert.Equal(t, "High", res.Reply.Urgency)
	assert.Equal(t, []string{"Shut off the valve"}, res.Reply.Actions)

	assert.Equal(t, "gpt-4o-mini", captured.Model)
	assert.Equal(t, 800, captured.MaxTokens)
	assert.InDelta(t, 0.2, captured.Temperature, 1e-9)
	require.Len(t, captured.Messages, 1)
	assert.Equal(t, "user", captured.Messages[0].Role)
	assert.Contains(t, captured.Messages[0].Content, "Kitchen sink leaking")
	assert.Contains(t, captured.Messages[0].Content, "Priority: not specified")
}

func TestClient_Classify_Failures(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{"server error", http.StatusInternalServerError, `{"error":"boom"}`, ErrRemoteFailed},
		{"unauthorized", http.StatusUnauthorized, `{"error":"bad key"}`, ErrRemoteFailed},
		{"empty choices", http.StatusOK, `{"choices":[]}`, ErrRemoteFailed},
		{"malformed envelope", http.StatusOK, `not json`, ErrRemoteFailed},
		{"malformed content", http.StatusOK, chatBody("I think it is a leak"), ErrRemoteFailed},
		{"empty content", http.StatusOK, chatBody("   "), ErrRemoteFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			res := newTestClient(t, server.URL, 5000).Classify(context.Background(), samplePrompt)

			assert.False(t, res.OK())
			assert.Nil(t, res.Reply)
			assert.ErrorIs(t, res.Err, tt.wantErr)
		})
	}
}

func TestClient_Classify_Timeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	start := time.Now()
	res := newTestClient(t, server.URL, 100).Classify(context.Background(), samplePrompt)

	assert.ErrorIs(t, res.Err, ErrRemoteTimeout)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestClient_Classify_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	res := newTestClient(t, url, 1000).Classify(context.Background(), samplePrompt)

	assert.False(t, res.OK())
	assert.Error(t, res.Err)
}

func TestParseReply(t *testing.T) {
	tests := []struct {
		name        string
		content     string
		wantErr     bool
		contractors ContractorTypes
	}{
		{"plain object", `{"contractorType":"HVAC"}`, false, ContractorTypes{"HVAC"}},
		{"fenced json", "```json\n{\"contractorType\":[\"Plumbing\",\"Electrical\"]}\n```", false, ContractorTypes{"Plumbing", "Electrical"}},
		{"bare fence", "```\n{\"diagnosis\":\"x\"}\n```", false, nil},
		{"contractor wrong type", `{"contractorType":42}`, true, nil},
		{"prose", "The furnace is broken", true, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reply, err := parseReply(tt.content)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.contractors, reply.ContractorType)
		})
	}
}
