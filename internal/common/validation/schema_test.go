package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ticketSchema = map[string]interface{}{
	"type":     "object",
	"required": []interface{}{"ticketId", "title"},
	"properties": map[string]interface{}{
		"ticketId": map[string]interface{}{"type": "string", "minLength": 1},
		"title":    map[string]interface{}{"type": "string"},
		"urgency": map[string]interface{}{
			"type": "string",
			"enum": []interface{}{"Urgent", "High", "Medium", "Low"},
		},
	},
}

func TestValidateInput(t *testing.T) {
	tests := []struct {
		name       string
		input      map[string]interface{}
		wantValid  bool
		wantFields []string
	}{
		{
			name:      "valid",
			input:     map[string]interface{}{"ticketId": "T-1", "title": "Leak", "urgency": "High"},
			wantValid: true,
		},
		{
			name:       "missing required",
			input:      map[string]interface{}{"title": "Leak"},
			wantFields: []string{"ticketId"},
		},
		{
			name:       "wrong type",
			input:      map[string]interface{}{"ticketId": 42.0, "title": "Leak"},
			wantFields: []string{"ticketId"},
		},
		{
			name:       "bad enum",
			input:      map[string]interface{}{"ticketId": "T-1", "title": "Leak", "urgency": "Whenever"},
			wantFields: []string{"urgency"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := ValidateInput(tt.input, ticketSchema)
			require.NoError(t, err)
			assert.Equal(t, tt.wantValid, result.Valid)
			for _, field := range tt.wantFields {
				assert.True(t, result.HasErrors(field), "expected error on %s, got %v", field, result.GetErrorMessages())
			}
		})
	}
}

func TestValidateInput_EmptySchemaAcceptsAnything(t *testing.T) {
	result, err := ValidateInput(map[string]interface{}{"x": 1}, nil)
	require.NoError(t, err)
	assert.True(t, result.Valid)
}

func TestValidateEmailAndPhone(t *testing.T) {
	assert.True(t, ValidateEmail("desk@example.com"))
	assert.False(t, ValidateEmail("not-an-email"))
	assert.True(t, ValidatePhone("+15551234567"))
	assert.False(t, ValidatePhone("555-1234"))
}
