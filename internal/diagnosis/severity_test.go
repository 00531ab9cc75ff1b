package diagnosis

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAssessSeverity(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		priority string
		details  IssueDetails
		want     int
	}{
		{"urgent priority", "", "URGENT", IssueDetails{}, 5},
		{"emergency flag", "", "", IssueDetails{Emergency: true}, 5},
		{"no water", "no water in the bathroom", "", IssueDetails{}, 4},
		{"leaking", "sink is leaking", "low", IssueDetails{}, 4},
		{"broken", "toilet handle is broken", "", IssueDetails{}, 3},
		{"slow", "slow drain in the tub", "", IssueDetails{}, 2},
		{"minor", "minor scuff on the wall", "high", IssueDetails{}, 2},
		{"nothing matches", "door squeaks", "", IssueDetails{}, 1},
		{"empty", "", "", IssueDetails{}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AssessSeverity(tt.text, tt.priority, tt.details)
			assert.Equal(t, tt.want, got)
			assert.GreaterOrEqual(t, got, MinSeverity)
			assert.LessOrEqual(t, got, MaxSeverity)
		})
	}
}

func TestResolveUrgency(t *testing.T) {
	tests := []struct {
		severity int
		priority string
		want     Urgency
	}{
		{5, "", UrgencyUrgent},
		{4, "", UrgencyHigh},
		{3, "", UrgencyMedium},
		{2, "", UrgencyLow},
		{1, "", UrgencyMedium},
		{1, "urgent", UrgencyUrgent},
		{1, "High", UrgencyHigh},
		{3, "low", UrgencyLow},
		{4, "low", UrgencyHigh},
		{3, "medium", UrgencyMedium},
		{3, "whenever", UrgencyMedium},
	}

	for _, tt := range tests {
		got := ResolveUrgency(tt.severity, tt.priority)
		assert.Equal(t, tt.want, got, "severity=%d priority=%q", tt.severity, tt.priority)
		assert.True(t, got.Valid())
	}
}

func TestParseUrgency(t *testing.T) {
	u, ok := ParseUrgency(" HIGH ")
	assert.True(t, ok)
	assert.Equal(t, UrgencyHigh, u)

	_, ok = ParseUrgency("asap")
	assert.False(t, ok)

	assert.False(t, Urgency("Critical").Valid())
}

func TestScoreConfidence(t *testing.T) {
	tests := []struct {
		name    string
		matches int
		size    int
		details IssueDetails
		want    float64
	}{
		{"no matches no bonus", 0, 14, IssueDetails{}, 0.65},
		{"density only", 2, 14, IssueDetails{}, 0.65 + 2.0/14.0},
		{"density capped", 10, 14, IssueDetails{}, 0.90},
		{"primary symptom bonus", 0, 14, IssueDetails{Leak: true}, 0.70},
		{"emergency bonus wins over symptom", 0, 14, IssueDetails{Leak: true, Emergency: true}, 0.75},
		{"clamped at upper bound", 14, 14, IssueDetails{Emergency: true}, 0.95},
		{"empty lexicon", 3, 0, IssueDetails{}, 0.65},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ScoreConfidence(tt.matches, tt.size, tt.details)
			assert.InDelta(t, tt.want, got, 1e-9)
			assert.GreaterOrEqual(t, got, MinConfidence)
			assert.LessOrEqual(t, got, MaxConfidence)
		})
	}
}

func TestResolveContractorTypes(t *testing.T) {
	tests := []struct {
		name     string
		category Category
		text     string
		details  IssueDetails
		want     []string
	}{
		{
			name:     "primary only",
			category: Appliance,
			text:     "fridge is warm",
			want:     []string{"Appliance Repair"},
		},
		{
			name:     "secondary specialty from stem",
			category: Plumbing,
			text:     "water leak near electrical panel",
			want:     []string{"Plumbing", "Electrical"},
		},
		{
			name:     "secondary stems follow fixed order",
			category: General,
			text:     "appliance overheating, call a plumber",
			want:     []string{"General Maintenance", "Plumbing", "HVAC", "Appliance Repair"},
		},
		{
			name:     "emergency adds plumbing for water",
			category: Appliance,
			text:     "dishwasher flood emergency water everywhere",
			details:  IssueDetails{Emergency: true},
			want:     []string{"Appliance Repair", "Plumbing"},
		},
		{
			name:     "emergency expansion is deduplicated",
			category: Electrical,
			text:     "emergency water on floor near electric outlet",
			details:  IssueDetails{Emergency: true},
			want:     []string{"Electrical", "Plumbing"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveContractorTypes(tt.category, tt.text, tt.details))
		})
	}
}
