package diagnosis

import (
	"math"
	"strings"
)

// Urgency is the caller-facing response tier.
type Urgency string

const (
	UrgencyUrgent Urgency = "Urgent"
	UrgencyHigh   Urgency = "High"
	UrgencyMedium Urgency = "Medium"
	UrgencyLow    Urgency = "Low"
)

// Valid reports whether u is one of the four tiers.
func (u Urgency) Valid() bool {
	switch u {
	case UrgencyUrgent, UrgencyHigh, UrgencyMedium, UrgencyLow:
		return true
	}
	return false
}

// ParseUrgency maps a priority or urgency label to a tier, case-insensitively.
func ParseUrgency(s string) (Urgency, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "urgent":
		return UrgencyUrgent, true
	case "high":
		return UrgencyHigh, true
	case "medium":
		return UrgencyMedium, true
	case "low":
		return UrgencyLow, true
	}
	return "", false
}

const (
	MinSeverity = 1
	MaxSeverity = 5

	MinConfidence = 0.50
	MaxConfidence = 0.95

	baseConfidence      = 0.65
	maxMatchBonus       = 0.25
	emergencyBonus      = 0.10
	primarySymptomBonus = 0.05
)

// AssessSeverity applies the severity ladder; the first matching rung wins.
func AssessSeverity(text, priority string, details IssueDetails) int {
	p := strings.ToLower(strings.TrimSpace(priority))
	switch {
	case p == "urgent" || details.Emergency:
		return 5
	case containsAny(text, "no water", "no power", "no heat", "overflow", "leaking"):
		return 4
	case containsAny(text, "not working", "broken", "damaged"):
		return 3
	case containsAny(text, "slow", "minor", "small"):
		return 2
	default:
		return 1
	}
}

// ResolveUrgency derives the tier from an explicit priority or the severity. Severity 1 means
// no severity rule fired and resolves to Medium, like an unprioritised ticket.
func ResolveUrgency(severity int, priority string) Urgency {
	p := strings.ToLower(strings.TrimSpace(priority))
	switch {
	case p == "urgent" || severity >= 5:
		return UrgencyUrgent
	case p == "high" || severity >= 4:
		return UrgencyHigh
	case p == "low" || severity == 2:
		return UrgencyLow
	default:
		return UrgencyMedium
	}
}

// ScoreConfidence combines lexicon match density with a bonus for concrete symptoms.
func ScoreConfidence(matchCount, lexiconSize int, details IssueDetails) float64 {
	density := 0.0
	if lexiconSize > 0 {
		density = math.Min(float64(matchCount)/float64(lexiconSize), maxMatchBonus)
	}

	bonus := 0.0
	switch {
	case details.Emergency:
		bonus = emergencyBonus
	case details.HasPrimarySymptom():
		bonus = primarySymptomBonus
	}

	return clamp(baseConfidence+density+bonus, MinConfidence, MaxConfidence)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
