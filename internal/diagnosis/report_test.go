package diagnosis

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

var orderedHeaders = []string{
	"🔧 MAINTENANCE DIAGNOSIS REPORT",
	"📋 ISSUE IDENTIFICATION",
	"📊 SEVERITY ASSESSMENT",
	"🔍 ROOT CAUSE ANALYSIS",
	"🛠️ RECOMMENDED ACTION",
	"💰 COST & TIME ESTIMATE",
	"⚠️ SAFETY WARNINGS",
	"🔩 PARTS POTENTIALLY NEEDED",
	"🏠 DIY ASSESSMENT",
	"🗓️ PREVENTIVE MAINTENANCE",
	"📈 PREDICTIVE MAINTENANCE",
	"🌱 ENVIRONMENTAL IMPACT",
	"🛡️ WARRANTY CONSIDERATIONS",
	"🚨 URGENT PRIORITY ALERT",
}

func TestComposeReport_SectionOrder(t *testing.T) {
	a, confidence := assess(Request{
		Title:       "Burst pipe",
		Description: "emergency: pipe leak flooding the basement near the water heater",
		Category:    "Plumbing",
	})
	report := build(a, confidence).Diagnosis

	last := -1
	for _, h := range orderedHeaders {
		idx := strings.Index(report, h)
		if !assert.GreaterOrEqual(t, idx, 0, "missing section %q", h) {
			continue
		}
		assert.Greater(t, idx, last, "section %q out of order", h)
		last = idx
	}
}

func TestComposeReport_OmitsEmptySections(t *testing.T) {
	a, confidence := assess(Request{Title: "Door", Description: "door squeaks", Category: "General Maintenance"})
	report := build(a, confidence).Diagnosis

	for _, h := range []string{
		"🔍 ROOT CAUSE ANALYSIS",
		"⚠️ SAFETY WARNINGS",
		"🔩 PARTS POTENTIALLY NEEDED",
		"📈 PREDICTIVE MAINTENANCE",
		"🌱 ENVIRONMENTAL IMPACT",
		"🛡️ WARRANTY CONSIDERATIONS",
		"🚨 URGENT PRIORITY ALERT",
	} {
		assert.NotContains(t, report, h)
	}
	assert.Contains(t, report, "🔎 General Maintenance Issue Reported")
	assert.Contains(t, report, "Severity Level: MINIMAL (1/5)")
	assert.Contains(t, report, "🗓️ PREVENTIVE MAINTENANCE")
}

func TestIssueHeadline(t *testing.T) {
	tests := []struct {
		details IssueDetails
		want    string
	}{
		{IssueDetails{Emergency: true, Leak: true}, "EMERGENCY SITUATION DETECTED"},
		{IssueDetails{Leak: true, Clog: true}, "Water Leak Detected"},
		{IssueDetails{Leaking: true}, "Water Leak Detected"},
		{IssueDetails{Clog: true, NoWater: true}, "Drain Blockage Detected"},
		{IssueDetails{NoWater: true}, "Water Supply Issue Detected"},
		{IssueDetails{NoPower: true}, "Power Outage Detected"},
		{IssueDetails{NoCool: true}, "Temperature Control Issue Detected"},
		{IssueDetails{NotWorking: true}, "Equipment Malfunction Detected"},
		{IssueDetails{}, "General Maintenance Issue Reported"},
	}

	for _, tt := range tests {
		assert.Contains(t, issueHeadline(Assessment{Details: tt.details}), tt.want)
	}
}

func TestSeverityLabel(t *testing.T) {
	assert.Equal(t, "CRITICAL", SeverityLabel(5))
	assert.Equal(t, "HIGH", SeverityLabel(4))
	assert.Equal(t, "MODERATE", SeverityLabel(3))
	assert.Equal(t, "LOW", SeverityLabel(2))
	assert.Equal(t, "MINIMAL", SeverityLabel(1))
	assert.Equal(t, "UNKNOWN", SeverityLabel(9))
}
