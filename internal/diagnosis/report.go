package diagnosis

import (
	"fmt"
	"strings"
)

const reportRule = "━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━"

var severityLabels = map[int]string{
	5: "CRITICAL",
	4: "HIGH",
	3: "MODERATE",
	2: "LOW",
	1: "MINIMAL",
}

// SeverityLabel names a severity level for display.
func SeverityLabel(severity int) string {
	if label, ok := severityLabels[severity]; ok {
		return label
	}
	return "UNKNOWN"
}

// issueHeadline picks the identification line; the first matching branch wins.
func issueHeadline(a Assessment) string {
	d := a.Details
	switch {
	case d.Emergency:
		return "🚨 EMERGENCY SITUATION DETECTED"
	case d.Leak || d.Leaking:
		return "💧 Water Leak Detected"
	case d.Clog:
		return "🚿 Drain Blockage Detected"
	case d.NoWater:
		return "🚱 Water Supply Issue Detected"
	case d.NoPower:
		return "⚡ Power Outage Detected"
	case d.NoHeat || d.NoCool:
		return "🌡️ Temperature Control Issue Detected"
	case d.NotWorking:
		return "🔌 Equipment Malfunction Detected"
	default:
		return "🔎 General Maintenance Issue Reported"
	}
}

func actionLead(u Urgency) string {
	switch u {
	case UrgencyUrgent:
		return "Immediate professional response required."
	case UrgencyHigh:
		return "Prompt professional attention recommended."
	case UrgencyLow:
		return "Schedule a repair at your convenience."
	default:
		return "Schedule a professional visit in the coming days."
	}
}

// ComposeReport renders the human-readable report. Sections with no content are left out.
func ComposeReport(a Assessment, r Result) string {
	var b strings.Builder

	section := func(title string) {
		b.WriteString("\n")
		b.WriteString(title)
		b.WriteString("\n")
	}
	bullets := func(items []string) {
		for _, it := range items {
			b.WriteString("• ")
			b.WriteString(it)
			b.WriteString("\n")
		}
	}

	b.WriteString("🔧 MAINTENANCE DIAGNOSIS REPORT\n")
	b.WriteString(reportRule)
	b.WriteString("\n")

	section("📋 ISSUE IDENTIFICATION")
	b.WriteString(issueHeadline(a))
	b.WriteString("\n")
	fmt.Fprintf(&b, "Category: %s\n", a.Category)
	fmt.Fprintf(&b, "Location: %s\n", a.Details.Location)

	section("📊 SEVERITY ASSESSMENT")
	fmt.Fprintf(&b, "Severity Level: %s (%d/%d)\n", SeverityLabel(a.Severity), a.Severity, MaxSeverity)
	fmt.Fprintf(&b, "Urgency: %s\n", a.Urgency)
	fmt.Fprintf(&b, "Confidence: %.0f%%\n", r.Confidence*100)

	if r.RootCauseAnalysis != "" {
		section("🔍 ROOT CAUSE ANALYSIS")
		b.WriteString(r.RootCauseAnalysis)
		b.WriteString("\n")
	}

	section("🛠️ RECOMMENDED ACTION")
	b.WriteString(actionLead(a.Urgency))
	b.WriteString("\n")
	if len(r.RecommendedContractorTypes) > 0 {
		fmt.Fprintf(&b, "Contractor: %s\n", strings.Join(r.RecommendedContractorTypes, ", "))
	}
	bullets(r.SuggestedActions)

	if r.EstimatedCost != "" || r.EstimatedTime != "" {
		section("💰 COST & TIME ESTIMATE")
		if r.EstimatedCost != "" {
			fmt.Fprintf(&b, "Estimated Cost: %s\n", r.EstimatedCost)
		}
		if r.EstimatedTime != "" {
			fmt.Fprintf(&b, "Estimated Time: %s\n", r.EstimatedTime)
		}
	}

	if len(r.SafetyWarnings) > 0 {
		section("⚠️ SAFETY WARNINGS")
		bullets(r.SafetyWarnings)
	}

	if len(r.PartsNeeded) > 0 {
		section("🔩 PARTS POTENTIALLY NEEDED")
		bullets(r.PartsNeeded)
	}

	if r.DIYRecommendation != "" {
		section("🏠 DIY ASSESSMENT")
		b.WriteString(r.DIYRecommendation)
		b.WriteString("\n")
	}

	if len(r.PreventiveMaintenance) > 0 {
		section("🗓️ PREVENTIVE MAINTENANCE")
		bullets(r.PreventiveMaintenance)
	}

	if r.PredictiveMaintenance != "" {
		section("📈 PREDICTIVE MAINTENANCE")
		b.WriteString(r.PredictiveMaintenance)
		b.WriteString("\n")
	}

	if r.EnvironmentalImpact != "" {
		section("🌱 ENVIRONMENTAL IMPACT")
		b.WriteString(r.EnvironmentalImpact)
		b.WriteString("\n")
	}

	if r.WarrantyConsiderations != "" {
		section("🛡️ WARRANTY CONSIDERATIONS")
		b.WriteString(r.WarrantyConsiderations)
		b.WriteString("\n")
	}

	if a.Urgency == UrgencyUrgent {
		b.WriteString("\n")
		b.WriteString(reportRule)
		b.WriteString("\n🚨 URGENT PRIORITY ALERT\n")
		b.WriteString("This issue has been flagged for immediate dispatch. A contractor should be on site as soon as possible.\n")
	}

	return b.String()
}
