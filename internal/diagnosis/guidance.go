package diagnosis

const UrgentBanner = "🚨 URGENT PRIORITY: This issue requires immediate attention. Do not delay repairs."

var categoryWarnings = map[Category][]rule{
	Plumbing: {
		{func(a Assessment) bool { return a.Details.Leak || a.Details.Overflow }, "Keep water away from outlets and appliances; standing water near electricity is a shock hazard"},
		{mentions("sewage"), "Avoid contact with sewage; wear gloves and ventilate the area"},
		{mentions("water heater"), "Do not adjust gas or high-voltage water heater components yourself"},
	},
	Electrical: {
		{func(Assessment) bool { return true }, "Never touch exposed wires or attempt electrical repairs without proper training"},
		{func(a Assessment) bool { return a.Details.Spark }, "Sparking is a fire risk: switch off the circuit at the breaker"},
		{func(a Assessment) bool { return a.Details.Shock }, "Anyone who received a shock should seek medical advice if they feel unwell"},
	},
	HVAC: {
		{func(Assessment) bool { return true }, "Switch off the system at the thermostat and breaker before opening any panels"},
		{mentions("furnace", "boiler"), "If you smell gas near the furnace or boiler, leave and call the gas company"},
		{func(a Assessment) bool { return a.Details.Loud }, "Turn off the unit if you hear grinding or smell burning"},
	},
	Appliance: {
		{func(Assessment) bool { return true }, "Unplug the appliance before inspecting or moving it"},
		{func(a Assessment) bool { return a.Details.Leaking }, "Do not stand in water while the appliance is connected to power"},
	},
}

// SafetyWarnings lists warnings in order: the urgent banner, gas, emergency, then category
// warnings.
func SafetyWarnings(a Assessment) []string {
	warnings := []string{}
	if a.Urgency == UrgencyUrgent {
		warnings = append(warnings, UrgentBanner)
	}
	if containsAny(a.Text, "gas") {
		warnings = append(warnings, "⚠️ Possible gas hazard: do not use open flames, light switches, or electrical devices")
	}
	if a.Details.Emergency {
		warnings = append(warnings, "⚠️ Emergency conditions detected: keep occupants away from the affected area")
	}
	for _, r := range categoryWarnings[a.Category] {
		if r.when(a) {
			warnings = append(warnings, r.text)
		}
	}
	return warnings
}

// ==========================
// DIY
// ==========================

const notRecommended = "NOT RECOMMENDED: "

// DIYRecommendation never recommends DIY for electrical work, emergencies or severity 4 and up.
func DIYRecommendation(a Assessment) string {
	switch {
	case a.Category == Electrical:
		return notRecommended + "Electrical work carries shock and fire risks and usually requires a licensed electrician."
	case a.Details.Emergency:
		return notRecommended + "Emergency conditions require an immediate professional response."
	case a.Severity >= 4:
		return notRecommended + "The severity of this issue calls for a qualified professional."
	}

	switch a.Category {
	case Plumbing:
		if a.Details.Clog {
			return "POSSIBLE: Minor clogs can often be cleared with a plunger or drain snake. Call a plumber if the clog returns."
		}
		if a.Details.Leak {
			return "POSSIBLE: Small faucet drips can be fixed by replacing the washer or cartridge once the water supply is shut off."
		}
		return "CAUTION: Simple fixture repairs are manageable for experienced homeowners. Call a plumber for anything behind walls."
	case HVAC:
		return "POSSIBLE: Replacing the air filter and checking thermostat settings are safe first steps. Leave refrigerant and gas components to a technician."
	case Appliance:
		return "POSSIBLE: Check power, reset the appliance and clean filters per the manual. Internal repairs may void the warranty."
	default:
		return "POSSIBLE: Minor repairs can be handled with basic tools. Contact maintenance if you are unsure."
	}
}

// ==========================
// Preventive, environmental, warranty, predictive
// ==========================

var preventiveTips = map[Category][]string{
	Plumbing: {
		"Inspect visible pipes and fixtures for leaks every 3 months",
		"Avoid pouring grease or food scraps down drains",
		"Flush the water heater annually to remove sediment",
		"Know where the main water shutoff valve is",
	},
	Electrical: {
		"Test GFCI outlets monthly",
		"Avoid overloading outlets and power strips",
		"Have the electrical panel inspected every 3-5 years",
		"Replace damaged cords and outlet covers promptly",
	},
	HVAC: {
		"Replace air filters every 1-3 months",
		"Schedule professional HVAC service twice a year",
		"Keep outdoor units clear of debris and vegetation",
		"Keep vents and returns unobstructed",
	},
	Appliance: {
		"Clean filters, coils and seals on the manufacturer's schedule",
		"Inspect water supply hoses annually",
		"Avoid overloading washers, dryers and dishwashers",
		"Keep manuals and model numbers on file",
	},
	General: {
		"Schedule a seasonal walkthrough of the property",
		"Address small repairs before they become larger problems",
		"Keep a maintenance log for recurring issues",
	},
}

// PreventiveMaintenance returns the category's standing maintenance tips.
func PreventiveMaintenance(a Assessment) []string {
	tips := preventiveTips[a.Category]
	out := make([]string, len(tips))
	copy(out, tips)
	return out
}

var environmentalNotes = map[Category][]rule{
	Plumbing: {
		{func(a Assessment) bool { return a.Details.Leak || a.Details.Overflow }, "A dripping fixture can waste over 3,000 gallons of water a year. Prompt repair conserves water and prevents mold growth."},
		{func(a Assessment) bool { return a.Details.Clog }, "Enzyme-based drain cleaners are gentler on pipes and waterways than chemical cleaners."},
	},
	Electrical: {
		{func(Assessment) bool { return true }, "Consider LED fixtures and smart switches to reduce energy use once repairs are complete."},
	},
	HVAC: {
		{func(Assessment) bool { return true }, "A well-maintained HVAC system uses 5-15% less energy. Dirty filters and coils raise utility bills."},
	},
	Appliance: {
		{func(Assessment) bool { return true }, "If the appliance is more than 10 years old, an ENERGY STAR replacement may cut its energy use significantly."},
	},
}

// EnvironmentalImpact returns an environmental note, or "" when none applies.
func EnvironmentalImpact(a Assessment) string {
	return firstMatch(environmentalNotes[a.Category], a)
}

var warrantyNotes = []rule{
	{func(a Assessment) bool { return a.Category == Appliance }, "Check whether the appliance is still under manufacturer warranty before scheduling third-party repairs. Unauthorized repairs may void coverage."},
	{func(a Assessment) bool { return a.Category == HVAC }, "Many HVAC systems carry 5-10 year parts warranties that require proof of annual maintenance."},
	{func(a Assessment) bool { return a.Category == Plumbing && containsAny(a.Text, "water heater") }, "Water heaters typically carry 6-12 year tank warranties. Have the model and serial number ready."},
	{func(a Assessment) bool { return a.Severity >= 4 }, "Document any damage with photos for insurance or home warranty claims."},
}

// WarrantyConsiderations returns a warranty note, or "" when none applies.
func WarrantyConsiderations(a Assessment) string {
	return firstMatch(warrantyNotes, a)
}

var predictiveNotes = map[Category][]rule{
	Plumbing: {
		{func(a Assessment) bool { return a.Details.Leak }, "Recurring leaks often point to aging pipes. Expect further failures if the plumbing is over 20 years old."},
		{func(a Assessment) bool { return a.Details.Clog }, "Repeated clogs may signal a developing main line blockage. Consider a camera inspection."},
	},
	Electrical: {
		{func(a Assessment) bool { return a.Details.Spark || a.Details.Shock }, "Arcing damage tends to spread. Have the whole circuit inspected for heat damage."},
		{func(a Assessment) bool { return a.Details.Flickering }, "Persistent flickering can precede a connection failure. Watch for warm outlets or switch plates."},
	},
	HVAC: {
		{func(a Assessment) bool { return a.Details.NoHeat || a.Details.NoCool }, "Systems older than 12-15 years are likely to need major component replacement soon."},
		{func(a Assessment) bool { return a.Details.Loud }, "Unusual noises usually precede motor or bearing failure within months."},
	},
	Appliance: {
		{func(a Assessment) bool { return a.Details.NotWorking || a.Details.MakingNoise }, "Appliances that fail after 8 or more years of service are likely to fail again. Budget for a replacement."},
	},
}

// PredictiveMaintenance returns a forward-looking note, or "" when none applies.
func PredictiveMaintenance(a Assessment) string {
	return firstMatch(predictiveNotes[a.Category], a)
}
