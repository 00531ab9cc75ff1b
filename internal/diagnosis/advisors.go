package diagnosis

// Assessment is the analysed form of a request that every advisor reads.
type Assessment struct {
	Category Category
	Details  IssueDetails
	Severity int
	Urgency  Urgency
	Text     string
}

// rule pairs a predicate over an assessment with the text it yields.
type rule struct {
	when func(a Assessment) bool
	text string
}

func mentions(needles ...string) func(a Assessment) bool {
	return func(a Assessment) bool { return containsAny(a.Text, needles...) }
}

func firstMatch(rules []rule, a Assessment) string {
	for _, r := range rules {
		if r.when(a) {
			return r.text
		}
	}
	return ""
}

// ==========================
// Root cause
// ==========================

var rootCauses = map[Category][]rule{
	Plumbing: {
		{func(a Assessment) bool { return a.Details.Leak && containsAny(a.Text, "pipe") }, "Pipe joint failure or corrosion causing water escape"},
		{func(a Assessment) bool { return a.Details.Leak && containsAny(a.Text, "faucet") }, "Worn faucet washer, O-ring, or cartridge"},
		{func(a Assessment) bool { return a.Details.Leak && containsAny(a.Text, "toilet") }, "Faulty flapper, fill valve, or wax ring seal"},
		{func(a Assessment) bool { return a.Details.Leak }, "Deteriorated seal, loose connection, or cracked fitting"},
		{func(a Assessment) bool { return a.Details.Clog && containsAny(a.Text, "toilet") }, "Excess paper or a foreign object lodged in the toilet trap"},
		{func(a Assessment) bool { return a.Details.Clog }, "Buildup of grease, hair, or debris restricting the drain line"},
		{func(a Assessment) bool { return a.Details.NoWater && containsAny(a.Text, "hot") }, "Water heater failure: pilot light, heating element, or thermostat fault"},
		{func(a Assessment) bool { return a.Details.NoWater }, "Closed supply valve, main line break, or pressure regulator failure"},
		{func(a Assessment) bool { return a.Details.Overflow }, "Blocked drain line or failed fill valve causing water to back up"},
	},
	Electrical: {
		{func(a Assessment) bool { return a.Details.Spark }, "Loose or damaged wiring connection creating an arc fault"},
		{func(a Assessment) bool { return a.Details.Shock }, "Ground fault or damaged insulation exposing live conductors"},
		{func(a Assessment) bool { return a.Details.NoPower && containsAny(a.Text, "breaker") }, "Tripped or failed circuit breaker from overload or short circuit"},
		{func(a Assessment) bool { return a.Details.NoPower }, "Tripped breaker, blown fuse, or failed outlet or GFCI"},
		{func(a Assessment) bool { return a.Details.Flickering }, "Loose connection at the fixture, switch, or panel, or voltage fluctuation"},
	},
	HVAC: {
		{func(a Assessment) bool { return a.Details.NoHeat && containsAny(a.Text, "furnace") }, "Furnace ignition, flame sensor, or gas valve failure"},
		{func(a Assessment) bool { return a.Details.NoHeat }, "Thermostat malfunction, tripped limit switch, or failed heating element"},
		{func(a Assessment) bool { return a.Details.NoCool }, "Low refrigerant, failed capacitor, or dirty condenser coil"},
		{func(a Assessment) bool { return a.Details.NoAir }, "Clogged air filter, failed blower motor, or blocked ductwork"},
		{func(a Assessment) bool { return a.Details.Loud }, "Worn blower bearings, loose panels, or debris in the fan assembly"},
	},
	Appliance: {
		{func(a Assessment) bool { return a.Details.Leaking && containsAny(a.Text, "dishwasher") }, "Failed door gasket, pump seal, or inlet hose"},
		{func(a Assessment) bool { return a.Details.Leaking && containsAny(a.Text, "refrigerator", "fridge") }, "Clogged defrost drain or damaged water supply line"},
		{func(a Assessment) bool { return a.Details.Leaking }, "Worn hose, seal, or internal water valve"},
		{func(a Assessment) bool { return a.Details.NotWorking }, "Control board fault, failed motor, or power supply issue"},
		{func(a Assessment) bool { return a.Details.MakingNoise }, "Worn bearings, loose components, or a foreign object in moving parts"},
	},
	General: {
		{func(a Assessment) bool { return a.Details.NotWorking }, "Component wear or failure that needs on-site inspection"},
	},
}

// RootCause returns the first canned cause that applies, or "" when none does.
func RootCause(a Assessment) string {
	return firstMatch(rootCauses[a.Category], a)
}

// ==========================
// Actions
// ==========================

var flagActions = map[Category][]struct {
	when    func(a Assessment) bool
	actions []string
}{
	Plumbing: {
		{func(a Assessment) bool { return a.Details.Leak }, []string{
			"Place a bucket or towels under the leak to contain water",
			"Close the shutoff valve feeding the fixture",
		}},
		{func(a Assessment) bool { return a.Details.Clog }, []string{
			"Stop using the affected drain until it is cleared",
			"Avoid chemical drain cleaners, which can damage pipes",
		}},
		{func(a Assessment) bool { return a.Details.NoWater }, []string{
			"Check whether other fixtures or neighbors are also without water",
			"Verify the main shutoff valve is fully open",
		}},
		{func(a Assessment) bool { return a.Details.Overflow }, []string{
			"Turn off the fixture's water supply to stop the overflow",
			"Remove standing water to prevent floor damage",
		}},
	},
	Electrical: {
		{func(a Assessment) bool { return a.Details.Spark }, []string{"Stop using the sparking outlet or switch"}},
		{func(a Assessment) bool { return a.Details.Shock }, []string{"Stop using the affected device or outlet and keep others away from it"}},
		{func(a Assessment) bool { return a.Details.NoPower }, []string{"Check the breaker panel for tripped breakers"}},
		{func(a Assessment) bool { return a.Details.Flickering }, []string{"Note which fixtures flicker and when it happens"}},
	},
	HVAC: {
		{func(a Assessment) bool { return a.Details.NoHeat }, []string{"Check that the thermostat is set to heat and above room temperature"}},
		{func(a Assessment) bool { return a.Details.NoCool }, []string{"Check that the thermostat is set to cool and the outdoor unit is running"}},
		{func(a Assessment) bool { return a.Details.NoAir }, []string{"Inspect and replace the air filter if it is dirty"}},
		{func(a Assessment) bool { return a.Details.Loud }, []string{"Turn the system off if the noise is grinding or banging"}},
	},
	Appliance: {
		{func(a Assessment) bool { return a.Details.NotWorking }, []string{"Confirm the appliance is plugged in and its breaker has not tripped"}},
		{func(a Assessment) bool { return a.Details.Leaking }, []string{"Unplug the appliance and shut off its water supply"}},
		{func(a Assessment) bool { return a.Details.MakingNoise }, []string{"Stop using the appliance until the source of the noise is identified"}},
	},
	General: {
		{func(a Assessment) bool { return a.Details.NotWorking }, []string{"Document the issue with photos for the technician"}},
	},
}

var fallbackActions = map[Category]string{
	Plumbing:   "Schedule a licensed plumber to inspect and repair the issue",
	Electrical: "Schedule a licensed electrician to assess the wiring and components",
	HVAC:       "Schedule an HVAC technician to diagnose the system",
	Appliance:  "Schedule an appliance repair technician to service the unit",
	General:    "Schedule a general maintenance technician to inspect the issue",
}

var followUpActions = map[Urgency]string{
	UrgencyUrgent: "Dispatch a contractor immediately (within 2 hours)",
	UrgencyHigh:   "Schedule a contractor within 24 hours",
	UrgencyMedium: "Schedule a contractor within 2-3 days",
	UrgencyLow:    "Schedule a contractor within 1 week",
}

// PlanActions lists emergency actions, then symptom actions, then the category fallback and
// finally the follow-up for the urgency tier.
func PlanActions(a Assessment) []string {
	var actions []string

	if a.Details.Emergency {
		actions = append(actions, "Ensure everyone is safe and keep people away from the affected area")
		if containsAny(a.Text, "gas") {
			actions = append(actions, "Leave the building and call the gas company emergency line from outside")
		}
		switch a.Category {
		case Plumbing:
			actions = append(actions, "Shut off the main water supply valve immediately")
		case Electrical:
			actions = append(actions, "Switch off power at the main breaker panel if it is safe to reach")
		}
	}

	for _, fa := range flagActions[a.Category] {
		if fa.when(a) {
			actions = append(actions, fa.actions...)
		}
	}

	actions = append(actions, fallbackActions[a.Category])
	if f, ok := followUpActions[a.Urgency]; ok {
		actions = append(actions, f)
	}
	return actions
}

// ==========================
// Cost and time
// ==========================

type costTime struct{ cost, time string }

// costTable holds low, medium, high and emergency estimates per category.
var costTable = map[Category][4]costTime{
	Plumbing: {
		{"$100 - $250", "1-2 hours"},
		{"$150 - $400", "2-3 hours"},
		{"$300 - $800", "3-5 hours"},
		{"$400 - $1,200", "2-6 hours (emergency response)"},
	},
	Electrical: {
		{"$100 - $300", "1-2 hours"},
		{"$200 - $500", "2-4 hours"},
		{"$400 - $1,000", "4-6 hours"},
		{"$500 - $1,500", "2-6 hours (emergency response)"},
	},
	HVAC: {
		{"$100 - $300", "1-2 hours"},
		{"$200 - $600", "2-4 hours"},
		{"$500 - $1,500", "4-8 hours"},
		{"$600 - $2,000", "3-8 hours (emergency response)"},
	},
	Appliance: {
		{"$80 - $200", "1 hour"},
		{"$150 - $350", "1-2 hours"},
		{"$250 - $600", "2-3 hours"},
		{"$300 - $800", "2-4 hours (emergency response)"},
	},
	General: {
		{"$75 - $200", "1-2 hours"},
		{"$150 - $400", "2-4 hours"},
		{"$300 - $800", "4-8 hours"},
		{"$400 - $1,000", "2-6 hours (emergency response)"},
	},
}

// EstimateCostAndTime looks up the category estimate for the severity tier. Emergencies use
// the emergency column regardless of severity.
func EstimateCostAndTime(a Assessment) (cost, duration string) {
	row := costTable[a.Category]
	tier := 0
	switch {
	case a.Details.Emergency:
		tier = 3
	case a.Severity >= 4:
		tier = 2
	case a.Severity == 3:
		tier = 1
	}
	return row[tier].cost, row[tier].time
}

// ==========================
// Parts
// ==========================

var partsTable = map[Category][]struct {
	when  func(a Assessment) bool
	parts []string
}{
	Plumbing: {
		{func(a Assessment) bool { return a.Details.Leak }, []string{"Pipe fittings", "Washers and O-rings", "Plumber's tape"}},
		{func(a Assessment) bool { return a.Details.Clog }, []string{"Drain snake", "P-trap"}},
		{func(a Assessment) bool { return a.Details.NoWater }, []string{"Pressure regulator", "Shutoff valve"}},
		{func(a Assessment) bool { return a.Details.Overflow }, []string{"Fill valve", "Flapper"}},
		{mentions("water heater"), []string{"Heating element", "Thermostat"}},
	},
	Electrical: {
		{func(a Assessment) bool { return a.Details.Spark }, []string{"Outlet or switch replacement", "Wire connectors"}},
		{func(a Assessment) bool { return a.Details.Shock }, []string{"GFCI outlet", "Wire connectors"}},
		{func(a Assessment) bool { return a.Details.NoPower }, []string{"Circuit breaker", "Fuses"}},
		{func(a Assessment) bool { return a.Details.Flickering }, []string{"Light switch", "Wire connectors"}},
	},
	HVAC: {
		{func(a Assessment) bool { return a.Details.NoHeat }, []string{"Thermostat", "Igniter", "Flame sensor"}},
		{func(a Assessment) bool { return a.Details.NoCool }, []string{"Capacitor", "Refrigerant", "Contactor"}},
		{func(a Assessment) bool { return a.Details.NoAir }, []string{"Air filter", "Blower motor"}},
		{func(a Assessment) bool { return a.Details.Loud }, []string{"Fan belt", "Motor bearings"}},
	},
	Appliance: {
		{func(a Assessment) bool { return a.Details.NotWorking }, []string{"Control board", "Power cord", "Motor"}},
		{func(a Assessment) bool { return a.Details.Leaking }, []string{"Door gasket", "Water inlet hose"}},
		{func(a Assessment) bool { return a.Details.MakingNoise }, []string{"Bearings", "Drive belt"}},
	},
	General: {
		{func(a Assessment) bool { return a.Details.NotWorking }, []string{"Replacement hardware"}},
	},
}

// PartsNeeded lists the parts suggested by the detected symptoms.
func PartsNeeded(a Assessment) []string {
	parts := []string{}
	for _, p := range partsTable[a.Category] {
		if p.when(a) {
			parts = append(parts, p.parts...)
		}
	}
	return dedupe(parts)
}
