package diagnosis

var (
	plumbingKeywords = []string{
		"leak", "drip", "pipe", "faucet", "toilet", "drain", "clog",
		"water", "sink", "shower", "flood", "sewage", "plumb", "water heater",
	}

	electricalKeywords = []string{
		"electric", "outlet", "power", "light", "switch", "breaker", "wire",
		"wiring", "spark", "shock", "circuit", "voltage", "fuse", "flicker",
	}

	hvacKeywords = []string{
		"heat", "furnace", "cool", "air conditioning", "a/c", "hvac", "thermostat",
		"vent", "temperature", "airflow", "air flow", "fan", "duct", "boiler",
	}

	applianceKeywords = []string{
		"refrigerator", "fridge", "dishwasher", "washer", "dryer", "oven",
		"stove", "microwave", "freezer", "appliance", "ice maker", "garbage disposal",
	}

	genericKeywords = []string{
		"broken", "repair", "fix", "damage", "maintenance", "replace", "issue", "problem",
	}

	emergencyKeywords = []string{
		"emergency", "urgent", "flood", "fire", "gas leak", "smoke", "dangerous",
	}
)

// Lexicon returns the keyword list scored for the category. General uses the generic list.
func (c Category) Lexicon() []string {
	switch c {
	case Plumbing:
		return plumbingKeywords
	case Electrical:
		return electricalKeywords
	case HVAC:
		return hvacKeywords
	case Appliance:
		return applianceKeywords
	default:
		return genericKeywords
	}
}
