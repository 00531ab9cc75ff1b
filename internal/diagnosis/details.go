package diagnosis

const unknownLocation = "Unknown location"

// IssueDetails holds the symptom flags extracted from a ticket. Only the flags belonging to
// the resolved category are ever set.
type IssueDetails struct {
	Leak     bool `json:"leak,omitempty"`
	Clog     bool `json:"clog,omitempty"`
	NoWater  bool `json:"noWater,omitempty"`
	Overflow bool `json:"overflow,omitempty"`

	NoPower    bool `json:"noPower,omitempty"`
	Flickering bool `json:"flickering,omitempty"`
	Spark      bool `json:"spark,omitempty"`
	Shock      bool `json:"shock,omitempty"`

	NoHeat bool `json:"noHeat,omitempty"`
	NoCool bool `json:"noCool,omitempty"`
	NoAir  bool `json:"noAir,omitempty"`
	Loud   bool `json:"loud,omitempty"`

	NotWorking  bool `json:"notWorking,omitempty"`
	Leaking     bool `json:"leaking,omitempty"`
	MakingNoise bool `json:"makingNoise,omitempty"`

	Emergency bool   `json:"emergency"`
	Location  string `json:"location"`
}

// HasPrimarySymptom reports whether one of the flags that raise confidence is set.
func (d IssueDetails) HasPrimarySymptom() bool {
	return d.Leak || d.Clog || d.NoPower || d.NoHeat || d.NotWorking
}

var locations = []struct {
	keyword, label string
}{
	{"bathroom", "Bathroom"},
	{"kitchen", "Kitchen"},
	{"basement", "Basement"},
	{"toilet", "Bathroom"},
}

// ExtractDetails sets the symptom flags for the category, the location and the emergency flag.
func ExtractDetails(category Category, text string) IssueDetails {
	d := IssueDetails{
		Location:  detectLocation(text),
		Emergency: containsAny(text, emergencyKeywords...),
	}

	switch category {
	case Plumbing:
		d.Leak = containsAny(text, "leak", "drip", "water coming")
		d.Clog = containsAny(text, "clog", "backup", "backed up", "won't drain", "slow drain")
		d.NoWater = containsAny(text, "no water", "no hot water", "low water pressure")
		d.Overflow = containsAny(text, "overflow", "flood")
	case Electrical:
		d.NoPower = containsAny(text, "no power", "power out", "outage", "dead outlet")
		d.Flickering = containsAny(text, "flicker", "dimming")
		d.Spark = containsAny(text, "spark", "arcing", "burning smell")
		d.Shock = containsAny(text, "shock", "tingle")
	case HVAC:
		d.NoHeat = containsAny(text, "no heat", "not heating", "won't heat")
		// Any negation anywhere in the text counts once "air conditioning" is mentioned.
		// Known to misfire on phrasing like "not sure, air conditioning is fine".
		d.NoCool = containsAny(text, "no cool", "not cooling") ||
			(containsAny(text, "air conditioning") && containsAny(text, "not", "broken"))
		d.NoAir = containsAny(text, "no air", "no airflow", "not blowing")
		d.Loud = containsAny(text, "loud", "noise", "noisy", "banging", "rattling")
	case Appliance:
		d.NotWorking = containsAny(text, "not working", "broken", "won't start", "stopped working", "dead")
		d.Leaking = containsAny(text, "leak")
		d.MakingNoise = containsAny(text, "noise", "noisy", "loud", "grinding", "buzzing")
	default:
		d.NotWorking = containsAny(text, "not working", "broken")
	}
	return d
}

func detectLocation(text string) string {
	for _, l := range locations {
		if containsAny(text, l.keyword) {
			return l.label
		}
	}
	return unknownLocation
}
