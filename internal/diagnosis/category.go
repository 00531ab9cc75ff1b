// Package diagnosis implements the rule-based maintenance ticket diagnosis engine.
//
// A diagnosis is a single pass over the ticket text: detect the category, extract symptom
// flags, assess severity, resolve urgency, score confidence, run the advisors and compose the
// report. Every stage is a pure function of its inputs so results are reproducible, apart
// from the similar-issues estimate which is delegated to a SimilarIssuesEstimator.
package diagnosis

import "strings"

// Category is the domain an issue belongs to. The declaration order is also the tie-break
// order used by DetectCategory.
type Category int

const (
	Plumbing Category = iota
	Electrical
	HVAC
	Appliance
	General
)

// scoredCategories lists the categories that own a lexicon and take part in detection,
// in tie-break order.
var scoredCategories = []Category{Plumbing, Electrical, HVAC, Appliance}

func (c Category) String() string {
	switch c {
	case Plumbing:
		return "Plumbing"
	case Electrical:
		return "Electrical"
	case HVAC:
		return "HVAC"
	case Appliance:
		return "Appliance"
	default:
		return "General Maintenance"
	}
}

// ContractorType is the primary specialty recommended for the category.
func (c Category) ContractorType() string {
	switch c {
	case Plumbing:
		return "Plumbing"
	case Electrical:
		return "Electrical"
	case HVAC:
		return "HVAC"
	case Appliance:
		return "Appliance Repair"
	default:
		return "General Maintenance"
	}
}

// MarshalText encodes the category by its display name.
func (c Category) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText accepts any spelling ParseCategory understands.
func (c *Category) UnmarshalText(text []byte) error {
	*c = ParseCategory(string(text))
	return nil
}

// ParseCategory maps a user-selected category to a Category. Unknown values map to General.
func ParseCategory(s string) Category {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "plumbing":
		return Plumbing
	case "electrical":
		return Electrical
	case "hvac":
		return HVAC
	case "appliance", "appliance repair":
		return Appliance
	default:
		return General
	}
}
