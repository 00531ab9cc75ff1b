package diagnosis

var secondaryContractors = []struct {
	category Category
	stems    []string
}{
	{Plumbing, []string{"plumb"}},
	{Electrical, []string{"electr"}},
	{HVAC, []string{"hvac", "heat", "cool"}},
	{Appliance, []string{"appliance"}},
}

// ResolveContractorTypes returns the primary contractor type for the category followed by
// any cross-domain specialties mentioned in the text, without duplicates.
func ResolveContractorTypes(category Category, text string, details IssueDetails) []string {
	types := []string{category.ContractorType()}

	for _, s := range secondaryContractors {
		if s.category != category && containsAny(text, s.stems...) {
			types = append(types, s.category.ContractorType())
		}
	}

	if details.Emergency && len(types) == 1 {
		if containsAny(text, "water") {
			types = append(types, Plumbing.ContractorType())
		}
		if containsAny(text, "electr") {
			types = append(types, Electrical.ContractorType())
		}
	}

	return dedupe(types)
}

// dedupe removes repeated entries, keeping the first occurrence of each.
func dedupe(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, it := range items {
		if _, ok := seen[it]; ok {
			continue
		}
		seen[it] = struct{}{}
		out = append(out, it)
	}
	return out
}
