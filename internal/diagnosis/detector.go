package diagnosis

import "strings"

// overrideThreshold is the keyword count a category must strictly exceed to replace the
// user's selection.
const overrideThreshold = 2

// normalize lowercases and joins title and description into the text every stage scans.
func normalize(title, description string) string {
	return strings.TrimSpace(strings.ToLower(title + " " + description))
}

// countMatches counts how many keywords occur in text. Each keyword counts once.
func countMatches(text string, keywords []string) int {
	n := 0
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			n++
		}
	}
	return n
}

func containsAny(text string, needles ...string) bool {
	for _, n := range needles {
		if strings.Contains(text, n) {
			return true
		}
	}
	return false
}

// DetectCategory scores text against each category lexicon in declaration order and keeps
// the first category holding the maximum. That category replaces selected only when its
// score exceeds overrideThreshold. The returned count is the number of hits of the resolved
// category's lexicon.
func DetectCategory(text string, selected Category) (Category, int) {
	best, bestScore := selected, 0
	for _, c := range scoredCategories {
		if score := countMatches(text, c.Lexicon()); score > bestScore {
			best, bestScore = c, score
		}
	}

	resolved := selected
	if bestScore > overrideThreshold {
		resolved = best
	}
	return resolved, countMatches(text, resolved.Lexicon())
}
