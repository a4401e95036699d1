package keywords

import (
	"regexp"
	"strings"
)

// cleanupPatterns run in order against the raw title before tokenizing.
// Broader temporal patterns come first so that "before January 2026" is
// removed whole instead of leaving a dangling year behind.
var cleanupPatterns = []*regexp.Regexp{
	// "before/after/by/until/during <ProperNoun> <Year>"
	regexp.MustCompile(`(?i)\b(before|after|by|until|during)\s+[A-Z][a-z]+\s+\d{4}\b`),
	// "before/after/by/until/during <Year>"
	regexp.MustCompile(`(?i)\b(before|after|by|until|during)\s+\d{4}\b`),
	// "before/after/by/until/during <ProperNoun>"
	regexp.MustCompile(`(?i)\b(before|after|by|until|during)\s+[A-Z][a-z]+\b`),
	// lifetime references
	regexp.MustCompile(`(?i)\bin\s+(his|her|their|my|our)\s+lifetimes?\b`),
	// leading interrogatives and modal/auxiliary openers, possibly stacked
	regexp.MustCompile(`(?i)^\s*(will|would|can|could|shall|should|may|might|must|do|does|did|is|are|was|were|who|what|when|where|why|how|which)\b\s*`),
	// articles
	regexp.MustCompile(`(?i)\b(the|a|an)\b`),
}

// maxKeywords bounds the stored keyword set; long titles otherwise
// produce arbitrarily many tokens. Search strategies use at most the
// top four.
const maxKeywords = 8

var punctTrim = regexp.MustCompile(`^[^\p{L}\p{N}]+|[^\p{L}\p{N}]+$`)

var digitsOnly = regexp.MustCompile(`^\d+$`)

// stopTokens are closed classes dropped after tokenization: conjunctions,
// copulas, modals and demonstratives.
var stopTokens = map[string]struct{}{
	"and": {}, "but": {}, "nor": {}, "yet": {}, "for": {},
	"are": {}, "was": {}, "were": {}, "been": {}, "being": {},
	"will": {}, "would": {}, "can": {}, "could": {},
	"shall": {}, "should": {}, "may": {}, "might": {}, "must": {},
	"this": {}, "that": {}, "these": {}, "those": {},
	"the": {}, "not": {}, "than": {}, "with": {},
}

// Extract derives a bounded set of salient search terms from an event
// title. The result preserves first-seen order, contains no duplicates,
// holds at most maxKeywords entries and may be empty when the title is
// entirely stop words. It is never nil: the empty set must still render
// as an empty array, not SQL NULL, when stored.
func Extract(title string) []string {
	out := make([]string, 0, maxKeywords)

	cleaned := CleanTitle(title)
	if cleaned == "" {
		return out
	}

	seen := make(map[string]struct{})
	for _, field := range strings.Fields(cleaned) {
		if len(out) == maxKeywords {
			break
		}
		token := strings.ToLower(punctTrim.ReplaceAllString(field, ""))
		if len(token) < 3 {
			continue
		}
		if digitsOnly.MatchString(token) {
			continue
		}
		if _, stop := stopTokens[token]; stop {
			continue
		}
		if _, dup := seen[token]; dup {
			continue
		}
		seen[token] = struct{}{}
		out = append(out, token)
	}

	return out
}

// CleanTitle applies the ordered substitution pass and collapses
// whitespace. The leading-opener pattern runs repeatedly so stacked
// openers ("Will the...") are fully consumed.
func CleanTitle(title string) string {
	cleaned := strings.TrimSpace(title)
	for _, pattern := range cleanupPatterns {
		for {
			next := pattern.ReplaceAllString(cleaned, " ")
			if next == cleaned {
				break
			}
			cleaned = next
		}
	}
	return strings.Join(strings.Fields(cleaned), " ")
}

// SearchQueries composes up to three feed search strategies from an event
// title, its category and its extracted keywords. Duplicate strategies
// collapse; the result may be empty.
func SearchQueries(title, category string, kws []string) []string {
	var candidates []string

	if cleaned := strings.TrimSpace(CleanTitle(title)); cleaned != "" {
		candidates = append(candidates, cleaned)
	}

	if len(kws) > 0 {
		top := kws
		if len(top) > 4 {
			top = top[:4]
		}
		candidates = append(candidates, strings.Join(top, " "))
	}

	category = strings.ToLower(strings.TrimSpace(category))
	if category != "" && len(kws) >= 2 {
		candidates = append(candidates, strings.Join(kws[:2], " ")+" "+category)
	}

	seen := make(map[string]struct{}, len(candidates))
	queries := make([]string, 0, len(candidates))
	for _, q := range candidates {
		key := strings.ToLower(q)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		queries = append(queries, q)
	}

	return queries
}
