package memory

import (
	"regexp"
	"strings"
)

// extractionRule maps one fact-bearing pattern to a record shape. The
// first capture group becomes the value.
type extractionRule struct {
	pattern  *regexp.Regexp
	category Category
	key      string
}

// RuleExtractor is the default FactExtractor: an ordered list of pattern
// rules applied to the user message. Deliberately simple; swap it out via
// the FactExtractor interface when a model-driven extractor lands.
type RuleExtractor struct {
	rules []extractionRule
}

// NewRuleExtractor builds the default rule set.
func NewRuleExtractor() *RuleExtractor {
	return &RuleExtractor{rules: []extractionRule{
		{regexp.MustCompile(`(?i)\bmy name is ([a-z][a-z' -]{0,48})`), CategoryPersonal, "name"},
		{regexp.MustCompile(`(?i)\bcall me ([a-z][a-z' -]{0,48})`), CategoryPersonal, "nickname"},
		{regexp.MustCompile(`(?i)\bi live in ([a-z][a-z' ,-]{0,64})`), CategoryPersonal, "location"},
		{regexp.MustCompile(`(?i)\bi work (?:as|at) (?:an? )?([a-z][a-z' ,-]{0,64})`), CategoryContext, "occupation"},
		{regexp.MustCompile(`(?i)\bi (?:like|love|enjoy) ([a-z][a-z' ,-]{0,64})`), CategoryPreference, "likes"},
		{regexp.MustCompile(`(?i)\bi (?:hate|dislike|can't stand) ([a-z][a-z' ,-]{0,64})`), CategoryPreference, "dislikes"},
		{regexp.MustCompile(`(?i)\bi(?: a|')m allergic to ([a-z][a-z' ,-]{0,64})`), CategoryFact, "allergies"},
	}}
}

// ExtractFacts applies each rule in order against the text and returns
// one candidate per match. Later rules never overwrite earlier ones for
// the same key.
func (e *RuleExtractor) ExtractFacts(text string) []Candidate {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	seen := make(map[string]struct{}, len(e.rules))
	var candidates []Candidate
	for _, rule := range e.rules {
		match := rule.pattern.FindStringSubmatch(text)
		if match == nil {
			continue
		}
		if _, ok := seen[rule.key]; ok {
			continue
		}
		value := strings.TrimSpace(strings.Trim(match[1], " .,"))
		if value == "" {
			continue
		}
		seen[rule.key] = struct{}{}
		candidates = append(candidates, Candidate{
			Category: rule.category,
			Key:      rule.key,
			Value:    value,
		})
	}
	return candidates
}
