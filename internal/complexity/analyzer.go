// Package complexity scores a (query, tool list) pair into a complexity
// class and derives the execution strategy for the planner. Scoring is pure
// and total: no I/O, no randomness, identical inputs always produce an
// identical score.
package complexity

import (
	"fmt"
	"strings"
	"unicode"
)

// Fixed scoring weights. Changing these changes plan strategy selection
// everywhere, so they are constants rather than configuration.
const (
	weightPerTool       = 1.2
	weightPerExtraCat   = 1.5
	weightPerBreadth    = 1.0
	narrowScopePenalty  = 0.5
	narrowScopeMaxWords = 5
)

// breadthTerms are lexical signals that a query spans many records or
// categories. Matched as whole lowercase words, in this order, so the
// contributing-factor list is stable.
var breadthTerms = []string{
	"all", "every", "each", "comprehensive", "complete", "full",
	"report", "summary", "overview", "across", "compare", "aggregate",
}

// Score is the deterministic complexity assessment of a query.
type Score struct {
	Value     float64  `json:"complexityScore"`
	IsComplex bool     `json:"isComplex"`
	Factors   []string `json:"contributingFactors"`
}

// AnalyzeQueryComplexity scores a query against the candidate tool names.
// Distinct tools and distinct tool categories raise the score, breadth terms
// in the query raise it further, and a short single-tool query with no
// breadth signal is discounted as narrowly scoped.
func AnalyzeQueryComplexity(query string, toolNames []string) Score {
	var s Score

	distinctTools := make(map[string]bool, len(toolNames))
	distinctCats := make(map[string]bool, len(toolNames))
	for _, name := range toolNames {
		if name == "" {
			continue
		}
		distinctTools[name] = true
		distinctCats[category(name)] = true
	}

	toolScore := weightPerTool * float64(len(distinctTools))
	s.Value += toolScore
	s.Factors = append(s.Factors, fmt.Sprintf("tools:%d (+%.2f)", len(distinctTools), toolScore))

	extraCats := 0
	if len(distinctCats) > 1 {
		extraCats = len(distinctCats) - 1
	}
	catScore := weightPerExtraCat * float64(extraCats)
	s.Value += catScore
	s.Factors = append(s.Factors, fmt.Sprintf("categories:%d (+%.2f)", len(distinctCats), catScore))

	words := tokenize(query)
	wordSet := make(map[string]bool, len(words))
	for _, w := range words {
		wordSet[w] = true
	}

	breadthHits := 0
	for _, term := range breadthTerms {
		if wordSet[term] {
			breadthHits++
			s.Value += weightPerBreadth
			s.Factors = append(s.Factors, fmt.Sprintf("breadth:%s (+%.2f)", term, weightPerBreadth))
		}
	}

	if breadthHits == 0 && len(distinctTools) <= 1 && len(words) > 0 && len(words) <= narrowScopeMaxWords {
		s.Value -= narrowScopePenalty
		s.Factors = append(s.Factors, fmt.Sprintf("narrow-scope (-%.2f)", narrowScopePenalty))
	}

	s.IsComplex = s.Value >= complexThreshold
	return s
}

// category mirrors catalog.Category without importing it; the analyzer must
// stay a leaf package with no dependencies beyond the standard library.
func category(name string) string {
	if i := strings.Index(name, "_"); i > 0 {
		return name[:i]
	}
	return name
}

// tokenize lowercases the query and splits it on non-letter, non-digit runes.
func tokenize(query string) []string {
	return strings.FieldsFunc(strings.ToLower(query), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
