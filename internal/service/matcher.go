package service

import (
	"strings"

	"github.com/octobees/leadform/internal/entity"
)

// Strategy names the matching tier that resolved a lookup.
type Strategy string

const (
	// StrategyExact matches a stored name equal to the query ignoring case.
	StrategyExact Strategy = "exact"
	// StrategyQueryContains matches a stored name found inside the query, e.g. "Acme" for "Acme Inc".
	StrategyQueryContains Strategy = "query_contains"
	// StrategyNameContains matches a stored name that contains the query, e.g. "Acme Technologies" for "Acme".
	StrategyNameContains Strategy = "name_contains"
	// StrategyCache marks a record served from the record cache.
	StrategyCache Strategy = "cache"
)

// MatchesExact reports whether stored equals query ignoring case. Whitespace is compared literally.
func MatchesExact(stored, query string) bool {
	return strings.EqualFold(stored, query)
}

// QueryContainsName reports whether the non-blank stored name appears inside query ignoring case.
func QueryContainsName(stored, query string) bool {
	if strings.TrimSpace(stored) == "" {
		return false
	}
	return strings.Contains(strings.ToLower(query), strings.ToLower(stored))
}

// NameContainsQuery reports whether query appears inside the stored name ignoring case.
func NameContainsQuery(stored, query string) bool {
	if query == "" {
		return false
	}
	return strings.Contains(strings.ToLower(stored), strings.ToLower(query))
}

// FindRecord picks the candidate matching query. Tiers are tried in order
// (exact, query contains name, name contains query) and the first candidate
// in store order wins within a tier. It returns the candidate index and the
// resolving strategy, or ok=false when nothing matches.
func FindRecord(query string, candidates []entity.NameCandidate) (index int, strategy Strategy, ok bool) {
	tiers := []struct {
		strategy Strategy
		match    func(stored, query string) bool
	}{
		{StrategyExact, MatchesExact},
		{StrategyQueryContains, QueryContainsName},
		{StrategyNameContains, NameContainsQuery},
	}

	for _, tier := range tiers {
		for i, c := range candidates {
			if tier.match(c.Name, query) {
				return i, tier.strategy, true
			}
		}
	}
	return -1, "", false
}
