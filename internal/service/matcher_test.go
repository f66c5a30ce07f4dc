package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/octobees/leadform/internal/entity"
)

func candidates(names ...string) []entity.NameCandidate {
	out := make([]entity.NameCandidate, len(names))
	for i, n := range names {
		out[i] = entity.NameCandidate{ID: n, Name: n}
	}
	return out
}

func TestFindRecord(t *testing.T) {
	tests := []struct {
		name      string
		query     string
		stored    []string
		wantIndex int
		wantTier  Strategy
		wantOK    bool
	}{
		{name: "exact ignoring case", query: "Acme", stored: []string{"ACME"}, wantIndex: 0, wantTier: StrategyExact, wantOK: true},
		{name: "query contains stored name", query: "Acme Technologies", stored: []string{"Acme"}, wantIndex: 0, wantTier: StrategyQueryContains, wantOK: true},
		{name: "stored name contains query", query: "Acme", stored: []string{"Acme Technologies Pvt Ltd"}, wantIndex: 0, wantTier: StrategyNameContains, wantOK: true},
		{name: "exact wins over earlier substring", query: "Acme", stored: []string{"Acme Technologies", "acme"}, wantIndex: 1, wantTier: StrategyExact, wantOK: true},
		{name: "query contains wins over name contains", query: "Acme Inc", stored: []string{"Acme Inc Holdings", "Acme"}, wantIndex: 1, wantTier: StrategyQueryContains, wantOK: true},
		{name: "first in store order within a tier", query: "Acme Global Inc", stored: []string{"Global", "Acme"}, wantIndex: 0, wantTier: StrategyQueryContains, wantOK: true},
		{name: "whitespace is literal for exact", query: "Acme ", stored: []string{"Acme"}, wantIndex: 0, wantTier: StrategyQueryContains, wantOK: true},
		{name: "blank stored names never match", query: "Acme", stored: []string{"", "  "}, wantOK: false},
		{name: "metacharacters are literal", query: "A+B (Co.)", stored: []string{"AB Co", "AAB (Co)", "A+B Co"}, wantOK: false},
		{name: "metacharacters match literally", query: "A+B (Co.)", stored: []string{"Other", "A+B (Co.) Holdings"}, wantIndex: 1, wantTier: StrategyNameContains, wantOK: true},
		{name: "no candidates", query: "Acme", stored: nil, wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			idx, tier, ok := FindRecord(tt.query, candidates(tt.stored...))
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.wantIndex, idx)
				assert.Equal(t, tt.wantTier, tier)
			} else {
				assert.Equal(t, -1, idx)
			}
		})
	}
}

func TestTierPredicates(t *testing.T) {
	assert.True(t, MatchesExact("ACME", "acme"))
	assert.False(t, MatchesExact("Acme", " Acme"))

	assert.True(t, QueryContainsName("acme", "ACME Inc"))
	assert.False(t, QueryContainsName(" ", "Acme"))

	assert.True(t, NameContainsQuery("Acme Technologies", "TECH"))
	assert.False(t, NameContainsQuery("Acme", ""))
}
