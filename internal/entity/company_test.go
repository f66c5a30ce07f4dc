package entity

import (
	"encoding/json"
	"testing"
)

func TestCompanyRecordText(t *testing.T) {
	record := CompanyRecord{
		"name":        "Acme",
		"foundedYear": float64(1999),
		"rating":      4.25,
		"verified":    true,
		"address":     map[string]any{"city": "Pune", "zip": "411001"},
		"employees":   json.Number("120"),
	}

	tests := map[string]string{
		"name":        "Acme",
		"foundedYear": "1999",
		"rating":      "4.25",
		"verified":    "true",
		"address":     `{"city":"Pune","zip":"411001"}`,
		"employees":   "120",
		"missing":     "",
	}
	for field, want := range tests {
		if got := record.Text(field); got != want {
			t.Fatalf("Text(%q) = %q, want %q", field, got, want)
		}
	}
}
