package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCompanyLookupsCounter(t *testing.T) {
	counter := CompanyLookups.WithLabelValues(OutcomeFound, "exact")
	before := testutil.ToFloat64(counter)

	counter.Inc()

	if got := testutil.ToFloat64(counter); got != before+1 {
		t.Fatalf("expected counter to increase by one, got %v -> %v", before, got)
	}
}

func TestSubmissionsCounter(t *testing.T) {
	counter := Submissions.WithLabelValues(OutcomeTimeout)
	before := testutil.ToFloat64(counter)

	counter.Add(2)

	if got := testutil.ToFloat64(counter); got != before+2 {
		t.Fatalf("expected counter to increase by two, got %v -> %v", before, got)
	}
}
