package client

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/octobees/leadform/internal/entity"
)

func TestSafeURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{in: "acme.com", want: "https://acme.com/", ok: true},
		{in: "http://acme.com/about", want: "http://acme.com/about", ok: true},
		{in: "HTTPS://Acme.com", want: "https://acme.com/", ok: true},
		{in: "münchen.de", want: "https://xn--mnchen-3ya.de/", ok: true},
		{in: "acme.com:8080/x", want: "https://acme.com:8080/x", ok: true},
		{in: "javascript:alert(1)", ok: false},
		{in: "ftp://acme.com", ok: false},
		{in: "   ", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := SafeURL(tt.in)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestFormatPhone(t *testing.T) {
	assert.Equal(t, "+1 650-253-0000", FormatPhone("+16502530000", ""))
	assert.Equal(t, "+1 650-253-0000", FormatPhone("(650) 253-0000", "US"))
	assert.Equal(t, "call us", FormatPhone("call us", "US"))
}

func TestLabel(t *testing.T) {
	assert.Equal(t, "Founded Year", Label("foundedYear"))
	assert.Equal(t, "Review Source", Label("reviewSource"))
	assert.Equal(t, "Name", Label("name"))
}

func TestRender(t *testing.T) {
	var buf bytes.Buffer
	record := entity.CompanyRecord{
		"name":       "Acme",
		"website":    "acme.com",
		"linkedin":   "javascript:alert(1)",
		"rating":     4.5,
		"references": "Ref A",
		"embedding":  "0.1, 0.2",
	}

	require.NoError(t, Render(&buf, record, "US"))
	out := buf.String()

	assert.Contains(t, out, "== General Info ==")
	assert.Contains(t, out, "https://acme.com/")
	assert.Contains(t, out, "(invalid link)")
	assert.Contains(t, out, "4.5")
	assert.Contains(t, out, "Ref A")
	assert.Contains(t, out, "[0.1, 0.2]")
	assert.NotContains(t, out, "Founded Year")
}
