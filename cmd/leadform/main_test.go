package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFakeAPI(t *testing.T, foundAfter int32) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var lookups atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/api/submit":
			_, _ = w.Write([]byte(`{"status":"submitted"}`))
		case r.Method == http.MethodGet && r.URL.Path == "/api/company/Acme Inc":
			if lookups.Add(1) < foundAfter {
				w.WriteHeader(http.StatusNotFound)
				_, _ = w.Write([]byte(`{"error":"Company not found"}`))
				return
			}
			_, _ = w.Write([]byte(`{"name":"Acme","website":"acme.com","references":"Ref A"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":"Company not found"}`))
		}
	}))
	t.Cleanup(srv.Close)
	return srv, &lookups
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestSubmitCommand(t *testing.T) {
	srv, lookups := newFakeAPI(t, 3)

	out, err := execute(t, "submit",
		"--api-url", srv.URL,
		"--interval", "1ms",
		"--name", "J Doe",
		"--email", "j@x.com",
		"--company", "Acme Inc",
		"--url", "acme.com",
	)
	require.NoError(t, err)
	assert.Equal(t, int32(3), lookups.Load())
	assert.Contains(t, out, "== General Info ==")
	assert.Contains(t, out, "https://acme.com/")
	assert.Contains(t, out, "Ref A")
}

func TestSubmitCommand_MissingFields(t *testing.T) {
	srv, _ := newFakeAPI(t, 1)

	_, err := execute(t, "submit", "--api-url", srv.URL, "--name", "J Doe", "--email", "", "--company", "", "--url", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "email, companyName, companyUrl required")
}

func TestLookupCommand(t *testing.T) {
	srv, _ := newFakeAPI(t, 1)

	out, err := execute(t, "lookup", "--api-url", srv.URL, "Acme Inc")
	require.NoError(t, err)
	assert.Contains(t, out, "Acme")

	_, err = execute(t, "lookup", "--api-url", srv.URL, "Nobody")
	assert.Error(t, err)
}

func TestLookupCommand_WaitTimesOut(t *testing.T) {
	srv, _ := newFakeAPI(t, 1)

	_, err := execute(t, "lookup", "--api-url", srv.URL, "--wait", "--interval", "1ms", "--max-attempts", "2", "Nobody")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "company data not found after timeout")
}
