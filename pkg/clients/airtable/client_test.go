package airtable

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindRecord(t *testing.T) {
	var gotFormula, gotAuth, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotFormula = r.URL.Query().Get("filterByFormula")
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.EscapedPath()
		if r.URL.Query().Get("filterByFormula") == `{lead_key}="known"` {
			_, _ = w.Write([]byte(`{"records":[{"id":"rec1"}]}`))
			return
		}
		_, _ = w.Write([]byte(`{"records":[]}`))
	}))
	defer srv.Close()

	c := NewClient("key", "app1", WithBaseURL(srv.URL))

	id, found, err := c.FindRecord(context.Background(), "Demo Requests", "known")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "rec1", id)
	assert.Equal(t, `{lead_key}="known"`, gotFormula)
	assert.Equal(t, "Bearer key", gotAuth)
	assert.Equal(t, "/app1/Demo%20Requests", gotPath)

	_, found, err = c.FindRecord(context.Background(), "Demo Requests", "other")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestCreateRecord(t *testing.T) {
	var payload struct {
		Records []struct {
			Fields map[string]any `json:"fields"`
		} `json:"records"`
		Typecast bool `json:"typecast"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		_, _ = w.Write([]byte(`{"records":[{"id":"recNew"}]}`))
	}))
	defer srv.Close()

	c := NewClient("key", "app1", WithBaseURL(srv.URL))
	id, err := c.CreateRecord(context.Background(), "Demo Requests", map[string]any{"name": "Jane Doe"})
	require.NoError(t, err)
	assert.Equal(t, "recNew", id)
	require.Len(t, payload.Records, 1)
	assert.Equal(t, "Jane Doe", payload.Records[0].Fields["name"])
	assert.True(t, payload.Typecast)
}

func TestAPIError(t *testing.T) {
	status := http.StatusServiceUnavailable
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(`{"error":"busy"}`))
	}))
	defer srv.Close()

	c := NewClient("key", "app1", WithBaseURL(srv.URL))
	_, err := c.CreateRecord(context.Background(), "t", map[string]any{})

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusServiceUnavailable, apiErr.StatusCode)
	assert.True(t, apiErr.Temporary())

	status = http.StatusUnprocessableEntity
	_, _, err = c.FindRecord(context.Background(), "t", "k")
	require.True(t, errors.As(err, &apiErr))
	assert.False(t, apiErr.Temporary())
}
