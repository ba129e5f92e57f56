package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseQuery(t *testing.T) {
	q, err := parseQuery([]string{"status=pending", "q=reefer", "status=assigned"})
	require.NoError(t, err)
	assert.Equal(t, []string{"pending", "assigned"}, q["status"])
	assert.Equal(t, "reefer", q.Get("q"))

	_, err = parseQuery([]string{"nope"})
	require.Error(t, err)
	_, err = parseQuery([]string{"=x"})
	require.Error(t, err)
}

func TestAPIList(t *testing.T) {
	var gotPath, gotAuth, gotStatus string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotStatus = r.URL.Query().Get("status")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":[{"id":"a"},{"id":"b"}],"meta":{"total":2,"offset":0,"limit":25}}`))
	}))
	defer srv.Close()

	cmd := newRootCmd()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetArgs([]string{"api", "list", "dispatches", "--base-url", srv.URL, "--token", "tok", "-q", "status=pending"})
	require.NoError(t, cmd.Execute())

	assert.Equal(t, "/api/dispatches", gotPath)
	assert.Equal(t, "Bearer tok", gotAuth)
	assert.Equal(t, "pending", gotStatus)

	var body struct {
		Data []map[string]string `json:"data"`
		Meta struct {
			Total int `json:"total"`
		} `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &body))
	assert.Len(t, body.Data, 2)
	assert.Equal(t, 2, body.Meta.Total)
}

func TestAPIList_UnknownResource(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"api", "list", "invoices", "--token", "tok"})
	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown resource")
}

func TestAPIList_RequiresCredentials(t *testing.T) {
	t.Setenv("FLEETDESK_TOKEN", "")
	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"api", "list", "trucks"})
	require.Error(t, cmd.Execute())
}
