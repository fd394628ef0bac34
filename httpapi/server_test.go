package httpapi_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	forms "github.com/reglet-dev/reglet-forms"
	"github.com/reglet-dev/reglet-forms/entities"
	"github.com/reglet-dev/reglet-forms/httpapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	f, err := forms.New()
	require.NoError(t, err)
	require.NoError(t, f.AddSection("option", "general", "", &entities.Declaration{Label: "General"}))
	require.NoError(t, f.AddField("option", "blogname", "", &entities.Declaration{Default: "My blog"}))
	require.NoError(t, f.AddField("option", "social[twitter]", "", nil))
	require.NoError(t, f.AddField("option", "hidden", "", nil))
	require.NoError(t, f.AddControl("option", "blogname", "", &entities.Declaration{Parent: "general", Fields: []string{"blogname"}}))
	require.NoError(t, f.AddControl("option", "twitter", "", &entities.Declaration{Parent: "general", Fields: []string{"social[twitter]"}}))
	require.NoError(t, f.AddField("option", "reject", "", &entities.Declaration{
		SanitizeCallback: func(any, entities.Subject) any { return false },
	}))
	require.NoError(t, f.AddControl("option", "reject", "", &entities.Declaration{Parent: "general", Fields: []string{"reject"}}))

	srv := httptest.NewServer(httpapi.NewServer(f).Handler())
	t.Cleanup(srv.Close)
	return srv
}

func do(t *testing.T, method, url, body string) (*http.Response, map[string]any) {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	var out map[string]any
	if strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	}
	return resp, out
}

func TestServer_Export(t *testing.T) {
	srv := newServer(t)
	resp, body := do(t, http.MethodGet, srv.URL+"/namespaces/option/option?item=1", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
	assert.Equal(t, []any{"general"}, body["containers"])

	resp, _ = do(t, http.MethodGet, srv.URL+"/namespaces/option/option/containers/general", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")

	resp, _ = do(t, http.MethodGet, srv.URL+"/namespaces/option/option/containers/nope", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestServer_FieldRoundTrip(t *testing.T) {
	srv := newServer(t)
	base := srv.URL + "/namespaces/option/option/fields/"

	resp, body := do(t, http.MethodGet, base+"blogname", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "My blog", body["value"])

	resp, body = do(t, http.MethodPut, base+"blogname", `{"value": "Renamed"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["saved"])

	_, body = do(t, http.MethodGet, base+"blogname", "")
	assert.Equal(t, "Renamed", body["value"])

	resp, _ = do(t, http.MethodPut, base+"social%5Btwitter%5D", `{"value": "@forms"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	_, body = do(t, http.MethodGet, base+"social%5Btwitter%5D", "")
	assert.Equal(t, "@forms", body["value"])
}

func TestServer_FieldErrors(t *testing.T) {
	srv := newServer(t)
	base := srv.URL + "/namespaces/option/option/fields/"

	resp, body := do(t, http.MethodGet, base+"hidden", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode, "fields of no prepared control are not exposed")
	assert.Equal(t, "NOT_FOUND", body["code"])

	resp, _ = do(t, http.MethodPut, base+"blogname", `not json`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body = do(t, http.MethodPut, base+"reject", `{"value": "x"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, false, body["saved"])
}

func TestServer_BodyTooLarge(t *testing.T) {
	f, err := forms.New()
	require.NoError(t, err)
	require.NoError(t, f.AddSection("option", "general", "", nil))
	require.NoError(t, f.AddField("option", "blogname", "", nil))
	require.NoError(t, f.AddControl("option", "blogname", "", &entities.Declaration{Parent: "general", Fields: []string{"blogname"}}))

	srv := httptest.NewServer(httpapi.NewServer(f, httpapi.WithMaxBodyBytes(16)).Handler())
	t.Cleanup(srv.Close)

	resp, body := do(t, http.MethodPut, srv.URL+"/namespaces/option/option/fields/blogname",
		`{"value":"`+strings.Repeat("x", 64)+`"}`)
	assert.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)
	assert.Equal(t, "BODY_TOO_LARGE", body["code"])
}
