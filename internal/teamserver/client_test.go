// File: internal/teamserver/client_test.go
package teamserver

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	json "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testConfig(baseURL string) Config {
	return Config{
		BaseURL:    baseURL,
		OrgID:      "org-uuid",
		APIKey:     "test-api-key",
		AuthHeader: "dGVzdDp0ZXN0",
	}
}

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := New(testConfig(srv.URL), srv.Client(), zap.NewNop())
	require.NoError(t, err)
	return client, srv
}

// -- Base URL normalization --

func TestNormalizeBaseURL(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"host only", "https://teamserver.example.com", "https://teamserver.example.com/Contrast/api/ng/"},
		{"ui path", "https://teamserver.example.com/Contrast", "https://teamserver.example.com/Contrast/api/ng/"},
		{"trailing slash", "https://teamserver.example.com/Contrast/", "https://teamserver.example.com/Contrast/api/ng/"},
		{"already canonical", "https://teamserver.example.com/Contrast/api/ng/", "https://teamserver.example.com/Contrast/api/ng/"},
		{"whitespace", "  https://teamserver.example.com ", "https://teamserver.example.com/Contrast/api/ng/"},
		{"on-premise port", "http://contrast.internal:8080/Contrast", "http://contrast.internal:8080/Contrast/api/ng/"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := NormalizeBaseURL(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestNormalizeBaseURL_Invalid(t *testing.T) {
	for _, in := range []string{"", "teamserver.example.com", "://nope"} {
		_, err := NormalizeBaseURL(in)
		assert.Error(t, err, "input %q should be rejected", in)
	}
}

// -- Rule model --

func TestRuleCWENumber(t *testing.T) {
	assert.Equal(t, "79", Rule{CWE: "https://cwe.mitre.org/data/definitions/79.html"}.CWENumber())
	assert.Equal(t, "89", Rule{CWE: "89"}.CWENumber())
	assert.Equal(t, "", Rule{}.CWENumber())
}

// -- ListRules --

func TestListRules(t *testing.T) {
	var gotPath, gotAPIKey, gotAuth string
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.RequestURI()
		gotAPIKey = r.Header.Get("API-Key")
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode(map[string]any{
			"count": 2,
			"rules": []map[string]any{
				{"name": "reflected-xss", "title": "Cross-Site Scripting", "cwe": "https://cwe.mitre.org/data/definitions/79.html", "languages": []string{"Java", "Node"}},
				{"name": "sql-injection", "title": "SQL Injection", "cwe": "https://cwe.mitre.org/data/definitions/89.html"},
			},
		})
	}))

	rules, err := client.ListRules(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "/Contrast/api/ng/org-uuid/rules?expand=skip_links", gotPath)
	assert.Equal(t, "test-api-key", gotAPIKey)
	assert.Equal(t, "dGVzdDp0ZXN0", gotAuth)

	require.Len(t, rules, 2)
	assert.Equal(t, "reflected-xss", rules[0].Name)
	assert.Equal(t, "79", rules[0].CWENumber())
	assert.Equal(t, []string{"Java", "Node"}, rules[0].Languages)
}

// -- UpdateRuleReferences --

func TestUpdateRuleReferences(t *testing.T) {
	var gotBody map[string]any
	var gotContentType string
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		gotContentType = r.Header.Get("Content-Type")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		json.NewEncoder(w).Encode(map[string]any{"success": true})
	}))

	refs := []string{"<b>Java</b>: https://example.com/exercise"}
	require.NoError(t, client.UpdateRuleReferences(context.Background(), "reflected-xss", refs))

	assert.Equal(t, "application/json", gotContentType)
	assert.Equal(t, []any{"<b>Java</b>: https://example.com/exercise"}, gotBody["references"])
}

// A nil slice must still serialize as an explicit empty array, since that is
// what clears the field server-side.
func TestUpdateRuleReferences_NilClearsField(t *testing.T) {
	var rawBody string
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		buf := make([]byte, r.ContentLength)
		r.Body.Read(buf)
		rawBody = string(buf)
		json.NewEncoder(w).Encode(map[string]any{"success": true})
	}))

	require.NoError(t, client.UpdateRuleReferences(context.Background(), "stored-xss", nil))
	assert.JSONEq(t, `{"references": []}`, rawBody)
}

func TestUpdateRuleReferences_Rejected(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"success": false, "messages": []string{"rule is read-only"}})
	}))

	err := client.UpdateRuleReferences(context.Background(), "stored-xss", []string{"x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rule is read-only")
}

// -- Error handling --

func TestAPIError_AuthFailure(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	}))

	_, err := client.ListRules(context.Background())
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.True(t, apiErr.IsAuthFailure())
}

func TestSendUsageEvent(t *testing.T) {
	var gotPath string
	var gotBody map[string]string
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		json.NewEncoder(w).Encode(map[string]any{"success": true})
	}))

	require.NoError(t, client.SendUsageEvent(context.Background(), true))
	assert.Equal(t, "/Contrast/api/ng/org-uuid/integrations/diagnostics/scw", gotPath)
	assert.Equal(t, "undo", gotBody["type"])

	require.NoError(t, client.SendUsageEvent(context.Background(), false))
	assert.Equal(t, "setup", gotBody["type"])
}
