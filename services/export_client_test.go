package services

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestKey(t *testing.T) *rsa.PrivateKey {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	return key
}

// newTestUpstream stands up a token endpoint that verifies the signed
// assertion before issuing a bearer token, and an export endpoint that
// requires it.
func newTestUpstream(t *testing.T, key *rsa.PrivateKey, csvBody string) (*httptest.Server, *httptest.Server) {
	t.Helper()

	token := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			JWT string `json:"jwt"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))

		parsed, err := jwt.Parse(body.JWT, func(tok *jwt.Token) (interface{}, error) {
			return &key.PublicKey, nil
		}, jwt.WithValidMethods([]string{"PS256"}))
		require.NoError(t, err)
		assert.Equal(t, "test-key", parsed.Header["kid"])

		claims := parsed.Claims.(jwt.MapClaims)
		assert.Equal(t, "sa-123", claims["iss"])

		_ = json.NewEncoder(w).Encode(map[string]string{"iamToken": "iam-token-abc"})
	}))
	t.Cleanup(token.Close)

	export := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer iam-token-abc" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(csvBody))
	}))
	t.Cleanup(export.Close)

	return token, export
}

func TestExportClientFetchesThroughTokenExchange(t *testing.T) {
	key := newTestKey(t)
	token, export := newTestUpstream(t, key, "username,completed_tasks,quality_score\nalice,1,2\n")

	client := NewExportClient("sa-123", "test-key", key, token.URL, export.URL)
	data, err := client.FetchExport(context.Background())
	require.NoError(t, err)
	assert.Contains(t, string(data), "alice,1,2")
}

func TestExportClientTokenRejection(t *testing.T) {
	key := newTestKey(t)
	token := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "forbidden", http.StatusForbidden)
	}))
	t.Cleanup(token.Close)

	client := NewExportClient("sa-123", "test-key", key, token.URL, "http://unused.invalid")
	_, err := client.FetchExport(context.Background())
	assert.ErrorIs(t, err, ErrUpstreamAuth)
}

func TestExportClientEmptyToken(t *testing.T) {
	key := newTestKey(t)
	token := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"iamToken": ""})
	}))
	t.Cleanup(token.Close)

	client := NewExportClient("sa-123", "test-key", key, token.URL, "http://unused.invalid")
	_, err := client.FetchExport(context.Background())
	assert.ErrorIs(t, err, ErrUpstreamAuth)
}

func TestExportClientExportRejection(t *testing.T) {
	key := newTestKey(t)
	token, _ := newTestUpstream(t, key, "")
	export := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	t.Cleanup(export.Close)

	client := NewExportClient("sa-123", "test-key", key, token.URL, export.URL)
	_, err := client.FetchExport(context.Background())
	assert.ErrorIs(t, err, ErrUpstreamFetch)
}

func TestExportClientNilIsUnconfigured(t *testing.T) {
	var client *ExportClient

	_, err := client.ExchangeToken(context.Background())
	assert.ErrorIs(t, err, ErrConfigurationMissing)
	_, err = client.FetchExport(context.Background())
	assert.ErrorIs(t, err, ErrConfigurationMissing)
	assert.ErrorIs(t, client.TestConnection(context.Background()), ErrConfigurationMissing)
}
