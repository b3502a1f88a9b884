package services

import (
	"bytes"
	"context"
	"crypto/rsa"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"star-rewards-system/utils"

	"github.com/golang-jwt/jwt/v5"
)

// ExportClient talks to the BI dashboard's CSV export. Auth is a two-step
// exchange: a short-lived signed assertion (service-account key, PS256, 1h
// expiry) is traded at the token endpoint for a bearer token, which then
// authorizes the export GET. Any non-200 on either step is fatal to the batch.
type ExportClient struct {
	ServiceAccountID string
	KeyID            string
	PrivateKey       *rsa.PrivateKey
	TokenURL         string
	ExportURL        string
	HTTPClient       *http.Client

	now func() time.Time // injectable for tests
}

// NewExportClientFromEnv builds a client from EXPORT_* environment variables.
// Returns ErrConfigurationMissing when any required value is absent; the
// service still boots, only remote imports are unavailable.
func NewExportClientFromEnv() (*ExportClient, error) {
	serviceAccountID := os.Getenv("EXPORT_SERVICE_ACCOUNT_ID")
	keyID := os.Getenv("EXPORT_KEY_ID")
	privateKeyPEM := os.Getenv("EXPORT_PRIVATE_KEY")
	tokenURL := os.Getenv("EXPORT_TOKEN_URL")
	exportURL := os.Getenv("EXPORT_URL")

	if serviceAccountID == "" || keyID == "" || privateKeyPEM == "" || tokenURL == "" || exportURL == "" {
		return nil, fmt.Errorf("%w: EXPORT_SERVICE_ACCOUNT_ID, EXPORT_KEY_ID, EXPORT_PRIVATE_KEY, EXPORT_TOKEN_URL and EXPORT_URL are required", ErrConfigurationMissing)
	}

	privateKey, err := jwt.ParseRSAPrivateKeyFromPEM([]byte(privateKeyPEM))
	if err != nil {
		return nil, fmt.Errorf("%w: invalid EXPORT_PRIVATE_KEY: %v", ErrConfigurationMissing, err)
	}

	return NewExportClient(serviceAccountID, keyID, privateKey, tokenURL, exportURL), nil
}

func NewExportClient(serviceAccountID, keyID string, privateKey *rsa.PrivateKey, tokenURL, exportURL string) *ExportClient {
	return &ExportClient{
		ServiceAccountID: serviceAccountID,
		KeyID:            keyID,
		PrivateKey:       privateKey,
		TokenURL:         tokenURL,
		ExportURL:        exportURL,
		HTTPClient:       utils.HTTPClient,
		now:              time.Now,
	}
}

func (c *ExportClient) signedAssertion() (string, error) {
	now := c.now()
	claims := jwt.MapClaims{
		"iss": c.ServiceAccountID,
		"aud": c.TokenURL,
		"iat": now.Unix(),
		"exp": now.Add(time.Hour).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodPS256, claims)
	token.Header["kid"] = c.KeyID

	return token.SignedString(c.PrivateKey)
}

// ExchangeToken trades the signed assertion for a bearer token.
func (c *ExportClient) ExchangeToken(ctx context.Context) (string, error) {
	if c == nil {
		return "", ErrConfigurationMissing
	}

	assertion, err := c.signedAssertion()
	if err != nil {
		return "", fmt.Errorf("%w: signing assertion: %v", ErrUpstreamAuth, err)
	}

	body, _ := json.Marshal(map[string]string{"jwt": assertion})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.TokenURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpstreamAuth, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpstreamAuth, err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("%w: token endpoint returned %d — %s", ErrUpstreamAuth, resp.StatusCode, detail)
	}

	var tokenResp struct {
		IAMToken string `json:"iamToken"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tokenResp); err != nil {
		return "", fmt.Errorf("%w: decoding token response: %v", ErrUpstreamAuth, err)
	}
	if tokenResp.IAMToken == "" {
		return "", fmt.Errorf("%w: token endpoint returned an empty token", ErrUpstreamAuth)
	}

	return tokenResp.IAMToken, nil
}

// FetchExport authorizes and downloads the CSV export body.
func (c *ExportClient) FetchExport(ctx context.Context) ([]byte, error) {
	if c == nil {
		return nil, ErrConfigurationMissing
	}

	token, err := c.ExchangeToken(ctx)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.ExportURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstreamFetch, err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstreamFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("%w: export returned %d — %s", ErrUpstreamFetch, resp.StatusCode, detail)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading export body: %v", ErrUpstreamFetch, err)
	}

	log.Printf("[EXPORT] 📥 Fetched %d byte(s) from dashboard export", len(data))
	return data, nil
}

// TestConnection walks the full auth + fetch path and discards the body.
func (c *ExportClient) TestConnection(ctx context.Context) error {
	if c == nil {
		return ErrConfigurationMissing
	}
	_, err := c.FetchExport(ctx)
	return err
}
