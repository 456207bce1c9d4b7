package zoho

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/chiefcousin/toybox/internal/config"
	"github.com/chiefcousin/toybox/pkg/errors"
)

// TokenSource supplies a valid OAuth access token
type TokenSource interface {
	ValidAccessToken(ctx context.Context) (string, error)
}

// Client is an authenticated Zoho Inventory REST client.
// It does not retry or rate limit.
type Client struct {
	baseURL    string
	orgID      string
	tokens     TokenSource
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a new Zoho Inventory client
func NewClient(cfg config.ZohoConfig, tokens TokenSource, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL: strings.TrimSuffix(cfg.APIBase, "/"),
		orgID:   cfg.OrgID,
		tokens:  tokens,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger,
	}
}

// Do sends an authenticated request. path is relative to the API base (e.g. "/items").
// The organization_id query parameter is always set. body, when non-nil, is JSON encoded.
// The caller owns the response body.
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, body any) (*http.Response, error) {
	token, err := c.tokens.ValidAccessToken(ctx)
	if err != nil {
		return nil, err
	}

	u, err := url.Parse(c.baseURL + path)
	if err != nil {
		return nil, fmt.Errorf("invalid zoho path %q: %w", path, err)
	}
	q := u.Query()
	for k, vs := range query {
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	q.Set("organization_id", c.orgID)
	u.RawQuery = q.Encode()

	var reader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Zoho-oauthtoken "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	return resp, nil
}

type enveloped interface {
	envelope() Envelope
}

// doJSON performs the request and decodes a 2xx body into out, checking the envelope code
func (c *Client) doJSON(ctx context.Context, method, path string, query url.Values, body any, out enveloped) error {
	resp, err := c.Do(ctx, method, path, query, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Warn("Zoho API request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
		)
		return &errors.ErrVendorAPI{Status: resp.StatusCode, Message: string(respBody)}
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w, body: %s", err, string(respBody))
	}

	if env := out.envelope(); env.Code != 0 {
		return &errors.ErrVendorAPI{Status: resp.StatusCode, Code: env.Code, Message: env.Message}
	}
	return nil
}
