package zoho

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/chiefcousin/toybox/internal/config"
	"github.com/chiefcousin/toybox/internal/domain"
	"github.com/chiefcousin/toybox/internal/repository"
	"github.com/chiefcousin/toybox/pkg/errors"
)

// Scopes requested during the OAuth consent
var Scopes = []string{
	"ZohoInventory.items.READ",
	"ZohoInventory.items.UPDATE",
	"ZohoInventory.salesorders.CREATE",
	"ZohoInventory.salesorders.READ",
}

const (
	defaultExpiresIn = 3600
	// tokens are treated as expired this long before Zoho says so
	expiryBuffer = 60 * time.Second
)

var tokenKeys = []string{
	domain.SettingZohoAccessToken,
	domain.SettingZohoRefreshToken,
	domain.SettingZohoTokenExpiresAt,
}

// TokenManager keeps the Zoho OAuth tokens in store_settings and refreshes the
// access token when it is expired or missing.
type TokenManager struct {
	settings   repository.SettingsRepository
	cfg        config.ZohoConfig
	httpClient *http.Client
	logger     *zap.Logger
	refreshes  singleflight.Group
	now        func() time.Time
}

// NewTokenManager creates a TokenManager backed by the settings repository
func NewTokenManager(cfg config.ZohoConfig, settings repository.SettingsRepository, logger *zap.Logger) *TokenManager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TokenManager{
		settings: settings,
		cfg:      cfg,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger,
		now:    time.Now,
	}
}

// SetClock overrides the time source (tests)
func (m *TokenManager) SetClock(now func() time.Time) {
	m.now = now
}

// SetHTTPClient overrides the HTTP client used for token requests
func (m *TokenManager) SetHTTPClient(c *http.Client) {
	m.httpClient = c
}

// TokenRecord reads the stored tokens. Returns nil when no refresh token is stored.
func (m *TokenManager) TokenRecord(ctx context.Context) (*domain.TokenRecord, error) {
	rows, err := m.settings.GetMany(ctx, tokenKeys...)
	if err != nil {
		return nil, fmt.Errorf("failed to read zoho tokens: %w", err)
	}

	refresh := rows[domain.SettingZohoRefreshToken]
	if refresh == nil || refresh.Value == "" {
		return nil, nil
	}

	rec := &domain.TokenRecord{RefreshToken: refresh.Value}
	if access := rows[domain.SettingZohoAccessToken]; access != nil {
		rec.AccessToken = access.Value
		rec.AccessTokenVersion = access.Version
	}
	if exp := rows[domain.SettingZohoTokenExpiresAt]; exp != nil {
		ms, err := strconv.ParseInt(exp.Value, 10, 64)
		if err == nil {
			rec.ExpiresAt = time.UnixMilli(ms)
		}
	}
	return rec, nil
}

// ValidAccessToken returns a usable access token, refreshing it when expired
func (m *TokenManager) ValidAccessToken(ctx context.Context) (string, error) {
	rec, err := m.TokenRecord(ctx)
	if err != nil {
		return "", err
	}
	if rec == nil {
		return "", &errors.ErrNotConnected{}
	}

	if rec.AccessToken != "" && m.now().Before(rec.ExpiresAt) {
		return rec.AccessToken, nil
	}

	// collapse concurrent refreshes inside this process; CompareAndSet handles other processes
	v, err, _ := m.refreshes.Do("refresh", func() (any, error) {
		return m.refresh(ctx, rec)
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (m *TokenManager) refresh(ctx context.Context, rec *domain.TokenRecord) (string, error) {
	params := url.Values{}
	params.Set("grant_type", "refresh_token")
	params.Set("client_id", m.cfg.ClientID)
	params.Set("client_secret", m.cfg.ClientSecret)
	params.Set("refresh_token", rec.RefreshToken)

	tok, err := m.tokenRequest(ctx, params)
	if err != nil {
		m.logger.Error("Zoho token refresh failed", zap.Error(err))
		return "", err
	}

	refreshToken := rec.RefreshToken
	if tok.RefreshToken != "" {
		refreshToken = tok.RefreshToken
	}

	won, err := m.settings.CompareAndSet(ctx, domain.SettingZohoAccessToken, rec.AccessTokenVersion, tok.AccessToken)
	if err != nil {
		return "", fmt.Errorf("failed to store zoho access token: %w", err)
	}
	if !won {
		// another refresher stored a token first; use theirs
		latest, err := m.TokenRecord(ctx)
		if err != nil {
			return "", err
		}
		if latest != nil && latest.AccessToken != "" {
			m.logger.Debug("Zoho token refreshed concurrently, using stored token")
			return latest.AccessToken, nil
		}
		return tok.AccessToken, nil
	}

	if err := m.settings.SetMany(ctx, map[string]string{
		domain.SettingZohoRefreshToken:   refreshToken,
		domain.SettingZohoTokenExpiresAt: m.expiresAt(tok.ExpiresIn),
	}); err != nil {
		return "", fmt.Errorf("failed to store zoho token expiry: %w", err)
	}

	m.logger.Info("Zoho access token refreshed")
	return tok.AccessToken, nil
}

func (m *TokenManager) expiresAt(expiresIn int) string {
	if expiresIn <= 0 {
		expiresIn = defaultExpiresIn
	}
	at := m.now().Add(time.Duration(expiresIn)*time.Second - expiryBuffer)
	return strconv.FormatInt(at.UnixMilli(), 10)
}

// StoreInitialTokens persists the tokens obtained from the authorization-code exchange
func (m *TokenManager) StoreInitialTokens(ctx context.Context, accessToken, refreshToken string, expiresIn int) error {
	return m.settings.SetMany(ctx, map[string]string{
		domain.SettingZohoAccessToken:    accessToken,
		domain.SettingZohoRefreshToken:   refreshToken,
		domain.SettingZohoTokenExpiresAt: m.expiresAt(expiresIn),
	})
}

// IsConnected reports whether a refresh token is stored
func (m *TokenManager) IsConnected(ctx context.Context) bool {
	s, err := m.settings.Get(ctx, domain.SettingZohoRefreshToken)
	if err != nil {
		m.logger.Warn("Failed to check Zoho connection", zap.Error(err))
		return false
	}
	return s != nil && s.Value != ""
}

// Disconnect forgets all stored tokens
func (m *TokenManager) Disconnect(ctx context.Context) error {
	return m.settings.Delete(ctx, tokenKeys...)
}

// AuthURL builds the consent URL the admin is redirected to
func (m *TokenManager) AuthURL(state string) string {
	params := url.Values{}
	params.Set("response_type", "code")
	params.Set("client_id", m.cfg.ClientID)
	params.Set("scope", strings.Join(Scopes, ","))
	params.Set("redirect_uri", m.cfg.RedirectURI)
	params.Set("access_type", "offline")
	params.Set("prompt", "consent")
	if state != "" {
		params.Set("state", state)
	}
	return m.cfg.AccountsURL + "/oauth/v2/auth?" + params.Encode()
}

// ExchangeCode trades an authorization code for tokens and stores them
func (m *TokenManager) ExchangeCode(ctx context.Context, code string) error {
	params := url.Values{}
	params.Set("grant_type", "authorization_code")
	params.Set("client_id", m.cfg.ClientID)
	params.Set("client_secret", m.cfg.ClientSecret)
	params.Set("redirect_uri", m.cfg.RedirectURI)
	params.Set("code", code)

	tok, err := m.tokenRequest(ctx, params)
	if err != nil {
		return err
	}
	if tok.RefreshToken == "" {
		return fmt.Errorf("no refresh token returned. Revoke app access in Zoho API Console and try again")
	}

	if err := m.StoreInitialTokens(ctx, tok.AccessToken, tok.RefreshToken, tok.ExpiresIn); err != nil {
		return fmt.Errorf("failed to store zoho tokens: %w", err)
	}
	m.logger.Info("Zoho connected")
	return nil
}

// tokenRequest posts to the accounts token endpoint. Zoho takes the grant as query parameters.
func (m *TokenManager) tokenRequest(ctx context.Context, params url.Values) (*tokenResponse, error) {
	endpoint := m.cfg.AccountsURL + "/oauth/v2/token?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute token request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read token response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &errors.ErrTokenRefresh{Status: resp.StatusCode, Body: string(body)}
	}

	var tok tokenResponse
	if err := json.Unmarshal(body, &tok); err != nil {
		return nil, fmt.Errorf("failed to unmarshal token response: %w, body: %s", err, string(body))
	}
	if tok.Error != "" {
		return nil, &errors.ErrTokenRefresh{Status: resp.StatusCode, Body: string(body), Code: tok.Error}
	}
	if tok.AccessToken == "" {
		return nil, &errors.ErrTokenRefresh{Status: resp.StatusCode, Body: string(body), Code: "missing access_token"}
	}
	return &tok, nil
}
