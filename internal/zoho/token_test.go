package zoho

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/chiefcousin/toybox/internal/config"
	"github.com/chiefcousin/toybox/internal/domain"
	"github.com/chiefcousin/toybox/internal/repository"
	"github.com/chiefcousin/toybox/internal/repository/memory"
	"github.com/chiefcousin/toybox/pkg/errors"
)

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestTokenManager(t *testing.T, handler http.HandlerFunc) (*TokenManager, *memory.SettingsRepository, *int32) {
	t.Helper()
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	settings := memory.NewSettingsRepository()
	m := NewTokenManager(config.ZohoConfig{
		ClientID:     "cid",
		ClientSecret: "secret",
		RedirectURI:  "https://shop.test/api/zoho/callback",
		AccountsURL:  srv.URL,
	}, settings, zap.NewNop())
	m.SetClock(func() time.Time { return fixedNow })
	return m, settings, &calls
}

func storeTokens(t *testing.T, s repository.SettingsRepository, access, refresh string, expiresAt time.Time) {
	t.Helper()
	require.NoError(t, s.SetMany(context.Background(), map[string]string{
		domain.SettingZohoAccessToken:    access,
		domain.SettingZohoRefreshToken:   refresh,
		domain.SettingZohoTokenExpiresAt: strconv.FormatInt(expiresAt.UnixMilli(), 10),
	}))
}

func TestValidAccessToken_NotConnected(t *testing.T) {
	m, _, calls := newTestTokenManager(t, func(w http.ResponseWriter, r *http.Request) {})

	_, err := m.ValidAccessToken(context.Background())
	var nc *errors.ErrNotConnected
	assert.ErrorAs(t, err, &nc)
	assert.Equal(t, int32(0), atomic.LoadInt32(calls))
}

func TestValidAccessToken_ReturnsUnexpiredToken(t *testing.T) {
	m, settings, calls := newTestTokenManager(t, func(w http.ResponseWriter, r *http.Request) {})
	storeTokens(t, settings, "A1", "R1", fixedNow.Add(10*time.Minute))

	tok, err := m.ValidAccessToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "A1", tok)
	assert.Equal(t, int32(0), atomic.LoadInt32(calls), "no network call for a fresh token")
}

func TestValidAccessToken_RefreshesExpiredToken(t *testing.T) {
	var gotQuery url.Values
	m, settings, calls := newTestTokenManager(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/oauth/v2/token", r.URL.Path)
		gotQuery = r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"A2","expires_in":3600}`))
	})
	storeTokens(t, settings, "A1", "R1", fixedNow.Add(-time.Second))

	tok, err := m.ValidAccessToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "A2", tok)
	assert.Equal(t, int32(1), atomic.LoadInt32(calls))

	assert.Equal(t, "refresh_token", gotQuery.Get("grant_type"))
	assert.Equal(t, "R1", gotQuery.Get("refresh_token"))
	assert.Equal(t, "cid", gotQuery.Get("client_id"))

	rec, err := m.TokenRecord(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "A2", rec.AccessToken)
	assert.Equal(t, "R1", rec.RefreshToken, "refresh token kept when not rotated")
	assert.Equal(t, fixedNow.Add(3540*time.Second).UnixMilli(), rec.ExpiresAt.UnixMilli())
}

func TestValidAccessToken_StoresRotatedRefreshToken(t *testing.T) {
	m, settings, _ := newTestTokenManager(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"access_token":"A2","refresh_token":"R2"}`))
	})
	storeTokens(t, settings, "", "R1", time.Time{})

	_, err := m.ValidAccessToken(context.Background())
	require.NoError(t, err)

	rec, err := m.TokenRecord(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "R2", rec.RefreshToken)
	assert.Equal(t, fixedNow.Add(3540*time.Second).UnixMilli(), rec.ExpiresAt.UnixMilli(), "expires_in defaults to 3600")
}

func TestValidAccessToken_RefreshFailures(t *testing.T) {
	t.Run("non-2xx", func(t *testing.T) {
		m, settings, _ := newTestTokenManager(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`invalid client`))
		})
		storeTokens(t, settings, "A1", "R1", fixedNow.Add(-time.Minute))

		_, err := m.ValidAccessToken(context.Background())
		var tr *errors.ErrTokenRefresh
		require.ErrorAs(t, err, &tr)
		assert.Equal(t, http.StatusBadRequest, tr.Status)
		assert.Equal(t, "invalid client", tr.Body)
	})

	t.Run("error field in 2xx body", func(t *testing.T) {
		m, settings, _ := newTestTokenManager(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"error":"invalid_code"}`))
		})
		storeTokens(t, settings, "A1", "R1", fixedNow.Add(-time.Minute))

		_, err := m.ValidAccessToken(context.Background())
		var tr *errors.ErrTokenRefresh
		require.ErrorAs(t, err, &tr)
		assert.Equal(t, "invalid_code", tr.Code)

		rec, _ := m.TokenRecord(context.Background())
		assert.Equal(t, "A1", rec.AccessToken, "stored tokens untouched on failure")
	})
}

// racingSettings simulates another process refreshing between our read and our write
type racingSettings struct {
	*memory.SettingsRepository
}

func (r racingSettings) CompareAndSet(ctx context.Context, key string, expected int64, value string) (bool, error) {
	_ = r.SettingsRepository.Set(ctx, key, "A-other")
	return r.SettingsRepository.CompareAndSet(ctx, key, expected, value)
}

func TestValidAccessToken_LostRefreshRaceUsesStoredToken(t *testing.T) {
	m, settings, _ := newTestTokenManager(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"access_token":"A-mine","expires_in":3600}`))
	})
	storeTokens(t, settings, "A1", "R1", fixedNow.Add(-time.Minute))
	m.settings = racingSettings{settings}

	tok, err := m.ValidAccessToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "A-other", tok)
}

func TestAuthURL(t *testing.T) {
	m, _, _ := newTestTokenManager(t, func(w http.ResponseWriter, r *http.Request) {})

	u, err := url.Parse(m.AuthURL("xyz"))
	require.NoError(t, err)
	q := u.Query()

	assert.Equal(t, "/oauth/v2/auth", u.Path)
	assert.Equal(t, "code", q.Get("response_type"))
	assert.Equal(t, "offline", q.Get("access_type"))
	assert.Equal(t, "consent", q.Get("prompt"))
	assert.Equal(t, "xyz", q.Get("state"))
	assert.Equal(t, "ZohoInventory.items.READ,ZohoInventory.items.UPDATE,ZohoInventory.salesorders.CREATE,ZohoInventory.salesorders.READ", q.Get("scope"))
}

func TestExchangeCode(t *testing.T) {
	t.Run("stores tokens", func(t *testing.T) {
		m, _, _ := newTestTokenManager(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "authorization_code", r.URL.Query().Get("grant_type"))
			assert.Equal(t, "the-code", r.URL.Query().Get("code"))
			w.Write([]byte(`{"access_token":"A","refresh_token":"R","expires_in":3600}`))
		})

		require.NoError(t, m.ExchangeCode(context.Background(), "the-code"))
		assert.True(t, m.IsConnected(context.Background()))
	})

	t.Run("requires a refresh token", func(t *testing.T) {
		m, _, _ := newTestTokenManager(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"access_token":"A","expires_in":3600}`))
		})

		err := m.ExchangeCode(context.Background(), "the-code")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no refresh token")
		assert.False(t, m.IsConnected(context.Background()))
	})
}

func TestDisconnect(t *testing.T) {
	m, settings, _ := newTestTokenManager(t, func(w http.ResponseWriter, r *http.Request) {})
	storeTokens(t, settings, "A1", "R1", fixedNow.Add(time.Hour))

	require.NoError(t, m.Disconnect(context.Background()))
	assert.False(t, m.IsConnected(context.Background()))
}
