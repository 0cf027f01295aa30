package calendar_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/Tiliavir/shiftsync/internal/calendar"
)

func tokenServer(t *testing.T, access string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		w.Header().Set("Content-Type", "application/json")
		resp := map[string]any{
			"access_token": access,
			"token_type":   "Bearer",
			"expires_in":   3600,
		}
		if r.Form.Get("grant_type") == "authorization_code" {
			resp["refresh_token"] = "refresh-1"
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func testConfig(tokenURL string) *oauth2.Config {
	cfg := calendar.OAuthConfig("client", "secret", "urn:ietf:wg:oauth:2.0:oob")
	cfg.Endpoint.TokenURL = tokenURL
	return cfg
}

func TestAuthCodeURL(t *testing.T) {
	u := calendar.AuthCodeURL(calendar.OAuthConfig("client", "secret", "http://localhost/cb"), "state-1")
	assert.True(t, strings.HasPrefix(u, "https://accounts.google.com/o/oauth2/v2/auth?"))
	assert.Contains(t, u, "access_type=offline")
	assert.Contains(t, u, "prompt=consent")
	assert.Contains(t, u, "state=state-1")
}

func TestExchangeStoresToken(t *testing.T) {
	srv := tokenServer(t, "access-1")
	store := calendar.NewFileTokenStore(t.TempDir())

	tok, err := calendar.Exchange(context.Background(), testConfig(srv.URL), store, "u1", "code")
	require.NoError(t, err)
	assert.Equal(t, "access-1", tok.AccessToken)
	assert.Equal(t, "refresh-1", tok.RefreshToken)

	stored, err := store.Load(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "access-1", stored.AccessToken)
}

func TestHTTPClientNotConnected(t *testing.T) {
	store := calendar.NewFileTokenStore(t.TempDir())
	_, err := calendar.HTTPClient(context.Background(), testConfig("http://unused"), store, "u1", log.New(io.Discard))
	assert.ErrorIs(t, err, calendar.ErrNotConnected)
}

func TestHTTPClientExpiredWithoutRefresh(t *testing.T) {
	ctx := context.Background()
	store := calendar.NewFileTokenStore(t.TempDir())
	require.NoError(t, store.Save(ctx, "u1", &calendar.Token{AccessToken: "old", Expiry: time.Now().Add(-time.Hour)}))

	_, err := calendar.HTTPClient(ctx, testConfig("http://unused"), store, "u1", log.New(io.Discard))
	assert.ErrorIs(t, err, calendar.ErrNotConnected)
}

func TestHTTPClientRefreshesAndSaves(t *testing.T) {
	ctx := context.Background()
	tokens := tokenServer(t, "access-2")
	store := calendar.NewFileTokenStore(t.TempDir())
	require.NoError(t, store.Save(ctx, "u1", &calendar.Token{
		AccessToken: "old", RefreshToken: "refresh-1", Expiry: time.Now().Add(-time.Hour),
	}))

	var gotAuth string
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewEncoder(w).Encode(map[string]any{"items": []any{}})
	}))
	defer api.Close()

	hc, err := calendar.HTTPClient(ctx, testConfig(tokens.URL), store, "u1", log.New(io.Discard))
	require.NoError(t, err)
	_, err = calendar.NewClient(hc, api.URL).ListEvents(ctx, calendar.Query{})
	require.NoError(t, err)
	assert.Equal(t, "Bearer access-2", gotAuth)

	stored, err := store.Load(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "access-2", stored.AccessToken)
	assert.Equal(t, "refresh-1", stored.RefreshToken)
}

// readOnlyStore loads from an inner store and refuses every write.
type readOnlyStore struct {
	calendar.TokenStore
}

func (readOnlyStore) Save(context.Context, string, *calendar.Token) error {
	return errors.New("disk full")
}

func TestHTTPClientLogsFailedTokenSave(t *testing.T) {
	ctx := context.Background()
	tokens := tokenServer(t, "access-2")
	inner := calendar.NewFileTokenStore(t.TempDir())
	require.NoError(t, inner.Save(ctx, "u1", &calendar.Token{
		AccessToken: "old", RefreshToken: "refresh-1", Expiry: time.Now().Add(-time.Hour),
	}))

	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"items": []any{}})
	}))
	defer api.Close()

	var buf bytes.Buffer
	hc, err := calendar.HTTPClient(ctx, testConfig(tokens.URL), readOnlyStore{inner}, "u1", log.New(&buf))
	require.NoError(t, err)
	_, err = calendar.NewClient(hc, api.URL).ListEvents(ctx, calendar.Query{})
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "saving refreshed calendar token failed")
	assert.Contains(t, buf.String(), "disk full")

	stored, err := inner.Load(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "old", stored.AccessToken)
}
