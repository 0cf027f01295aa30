package calendar

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/oauth2"
)

// Scopes requested when connecting a Google account.
var Scopes = []string{
	"https://www.googleapis.com/auth/calendar",
	"https://www.googleapis.com/auth/calendar.events",
}

// GoogleEndpoint is Google's OAuth 2.0 authorization server.
var GoogleEndpoint = oauth2.Endpoint{
	AuthURL:   "https://accounts.google.com/o/oauth2/v2/auth",
	TokenURL:  "https://oauth2.googleapis.com/token",
	AuthStyle: oauth2.AuthStyleInParams,
}

// OAuthConfig returns the oauth2.Config for the installed-app flow.
func OAuthConfig(clientID, clientSecret, redirectURL string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURL,
		Scopes:       Scopes,
		Endpoint:     GoogleEndpoint,
	}
}

// AuthCodeURL returns the consent page URL. Offline access with forced
// consent makes Google return a refresh token every time.
func AuthCodeURL(cfg *oauth2.Config, state string) string {
	return cfg.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
}

// Exchange trades an authorization code for a token and stores it.
func Exchange(ctx context.Context, cfg *oauth2.Config, store TokenStore, userID, code string) (*Token, error) {
	otok, err := cfg.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchanging authorization code: %w", err)
	}
	tok := fromOAuth2(otok)
	if err := store.Save(ctx, userID, tok); err != nil {
		return nil, err
	}
	return tok, nil
}

// HTTPClient returns a client that authenticates as userID and refreshes
// the access token when needed, writing refreshed tokens back to store.
func HTTPClient(ctx context.Context, cfg *oauth2.Config, store TokenStore, userID string, logger *log.Logger) (*http.Client, error) {
	tok, err := store.Load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !tok.Valid(time.Now()) && !tok.Refreshable() {
		return nil, fmt.Errorf("%w: token expired, run 'shiftsync calendar connect'", ErrNotConnected)
	}
	if logger == nil {
		logger = log.Default()
	}
	src := &savingTokenSource{
		ts:     cfg.TokenSource(ctx, tok.oauth2()),
		store:  store,
		userID: userID,
		logger: logger,
		last:   tok.AccessToken,
	}
	return oauth2.NewClient(ctx, src), nil
}

// savingTokenSource wraps a TokenSource and persists refreshed tokens.
type savingTokenSource struct {
	ts     oauth2.TokenSource
	store  TokenStore
	userID string
	logger *log.Logger

	mu   sync.Mutex
	last string
}

func (s *savingTokenSource) Token() (*oauth2.Token, error) {
	otok, err := s.ts.Token()
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if otok.AccessToken != s.last {
		s.last = otok.AccessToken
		if err := s.store.Save(context.Background(), s.userID, fromOAuth2(otok)); err != nil {
			s.logger.Warn("saving refreshed calendar token failed", "user", s.userID, "err", err)
		}
	}
	return otok, nil
}
