package calendar

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/oauth2"
)

// ErrNotConnected is returned when no usable Google token is stored.
var ErrNotConnected = errors.New("google calendar not connected")

// expiryMargin is subtracted from the expiry so a token is never used in
// its final minute.
const expiryMargin = time.Minute

// Token holds an OAuth2 access/refresh token pair.
// JSON field names match golang.org/x/oauth2.Token.
type Token struct {
	AccessToken  string    `json:"access_token"`
	TokenType    string    `json:"token_type,omitempty"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	Expiry       time.Time `json:"expiry,omitempty"`
}

// Valid reports whether the access token can still be used at now.
func (t *Token) Valid(now time.Time) bool {
	if t == nil || t.AccessToken == "" {
		return false
	}
	return t.Expiry.IsZero() || now.Add(expiryMargin).Before(t.Expiry)
}

// Refreshable reports whether a new access token can be obtained without
// user interaction.
func (t *Token) Refreshable() bool {
	return t != nil && t.RefreshToken != ""
}

func (t *Token) oauth2() *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  t.AccessToken,
		TokenType:    t.TokenType,
		RefreshToken: t.RefreshToken,
		Expiry:       t.Expiry,
	}
}

func fromOAuth2(tok *oauth2.Token) *Token {
	return &Token{
		AccessToken:  tok.AccessToken,
		TokenType:    tok.TokenType,
		RefreshToken: tok.RefreshToken,
		Expiry:       tok.Expiry,
	}
}

// TokenStore persists one Google token per user.
type TokenStore interface {
	// Load returns ErrNotConnected when nothing is stored for userID.
	Load(ctx context.Context, userID string) (*Token, error)
	Save(ctx context.Context, userID string, tok *Token) error
	Delete(ctx context.Context, userID string) error
}

// FileTokenStore keeps tokens as 0600 JSON files under dir.
type FileTokenStore struct {
	dir string
}

// NewFileTokenStore returns a store writing to dir (usually ~/.shiftsync/auth).
func NewFileTokenStore(dir string) *FileTokenStore {
	return &FileTokenStore{dir: dir}
}

func (s *FileTokenStore) path(userID string) string {
	if userID == "" {
		userID = "local"
	}
	userID = strings.NewReplacer("/", "_", "\\", "_", ":", "_").Replace(userID)
	return filepath.Join(s.dir, userID+"_google_token.json")
}

func (s *FileTokenStore) Load(_ context.Context, userID string) (*Token, error) {
	path := s.path(userID)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, ErrNotConnected
	}
	if err != nil {
		return nil, fmt.Errorf("reading token file: %w", err)
	}
	var tok Token
	if err := json.Unmarshal(data, &tok); err != nil {
		return nil, fmt.Errorf("corrupt token file (delete %s to re-authenticate): %w", path, err)
	}
	return &tok, nil
}

func (s *FileTokenStore) Save(_ context.Context, userID string, tok *Token) error {
	path := s.path(userID)
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating auth directory: %w", err)
	}
	data, err := json.MarshalIndent(tok, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling token: %w", err)
	}
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o600); err != nil {
		return fmt.Errorf("writing token file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("saving token file: %w", err)
	}
	return nil
}

func (s *FileTokenStore) Delete(_ context.Context, userID string) error {
	if err := os.Remove(s.path(userID)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing token file: %w", err)
	}
	return nil
}

// RedisTokenStore shares tokens between machines through Redis.
type RedisTokenStore struct {
	client *redis.Client
	prefix string
}

// NewRedisTokenStore connects to redisURL and verifies the connection.
func NewRedisTokenStore(redisURL string) (*RedisTokenStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	return NewRedisTokenStoreWithClient(client), nil
}

// NewRedisTokenStoreWithClient wraps an existing client.
func NewRedisTokenStoreWithClient(client *redis.Client) *RedisTokenStore {
	return &RedisTokenStore{client: client, prefix: "shiftsync:gcal-token:"}
}

func (s *RedisTokenStore) key(userID string) string {
	return s.prefix + userID
}

func (s *RedisTokenStore) Load(ctx context.Context, userID string) (*Token, error) {
	raw, err := s.client.Get(ctx, s.key(userID)).Result()
	if err == redis.Nil {
		return nil, ErrNotConnected
	}
	if err != nil {
		return nil, fmt.Errorf("lookup token: %w", err)
	}
	var tok Token
	if err := json.Unmarshal([]byte(raw), &tok); err != nil {
		return nil, fmt.Errorf("unmarshal token: %w", err)
	}
	return &tok, nil
}

// Save stores tok. Tokens without a refresh token expire from Redis together
// with the access token; refreshable tokens are kept until deleted.
func (s *RedisTokenStore) Save(ctx context.Context, userID string, tok *Token) error {
	data, err := json.Marshal(tok)
	if err != nil {
		return fmt.Errorf("marshal token: %w", err)
	}
	var ttl time.Duration
	if !tok.Refreshable() && !tok.Expiry.IsZero() {
		ttl = time.Until(tok.Expiry)
		if ttl <= 0 {
			return s.Delete(ctx, userID)
		}
	}
	if err := s.client.Set(ctx, s.key(userID), data, ttl).Err(); err != nil {
		return fmt.Errorf("save token: %w", err)
	}
	return nil
}

func (s *RedisTokenStore) Delete(ctx context.Context, userID string) error {
	if err := s.client.Del(ctx, s.key(userID)).Err(); err != nil {
		return fmt.Errorf("delete token: %w", err)
	}
	return nil
}

// Close closes the Redis connection.
func (s *RedisTokenStore) Close() error {
	return s.client.Close()
}
