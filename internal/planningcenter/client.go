// Package planningcenter imports church members from Planning Center People.
package planningcenter

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"

	"github.com/jmspivey7/PlateSync-sub002/internal/domain"
	"github.com/jmspivey7/PlateSync-sub002/internal/infra/credentials"
)

const (
	stateAudience = "planning-center"
	stateTTL      = 10 * time.Minute
	maxPages      = 1000
)

var (
	// ErrNotConnected is returned when a church has not authorized Planning Center.
	ErrNotConnected = errors.New("planning center is not connected")

	// ErrNotConfigured is returned when OAuth client credentials are missing.
	ErrNotConfigured = errors.New("planning center is not configured")

	// ErrInvalidState is returned for tampered or expired OAuth state values.
	ErrInvalidState = errors.New("planning center: invalid oauth state")
)

// TokenStore persists per-church OAuth tokens.
type TokenStore interface {
	Token(ctx context.Context, provider, scope string) (*credentials.Token, error)
	SaveToken(ctx context.Context, provider, scope string, tok credentials.Token) error
	DeleteToken(ctx context.Context, provider, scope string) error
}

// Config holds the OAuth application registered with Planning Center.
type Config struct {
	ClientID     string
	ClientSecret string
	BaseURL      string
	RedirectURL  string
	StateSecret  string
}

// Client runs the OAuth flow and the people sync.
type Client struct {
	Members domain.MemberRepository
	Tokens  TokenStore
	Logger  zerolog.Logger

	oauth       *oauth2.Config
	baseURL     string
	stateSecret []byte
}

func NewClient(cfg Config, members domain.MemberRepository, tokens TokenStore, logger zerolog.Logger) *Client {
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = "https://api.planningcenteronline.com"
	}
	return &Client{
		Members: members,
		Tokens:  tokens,
		Logger:  logger,
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       []string{"people"},
			Endpoint: oauth2.Endpoint{
				AuthURL:  base + "/oauth/authorize",
				TokenURL: base + "/oauth/token",
			},
		},
		baseURL:     base,
		stateSecret: []byte(cfg.StateSecret),
	}
}

// Configured reports whether OAuth client credentials are present.
func (c *Client) Configured() bool {
	return c.oauth.ClientID != "" && c.oauth.ClientSecret != ""
}

// AuthorizeURL returns the consent page address for the church.
func (c *Client) AuthorizeURL(churchID, userID string) (string, error) {
	if !c.Configured() {
		return "", ErrNotConfigured
	}
	now := time.Now()
	state, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   churchID,
		ID:        userID,
		Audience:  jwt.ClaimStrings{stateAudience},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(stateTTL)),
	}).SignedString(c.stateSecret)
	if err != nil {
		return "", err
	}
	return c.oauth.AuthCodeURL(state, oauth2.AccessTypeOffline), nil
}

// ParseState returns the church id carried by a state value from AuthorizeURL.
func (c *Client) ParseState(state string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(state, claims, func(*jwt.Token) (any, error) {
		return c.stateSecret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithAudience(stateAudience), jwt.WithExpirationRequired())
	if err != nil || claims.Subject == "" {
		return "", ErrInvalidState
	}
	return claims.Subject, nil
}

// Connect exchanges an authorization code and stores the church's token.
func (c *Client) Connect(ctx context.Context, churchID, code string) error {
	if !c.Configured() {
		return ErrNotConfigured
	}
	tok, err := c.oauth.Exchange(ctx, code)
	if err != nil {
		return fmt.Errorf("planning center token exchange: %w", err)
	}
	return c.saveToken(ctx, churchID, tok)
}

// Connected reports whether the church has a stored token.
func (c *Client) Connected(ctx context.Context, churchID string) (bool, error) {
	tok, err := c.Tokens.Token(ctx, credentials.ProviderPlanningCenter, churchID)
	return tok != nil, err
}

// Disconnect forgets the church's token. Imported members are kept.
func (c *Client) Disconnect(ctx context.Context, churchID string) error {
	return c.Tokens.DeleteToken(ctx, credentials.ProviderPlanningCenter, churchID)
}

func (c *Client) saveToken(ctx context.Context, churchID string, tok *oauth2.Token) error {
	stored := credentials.Token{AccessToken: tok.AccessToken, RefreshToken: tok.RefreshToken}
	if !tok.Expiry.IsZero() {
		exp := tok.Expiry.UTC()
		stored.ExpiresAt = &exp
	}
	return c.Tokens.SaveToken(ctx, credentials.ProviderPlanningCenter, churchID, stored)
}

// httpClient returns an authorized client for the church; refreshed tokens
// are written back after use through the returned source.
func (c *Client) httpClient(ctx context.Context, churchID string) (*http.Client, oauth2.TokenSource, *oauth2.Token, error) {
	stored, err := c.Tokens.Token(ctx, credentials.ProviderPlanningCenter, churchID)
	if err != nil {
		return nil, nil, nil, err
	}
	if stored == nil {
		return nil, nil, nil, ErrNotConnected
	}
	tok := &oauth2.Token{AccessToken: stored.AccessToken, RefreshToken: stored.RefreshToken, TokenType: "Bearer"}
	if stored.ExpiresAt != nil {
		tok.Expiry = *stored.ExpiresAt
	}
	src := c.oauth.TokenSource(ctx, tok)
	return oauth2.NewClient(ctx, src), src, tok, nil
}

func (c *Client) get(ctx context.Context, hc *http.Client, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/vnd.api+json")
	resp, err := hc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, 16<<20))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusUnauthorized {
		return nil, ErrNotConnected
	}
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("planning center: %s returned %d", req.URL.Path, resp.StatusCode)
	}
	return body, nil
}
