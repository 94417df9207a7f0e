package credentials

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/jmspivey7/PlateSync-sub002/internal/infra"
	"github.com/jmspivey7/PlateSync-sub002/internal/sqlinline"
)

const (
	ProviderSendGrid       = "sendgrid"
	ProviderPlanningCenter = "planning_center"

	// ScopeSystem holds platform-wide credentials; church credentials use the church id.
	ScopeSystem = "system"
)

// Token is a stored integration credential.
type Token struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    *time.Time
	Properties   map[string]any
}

type Store struct {
	sql infra.SQLExecutor
}

func NewStore(sql infra.SQLExecutor) *Store {
	return &Store{sql: sql}
}

// SendGridAPIKey returns the operator-configured key, or "" when none is stored.
func (s *Store) SendGridAPIKey(ctx context.Context) (string, error) {
	tok, err := s.Token(ctx, ProviderSendGrid, ScopeSystem)
	if err != nil || tok == nil {
		return "", err
	}
	return tok.AccessToken, nil
}

func (s *Store) SetSendGridAPIKey(ctx context.Context, key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return errors.New("sendgrid api key is required")
	}
	return s.SaveToken(ctx, ProviderSendGrid, ScopeSystem, Token{AccessToken: key})
}

// Token loads a credential; it returns nil without error when none is stored.
func (s *Store) Token(ctx context.Context, provider, scope string) (*Token, error) {
	row := s.sql.QueryRow(ctx, sqlinline.QSelectIntegrationToken, provider, scope)
	var (
		tok   Token
		props []byte
	)
	if err := row.Scan(&tok.AccessToken, &tok.RefreshToken, &tok.ExpiresAt, &props); err != nil {
		if infra.IsNoRows(err) {
			return nil, nil
		}
		return nil, err
	}
	tok.AccessToken = strings.TrimSpace(tok.AccessToken)
	if len(props) > 0 {
		if err := json.Unmarshal(props, &tok.Properties); err != nil {
			return nil, err
		}
	}
	return &tok, nil
}

func (s *Store) SaveToken(ctx context.Context, provider, scope string, tok Token) error {
	if strings.TrimSpace(scope) == "" {
		return errors.New("credential scope is required")
	}
	payload := tok.Properties
	if payload == nil {
		payload = map[string]any{}
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	_, err = s.sql.Exec(ctx, sqlinline.QUpsertIntegrationToken, provider, scope, tok.AccessToken, tok.RefreshToken, tok.ExpiresAt, raw)
	return err
}

func (s *Store) DeleteToken(ctx context.Context, provider, scope string) error {
	_, err := s.sql.Exec(ctx, sqlinline.QDeleteIntegrationToken, provider, scope)
	return err
}
