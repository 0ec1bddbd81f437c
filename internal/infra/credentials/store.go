// Package credentials keeps provider API keys in the integration_tokens table
// so the service can start without one in its environment.
package credentials

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"housepaint/internal/infra"
	"housepaint/internal/sqlinline"
)

const (
	ProviderGemini = "gemini"
)

// ErrEmptyKey is returned when storing a blank key.
var ErrEmptyKey = errors.New("gemini api key is required")

type Store struct {
	sql infra.SQLExecutor
}

func NewStore(sql infra.SQLExecutor) *Store {
	return &Store{sql: sql}
}

func (s *Store) GeminiAPIKey(ctx context.Context) (string, error) {
	return s.Token(ctx, ProviderGemini)
}

// Token returns the stored token for provider, or "" when none is stored.
func (s *Store) Token(ctx context.Context, provider string) (string, error) {
	row := s.sql.QueryRow(ctx, sqlinline.QSelectIntegrationToken, provider)
	var token string
	if err := row.Scan(&token); err != nil {
		if infra.IsNoRows(err) {
			return "", nil
		}
		return "", err
	}
	return strings.TrimSpace(token), nil
}

// ResolveGeminiAPIKey prefers the configured key and falls back to the
// stored one.
func (s *Store) ResolveGeminiAPIKey(ctx context.Context, configured string) (string, error) {
	if key := strings.TrimSpace(configured); key != "" {
		return key, nil
	}
	return s.GeminiAPIKey(ctx)
}

// SetGeminiAPIKey stores key. props is kept alongside it, e.g. who set it.
func (s *Store) SetGeminiAPIKey(ctx context.Context, key string, props map[string]any) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return ErrEmptyKey
	}
	return s.upsert(ctx, ProviderGemini, key, props)
}

func (s *Store) upsert(ctx context.Context, provider, token string, props map[string]any) error {
	payload := props
	if payload == nil {
		payload = map[string]any{}
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	_, err = s.sql.Exec(ctx, sqlinline.QUpsertIntegrationToken, provider, token, raw)
	return err
}
