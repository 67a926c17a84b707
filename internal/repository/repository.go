package repository

import (
	"context"
	"errors"
)

var (
	ErrNotFound = errors.New("not found")
)

// TokenKey is the fixed storage key the bearer token lives under.
const TokenKey = "token"

// TokenStore persists the single bearer token across process restarts.
type TokenStore interface {
	Load(ctx context.Context) (string, error)
	Save(ctx context.Context, token string) error
	Clear(ctx context.Context) error
}
