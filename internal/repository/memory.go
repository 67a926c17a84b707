package repository

import (
	"context"
	"sync"
)

type memoryRepo struct {
	mu    sync.Mutex
	token string
}

func NewMemory() TokenStore {
	return &memoryRepo{}
}

func (r *memoryRepo) Load(_ context.Context) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.token == "" {
		return "", ErrNotFound
	}
	return r.token, nil
}

func (r *memoryRepo) Save(_ context.Context, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.token = token
	return nil
}

func (r *memoryRepo) Clear(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.token = ""
	return nil
}
