package middleware

import (
	"context"
	"encoding/gob"
	"net/http"

	"github.com/alexedwards/scs/v2"
	"github.com/ghaggin/cfptracker/internal/config"
)

const (
	flashKey = "flash"
)

// Flash is a one-shot message shown on the next rendered page.
type Flash struct {
	Kind    string
	Message string
}

// SessionManager keeps per-browser UI state (flash messages) in an scs
// session. Authentication lives in the session package, not here.
type SessionManager struct {
	impl *scs.SessionManager
}

func NewSessionManager(cfg *config.Config) (*SessionManager, error) {
	gob.Register(&Flash{})

	sm := &SessionManager{}
	sm.impl = scs.New()
	if cfg.UI.FlashLifetime > 0 {
		sm.impl.Lifetime = cfg.UI.FlashLifetime
	}
	sm.impl.Cookie.Name = "cfptracker_ui"
	sm.impl.Cookie.SameSite = http.SameSiteLaxMode

	return sm, nil
}

func (s *SessionManager) Wrap(next http.Handler) http.Handler {
	return s.impl.LoadAndSave(next)
}

func (s *SessionManager) PutFlash(ctx context.Context, kind, message string) {
	s.impl.Put(ctx, flashKey, &Flash{Kind: kind, Message: message})
}

// PopFlash returns and removes the pending flash, if any.
func (s *SessionManager) PopFlash(ctx context.Context) *Flash {
	f, ok := s.impl.Pop(ctx, flashKey).(*Flash)
	if !ok {
		return nil
	}
	return f
}
