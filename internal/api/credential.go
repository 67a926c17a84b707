package api

import "net/http"

// Credential is an immutable bearer credential attached to a single
// request. The zero value is anonymous.
type Credential struct {
	token string
}

var Anonymous = Credential{}

func Bearer(token string) Credential {
	return Credential{token: token}
}

func (c Credential) Token() string {
	return c.token
}

func (c Credential) IsAnonymous() bool {
	return c.token == ""
}

func (c Credential) apply(h http.Header) {
	if c.token == "" {
		return
	}
	h.Set("Authorization", "Bearer "+c.token)
}

// CredentialSource hands out the credential current at call time.
type CredentialSource interface {
	Credential() Credential
}
