package model

// Session is the authenticated state derived from a bearer token. User is
// non-nil only once Token has been validated against the server.
type Session struct {
	Token string
	User  *User
}

func (s Session) Authenticated() bool {
	return s.User != nil
}
