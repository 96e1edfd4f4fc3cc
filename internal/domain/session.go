package domain

import "time"

// Session is an active web-application session as recorded by the identity
// layer.
type Session struct {
	Token   string
	UserID  string
	Expires time.Time
}

// Caller is the authorization context passed explicitly into every operation.
type Caller struct {
	Session *Session
}

func Anonymous() Caller {
	return Caller{}
}

func Authenticated(s Session) Caller {
	return Caller{Session: &s}
}

func (c Caller) Authenticated() bool {
	return c.Session != nil
}
