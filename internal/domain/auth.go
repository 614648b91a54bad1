package domain

import "time"

// AdminSession is a server-verified admin login.
type AdminSession struct {
	TokenID   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Active reports whether the session has not yet expired.
func (s AdminSession) Active(now time.Time) bool {
	return now.Before(s.ExpiresAt)
}
