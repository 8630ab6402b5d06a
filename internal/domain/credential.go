package domain

import "time"

// Credential is a bearer access token obtained from the auth server.
type Credential struct {
	Token    string
	IssuedAt time.Time
	TTL      time.Duration
}

func (c Credential) ExpiresAt() time.Time {
	return c.IssuedAt.Add(c.TTL)
}

// UsableAt reports whether the credential can still be attached to a
// request at now, leaving at least skew before expiry.
func (c Credential) UsableAt(now time.Time, skew time.Duration) bool {
	if c.Token == "" {
		return false
	}
	return now.Before(c.ExpiresAt().Add(-skew))
}

// ExpiresInSeconds is the lifetime reported by the auth server.
func (c Credential) ExpiresInSeconds() int64 {
	return int64(c.TTL / time.Second)
}
