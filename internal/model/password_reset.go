package model

// PasswordReset is the ephemeral reset request for one email. The table holds
// at most one row per email; a new request replaces the old one. TokenHash is
// a bcrypt hash of the token mailed to the user.
type PasswordReset struct {
	Email     string `json:"email"`
	TokenHash string `json:"-"`
	Ctime     int64  `json:"ctime"`
}

func (p *PasswordReset) ExpiredAt(ttlSeconds, now int64) bool {
	return p.Ctime+ttlSeconds <= now
}
