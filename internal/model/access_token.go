package model

// AccessToken is a bearer credential. Only the sha256 of the random part is
// stored; the plaintext form "<id>|<secret>" is returned to the caller once
// at login and never again.
type AccessToken struct {
	ID         string `json:"id"`
	UserID     string `json:"user_id"`
	Name       string `json:"name"`
	TokenHash  string `json:"-"`
	LastUsedAt *int64 `json:"last_used_at"`
	Ctime      int64  `json:"ctime"`
}
