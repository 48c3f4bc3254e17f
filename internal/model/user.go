package model

// User is an account record. PasswordHash and RememberToken never leave the
// server. EmailVerifiedAt is nil until the verification link is used and is
// set exactly once.
type User struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Email           string `json:"email"`
	PasswordHash    string `json:"-"`
	RememberToken   string `json:"-"`
	EmailVerifiedAt *int64 `json:"email_verified_at"`
	Ctime           int64  `json:"ctime"`
	Mtime           int64  `json:"mtime"`
}

func (u *User) Verified() bool {
	return u.EmailVerifiedAt != nil
}
