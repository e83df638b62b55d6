package models

// User is an account allowed to request access tokens.
type User struct {
	ID           int64  `json:"id" db:"id"`
	Username     string `json:"username" db:"username"`
	PasswordHash []byte `json:"-" db:"password_hash"`
	DisplayName  string `json:"display_name" db:"display_name"`
	Email        string `json:"email" db:"email"`
	Version      int64  `json:"version" db:"version"`
}

func (u *User) GetID() int64 { return u.ID }
