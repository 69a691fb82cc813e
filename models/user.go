package models

import (
	"time"
)

// User is an account holding a coin balance
type User struct {
	ID        int64     `db:"id"`
	Username  string    `db:"username"`
	Email     string    `db:"email"`
	Coins     int64     `db:"coins"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// Profile is the public view of a user's account
type Profile struct {
	Username string
	Email    string
	Coins    int64
}

// Profile returns the user's public profile
func (u *User) Profile() *Profile {
	return &Profile{
		Username: u.Username,
		Email:    u.Email,
		Coins:    u.Coins,
	}
}
