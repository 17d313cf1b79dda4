package models

import "time"

// User is the profile the account API returns for a signed-in user.
type User struct {
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

func (u User) DisplayName() string {
	switch {
	case u.FirstName != "" && u.LastName != "":
		return u.FirstName + " " + u.LastName
	case u.FirstName != "":
		return u.FirstName
	default:
		return u.Email
	}
}

type Session struct {
	ChatID    int64     `json:"chat_id"`
	Token     string    `json:"token"`
	User      User      `json:"user"`
	CreatedAt time.Time `json:"created_at"`
}

// Account is the server-side record behind a User.
type Account struct {
	ID            int64     `json:"id"`
	Email         string    `json:"email"`
	PasswordHash  string    `json:"-"`
	FirstName     string    `json:"firstName"`
	LastName      string    `json:"lastName"`
	EmailVerified bool      `json:"emailVerified"`
	ConfirmToken  string    `json:"-"`
	CreatedAt     time.Time `json:"createdAt"`
}

func (a Account) User() User {
	return User{Email: a.Email, FirstName: a.FirstName, LastName: a.LastName}
}
