package models

import "time"

type User struct {
	ID           int       `json:"id"`
	Username     string    `json:"username"`
	Phone        *string   `json:"phone,omitempty"`
	PasswordHash string    `json:"-"`
	IsSuperuser  bool      `json:"is_superuser"`
	Score        int       `json:"score"`
	CreatedAt    time.Time `json:"created_at"`
}

// UserRef is the public part of a user joined into other entities.
type UserRef struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
}

type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}
