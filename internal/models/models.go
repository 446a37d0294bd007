package models

import "time"

type User struct {
	ID              int64
	Name            string
	Email           string
	PassHash        []byte
	Country         string
	Language        string
	EmailVerifiedAt *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// AccessToken is an opaque bearer credential. Only the SHA-256 hash of the
// plaintext is stored; the plaintext is returned to the client exactly once.
type AccessToken struct {
	ID        string
	UserID    int64
	TokenHash []byte
	CreatedAt time.Time
}

type Country struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type Language struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Message is the payload published to the mail queue.
type Message struct {
	Email   string `json:"to"`
	Link    string `json:"link"`
	Purpose string `json:"purpose"`
}
