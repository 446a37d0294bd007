// Package userview maps user records to their wire representation. The
// password hash never crosses this boundary.
package userview

import (
	"time"

	"account_service/internal/models"
)

type User struct {
	ID              int64      `json:"id"`
	Name            string     `json:"name"`
	Email           string     `json:"email"`
	EmailVerifiedAt *time.Time `json:"email_verified_at"`
	Country         string     `json:"country"`
	Language        string     `json:"language"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

func From(u models.User) User {
	return User{
		ID:              u.ID,
		Name:            u.Name,
		Email:           u.Email,
		EmailVerifiedAt: u.EmailVerifiedAt,
		Country:         u.Country,
		Language:        u.Language,
		CreatedAt:       u.CreatedAt,
		UpdatedAt:       u.UpdatedAt,
	}
}
