package models

import "time"

type User struct {
	ID           string
	Email        string
	PasswordHash string
	IsConnected  bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
