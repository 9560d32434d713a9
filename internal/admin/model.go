package admin

import "time"

type Admin struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// LoginRequest payload del login de administrador.
type LoginRequest struct {
	Username string `json:"username" example:"root"`
	Password string `json:"password" example:"hunter2"`
}
