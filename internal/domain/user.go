package domain

import "time"

// User es el documento de usuario; password y sessions nunca se serializan hacia afuera.
type User struct {
	ID           string    `json:"_id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Sessions     []Session `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}
