package domain

import "time"

type User struct {
	ID           string
	Email        string  // unique, stored lowercase
	PasswordHash *string // nil until a password is set
	Role         RoleID
	Confirmed    bool
	CreatedAt    time.Time
}
