package models

import "time"

type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	FullName     string    `json:"full_name"`
	IsAdmin      bool      `json:"is_admin"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// UserPatch is a partial update of a user. Password is plain text and is
// hashed by the service before it reaches storage.
type UserPatch struct {
	Email    Field[string] `json:"email,omitzero"`
	FullName Field[string] `json:"full_name,omitzero"`
	Password Field[string] `json:"password,omitzero"`
	IsAdmin  Field[bool]   `json:"is_admin,omitzero"`
}

func (p UserPatch) Empty() bool {
	return p.Email.IsZero() && p.FullName.IsZero() && p.Password.IsZero() && p.IsAdmin.IsZero()
}
