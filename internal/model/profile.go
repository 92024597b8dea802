package model

import "time"

// Profile is the application-level user record, distinct from the bare
// authentication identity.  One row exists per registered account; it is
// created by a database trigger when the account is created, never by the
// API itself.  The Role field is the sole authority for admin capability.
//
// Fields:
//  ID        – primary key identifier, shared with the auth account.
//  Name      – full display name.
//  Email     – unique email address, lower-cased.
//  CPF       – Brazilian tax id in the form 000.000.000-00.
//  BirthDate – date of birth (nullable).
//  Phone     – contact phone (nullable).
//  Role      – "admin" or "user".
//  CreatedAt – creation timestamp.
//  UpdatedAt – last update timestamp.
type Profile struct {
	ID        uint64     `json:"id"`         // profiles.id
	Name      string     `json:"name"`       // profiles.name
	Email     string     `json:"email"`      // profiles.email
	CPF       string     `json:"cpf"`        // profiles.cpf
	BirthDate *string    `json:"birth_date"` // profiles.birth_date (nullable)
	Phone     *string    `json:"phone"`      // profiles.phone (nullable)
	Role      string     `json:"role"`       // profiles.role ("admin" | "user")
	CreatedAt time.Time  `json:"created_at"` // profiles.created_at
	UpdatedAt time.Time  `json:"updated_at"` // profiles.updated_at
}

// IsAdmin reports whether this profile grants admin capability.  Callers
// holding no profile at all must treat the user as non-admin.
func (p *Profile) IsAdmin() bool {
	return p != nil && p.Role == RoleAdmin
}

// Role values stored in profiles.role.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)
