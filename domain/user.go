package domain

import (
	"net/mail"
	"strings"
	"time"
)

// Role decides what a user may see and which workflow steps they may trigger.
type Role string

const (
	RoleAdmin  Role = "ADMIN"
	RoleTeam   Role = "TEAM"
	RoleClient Role = "CLIENT"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleTeam, RoleClient:
		return true
	default:
		return false
	}
}

// User represents an authenticated identity in the agency.
// ClientID is set only for the CLIENT role and links the user to one Client.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	Avatar    string    `json:"avatar,omitempty"`
	ClientID  string    `json:"client_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NormalizeEmail lower-cases and trims email and rejects anything that is not
// a bare address.
func NormalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", Invalidf("invalid email address")
	}
	return email, nil
}

func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// Validate checks the role/client linkage invariant.
func (u *User) Validate() error {
	if u == nil {
		return ErrInvalidPayload
	}
	if u.Email == "" || u.Name == "" {
		return Invalidf("name and email are required")
	}
	if !u.Role.Valid() {
		return Invalidf("unknown role %q", u.Role)
	}
	if u.Role == RoleClient && u.ClientID == "" {
		return Invalidf("client users must reference a client")
	}
	if u.Role != RoleClient && u.ClientID != "" {
		return Invalidf("only client users may reference a client")
	}
	return nil
}

// Credentials holds the password hash for a user; never serialized.
type Credentials struct {
	UserID       string
	Email        string
	PasswordHash string
}
