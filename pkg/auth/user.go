package auth

import (
	"slices"
	"strings"
	"time"
)

// Role names assigned to accounts.
const (
	RoleUser      = "USER"
	RoleAdmin     = "ADMIN"
	RoleModerator = "MODERATOR"
)

// legacyRolePrefix is carried by role names written by older deployments (ROLE_USER).
const legacyRolePrefix = "ROLE_"

// Identity provider names stored in User.Provider.
const (
	ProviderLocal  = "local"
	ProviderGoogle = "google"
	ProviderGitHub = "github"
)

// User is a persisted account. Username and Email are unique when non-empty.
type User struct {
	ID           string    `bson:"_id" json:"id"`
	Username     string    `bson:"username,omitempty" json:"username,omitempty"`
	Email        string    `bson:"email,omitempty" json:"email,omitempty"`
	PasswordHash string    `bson:"passwordHash,omitempty" json:"-"`
	DisplayName  string    `bson:"displayName,omitempty" json:"displayName,omitempty"`
	Roles        []string  `bson:"roles" json:"roles"`
	Provider     string    `bson:"provider,omitempty" json:"provider,omitempty"`
	ProviderID   string    `bson:"providerId,omitempty" json:"-"`
	Enabled      bool      `bson:"enabled" json:"enabled"`
	CreatedAt    time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time `bson:"updatedAt" json:"updatedAt"`
}

// HasPassword reports whether the account can sign in with a password.
func (u *User) HasPassword() bool {
	return u.PasswordHash != ""
}

// HasRole reports whether the account holds role, ignoring a legacy ROLE_ prefix.
func (u *User) HasRole(role string) bool {
	want := NormalizeRole(role)
	return slices.ContainsFunc(u.Roles, func(r string) bool {
		return NormalizeRole(r) == want
	})
}

// Subject is the token subject for the account: its email, or its username when
// no email is on record.
func (u *User) Subject() string {
	if u.Email != "" {
		return u.Email
	}
	return u.Username
}

// Clone returns a deep copy of u.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	c.Roles = slices.Clone(u.Roles)
	return &c
}

// Touch prepares u for persistence at now: CreatedAt is set once, UpdatedAt always.
// Store implementations call it from Save.
func (u *User) Touch(now time.Time) {
	now = now.UTC()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now
}

// NormalizeRole strips a legacy ROLE_ prefix and upper-cases the name.
func NormalizeRole(role string) string {
	role = strings.ToUpper(strings.TrimSpace(role))
	return strings.TrimPrefix(role, legacyRolePrefix)
}

// NormalizeEmail trims and lower-cases an email address for lookup and storage.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
