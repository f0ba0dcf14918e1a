package models

import (
	"encoding/json"
	"strings"
	"time"
)

// SeedIDPrefix marks the well-known demo accounts recreated by bootstrap and
// by the bulk reset operations. Registered accounts never carry it.
const SeedIDPrefix = "demo-"

// UserRecord is a single account as stored in the snapshot. JSON tags match
// the legacy document shape so old snapshots load unchanged.
type UserRecord struct {
	ID              string       `json:"id"`
	Username        string       `json:"username"`
	Email           string       `json:"email"`
	PhoneNumber     string       `json:"phoneNumber,omitempty"`
	PasswordHash    string       `json:"passwordHash,omitempty"`
	FullName        string       `json:"fullName"`
	Role            Role         `json:"role"`
	CredentialLevel string       `json:"credentialLevel,omitempty"`
	Permissions     []Permission `json:"permissions"`
	Bio             string       `json:"bio,omitempty"`
	FavoriteGenres  []string     `json:"favoriteGenres,omitempty"`
	BooksRead       int          `json:"booksRead"`
	IsActive        bool         `json:"isActive"`
	IsVerified      bool         `json:"isVerified"`
	CreatedAt       time.Time    `json:"createdAt"`
	LastLogin       *time.Time   `json:"lastLogin,omitempty"`
	Theme           string       `json:"theme,omitempty"`
	Notifications   bool         `json:"notifications"`
	AutoSave        bool         `json:"autoSave"`
}

// DefaultTheme is applied to new accounts and to legacy records that carry
// no theme of their own.
const DefaultTheme = "light"

// UnmarshalJSON tolerates the quirks of documents the legacy app wrote:
// lastLogin is an empty string for accounts that never logged in, and the
// theme and toggle preferences may be absent, defaulting to light/on.
func (u *UserRecord) UnmarshalJSON(raw []byte) error {
	type plain UserRecord
	aux := struct {
		*plain
		LastLogin     optionalTime `json:"lastLogin"`
		Notifications *bool        `json:"notifications"`
		AutoSave      *bool        `json:"autoSave"`
	}{plain: (*plain)(u)}
	if err := json.Unmarshal(raw, &aux); err != nil {
		return err
	}
	u.LastLogin = aux.LastLogin.t
	u.Notifications = aux.Notifications == nil || *aux.Notifications
	u.AutoSave = aux.AutoSave == nil || *aux.AutoSave
	if u.Theme == "" {
		u.Theme = DefaultTheme
	}
	return nil
}

// IsSeed reports whether the record belongs to the fixed demo set.
func (u *UserRecord) IsSeed() bool {
	return strings.HasPrefix(u.ID, SeedIDPrefix)
}

// Sanitized returns a copy safe to hand to callers: the stored password
// token is stripped.
func (u *UserRecord) Sanitized() *UserRecord {
	clone := *u
	clone.PasswordHash = ""
	return &clone
}
