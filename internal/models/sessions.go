package models

import (
	"encoding/json"
	"time"
)

// SessionRecord is an audit entry for a successful login. Nothing consults
// sessions for access control; they exist for display ("logged in at ...")
// and for the admin stats view. Token is carried through from legacy
// records; nothing here issues or checks one.
type SessionRecord struct {
	ID        string     `json:"id"`
	UserID    string     `json:"userId"`
	Token     string     `json:"token,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
	ExpiresAt time.Time  `json:"expiresAt"`
	IsActive  bool       `json:"isActive"`
	EndedAt   *time.Time `json:"endedAt,omitempty"`
}

// UnmarshalJSON accepts the legacy empty-string endedAt for sessions that
// were never closed.
func (s *SessionRecord) UnmarshalJSON(raw []byte) error {
	type plain SessionRecord
	aux := struct {
		*plain
		EndedAt optionalTime `json:"endedAt"`
	}{plain: (*plain)(s)}
	if err := json.Unmarshal(raw, &aux); err != nil {
		return err
	}
	s.EndedAt = aux.EndedAt.t
	return nil
}
