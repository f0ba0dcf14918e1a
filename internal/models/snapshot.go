package models

import "time"

// Snapshot is the sole unit of persistence for the identity records: it is
// read wholesale at startup and written wholesale after every mutating
// operation. Last write wins; there is no partial update.
type Snapshot struct {
	Users       []UserRecord    `json:"users"`
	Sessions    []SessionRecord `json:"sessions"`
	OTPs        []OTPRecord     `json:"otps"`
	LastUpdated time.Time       `json:"lastUpdated"`
}

// NewSnapshot returns an empty snapshot with non-nil slices so the
// serialized form always carries the three arrays.
func NewSnapshot() *Snapshot {
	return &Snapshot{
		Users:    []UserRecord{},
		Sessions: []SessionRecord{},
		OTPs:     []OTPRecord{},
	}
}

// FindUserByID returns a pointer into Users, or nil.
func (s *Snapshot) FindUserByID(id string) *UserRecord {
	for i := range s.Users {
		if s.Users[i].ID == id {
			return &s.Users[i]
		}
	}
	return nil
}
