package models

import "time"

// PurposeRegistration is the only purpose the current flows issue codes for;
// the field is open-ended so future flows (password reset, login challenge)
// reuse the same records.
const PurposeRegistration = "registration"

// OTPRecord is a one-time passcode bound to a recipient. At most one record
// per (email, purpose) pair may have IsLatest set; issuing a new code flips
// the flag on every predecessor, which stays in the snapshot for audit.
type OTPRecord struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	PhoneNumber string    `json:"phoneNumber,omitempty"`
	Code        string    `json:"otp"`
	Purpose     string    `json:"purpose"`
	CreatedAt   time.Time `json:"createdAt"`
	ExpiresAt   time.Time `json:"expiresAt"`
	IsUsed      bool      `json:"isUsed"`
	IsLatest    bool      `json:"isLatest"`
}

// Expired reports whether the record is past its expiry at the given instant.
func (o *OTPRecord) Expired(now time.Time) bool {
	return !now.Before(o.ExpiresAt)
}

// Usable reports whether the record could still satisfy a verification:
// unused, latest for its pair, and not yet expired.
func (o *OTPRecord) Usable(now time.Time) bool {
	return !o.IsUsed && o.IsLatest && now.Before(o.ExpiresAt)
}
