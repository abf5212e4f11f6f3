package models

import "time"

// VerificationCode is the one-time code gating payment completion of a booking.
// It lives only in a code store, never in the bookings table.
type VerificationCode struct {
	BookingID uint      `json:"bookingId"`
	Code      string    `json:"code"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// IsValid reports whether the code has not expired. A zero ExpiresAt never expires.
func (v *VerificationCode) IsValid(now time.Time) bool {
	return v.ExpiresAt.IsZero() || now.Before(v.ExpiresAt)
}
