package services

import (
	"context"
	"crypto/subtle"
	"sync"
	"time"

	"github.com/sharearide/sharearide-backend/internal/models"
)

// CodeStore keeps at most one live verification code per booking.
type CodeStore interface {
	// Put replaces any code already stored for the booking.
	Put(ctx context.Context, bookingID uint, code string) error
	// Consume reports whether code matches the live code and, if it does,
	// removes it in the same step. A mismatch leaves the live code in place.
	Consume(ctx context.Context, bookingID uint, code string) (bool, error)
	Delete(ctx context.Context, bookingID uint) error
}

// MemoryCodeStore holds codes in process memory; a restart forgets them.
type MemoryCodeStore struct {
	mu    sync.Mutex
	codes map[uint]models.VerificationCode
	ttl   time.Duration
	now   func() time.Time
}

// NewMemoryCodeStore keeps codes for ttl; zero keeps them until consumed.
func NewMemoryCodeStore(ttl time.Duration) *MemoryCodeStore {
	return &MemoryCodeStore{codes: make(map[uint]models.VerificationCode), ttl: ttl, now: time.Now}
}

func (s *MemoryCodeStore) Put(ctx context.Context, bookingID uint, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	vc := models.VerificationCode{BookingID: bookingID, Code: code}
	if s.ttl > 0 {
		vc.ExpiresAt = s.now().Add(s.ttl)
	}
	s.codes[bookingID] = vc
	return nil
}

func (s *MemoryCodeStore) Consume(ctx context.Context, bookingID uint, code string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	vc, ok := s.codes[bookingID]
	if !ok {
		return false, nil
	}
	if !vc.IsValid(s.now()) {
		delete(s.codes, bookingID)
		return false, nil
	}
	if subtle.ConstantTimeCompare([]byte(vc.Code), []byte(code)) != 1 {
		return false, nil
	}
	delete(s.codes, bookingID)
	return true, nil
}

func (s *MemoryCodeStore) Delete(ctx context.Context, bookingID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.codes, bookingID)
	return nil
}
