package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	otpMin  = 100000
	otpSpan = 900000
)

// GenerateOTP returns a 6-digit numeric code in [100000, 999999].
func GenerateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(otpSpan))
	if err != nil {
		return "", fmt.Errorf("failed to generate otp: %w", err)
	}
	return fmt.Sprintf("%06d", otpMin+n.Int64()), nil
}

// NewTransactionID returns prefix + "_" + the first 8 characters of a random
// UUID in upper case, e.g. TXN_1A2B3C4D.
func NewTransactionID(prefix string) string {
	return prefix + "_" + strings.ToUpper(uuid.NewString()[:8])
}

// ExpiryNotice tells a recipient how long a code stays valid. A ttl of zero
// means the code never expires and gives an empty notice.
func ExpiryNotice(ttl time.Duration) string {
	switch {
	case ttl <= 0:
		return ""
	case ttl < time.Minute:
		return fmt.Sprintf("It expires in %d seconds.", int(ttl.Seconds()))
	case ttl < 2*time.Minute:
		return "It expires in 1 minute."
	default:
		return fmt.Sprintf("It expires in %d minutes.", int(ttl.Minutes()))
	}
}
