package otpgen

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// New generates a 6-digit numeric one-time passcode in [100000, 999999].
// The leading digit is never zero, so codes are always fixed width.
func New() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", fmt.Errorf("generate otp: %w", err)
	}
	return fmt.Sprintf("%d", n.Int64()+100000), nil
}
