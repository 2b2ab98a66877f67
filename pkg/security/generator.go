// Package security generates the codes guests type on their phone or on the
// door keypad. All randomness comes from crypto/rand.
package security

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const (
	numeric = "0123456789"

	// No 0/O, 1/I or 5/S so codes survive being read out over the phone.
	reservationSet    = "ACDEFGHJKMPQRTWXYZ23479"
	reservationPrefix = "HM"
	reservationLength = 8

	minCodeLength = 4
)

func randomChar(chars string) (byte, error) {
	if len(chars) == 0 {
		return 0, fmt.Errorf("source string is empty")
	}

	index, err := rand.Int(rand.Reader, big.NewInt(int64(len(chars))))
	if err != nil {
		return 0, err
	}

	return chars[index.Int64()], nil
}

func fromAlphabet(alphabet string, length int) (string, error) {
	if length < 1 {
		return "", fmt.Errorf("length has to be positive")
	}

	result := make([]byte, length)
	for i := range result {
		char, err := randomChar(alphabet)
		if err != nil {
			return "", err
		}
		result[i] = char
	}
	return string(result), nil
}

// GenerateNumericCode returns a keypad-friendly code of decimal digits.
func GenerateNumericCode(length int) (string, error) {
	if length < minCodeLength {
		return "", fmt.Errorf("length has to be at least %d", minCodeLength)
	}
	return fromAlphabet(numeric, length)
}

// GenerateReservationCode returns codes like HM7KQ2XDA3.
func GenerateReservationCode() (string, error) {
	body, err := fromAlphabet(reservationSet, reservationLength)
	if err != nil {
		return "", err
	}
	return reservationPrefix + body, nil
}
