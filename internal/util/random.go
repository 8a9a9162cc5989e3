// Package util provides utility functions for the GiftRoulette application.
package util

import (
	"math/rand/v2"
	"strings"
)

// GenerateRandomID generates a random ID with the specified prefix and hex length.
// The returned ID will be in the format: "{prefix}{hex_string}".
func GenerateRandomID(prefix string, hexLength int) string {
	return prefix + GenerateRandomHex(hexLength)
}

// GenerateRandomHex generates a random hexadecimal string of the specified
// length, for non-cryptographic identifiers.
func GenerateRandomHex(length int) string {
	if length <= 0 {
		return ""
	}

	const hexChars = "0123456789abcdef"
	var builder strings.Builder
	builder.Grow(length)

	for i := 0; i < length; i++ {
		builder.WriteByte(hexChars[rand.IntN(16)])
	}

	return builder.String()
}

// GenerateRunID generates a unique exchange run ID with "run_" prefix.
func GenerateRunID() string {
	return GenerateRandomID("run_", 16)
}

// GenerateDeliveryID generates a unique delivery record ID with "dlv_" prefix.
func GenerateDeliveryID() string {
	return GenerateRandomID("dlv_", 32)
}
