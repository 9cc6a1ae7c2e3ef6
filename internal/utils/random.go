package utils

import (
	"crypto/rand"
	"encoding/base64"
	"math/big"
)

// RandomDigits returns a numeric code of the given length, e.g. the 6-digit
// email sign-in code.
func RandomDigits(length int) string {
	const digits = "0123456789"
	result := make([]byte, length)
	for i := range result {
		num, _ := rand.Int(rand.Reader, big.NewInt(int64(len(digits))))
		result[i] = digits[num.Int64()]
	}
	return string(result)
}

// RandomToken returns a url-safe opaque token of n random bytes.
func RandomToken(n int) string {
	b := make([]byte, n)
	rand.Read(b)
	return base64.RawURLEncoding.EncodeToString(b)
}
