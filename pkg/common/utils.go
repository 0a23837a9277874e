package common

import (
	"math/rand"
	"strings"
	"time"
)

const codeCharacters = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GenerateTrxNo returns a short random reference used for withdrawal codes.
func GenerateTrxNo() string {
	r := rand.New(rand.NewSource(time.Now().UnixNano()))

	result := make([]byte, 7)
	for i := range result {
		result[i] = codeCharacters[r.Intn(len(codeCharacters))]
	}
	return string(result)
}

// GenerateReferralCode builds a candidate referral code from the username
// plus a random suffix. Uniqueness is enforced by the caller against the
// accounts table; a collision just means another call.
func GenerateReferralCode(username string) string {
	var prefix strings.Builder
	for _, ch := range strings.ToUpper(username) {
		if (ch >= 'A' && ch <= 'Z') || (ch >= '0' && ch <= '9') {
			prefix.WriteRune(ch)
		}
		if prefix.Len() >= 8 {
			break
		}
	}
	if prefix.Len() == 0 {
		prefix.WriteString("REF")
	}

	r := rand.New(rand.NewSource(time.Now().UnixNano()))
	suffix := make([]byte, 4)
	for i := range suffix {
		suffix[i] = codeCharacters[r.Intn(len(codeCharacters))]
	}
	return prefix.String() + string(suffix)
}
