// Package referral builds and checks the canonical CRYPTOFORCE-<NICKNAME> referral codes.
package referral

import (
	"crypto/rand"
	"math/big"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const Prefix = "CRYPTOFORCE-"

const randomAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

var canonicalPattern = regexp.MustCompile(`^CRYPTOFORCE-[A-Z0-9]+$`)

// now is swapped in tests.
var now = time.Now

// Normalize keeps only ASCII letters and digits and uppercases them.
func Normalize(nickname string) string {
	var b strings.Builder
	b.Grow(len(nickname))
	for _, r := range nickname {
		switch {
		case r >= 'a' && r <= 'z':
			b.WriteRune(r - 'a' + 'A')
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Generate returns CRYPTOFORCE-<NORMALIZED_NICKNAME>. A missing nickname, or one
// with no letters or digits, yields CRYPTOFORCE-<BASE36_MILLIS><4 RANDOM>.
func Generate(nickname string) string {
	if normalized := Normalize(nickname); normalized != "" {
		return Prefix + normalized
	}
	return Random()
}

// Random returns a nickname-independent code.
func Random() string {
	stamp := strings.ToUpper(strconv.FormatInt(now().UnixMilli(), 36))
	return Prefix + stamp + randomSuffix(4)
}

// IsCanonical reports whether code matches CRYPTOFORCE-[A-Z0-9]+.
func IsCanonical(code string) bool {
	return canonicalPattern.MatchString(code)
}

// Canonicalize rewrites a legacy code into canonical form. The prefix is matched
// case-insensitively and the remainder normalized; an empty remainder gets a random code.
func Canonicalize(code string) string {
	if IsCanonical(code) {
		return code
	}
	return Generate(stripPrefix(code))
}

// LookupKey is the canonical form of a user-typed code, or "" when nothing
// identifying remains after normalization.
func LookupKey(code string) string {
	normalized := Normalize(stripPrefix(code))
	if normalized == "" {
		return ""
	}
	return Prefix + normalized
}

func stripPrefix(code string) string {
	rest := strings.TrimSpace(code)
	if len(rest) >= len(Prefix) && strings.EqualFold(rest[:len(Prefix)], Prefix) {
		return rest[len(Prefix):]
	}
	if strings.HasPrefix(strings.ToUpper(rest), "CRYPTOFORCE") {
		return rest[len("CRYPTOFORCE"):]
	}
	return rest
}

func randomSuffix(n int) string {
	max := big.NewInt(int64(len(randomAlphabet)))
	buf := make([]byte, n)
	for i := range buf {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand only fails when the OS source is unavailable
			buf[i] = randomAlphabet[now().UnixNano()%int64(len(randomAlphabet))]
			continue
		}
		buf[i] = randomAlphabet[idx.Int64()]
	}
	return string(buf)
}
