package helpers

import (
	"math/rand/v2"
	"regexp"
	"strings"
	"time"
)

const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// RandomString returns n characters drawn from [A-Za-z0-9].
func RandomString(n int) string {
	if n <= 0 {
		return ""
	}
	b := make([]byte, n)
	for i := range b {
		b[i] = alphabet[rand.IntN(len(alphabet))]
	}
	return string(b)
}

// RandomEmail returns a throwaway address such as Ab3dE9xQ@k2LmP0.com.
func RandomEmail() string {
	return RandomString(8) + "@" + RandomString(6) + ".com"
}

// ContainsText reports whether actual contains expected, optionally ignoring case.
func ContainsText(actual, expected string, caseSensitive bool) bool {
	if caseSensitive {
		return strings.Contains(actual, expected)
	}
	return strings.Contains(strings.ToLower(actual), strings.ToLower(expected))
}

// unsafeRun matches whitespace, path separators and characters Windows rejects in file names.
var unsafeRun = regexp.MustCompile(`[\s/\\:*?"<>|]+`)

// Slug turns name into a single path element by replacing runs of whitespace
// and filesystem-unsafe characters with one dash.
func Slug(name string) string {
	return unsafeRun.ReplaceAllString(strings.TrimSpace(name), "-")
}

// TimestampedName appends a filesystem-safe timestamp to name.
func TimestampedName(name string, at time.Time) string {
	stamp := strings.NewReplacer(":", "-", ".", "-").Replace(at.UTC().Format("2006-01-02T15:04:05.000Z"))
	return Slug(name) + "-" + stamp
}
