// Package randstr generates cryptographically secure random strings used for
// token secrets and generated account passwords.
package randstr

import "crypto/rand"

// chars is the alphabet used for generated strings. Alphanumeric only, so
// values survive being pasted into URLs, headers and chat messages.
var chars = []byte("ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789")

const (
	// SecretLen is the length of a bearer token secret part (~238 bits of entropy).
	SecretLen = 40

	// PasswordLen is the length of generated passwords for phone-provisioned
	// accounts. The value is never surfaced to anyone, it only has to be
	// unguessable.
	PasswordLen = 32
)

// New returns a new random string of the provided length.
// It rejects random bytes outside the unbiased range, so every character of
// the alphabet is picked with equal probability.
func New(length int) string {
	if length == 0 {
		return ""
	}

	clen := len(chars)
	// largest byte value with no modulo bias for this alphabet
	maxRb := 255 - (256 % clen)

	out := make([]byte, length)
	buf := make([]byte, length+length/2)

	i := 0

	for {
		if _, err := rand.Read(buf); err != nil {
			panic("randstr: error reading random bytes: " + err.Error())
		}

		for _, rb := range buf {
			c := int(rb)
			if c > maxRb {
				// Skip this byte to avoid modulo bias.
				continue
			}

			out[i] = chars[c%clen]
			i++

			if i == length {
				return string(out)
			}
		}
	}
}

// Secret returns a new bearer token secret.
func Secret() string {
	return New(SecretLen)
}

// Password returns a new generated account password.
func Password() string {
	return New(PasswordLen)
}
