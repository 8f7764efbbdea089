package session

import (
	"crypto/sha256"
	"io"

	"golang.org/x/crypto/hkdf"
)

// deriveKey expands the configured master secret into a purpose-bound 32-byte
// key using HKDF-SHA256. The cookie store needs two independent keys
// (authentication and encryption); binding each to an info string keeps one
// secret in the environment.
func deriveKey(master, purpose string) ([]byte, error) {
	h := hkdf.New(sha256.New, []byte(master), nil, []byte(purpose))
	out := make([]byte, 32)
	if _, err := io.ReadFull(h, out); err != nil {
		return nil, err
	}
	return out, nil
}
