package pkg

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
)

// RandomToken returns nBytes from crypto/rand as unpadded URL-safe base64,
// usable in headers, links and redis keys as is.
func RandomToken(nBytes int) (string, error) {
	if nBytes <= 0 {
		return "", errors.New("token length must be positive")
	}
	b := make([]byte, nBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
