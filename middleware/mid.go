package middleware

import (
	"errors"
	"fmt"
	"os"
)

// Mid holds the shared state the middleware needs, the session signing key
// for now.
type Mid struct {
	sessionSecret []byte
}

func NewMid() (*Mid, error) {
	secret := os.Getenv("SESSION_SECRET")
	if secret == "" {
		return nil, errors.New("SESSION_SECRET is not set")
	}
	if len(secret) < 32 {
		return nil, fmt.Errorf("SESSION_SECRET must be at least 32 bytes, got %d", len(secret))
	}
	return &Mid{sessionSecret: []byte(secret)}, nil
}
