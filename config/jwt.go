package config

import "time"

// JWTConfig signs and verifies access tokens (HS256).
type JWTConfig struct {
	Secret     []byte
	Expiration time.Duration
}
