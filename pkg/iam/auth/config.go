package auth

import "time"

// JWTConfig controls token issuance
type JWTConfig struct {
	SecretKey       string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
	Issuer          string
}

// Config holds the auth configuration
type Config struct {
	JWT JWTConfig
}

// DefaultConfig returns the baseline configuration; the secret must be
// supplied by the environment
func DefaultConfig() Config {
	return Config{
		JWT: JWTConfig{
			AccessTokenTTL:  15 * time.Minute,
			RefreshTokenTTL: 7 * 24 * time.Hour,
			Issuer:          "linearflow",
		},
	}
}
