package app

import (
	"crypto/rand"
	"encoding/base64"

	"github.com/bobmcallan/marketpulse/internal/common"
)

// ensureJWTSecret replaces a missing or default admin JWT secret in production
// with a random one held only in memory. Admin tokens minted against the
// default secret are then rejected; operators must configure auth.jwt_secret
// to mint tokens that survive a restart.
// Returns true if the secret was replaced.
func ensureJWTSecret(config *common.Config, logger *common.Logger) bool {
	defaultSecret := common.NewDefaultConfig().Auth.JWTSecret
	if config.Auth.JWTSecret != "" && (config.Auth.JWTSecret != defaultSecret || !config.IsProduction()) {
		return false
	}

	// 32 random bytes -> 43 chars in base64
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		logger.Error().Err(err).Msg("Failed to generate random JWT secret")
		return false
	}
	config.Auth.JWTSecret = base64.RawURLEncoding.EncodeToString(buf)

	logger.Warn().
		Str("environment", config.Environment).
		Msg("auth.jwt_secret not configured - using an ephemeral secret, admin API tokens will not survive a restart")

	return true
}
