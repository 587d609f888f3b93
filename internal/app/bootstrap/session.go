package bootstrap

import (
	"fmt"

	"github.com/redis/go-redis/v9"

	appconfig "github.com/wolfman30/leadgate/internal/config"
	"github.com/wolfman30/leadgate/internal/session"
	"github.com/wolfman30/leadgate/pkg/logging"
)

// BuildSessionVerifier picks the session Verifier named by SESSION_VERIFICATION.
// Signed sessions fall back to the admin password as the signing key.
func BuildSessionVerifier(cfg *appconfig.Config, redisClient *redis.Client, logger *logging.Logger) (session.Verifier, error) {
	if cfg == nil {
		return nil, fmt.Errorf("bootstrap: config is required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	mode, err := session.ParseMode(cfg.SessionVerification)
	if err != nil {
		return nil, &appconfig.ConfigError{Reason: err.Error()}
	}

	switch mode {
	case session.ModePresence:
		logger.Warn("admin sessions accept any non-empty cookie value", "mode", mode)
		return session.PresenceVerifier{}, nil
	case session.ModeStored:
		if redisClient == nil {
			return nil, &appconfig.ConfigError{Reason: "SESSION_VERIFICATION=stored requires a reachable REDIS_ADDR"}
		}
		return session.NewStoredVerifier(redisClient, cfg.SessionMaxAge)
	default:
		key := cfg.SessionSecret
		if key == "" {
			key = cfg.AdminPassword
		}
		return session.NewSignedVerifier(key, cfg.SessionMaxAge)
	}
}
