package commands

import (
	"fmt"

	"github.com/insideout/userdb/internal/auth"
	"github.com/insideout/userdb/internal/config"
)

// ManagerLoader yields the token manager a command signs or verifies with.
type ManagerLoader func() (*auth.TokenManager, error)

// ManagerFromConfig builds a manager from the same environment the API server reads.
func ManagerFromConfig() (*auth.TokenManager, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	tm, err := auth.NewTokenManager(cfg.Auth.JWTSecret)
	if err != nil {
		return nil, fmt.Errorf("AUTH_JWT_SECRET: %w", err)
	}
	return tm, nil
}
