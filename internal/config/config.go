package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds server configuration.
type Config struct {
	// Addr is the listen address for the HTTP server.
	Addr         string
	DatabasePath string
	// APIKey is the plain shared board credential. Empty when APIKeyHash is
	// used instead.
	APIKey string
	// APIKeyHash is an optional bcrypt hash of the board credential, for
	// deployments that do not want the key on disk in the clear.
	APIKeyHash string
	// MasterSecret signs short-lived board tokens.
	MasterSecret   string
	Debug          bool
	AllowedOrigins []string
}

// Overrides optionally overrides values from environment variables.
//
// A nil pointer means "use the environment/default value".
type Overrides struct {
	Addr         *string
	DatabasePath *string
	APIKey       *string
	MasterSecret *string
	Debug        *bool
}

// Load loads server configuration from environment variables and applies any
// explicit overrides.
func Load(overrides Overrides) (*Config, error) {
	port := 3010
	if portStr := os.Getenv("PORT"); portStr != "" {
		if p, err := strconv.Atoi(portStr); err == nil {
			port = p
		}
	}

	addr := fmt.Sprintf(":%d", port)
	if overrides.Addr != nil {
		addr = *overrides.Addr
	}

	dbPath := os.Getenv("DATABASE_PATH")
	if dbPath == "" {
		dbPath = "./clawboard.db"
	}
	if overrides.DatabasePath != nil {
		dbPath = *overrides.DatabasePath
	}

	apiKey := os.Getenv("CLAWBOARD_API_KEY")
	if overrides.APIKey != nil {
		apiKey = *overrides.APIKey
	}
	apiKeyHash := os.Getenv("CLAWBOARD_API_KEY_HASH")
	if apiKey == "" && apiKeyHash == "" {
		return nil, fmt.Errorf("CLAWBOARD_API_KEY or CLAWBOARD_API_KEY_HASH environment variable is required")
	}

	masterSecret := os.Getenv("CLAWBOARD_MASTER_SECRET")
	if overrides.MasterSecret != nil {
		masterSecret = *overrides.MasterSecret
	}
	if masterSecret == "" {
		return nil, fmt.Errorf("CLAWBOARD_MASTER_SECRET environment variable is required")
	}

	debug := false
	if debugStr := os.Getenv("DEBUG"); debugStr == "true" || debugStr == "1" {
		debug = true
	}
	if overrides.Debug != nil {
		debug = *overrides.Debug
	}

	return &Config{
		Addr:           addr,
		DatabasePath:   dbPath,
		APIKey:         apiKey,
		APIKeyHash:     apiKeyHash,
		MasterSecret:   masterSecret,
		Debug:          debug,
		AllowedOrigins: []string{"*"}, // For self-hosted, allow all origins
	}, nil
}
