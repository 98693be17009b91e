package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestLoad_RequiresCredentialAndSecret(t *testing.T) {
	t.Setenv("CLAWBOARD_API_KEY", "")
	t.Setenv("CLAWBOARD_API_KEY_HASH", "")
	t.Setenv("CLAWBOARD_MASTER_SECRET", "")

	_, err := Load(Overrides{})
	require.Error(t, err, "no credential configured")

	_, err = Load(Overrides{APIKey: strPtr("key")})
	require.Error(t, err, "still missing the master secret")

	cfg, err := Load(Overrides{APIKey: strPtr("key"), MasterSecret: strPtr("secret")})
	require.NoError(t, err)
	require.Equal(t, "key", cfg.APIKey)
}

func TestLoad_DefaultsAndOverrides(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("DATABASE_PATH", "")
	t.Setenv("CLAWBOARD_API_KEY", "env-key")
	t.Setenv("CLAWBOARD_MASTER_SECRET", "env-secret")

	cfg, err := Load(Overrides{})
	require.NoError(t, err)
	require.Equal(t, ":3010", cfg.Addr)
	require.Equal(t, "./clawboard.db", cfg.DatabasePath)
	require.False(t, cfg.Debug)

	cfg, err = Load(Overrides{Addr: strPtr(":9999"), DatabasePath: strPtr("/tmp/board.db")})
	require.NoError(t, err)
	require.Equal(t, ":9999", cfg.Addr)
	require.Equal(t, "/tmp/board.db", cfg.DatabasePath)
}

func TestLoad_EnvPortAndHashOnly(t *testing.T) {
	t.Setenv("PORT", "4000")
	t.Setenv("CLAWBOARD_API_KEY", "")
	t.Setenv("CLAWBOARD_API_KEY_HASH", "$2a$10$fakehash")
	t.Setenv("CLAWBOARD_MASTER_SECRET", "secret")

	cfg, err := Load(Overrides{})
	require.NoError(t, err)
	require.Equal(t, ":4000", cfg.Addr)
	require.Empty(t, cfg.APIKey)
	require.Equal(t, "$2a$10$fakehash", cfg.APIKeyHash)
}
