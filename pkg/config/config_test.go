package config

import (
	"testing"

	"github.com/simplybook-mcp/sbmcp/pkg/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setCredentials(t *testing.T) {
	t.Helper()
	t.Setenv("SIMPLYBOOK_COMPANY", "acme")
	t.Setenv("SIMPLYBOOK_LOGIN", "admin")
	t.Setenv("SIMPLYBOOK_PASSWORD", "s3cret")
}

func TestLoadFromEnvironment(t *testing.T) {
	setCredentials(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "acme", cfg.Company)
	assert.Equal(t, "admin", cfg.Login)
	assert.Equal(t, "s3cret", cfg.Password)
}

func TestLoadDefaults(t *testing.T) {
	setCredentials(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, util.DefaultBaseURL, cfg.BaseURL)
	assert.Equal(t, util.TokenDir, cfg.TokenDir)
	assert.Equal(t, util.SbmcpLog, cfg.LogFile)
}

func TestLoadOverrides(t *testing.T) {
	setCredentials(t)
	t.Setenv("SIMPLYBOOK_BASE_URL", "https://staging.example.com")
	t.Setenv("SIMPLYBOOK_TOKEN_DIR", "/tmp/tokens")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "https://staging.example.com", cfg.BaseURL)
	assert.Equal(t, "/tmp/tokens", cfg.TokenDir)
}

func TestLoadMissingCredentials(t *testing.T) {
	t.Setenv("SIMPLYBOOK_COMPANY", "acme")
	t.Setenv("SIMPLYBOOK_LOGIN", "")
	t.Setenv("SIMPLYBOOK_PASSWORD", "")

	cfg, err := Load()
	assert.Nil(t, cfg)
	require.ErrorIs(t, err, ErrMissingCredentials)

	// The message names every variable the operator has to set.
	assert.Contains(t, err.Error(), "SIMPLYBOOK_COMPANY")
	assert.Contains(t, err.Error(), "SIMPLYBOOK_LOGIN")
	assert.Contains(t, err.Error(), "SIMPLYBOOK_PASSWORD")
}
