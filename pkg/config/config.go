package config

import (
	"errors"

	"github.com/simplybook-mcp/sbmcp/pkg/util"
	"github.com/spf13/viper"
)

// ErrMissingCredentials is returned when the mandatory environment
// variables are absent at startup.
var ErrMissingCredentials = errors.New("SIMPLYBOOK_COMPANY, SIMPLYBOOK_LOGIN and SIMPLYBOOK_PASSWORD environment variables are required")

// Config carries everything the process needs, loaded once at startup and
// threaded into the components that use it.
type Config struct {
	Company  string
	Login    string
	Password string

	BaseURL  string
	TokenDir string
	LogFile  string
}

// Load reads the configuration from the environment. Credentials are
// consumed, not owned, here: they are supplied once at process start.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("SIMPLYBOOK")
	v.AutomaticEnv()

	v.SetDefault("base_url", util.DefaultBaseURL)
	v.SetDefault("token_dir", util.TokenDir)
	v.SetDefault("log_file", util.SbmcpLog)

	cfg := &Config{
		Company:  v.GetString("company"),
		Login:    v.GetString("login"),
		Password: v.GetString("password"),
		BaseURL:  v.GetString("base_url"),
		TokenDir: v.GetString("token_dir"),
		LogFile:  v.GetString("log_file"),
	}

	if cfg.Company == "" || cfg.Login == "" || cfg.Password == "" {
		return nil, ErrMissingCredentials
	}

	return cfg, nil
}
