package util

import (
	"os"
	"path/filepath"
)

const (
	Version = "v1.0.0"

	// UserAgent is sent on every call to the SimplyBook API.
	UserAgent = "SimplyBook-MCP/1.0"

	// DefaultBaseURL is the SimplyBook admin API v2 host.
	DefaultBaseURL = "https://user-api-v2.simplybook.me"
)

var (
	homeDir, _ = os.UserHomeDir()
	// SbmcpDir holds all process-local state.
	SbmcpDir = filepath.Join(homeDir, ".sbmcp")
	// SbmcpLog is the default log file location.
	SbmcpLog = filepath.Join(SbmcpDir, "sbmcp.log")
	// TokenDir is the default location for cached credentials.
	TokenDir = filepath.Join(SbmcpDir, "tokens")
)
