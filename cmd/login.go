package cmd

import (
	"fmt"
	"time"

	"github.com/briandowns/spinner"
	"github.com/simplybook-mcp/sbmcp/pkg/auth"
	"github.com/simplybook-mcp/sbmcp/pkg/color"
	"github.com/simplybook-mcp/sbmcp/pkg/credstore"
	"github.com/simplybook-mcp/sbmcp/pkg/httpclient"
	"github.com/simplybook-mcp/sbmcp/pkg/ratelimit"
	"github.com/simplybook-mcp/sbmcp/pkg/util"
	"github.com/spf13/cobra"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Authenticate against SimplyBook and cache the token",
	RunE: func(cmd *cobra.Command, args []string) error {
		authenticator, _ := newAuthenticator()

		s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
		s.Suffix = fmt.Sprintf(" Authenticating company %s...", cfg.Company)
		s.Start()
		res := authenticator.Authenticate(cmd.Context(), cfg.Company, cfg.Login, cfg.Password)
		s.Stop()

		if !res.Success {
			fmt.Println(color.Red("x ") + res.Message)
			if res.Err != "" {
				return fmt.Errorf("%s", res.Err)
			}
			return fmt.Errorf("%s", res.Message)
		}

		fmt.Println(color.Green("✓ ") + "Authentication successful, token cached")
		return nil
	},
}

// newAuthenticator wires the store, limiter and logging HTTP client for the
// one-shot CLI commands.
func newAuthenticator() (*auth.Authenticator, credstore.Store) {
	store := credstore.NewFileStore(cfg.TokenDir, logger)
	limiter := ratelimit.New(ratelimit.MinAuthInterval)

	api := httpclient.New(cfg.BaseURL, map[string]string{
		"Content-Type": "application/json",
		"User-Agent":   util.UserAgent,
	}, logger)

	return auth.New(api, store, limiter, logger), store
}

func init() {
	rootCmd.AddCommand(loginCmd)
}
