package cmd

import (
	"fmt"

	"github.com/simplybook-mcp/sbmcp/pkg/color"
	"github.com/spf13/cobra"
)

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Revoke the cached token and remove it locally",
	RunE: func(cmd *cobra.Command, args []string) error {
		authenticator, store := newAuthenticator()

		token, ok, err := store.Load(cfg.Company)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Println("No cached credential to revoke")
			return nil
		}

		if err := authenticator.Logout(cmd.Context(), cfg.Company, token); err != nil {
			fmt.Println(color.Red("x ") + "Logout failed, cached credential kept")
			return err
		}

		fmt.Println(color.Green("✓ ") + "Logged out and removed cached credential")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(logoutCmd)
}
