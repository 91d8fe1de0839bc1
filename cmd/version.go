package cmd

import (
	"fmt"

	"github.com/simplybook-mcp/sbmcp/pkg/util"
	"github.com/spf13/cobra"
)

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Current version of the CLI being used",
	// No credentials or logger needed to print a version.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("sbmcp version: " + util.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
