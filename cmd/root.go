package cmd

import (
	"fmt"
	"os"

	"github.com/simplybook-mcp/sbmcp/pkg/config"
	"github.com/simplybook-mcp/sbmcp/pkg/log"
	"github.com/simplybook-mcp/sbmcp/pkg/util"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var verbosity bool

// cfg and logger are built once in the root PersistentPreRunE and injected
// into everything the subcommands construct.
var (
	cfg    *config.Config
	logger *zap.SugaredLogger
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use: "sbmcp",
	Long: `MCP server and CLI for the SimplyBook.me booking management API.
	Exposes the admin booking operations as MCP tools and handles
	authentication, token caching and rate limiting internally.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if cfg, err = config.Load(); err != nil {
			return err
		}
		if logger, err = log.New(verbosity, cfg.LogFile); err != nil {
			return fmt.Errorf("log initialization failed: %w", err)
		}
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main().
func Execute() {
	if err := initializeBaseDirs(); err != nil {
		fmt.Fprintf(os.Stderr, "Base directory initialization failed: %s\n", err.Error())
		os.Exit(1)
	}

	if err := rootCmd.Execute(); err != nil {
		if logger != nil {
			logger.Error(err.Error())
		} else {
			fmt.Fprintln(os.Stderr, err.Error())
		}
		os.Exit(1)
	}
}

func initializeBaseDirs() (err error) {
	err = os.MkdirAll(util.SbmcpDir, 0700)
	if err != nil {
		return
	}
	err = os.MkdirAll(util.TokenDir, 0700)
	return
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&verbosity, "verbose", false, "print verbose logs")
}
