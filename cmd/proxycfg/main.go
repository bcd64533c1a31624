// Proxycfg edits the configuration of a proxy agent from the terminal.
//
// It logs in to the agent's HTTP API, edits the agent, server, proxy and
// file share settings in an interactive editor, follows the agent's live
// log channel and downloads its log files.
//
// Usage:
//
//	proxycfg [command] [flags]
//
// Running without arguments launches the interactive editor.
// See 'proxycfg --help' for available commands.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/muurk/proxycfg/internal/api"
	"github.com/muurk/proxycfg/internal/auth"
	"github.com/muurk/proxycfg/internal/config"
	"github.com/muurk/proxycfg/internal/logging"
	"github.com/muurk/proxycfg/internal/version"
)

func main() {
	// A .env file in the working directory may set PROXYCFG_* variables.
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

// Global flags
var (
	serverURL string
	logLevel  string
	logFile   string
)

// Shared state prepared by setup before any command runs
var (
	settings *config.Settings
	session  *auth.Session
	client   *api.Client
)

var rootCmd = &cobra.Command{
	Use:   "proxycfg",
	Short: "Proxy agent configuration client",
	Long: `A terminal client for the proxy agent configuration API.

Edit the agent, servers, proxies and file share settings, follow the live
log channel and download log files.

If no command is specified, the interactive editor will launch automatically.`,
	Version:           version.Version,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.Sync()
	},
	RunE: runEditor,
}

func init() {
	// Disable automatic completion command generation
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "Agent base URL (overrides "+config.ServerEnvVar+" and the saved server)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error (default: "+logging.LogLevelEnvVar+" or silent)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Write logs to this file instead of stderr")

	rootCmd.AddCommand(versionCmd)
}

// setup initializes logging, loads the settings file and builds the API
// client shared by every command.
func setup(cmd *cobra.Command, args []string) error {
	if err := logging.Initialize(logLevel, logFile); err != nil {
		return err
	}

	var err error
	settings, err = config.Load()
	if err != nil {
		return err
	}
	session = auth.NewSession(settings)

	client = api.NewClient(settings.ResolveServer(serverURL))
	client.SetToken(session.Token())
	return nil
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("proxycfg %s\n", version.Full())
	},
}
