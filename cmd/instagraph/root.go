package main

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/spf13/cobra"

	"instagraph/pkg/config"
	"instagraph/pkg/logger"
	"instagraph/pkg/ui"
)

var (
	// Version information
	version   = "0.1.0"
	gitCommit = "unknown"
	buildDate = "unknown"

	// Global flags
	configFile    string
	logLevel      string
	logFile       string
	noColor       bool
	sessionID     string
	csrfToken     string
	sessionString string
	accountName   string
	username      string
	rate          int
	timeout       time.Duration
	proxy         string
)

var rootCmd = &cobra.Command{
	Use:   "instagraph",
	Short: "Read Instagram feeds through the web API",
	Long: `instagraph reads the timeline of the logged-in account and the posts of any
account through Instagram's web GraphQL endpoints.

A session comes from exactly one of:
  - browser cookies (--csrf-token and --session-id)
  - an exported session string (--session)
  - a saved session (--account, see 'instagraph session')
  - a username and password login (--username, password prompted)

Posts are written to stdout as JSON lines; logs go to stderr.`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, gitCommit, buildDate),
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and returns the process exit code
func Execute(ctx context.Context) int {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		ui.Stderr(noColor).Error("Error", err)
		return 1
	}
	return 0
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&configFile, "config", "c", "", "config file (default is $HOME/.config/instagraph/config.yaml)")
	flags.StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error, disabled)")
	flags.StringVar(&logFile, "log-file", "", "also write logs to this file")
	flags.BoolVar(&noColor, "no-color", false, "disable colored output")
	flags.StringVar(&sessionID, "session-id", "", "sessionid cookie value")
	flags.StringVar(&csrfToken, "csrf-token", "", "csrftoken cookie value")
	flags.StringVar(&sessionString, "session", "", "session string from 'instagraph login'")
	flags.StringVarP(&accountName, "account", "a", "", "use a saved session")
	flags.StringVarP(&username, "username", "u", "", "log in with this username")
	flags.IntVar(&rate, "rate", 0, "requests per minute (0 = unpaced)")
	flags.DurationVar(&timeout, "timeout", 0, "HTTP request timeout (default 30s)")
	flags.StringVar(&proxy, "proxy", "", "HTTP proxy URL")

	rootCmd.SetVersionTemplate(`instagraph {{.Version}}
Go Version: ` + runtime.Version() + `
OS/Arch: ` + runtime.GOOS + `/` + runtime.GOARCH + `
`)

	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

// flagOverrides collects the global flags in the form config.MergeCommandLineFlags expects
func flagOverrides() map[string]interface{} {
	return map[string]interface{}{
		"username":   username,
		"session-id": sessionID,
		"csrf-token": csrfToken,
		"session":    sessionString,
		"account":    accountName,
		"proxy":      proxy,
		"log-level":  logLevel,
		"log-file":   logFile,
		"rate":       rate,
		"timeout":    timeout,
	}
}

// loadConfig loads the layered configuration and sets up the global logger
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configFile, flagOverrides())
	if err != nil {
		return nil, err
	}

	if err := logger.Initialize(&cfg.Logging); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	logger.WithField("version", version).Debug("instagraph starting")

	return cfg, nil
}
