package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"instagraph/pkg/config"
	"instagraph/pkg/ui"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration files",
	Long: `Manage the instagraph configuration file.

Configuration is layered:
  - Command line flags (highest priority)
  - Environment variables (INSTAGRAPH_*)
  - .env, ~/.env and ~/.instagraph.env
  - Configuration file
  - Default values (lowest priority)`,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a configuration file with the defaults",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := configFile
		if path == "" {
			path = config.DefaultPath()
		}

		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("configuration file already exists: %s", path)
		}

		if err := config.DefaultConfig().Save(path); err != nil {
			return err
		}

		out := ui.Stderr(noColor)
		out.Success("Configuration file created: " + path)
		fmt.Fprintln(out.Writer(), "Add a session under 'instagram', then run 'instagraph config validate'.")
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration with secrets masked",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		data, err := yaml.Marshal(maskConfig(cfg))
		if err != nil {
			return fmt.Errorf("failed to format configuration: %w", err)
		}
		fmt.Fprint(os.Stdout, string(data))
		return nil
	},
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the configuration for errors",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := configFile
		if path == "" {
			path = config.FindConfigFile()
		}

		out := ui.Stderr(noColor)
		if path != "" {
			out.Info("Validating configuration", path)
		}

		cfg, err := config.Load(path, flagOverrides())
		if err != nil {
			out.Error("Configuration has errors")
			for _, line := range validationErrors(err) {
				fmt.Fprintf(out.Writer(), "  - %s\n", line)
			}
			return errors.New("invalid configuration")
		}

		if cfg.Instagram.Sources() == 0 {
			out.Warning("No session configured", "commands will fall back to the default saved session")
		}

		out.Success("Configuration is valid")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd, configShowCmd, configValidateCmd)
}

// maskConfig returns a copy safe to print
func maskConfig(cfg *config.Config) *config.Config {
	masked := *cfg
	masked.Instagram.Password = ""
	masked.Instagram.SessionID = mask(masked.Instagram.SessionID)
	masked.Instagram.CSRFToken = mask(masked.Instagram.CSRFToken)
	masked.Instagram.Session = mask(masked.Instagram.Session)
	masked.Sessions.RedisPassword = mask(masked.Sessions.RedisPassword)
	return &masked
}

func mask(s string) string {
	switch {
	case s == "":
		return ""
	case len(s) > 8:
		return s[:4] + "..." + s[len(s)-4:]
	default:
		return "***"
	}
}

// validationErrors splits a joined validation error into its lines
func validationErrors(err error) []string {
	msg := strings.TrimPrefix(err.Error(), "configuration validation failed: ")
	return strings.Split(msg, "\n")
}
