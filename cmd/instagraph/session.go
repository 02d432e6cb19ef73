package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"instagraph/pkg/auth"
	"instagraph/pkg/instagram"
	"instagraph/pkg/logger"
	"instagraph/pkg/ui"
)

var saveAs string

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in and print the session string",
	Long: `Log in with --username (the password is prompted) or check browser cookies,
then print the exported session string. Pass it back with --session, or use
--save to keep it in the system keychain or the encrypted session file.`,
	Example: `  instagraph login -u someone --save someone
  instagraph login --csrf-token <csrftoken> --session-id <sessionid> --save me`,
	Args: cobra.NoArgs,
	RunE: runLogin,
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check whether the session is still logged in",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		client, err := newClient(cmd.Context(), cfg)
		if err != nil {
			return err
		}

		out := ui.Stderr(noColor)
		out.Info("Phase", client.Phase().String())
		if !client.IsLoggedIn(cmd.Context()) {
			return errors.New("session is not logged in")
		}
		out.Success("Session is logged in")
		return nil
	},
}

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Manage saved sessions",
	Long: `Manage saved sessions.

Sessions are stored in:
  - a shared Redis (when sessions.redis_addr is set)
  - the system keychain (when available)
  - an encrypted file with a PBKDF2-derived key
  - INSTAGRAPH_ACCOUNT_SESSION (read only)`,
}

var sessionListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved sessions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		manager, err := newManager(cfg)
		if err != nil {
			return err
		}
		accounts, err := manager.List()
		if err != nil {
			return err
		}

		out := ui.Stderr(noColor)
		if len(accounts) == 0 {
			out.Info("No saved sessions", "use 'instagraph login --save <name>'")
			return nil
		}

		out.Highlight("Saved sessions")
		for _, account := range accounts {
			sanitized := auth.SanitizeAccount(account)
			modified := "-"
			if !sanitized.LastModified.IsZero() {
				modified = sanitized.LastModified.Format("2006-01-02 15:04:05")
			}
			fmt.Fprintf(os.Stdout, "%s\t%s\t%s\n", sanitized.Username, sanitized.Session, modified)
		}
		return nil
	},
}

var sessionDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Remove a saved session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		manager, err := newManager(cfg)
		if err != nil {
			return err
		}
		if err := manager.Delete(args[0]); err != nil {
			return err
		}
		ui.Stderr(noColor).Success("Session removed: " + args[0])
		return nil
	},
}

var sessionGuideCmd = &cobra.Command{
	Use:   "guide",
	Short: "Explain how to copy session cookies from a browser",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		auth.WriteCookieGuide(os.Stdout)
	},
}

func init() {
	loginCmd.Flags().StringVar(&saveAs, "save", "", "save the session under this name")

	rootCmd.AddCommand(loginCmd, statusCmd, sessionCmd)
	sessionCmd.AddCommand(sessionListCmd, sessionDeleteCmd, sessionGuideCmd)
}

func runLogin(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.Instagram.Sources() == 0 {
		return errNoCredentials
	}

	client, err := newClient(cmd.Context(), cfg)
	if err != nil {
		return err
	}

	out := ui.Stderr(noColor)
	if client.Phase() != instagram.PhaseAuthenticated {
		return fmt.Errorf("login failed (phase %s)", client.Phase())
	}
	if !client.IsLoggedIn(cmd.Context()) {
		out.Warning("Instagram does not report the session as logged in")
	}

	exported, err := client.ExportSession()
	if err != nil {
		return err
	}
	fmt.Fprintln(os.Stdout, exported)

	if saveAs == "" {
		return nil
	}

	manager, err := newManager(cfg)
	if err != nil {
		return err
	}
	if err := manager.Store(&auth.Account{Username: saveAs, Session: exported}); err != nil {
		return err
	}

	logger.WithField("account", saveAs).Info("Session saved")
	out.Success("Session saved: " + saveAs)
	out.Info("Use it with", "--account "+saveAs)
	return nil
}
