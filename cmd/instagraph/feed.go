package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"instagraph/pkg/config"
	"instagraph/pkg/instagram"
	"instagraph/pkg/logger"
)

var (
	count      int
	feedUserID string
)

var timelineCmd = &cobra.Command{
	Use:   "timeline",
	Short: "Print posts from the logged-in account's timeline",
	Example: `  instagraph timeline -n 24 --account me
  instagraph timeline --csrf-token <csrftoken> --session-id <sessionid>`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, client, err := setup(cmd)
		if err != nil {
			return err
		}

		posts := client.PostsFromTimeline(cmd.Context(), postCount(cfg))
		return writePosts(os.Stdout, posts)
	},
}

var userCmd = &cobra.Command{
	Use:     "user <username>",
	Short:   "Print posts of an account by username",
	Example: `  instagraph user nasa -n 60 --account me`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		target := instagram.SanitizeUsername(args[0])
		if !instagram.IsValidUsername(target) {
			return fmt.Errorf("invalid username %q", args[0])
		}

		cfg, client, err := setup(cmd)
		if err != nil {
			return err
		}

		posts, err := client.PostsFromUser(cmd.Context(), target, postCount(cfg))
		if err != nil {
			return fmt.Errorf("could not resolve %s: %w", target, err)
		}
		return writePosts(os.Stdout, posts)
	},
}

var userIDCmd = &cobra.Command{
	Use:     "userid <id>",
	Short:   "Print posts of an account by numeric id",
	Example: `  instagraph userid 528817151 -n 30`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, client, err := setup(cmd)
		if err != nil {
			return err
		}

		posts := client.PostsFromUserID(cmd.Context(), args[0], postCount(cfg))
		return writePosts(os.Stdout, posts)
	},
}

var resolveCmd = &cobra.Command{
	Use:   "resolve <username>",
	Short: "Print the numeric id of an account",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, client, err := setup(cmd)
		if err != nil {
			return err
		}

		id, err := client.ResolveUserID(cmd.Context(), instagram.SanitizeUsername(args[0]))
		if err != nil {
			return err
		}
		fmt.Fprintln(os.Stdout, id)
		return nil
	},
}

var feedCmd = &cobra.Command{
	Use:   "feed",
	Short: "Print the first raw feed page as JSON",
	Long: `Print the first page of the timeline, or of an account with --user-id, as
the JSON document Instagram returns. A failed request prints {}.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, client, err := setup(cmd)
		if err != nil {
			return err
		}

		var page map[string]interface{}
		if feedUserID != "" {
			page = client.UserFeed(cmd.Context(), feedUserID)
		} else {
			page = client.TimelineFeed(cmd.Context())
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(page)
	},
}

func init() {
	for _, cmd := range []*cobra.Command{timelineCmd, userCmd, userIDCmd} {
		cmd.Flags().IntVarP(&count, "count", "n", 0, "minimum number of posts (default from config, 50)")
		rootCmd.AddCommand(cmd)
	}
	feedCmd.Flags().StringVar(&feedUserID, "user-id", "", "read this account's media instead of the timeline")
	rootCmd.AddCommand(resolveCmd, feedCmd)
}

// setup loads the configuration and builds a client from it
func setup(cmd *cobra.Command) (*config.Config, *instagram.Client, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}

	client, err := newClient(cmd.Context(), cfg)
	if err != nil {
		return nil, nil, err
	}

	if client.Phase() != instagram.PhaseAuthenticated {
		return nil, nil, fmt.Errorf("login failed (phase %s)", client.Phase())
	}
	return cfg, client, nil
}

func postCount(cfg *config.Config) int {
	if count > 0 {
		return count
	}
	return cfg.Feed.DefaultCount
}

// writePosts prints one compact JSON document per line
func writePosts(w io.Writer, posts []instagram.Post) error {
	var buf bytes.Buffer
	for _, post := range posts {
		buf.Reset()
		if err := json.Compact(&buf, post); err != nil {
			return fmt.Errorf("invalid post JSON: %w", err)
		}
		buf.WriteByte('\n')
		if _, err := w.Write(buf.Bytes()); err != nil {
			return err
		}
	}

	logger.WithField("posts", len(posts)).Info("Posts written")
	return nil
}
