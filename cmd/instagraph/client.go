package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"instagraph/pkg/auth"
	"instagraph/pkg/config"
	"instagraph/pkg/instagram"
	"instagraph/pkg/logger"
	"instagraph/pkg/ratelimit"
	"instagraph/pkg/session"
)

// accountResolver looks up a saved session; an empty name means the default one
type accountResolver func(name string) (*auth.Account, error)

// passwordReader asks for the password of user
type passwordReader func(user string) (string, error)

var errNoCredentials = errors.New("no session: pass --csrf-token and --session-id, --session, --account or --username (see 'instagraph session guide')")

// credentialsFromConfig turns the Instagram section into client credentials.
// Without any explicit input the default saved session is used.
func credentialsFromConfig(cfg *config.InstagramConfig, resolve accountResolver, readPassword passwordReader) (instagram.Credentials, error) {
	switch {
	case cfg.HasCookie():
		return instagram.Credentials{Cookie: map[string]string{
			session.CSRFTokenKey: cfg.CSRFToken,
			session.SessionIDKey: cfg.SessionID,
		}}, nil

	case cfg.Session != "":
		return instagram.Credentials{SessionString: cfg.Session}, nil

	case cfg.Account != "":
		account, err := resolve(cfg.Account)
		if err != nil {
			return instagram.Credentials{}, fmt.Errorf("saved session %q: %w", cfg.Account, err)
		}
		return instagram.Credentials{SessionString: account.Session}, nil

	case cfg.Username != "":
		password := cfg.Password
		if password == "" {
			var err error
			if password, err = readPassword(cfg.Username); err != nil {
				return instagram.Credentials{}, fmt.Errorf("failed to read password: %w", err)
			}
		}
		return instagram.Credentials{Username: cfg.Username, Password: password}, nil
	}

	account, err := resolve("")
	if err != nil {
		return instagram.Credentials{}, errNoCredentials
	}
	logger.WithField("account", account.Username).Debug("using default saved session")
	return instagram.Credentials{SessionString: account.Session}, nil
}

// clientOptions maps the client section onto instagram options
func clientOptions(cfg *config.Config, log logger.Logger) ([]instagram.Option, error) {
	opts := []instagram.Option{
		instagram.WithLogger(log),
		instagram.WithUserAgent(cfg.Instagram.UserAgent),
		instagram.WithTimeout(cfg.Client.Timeout),
	}

	if limiter := ratelimit.PerMinute(cfg.Client.RequestsPerMinute, cfg.Client.Burst); limiter != nil {
		opts = append(opts, instagram.WithLimiter(limiter))
	}

	if cfg.Client.Proxy != "" {
		httpClient, err := instagram.NewProxyHTTPClient(cfg.Client.Proxy, cfg.Client.Timeout)
		if err != nil {
			return nil, err
		}
		opts = append(opts, instagram.WithHTTPClient(httpClient))
	}

	return opts, nil
}

// newClient builds a client from the loaded configuration
func newClient(ctx context.Context, cfg *config.Config) (*instagram.Client, error) {
	resolve := func(name string) (*auth.Account, error) {
		manager, err := newManager(cfg)
		if err != nil {
			return nil, err
		}
		return manager.Resolve(name)
	}

	creds, err := credentialsFromConfig(&cfg.Instagram, resolve, promptPassword)
	if err != nil {
		return nil, err
	}

	opts, err := clientOptions(cfg, logger.GetLogger())
	if err != nil {
		return nil, err
	}

	return instagram.New(ctx, creds, opts...)
}

// newManager opens the saved session stores, with Redis first when configured.
// An unreachable Redis is logged and skipped.
func newManager(cfg *config.Config) (*auth.Manager, error) {
	var extra []auth.CredentialStore

	if addr := cfg.Sessions.RedisAddr; addr != "" {
		store, err := auth.NewRedisStore(addr, cfg.Sessions.RedisPassword, cfg.Sessions.RedisDB)
		if err != nil {
			logger.WithError(err).Warn("Shared session store unavailable")
		} else {
			extra = append(extra, store)
		}
	}

	return auth.NewManager(extra...)
}

// promptPassword reads a password from the terminal without echo, or a line from stdin
func promptPassword(user string) (string, error) {
	fmt.Fprintf(os.Stderr, "Password for %s: ", user)

	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		password, err := term.ReadPassword(fd)
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", err
		}
		return string(password), nil
	}

	return readLine(os.Stdin)
}

func readLine(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
