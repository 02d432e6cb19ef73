package main

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"instagraph/pkg/auth"
	"instagraph/pkg/config"
	"instagraph/pkg/instagram"
	"instagraph/pkg/logger"
)

func noAccounts(name string) (*auth.Account, error) {
	return nil, auth.ErrCredentialsNotFound
}

func noPrompt(t *testing.T) passwordReader {
	return func(user string) (string, error) {
		t.Fatalf("unexpected password prompt for %s", user)
		return "", nil
	}
}

func TestCredentialsFromConfig(t *testing.T) {
	saved := func(name string) (*auth.Account, error) {
		switch name {
		case "me":
			return &auth.Account{Username: "me", Session: "saved-me"}, nil
		case "":
			return &auth.Account{Username: "default", Session: "saved-default"}, nil
		}
		return nil, auth.ErrCredentialsNotFound
	}

	tests := []struct {
		name string
		cfg  config.InstagramConfig
		want instagram.Credentials
	}{
		{
			name: "cookie",
			cfg:  config.InstagramConfig{SessionID: "sid", CSRFToken: "tok"},
			want: instagram.Credentials{Cookie: map[string]string{"csrftoken": "tok", "sessionid": "sid"}},
		},
		{
			name: "session string",
			cfg:  config.InstagramConfig{Session: "encoded"},
			want: instagram.Credentials{SessionString: "encoded"},
		},
		{
			name: "saved account",
			cfg:  config.InstagramConfig{Account: "me"},
			want: instagram.Credentials{SessionString: "saved-me"},
		},
		{
			name: "username and password",
			cfg:  config.InstagramConfig{Username: "someone", Password: "hunter2"},
			want: instagram.Credentials{Username: "someone", Password: "hunter2"},
		},
		{
			name: "default saved session",
			cfg:  config.InstagramConfig{},
			want: instagram.Credentials{SessionString: "saved-default"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := credentialsFromConfig(&tt.cfg, saved, noPrompt(t))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCredentialsFromConfigPromptsForPassword(t *testing.T) {
	var asked string
	prompt := func(user string) (string, error) {
		asked = user
		return "typed", nil
	}

	got, err := credentialsFromConfig(&config.InstagramConfig{Username: "someone"}, noAccounts, prompt)
	require.NoError(t, err)
	assert.Equal(t, "someone", asked)
	assert.Equal(t, instagram.Credentials{Username: "someone", Password: "typed"}, got)

	failing := func(string) (string, error) { return "", errors.New("no tty") }
	_, err = credentialsFromConfig(&config.InstagramConfig{Username: "someone"}, noAccounts, failing)
	assert.ErrorContains(t, err, "no tty")
}

func TestCredentialsFromConfigErrors(t *testing.T) {
	_, err := credentialsFromConfig(&config.InstagramConfig{Account: "ghost"}, noAccounts, noPrompt(t))
	assert.ErrorIs(t, err, auth.ErrCredentialsNotFound)
	assert.ErrorContains(t, err, `saved session "ghost"`)

	_, err = credentialsFromConfig(&config.InstagramConfig{}, noAccounts, noPrompt(t))
	assert.ErrorIs(t, err, errNoCredentials)
}

func TestClientOptions(t *testing.T) {
	cfg := config.DefaultConfig()
	opts, err := clientOptions(cfg, logger.NewNopLogger())
	require.NoError(t, err)
	assert.Len(t, opts, 3)

	cfg.Client.RequestsPerMinute = 30
	cfg.Client.Proxy = "http://127.0.0.1:3128"
	opts, err = clientOptions(cfg, logger.NewNopLogger())
	require.NoError(t, err)
	assert.Len(t, opts, 5)

	cfg.Client.Proxy = "://bad"
	_, err = clientOptions(cfg, logger.NewNopLogger())
	assert.Error(t, err)
}

func TestWritePosts(t *testing.T) {
	var buf bytes.Buffer
	posts := []instagram.Post{
		instagram.Post(`{"node": {"id": "1"}}`),
		instagram.Post(`{"node":{"id":"2"}}`),
	}

	require.NoError(t, writePosts(&buf, posts))
	assert.Equal(t, "{\"node\":{\"id\":\"1\"}}\n{\"node\":{\"id\":\"2\"}}\n", buf.String())

	buf.Reset()
	require.NoError(t, writePosts(&buf, nil))
	assert.Empty(t, buf.String())

	assert.Error(t, writePosts(&buf, []instagram.Post{instagram.Post(`{`)}))
}

func TestPostCount(t *testing.T) {
	cfg := config.DefaultConfig()

	count = 0
	assert.Equal(t, 50, postCount(cfg))

	count = 7
	defer func() { count = 0 }()
	assert.Equal(t, 7, postCount(cfg))
}

func TestMaskConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Instagram.SessionID = "1234567890abcdef"
	cfg.Instagram.CSRFToken = "short"
	cfg.Instagram.Password = "hunter2"
	cfg.Sessions.RedisPassword = "redis-secret"

	masked := maskConfig(cfg)
	assert.Equal(t, "redi...cret", masked.Sessions.RedisPassword)
	assert.Equal(t, "1234...cdef", masked.Instagram.SessionID)
	assert.Equal(t, "***", masked.Instagram.CSRFToken)
	assert.Empty(t, masked.Instagram.Password)
	assert.Empty(t, masked.Instagram.Session)
	assert.Equal(t, "hunter2", cfg.Instagram.Password, "original untouched")
}

func TestValidationErrors(t *testing.T) {
	err := errors.New("configuration validation failed: user agent is required\nclient timeout must be positive")
	assert.Equal(t, []string{"user agent is required", "client timeout must be positive"}, validationErrors(err))
}

func TestReadLine(t *testing.T) {
	line, err := readLine(strings.NewReader("hunter2\n"))
	require.NoError(t, err)
	assert.Equal(t, "hunter2", line)

	line, err = readLine(strings.NewReader("no newline"))
	require.NoError(t, err)
	assert.Equal(t, "no newline", line)

	_, err = readLine(strings.NewReader(""))
	assert.Error(t, err)
}

func TestFlagOverridesMatchConfigKeys(t *testing.T) {
	defer func() { accountName, rate = "", 0 }()
	accountName = "me"
	rate = 12

	cfg := config.DefaultConfig()
	cfg.MergeCommandLineFlags(flagOverrides())
	assert.Equal(t, "me", cfg.Instagram.Account)
	assert.Equal(t, 12, cfg.Client.RequestsPerMinute)
}
