package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const envPrefix = "INSTAGRAPH_"

// Config holds all configuration options for instagraph
type Config struct {
	// Authentication inputs; exactly one source should be filled in
	Instagram InstagramConfig `yaml:"instagram" json:"instagram"`

	// HTTP client behaviour
	Client ClientConfig `yaml:"client" json:"client"`

	// Feed collection defaults
	Feed FeedConfig `yaml:"feed" json:"feed"`

	// Saved session backends
	Sessions SessionsConfig `yaml:"sessions" json:"sessions"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// InstagramConfig holds the session inputs
type InstagramConfig struct {
	Username  string `yaml:"username,omitempty" json:"username,omitempty"`
	Password  string `yaml:"password,omitempty" json:"-"`
	SessionID string `yaml:"session_id,omitempty" json:"session_id,omitempty"`
	CSRFToken string `yaml:"csrf_token,omitempty" json:"csrf_token,omitempty"`
	Session   string `yaml:"session,omitempty" json:"session,omitempty"`
	Account   string `yaml:"account,omitempty" json:"account,omitempty"`
	UserAgent string `yaml:"user_agent" json:"user_agent"`
}

// ClientConfig holds transport settings
type ClientConfig struct {
	Timeout           time.Duration `yaml:"timeout" json:"timeout"`
	RequestsPerMinute int           `yaml:"requests_per_minute" json:"requests_per_minute"`
	Burst             int           `yaml:"burst" json:"burst"`
	Proxy             string        `yaml:"proxy,omitempty" json:"proxy,omitempty"`
}

// FeedConfig holds feed collection defaults
type FeedConfig struct {
	DefaultCount int `yaml:"default_count" json:"default_count"`
}

// SessionsConfig points saved sessions at a shared Redis in addition to the local stores
type SessionsConfig struct {
	RedisAddr     string `yaml:"redis_addr,omitempty" json:"redis_addr,omitempty"`
	RedisPassword string `yaml:"redis_password,omitempty" json:"-"`
	RedisDB       int    `yaml:"redis_db,omitempty" json:"redis_db,omitempty"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
	File  string `yaml:"file,omitempty" json:"file,omitempty"`
}

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Instagram: InstagramConfig{
			UserAgent: "Mozilla/5.0 (Windows NT 5.1; rv:52.0) Gecko/20100101 Firefox/52.0",
		},
		Client: ClientConfig{
			Timeout:           30 * time.Second,
			RequestsPerMinute: 0,
			Burst:             1,
		},
		Feed: FeedConfig{
			DefaultCount: 50,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// HasCookie reports whether both explicit cookie values are set
func (c *InstagramConfig) HasCookie() bool {
	return c.SessionID != "" && c.CSRFToken != ""
}

// Sources counts the independent session inputs that are filled in
func (c *InstagramConfig) Sources() int {
	n := 0
	if c.SessionID != "" || c.CSRFToken != "" {
		n++
	}
	if c.Session != "" {
		n++
	}
	if c.Account != "" {
		n++
	}
	if c.Username != "" || c.Password != "" {
		n++
	}
	return n
}

// LoadFromEnv loads configuration from INSTAGRAPH_* environment variables
func (c *Config) LoadFromEnv() error {
	strs := map[string]*string{
		"USERNAME":   &c.Instagram.Username,
		"PASSWORD":   &c.Instagram.Password,
		"SESSION_ID": &c.Instagram.SessionID,
		"CSRF_TOKEN": &c.Instagram.CSRFToken,
		"SESSION":    &c.Instagram.Session,
		"ACCOUNT":    &c.Instagram.Account,
		"USER_AGENT": &c.Instagram.UserAgent,
		"PROXY":      &c.Client.Proxy,
		"LOG_LEVEL":  &c.Logging.Level,
		"LOG_FILE":   &c.Logging.File,

		"REDIS_ADDR":     &c.Sessions.RedisAddr,
		"REDIS_PASSWORD": &c.Sessions.RedisPassword,
	}
	for name, dst := range strs {
		if v := os.Getenv(envPrefix + name); v != "" {
			*dst = v
		}
	}

	ints := map[string]*int{
		"REQUESTS_PER_MINUTE": &c.Client.RequestsPerMinute,
		"BURST":               &c.Client.Burst,
		"DEFAULT_COUNT":       &c.Feed.DefaultCount,
		"REDIS_DB":            &c.Sessions.RedisDB,
	}
	var errs []error
	for name, dst := range ints {
		v := os.Getenv(envPrefix + name)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s%s: %w", envPrefix, name, err))
			continue
		}
		*dst = n
	}

	if v := os.Getenv(envPrefix + "TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%sTIMEOUT: %w", envPrefix, err))
		} else {
			c.Client.Timeout = d
		}
	}

	return errors.Join(errs...)
}

// LoadFromFile loads configuration from a YAML file
func (c *Config) LoadFromFile(path string) error {
	// If path is empty, try default locations
	if path == "" {
		path = FindConfigFile()
		if path == "" {
			return nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// DefaultPath is where `config init` writes a new file
func DefaultPath() string {
	return filepath.Join(os.Getenv("HOME"), ".config", "instagraph", "config.yaml")
}

// FindConfigFile searches for a config file in standard locations
func FindConfigFile() string {
	home := os.Getenv("HOME")
	locations := []string{
		".instagraph.yaml",
		".instagraph.yml",
		filepath.Join(home, ".config", "instagraph", "config.yaml"),
		filepath.Join(home, ".config", "instagraph", "config.yml"),
		filepath.Join(home, ".instagraph.yaml"),
		filepath.Join(home, ".instagraph.yml"),
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	var errs []error

	if (c.Instagram.SessionID == "") != (c.Instagram.CSRFToken == "") {
		errs = append(errs, errors.New("session_id and csrf_token must be set together"))
	}
	if c.Instagram.Password != "" && c.Instagram.Username == "" {
		errs = append(errs, errors.New("password requires a username"))
	}
	if c.Instagram.Sources() > 1 {
		errs = append(errs, errors.New("only one of cookie, session, account or username/password may be set"))
	}
	if c.Instagram.UserAgent == "" {
		errs = append(errs, errors.New("user agent is required"))
	}

	if c.Client.Timeout <= 0 {
		errs = append(errs, errors.New("client timeout must be positive"))
	}
	if c.Client.RequestsPerMinute < 0 {
		errs = append(errs, errors.New("requests per minute cannot be negative"))
	}
	if c.Client.RequestsPerMinute > 0 && c.Client.Burst <= 0 {
		errs = append(errs, errors.New("burst must be positive when pacing is enabled"))
	}
	if c.Client.Proxy != "" {
		if u, err := url.Parse(c.Client.Proxy); err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, fmt.Errorf("invalid proxy URL %q", c.Client.Proxy))
		}
	}

	if c.Sessions.RedisDB < 0 {
		errs = append(errs, errors.New("redis db cannot be negative"))
	}

	if c.Feed.DefaultCount <= 0 {
		errs = append(errs, errors.New("default count must be positive"))
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true, "disabled": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, fmt.Errorf("invalid log level %q", c.Logging.Level))
	}

	return errors.Join(errs...)
}

// Save writes the configuration as YAML. The password is never written.
func (c *Config) Save(path string) error {
	out := *c
	out.Instagram.Password = ""
	out.Sessions.RedisPassword = ""

	data, err := yaml.Marshal(&out)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// MergeCommandLineFlags merges command line flags into the configuration.
// Keys match the cobra flag names; zero values are ignored.
func (c *Config) MergeCommandLineFlags(flags map[string]interface{}) {
	strs := map[string]*string{
		"username":   &c.Instagram.Username,
		"session-id": &c.Instagram.SessionID,
		"csrf-token": &c.Instagram.CSRFToken,
		"session":    &c.Instagram.Session,
		"account":    &c.Instagram.Account,
		"proxy":      &c.Client.Proxy,
		"log-level":  &c.Logging.Level,
		"log-file":   &c.Logging.File,
	}
	for name, dst := range strs {
		if v, ok := flags[name].(string); ok && v != "" {
			*dst = v
		}
	}

	if rpm, ok := flags["rate"].(int); ok && rpm > 0 {
		c.Client.RequestsPerMinute = rpm
	}
	if timeout, ok := flags["timeout"].(time.Duration); ok && timeout > 0 {
		c.Client.Timeout = timeout
	}
}

// Load loads configuration from all sources with proper precedence.
// Precedence order: flags > environment > .env files > config file > defaults
func Load(configPath string, flags map[string]interface{}) (*Config, error) {
	// .env files are optional
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".env"))
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".instagraph.env"))

	config := DefaultConfig()

	if err := config.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	if err := config.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	config.MergeCommandLineFlags(flags)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}
