// ABOUTME: sweat configuration with profile selection and environment overrides.
// ABOUTME: Handles the JSON config file, connection settings, and the store factory.

package config

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/harperreed/sweat/internal/storage"
)

// Profiles select the store the pipeline targets.
const (
	ProfileLocal  = "local"
	ProfileRemote = "remote"
)

const (
	defaultSchema = "sweat"
	defaultHost   = "localhost"
	defaultPort   = 5432
)

// ErrUnknownProfile is returned for a profile other than local or remote.
var ErrUnknownProfile = errors.New("unknown profile")

// Config stores sweat connection settings.
type Config struct {
	// Profile selects the store: "local" (SQLite, default) or "remote" (Postgres).
	Profile string `json:"profile,omitempty"`

	Host     string `json:"host,omitempty"`
	Port     int    `json:"port,omitempty"`
	User     string `json:"user,omitempty"`
	Password string `json:"password,omitempty"`
	SSLMode  string `json:"sslmode,omitempty"`

	// Schema names the database on the remote profile and the SQLite file
	// (<schema>.db) on the local profile. Defaults to "sweat".
	Schema string `json:"schema,omitempty"`

	// DataDir is where the local profile keeps its database.
	// Supports ~ expansion for home directory. Defaults to ~/.local/share/sweat.
	DataDir string `json:"data_dir,omitempty"`

	// InputFile is the export imported when `sweat import` gets no argument.
	InputFile string `json:"input_file,omitempty"`
}

// GetProfile returns the configured profile, defaulting to "local".
func (c *Config) GetProfile() string {
	if c.Profile == "" {
		return ProfileLocal
	}
	return strings.ToLower(c.Profile)
}

// GetSchema returns the configured schema, defaulting to "sweat".
func (c *Config) GetSchema() string {
	if c.Schema == "" {
		return defaultSchema
	}
	return c.Schema
}

// GetHost returns the configured host, defaulting to localhost.
func (c *Config) GetHost() string {
	if c.Host == "" {
		return defaultHost
	}
	return c.Host
}

// GetPort returns the configured port, defaulting to 5432.
func (c *Config) GetPort() int {
	if c.Port == 0 {
		return defaultPort
	}
	return c.Port
}

// GetDataDir returns the configured data directory with ~ expanded,
// defaulting to the standard XDG data directory.
func (c *Config) GetDataDir() string {
	if c.DataDir == "" {
		return storage.DataDir()
	}
	return ExpandPath(c.DataDir)
}

// SQLitePath returns the database file used by the local profile.
func (c *Config) SQLitePath() string {
	return filepath.Join(c.GetDataDir(), c.GetSchema()+".db")
}

// PostgresDSN returns the connection URL used by the remote profile.
func (c *Config) PostgresDSN() string {
	u := url.URL{
		Scheme: "postgres",
		Host:   net.JoinHostPort(c.GetHost(), strconv.Itoa(c.GetPort())),
		Path:   "/" + c.GetSchema(),
	}
	if c.User != "" {
		if c.Password != "" {
			u.User = url.UserPassword(c.User, c.Password)
		} else {
			u.User = url.User(c.User)
		}
	}
	if c.SSLMode != "" {
		u.RawQuery = url.Values{"sslmode": {c.SSLMode}}.Encode()
	}
	return u.String()
}

// Validate checks the profile and the settings it needs.
func (c *Config) Validate() error {
	switch c.GetProfile() {
	case ProfileLocal:
		return nil
	case ProfileRemote:
		if c.User == "" {
			return errors.New("remote profile needs a user (config set user or SWEAT_DB_USER)")
		}
		return nil
	default:
		return fmt.Errorf("%w: %q (use %s or %s)", ErrUnknownProfile, c.Profile, ProfileLocal, ProfileRemote)
	}
}

// OpenOptions controls OpenStore.
type OpenOptions struct {
	// CreateDatabase creates a missing remote database. Only the initializer and
	// the importer set it.
	CreateDatabase bool
}

// OpenStore creates the Store for the configured profile. The caller owns it.
func (c *Config) OpenStore(ctx context.Context, opts OpenOptions) (storage.Store, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	if c.GetProfile() == ProfileRemote {
		store, err := storage.OpenPostgres(ctx, c.PostgresDSN(), storage.PostgresOptions{CreateDatabase: opts.CreateDatabase})
		if err != nil {
			return nil, err
		}
		return store, nil
	}

	store, err := storage.OpenSQLite(c.SQLitePath())
	if err != nil {
		return nil, err
	}
	return store, nil
}

// ApplyEnv overrides fields from SWEAT_* environment variables.
func (c *Config) ApplyEnv() error {
	c.Profile = getEnv("SWEAT_PROFILE", c.Profile)
	c.Host = getEnv("SWEAT_DB_HOST", c.Host)
	c.User = getEnv("SWEAT_DB_USER", c.User)
	c.Password = getEnv("SWEAT_DB_PASSWORD", c.Password)
	c.Schema = getEnv("SWEAT_DB_SCHEMA", c.Schema)
	c.SSLMode = getEnv("SWEAT_DB_SSLMODE", c.SSLMode)
	c.DataDir = getEnv("SWEAT_DATA_DIR", c.DataDir)

	port, err := getIntEnv("SWEAT_DB_PORT", c.Port)
	if err != nil {
		return err
	}
	c.Port = port
	return nil
}

// Set assigns a config key by its JSON name.
func (c *Config) Set(key, value string) error {
	switch key {
	case "profile":
		c.Profile = value
	case "host":
		c.Host = value
	case "port":
		port, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid port %q: %w", value, err)
		}
		c.Port = port
	case "user":
		c.User = value
	case "password":
		c.Password = value
	case "sslmode":
		c.SSLMode = value
	case "schema":
		c.Schema = value
	case "data_dir":
		c.DataDir = value
	case "input_file":
		c.InputFile = value
	default:
		return fmt.Errorf("unknown config key %q", key)
	}
	return nil
}

// Redacted returns a copy safe to print.
func (c *Config) Redacted() *Config {
	cp := *c
	if cp.Password != "" {
		cp.Password = "********"
	}
	return &cp
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) string {
	if path == "" {
		return ""
	}
	if path == "~" {
		home, _ := os.UserHomeDir()
		return home
	}
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[2:])
	}
	return path
}

// GetConfigPath returns the config file path.
func GetConfigPath() string {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, _ := os.UserHomeDir()
		configDir = filepath.Join(homeDir, ".config")
	}
	return filepath.Join(configDir, "sweat", "config.json")
}

// Load reads config from the default path.
func Load() (*Config, error) {
	return LoadFrom(GetConfigPath())
}

// LoadFrom reads config from path. A missing file yields an empty config.
func LoadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, err
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &cfg, nil
}

// Save writes config to the default path.
func (c *Config) Save() error {
	return c.SaveTo(GetConfigPath())
}

// SaveTo writes config to path with owner-only permissions.
func (c *Config) SaveTo(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getIntEnv(key string, fallback int) (int, error) {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid integer %q", key, value)
	}
	return n, nil
}
