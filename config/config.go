package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/starcalypse/torrentdeck/downloader"
	"github.com/starcalypse/torrentdeck/filter"
	"github.com/starcalypse/torrentdeck/rules"
)

const (
	// AppName names the config directory
	AppName = "TorrentDeck"
	// EnvPrefix prefixes environment overrides, e.g. TORRENTDECK_CONNECTION_PASSWORD
	EnvPrefix = "TORRENTDECK"

	DefaultListen = "127.0.0.1:7474"
)

// DefaultPath returns $XDG_CONFIG_HOME/TorrentDeck/config.json
func DefaultPath() string {
	return filepath.Join(xdg.ConfigHome, AppName, "config.json")
}

// Default returns the built-in configuration
func Default() *AppConfig {
	return &AppConfig{
		Connection: ConnectionConfig{
			DownloaderType: string(downloader.KindQBittorrent),
			Host:           "127.0.0.1",
			Port:           8080,
			Username:       "admin",
		},
		Client: ClientConfig{
			DialTimeout:    int(downloader.DefaultDialTimeout / time.Second),
			RequestTimeout: int(downloader.DefaultRequestTimeout / time.Second),
		},
		Rules: []rules.Rule{},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
			Color:  true,
		},
		Server: ServerConfig{
			Listen: DefaultListen,
		},
	}
}

// Store is a file backed config store
type Store struct {
	path   string
	logger zerolog.Logger
}

// NewStore creates a store at path, or at DefaultPath when path is empty
func NewStore(path string, logger zerolog.Logger) *Store {
	if path == "" {
		path = DefaultPath()
	}
	return &Store{path: path, logger: logger}
}

// Path returns the config file location
func (s *Store) Path() string {
	return s.path
}

// Load reads the config file with TORRENTDECK_* environment overrides
// applied. A missing, unreadable, unparsable or invalid file yields Default.
// The result is meant for running pipelines, never for saving back.
func (s *Store) Load() *AppConfig {
	cfg, err := s.read(true)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.logger.Debug().Str("path", s.path).Msg("No config file, using defaults")
		} else {
			s.logger.Warn().Err(err).Str("path", s.path).Msg("Failed to load config, using defaults")
		}
		return Default()
	}
	return cfg
}

// Read returns exactly what the config file holds, without environment
// overrides, so it is safe to modify and Save. A missing file yields Default.
// Any other failure is returned as a *ConfigError.
func (s *Store) Read() (*AppConfig, error) {
	cfg, err := s.read(false)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Default(), nil
		}
		return nil, err
	}
	return cfg, nil
}

func (s *Store) read(withEnv bool) (*AppConfig, error) {
	v := viper.New()

	// Set default values
	setDefaults(v)

	v.SetConfigFile(s.path)
	if filepath.Ext(s.path) == "" {
		v.SetConfigType("json")
	}

	if withEnv {
		v.SetEnvPrefix(EnvPrefix)
		v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
		v.AutomaticEnv()
	}

	if err := v.ReadInConfig(); err != nil {
		return nil, &ConfigError{Op: OpRead, Path: s.path, Err: err}
	}

	var cfg AppConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, &ConfigError{Op: OpDecode, Path: s.path, Err: err}
	}
	if cfg.Rules == nil {
		cfg.Rules = []rules.Rule{}
	}

	// Validate configuration
	if err := Validate(&cfg); err != nil {
		return nil, &ConfigError{Op: OpValidate, Path: s.path, Err: err}
	}

	return &cfg, nil
}

// Save validates cfg and writes it, creating the directory when needed
func (s *Store) Save(cfg *AppConfig) error {
	if err := Validate(cfg); err != nil {
		return &ConfigError{Op: OpValidate, Path: s.path, Err: err}
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return &ConfigError{Op: OpWrite, Path: s.path, Err: err}
	}

	settings, err := toSettings(cfg)
	if err != nil {
		return &ConfigError{Op: OpEncode, Path: s.path, Err: err}
	}

	v := viper.New()
	if filepath.Ext(s.path) == "" {
		v.SetConfigType("json")
	}
	v.SetConfigPermissions(0o600)
	if err := v.MergeConfigMap(settings); err != nil {
		return &ConfigError{Op: OpEncode, Path: s.path, Err: err}
	}

	if err := v.WriteConfigAs(s.path); err != nil {
		return &ConfigError{Op: OpWrite, Path: s.path, Err: err}
	}

	s.logger.Debug().Str("path", s.path).Msg("Saved config")
	return nil
}

// toSettings flattens cfg through its json tags into the map viper writes
func toSettings(cfg *AppConfig) (map[string]any, error) {
	data, err := json.Marshal(cfg)
	if err != nil {
		return nil, err
	}
	var settings map[string]any
	if err := json.Unmarshal(data, &settings); err != nil {
		return nil, err
	}
	return settings, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	d := Default()

	// Connection defaults
	v.SetDefault("connection.downloader_type", d.Connection.DownloaderType)
	v.SetDefault("connection.host", d.Connection.Host)
	v.SetDefault("connection.port", d.Connection.Port)
	v.SetDefault("connection.username", d.Connection.Username)
	v.SetDefault("connection.password", d.Connection.Password)
	v.SetDefault("connection.use_https", d.Connection.UseHTTPS)

	v.SetDefault("client.dial_timeout", d.Client.DialTimeout)
	v.SetDefault("client.request_timeout", d.Client.RequestTimeout)

	v.SetDefault("filter", "")

	// Logging defaults
	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)
	v.SetDefault("logging.color", d.Logging.Color)

	v.SetDefault("server.listen", d.Server.Listen)
}

// Validate checks if the configuration is valid. Empty logging fields are
// accepted and mean the defaults.
func Validate(cfg *AppConfig) error {
	if _, err := downloader.ParseKind(cfg.Connection.DownloaderType); err != nil {
		return fmt.Errorf("connection.downloader_type: %w", err)
	}

	if strings.TrimSpace(cfg.Connection.Host) == "" {
		return fmt.Errorf("connection.host is required")
	}

	if cfg.Connection.Port < 0 || cfg.Connection.Port > 65535 {
		return fmt.Errorf("invalid connection.port: %d", cfg.Connection.Port)
	}

	if cfg.Client.DialTimeout < 0 || cfg.Client.RequestTimeout < 0 {
		return fmt.Errorf("client timeouts must not be negative")
	}

	// Validate logging level
	validLevels := map[string]bool{
		"":      true,
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[cfg.Logging.Level] {
		return fmt.Errorf("invalid logging level: %s", cfg.Logging.Level)
	}

	// Validate logging format
	validFormats := map[string]bool{
		"":        true,
		"console": true,
		"json":    true,
	}
	if !validFormats[cfg.Logging.Format] {
		return fmt.Errorf("invalid logging format: %s", cfg.Logging.Format)
	}

	if strings.TrimSpace(cfg.Filter) != "" {
		if _, err := filter.Compile(cfg.Filter); err != nil {
			return fmt.Errorf("invalid filter: %w", err)
		}
	}

	return nil
}
