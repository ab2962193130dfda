package config

import (
	"fmt"
	"time"

	"github.com/starcalypse/torrentdeck/downloader"
	"github.com/starcalypse/torrentdeck/relocator"
	"github.com/starcalypse/torrentdeck/rules"
)

// AppConfig represents the complete configuration structure
type AppConfig struct {
	Connection ConnectionConfig `mapstructure:"connection" json:"connection"`
	Client     ClientConfig     `mapstructure:"client" json:"client"`
	Rules      []rules.Rule     `mapstructure:"rules" json:"rules"`
	Filter     string           `mapstructure:"filter" json:"filter,omitempty"`
	Logging    LoggingConfig    `mapstructure:"logging" json:"logging"`
	Server     ServerConfig     `mapstructure:"server" json:"server"`
}

// ConnectionConfig holds the downloader connection details
type ConnectionConfig struct {
	DownloaderType string `mapstructure:"downloader_type" json:"downloader_type"`
	Host           string `mapstructure:"host" json:"host"`
	// Port 0 selects the backend default
	Port     int    `mapstructure:"port" json:"port"`
	Username string `mapstructure:"username" json:"username"`
	Password string `mapstructure:"password" json:"password"`
	UseHTTPS bool   `mapstructure:"use_https" json:"use_https"`
}

// ClientConfig tunes the HTTP transport to the downloader. Timeouts are in
// seconds, 0 keeps the built-in default.
type ClientConfig struct {
	DialTimeout    int `mapstructure:"dial_timeout" json:"dial_timeout"`
	RequestTimeout int `mapstructure:"request_timeout" json:"request_timeout"`
}

// Options converts the settings into backend client options
func (c ClientConfig) Options(userAgent string) []downloader.Option {
	opts := []downloader.Option{
		downloader.WithDialTimeout(time.Duration(c.DialTimeout) * time.Second),
		downloader.WithRequestTimeout(time.Duration(c.RequestTimeout) * time.Second),
	}
	if userAgent != "" {
		opts = append(opts, downloader.WithUserAgent(userAgent))
	}
	return opts
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level" json:"level"`
	Format string `mapstructure:"format" json:"format"`
	Color  bool   `mapstructure:"color" json:"color"`
}

// ServerConfig contains the HTTP API settings
type ServerConfig struct {
	Listen string `mapstructure:"listen" json:"listen"`
}

// Descriptor resolves the connection into a backend descriptor, applying
// the backend default port when none is set.
func (c ConnectionConfig) Descriptor() (downloader.Descriptor, error) {
	kind, err := downloader.ParseKind(c.DownloaderType)
	if err != nil {
		return downloader.Descriptor{}, err
	}

	port := c.Port
	if port == 0 {
		port = kind.DefaultPort(c.UseHTTPS)
	}
	if port < 0 || port > 65535 {
		return downloader.Descriptor{}, fmt.Errorf("invalid port: %d", c.Port)
	}

	return downloader.Descriptor{
		Kind:     kind,
		Host:     c.Host,
		Port:     port,
		Username: c.Username,
		Password: c.Password,
		UseHTTPS: c.UseHTTPS,
	}, nil
}

// Request builds the pipeline input for scan and execute
func (c *AppConfig) Request() (relocator.Request, error) {
	desc, err := c.Connection.Descriptor()
	if err != nil {
		return relocator.Request{}, err
	}
	return relocator.Request{
		Connection: desc,
		Rules:      c.Rules,
		Filter:     c.Filter,
	}, nil
}
