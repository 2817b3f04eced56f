// Package config provides configuration management for docblocks using
// Viper for loading from files, environment variables, and command-line
// flags.
//
// Files are YAML (.docblocks.yml by default); environment variables use the
// DOCBLOCKS_ prefix with dots replaced by underscores, e.g.
// DOCBLOCKS_SERVER_PORT.
package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/conneroisu/docblocks/internal/errors"
)

// Defaults.
const (
	DefaultHost         = "localhost"
	DefaultPort         = 6006
	DefaultManifest     = "docblocks.yml"
	DefaultCanvasURL    = "/iframe.html"
	DefaultZoomInStep   = 0.8
	DefaultZoomOutStep  = 1.25
	DefaultMaxInstances = 1000
	DefaultLogLevel     = "info"
	DefaultLogFormat    = "text"
)

type Config struct {
	Server  ServerConfig  `mapstructure:"server" yaml:"server"`
	Docs    DocsConfig    `mapstructure:"docs" yaml:"docs"`
	Preview PreviewConfig `mapstructure:"preview" yaml:"preview"`
	Log     LogConfig     `mapstructure:"log" yaml:"log"`
}

type ServerConfig struct {
	Host           string   `mapstructure:"host" yaml:"host"`
	Port           int      `mapstructure:"port" yaml:"port"`
	AllowedOrigins []string `mapstructure:"allowed_origins" yaml:"allowed_origins"`
}

type DocsConfig struct {
	Manifest string `mapstructure:"manifest" yaml:"manifest"`
	Watch    bool   `mapstructure:"watch" yaml:"watch"`
}

type PreviewConfig struct {
	ToolbarBaseURL string  `mapstructure:"toolbar_base_url" yaml:"toolbar_base_url"`
	ZoomInStep     float64 `mapstructure:"zoom_in_step" yaml:"zoom_in_step"`
	ZoomOutStep    float64 `mapstructure:"zoom_out_step" yaml:"zoom_out_step"`
	MaxInstances   int     `mapstructure:"max_instances" yaml:"max_instances"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("server.host", DefaultHost)
	v.SetDefault("server.port", DefaultPort)
	v.SetDefault("docs.manifest", DefaultManifest)
	v.SetDefault("docs.watch", true)
	v.SetDefault("preview.toolbar_base_url", DefaultCanvasURL)
	v.SetDefault("preview.zoom_in_step", DefaultZoomInStep)
	v.SetDefault("preview.zoom_out_step", DefaultZoomOutStep)
	v.SetDefault("preview.max_instances", DefaultMaxInstances)
	v.SetDefault("log.level", DefaultLogLevel)
	v.SetDefault("log.format", DefaultLogFormat)
}

// Load reads the configuration from the global viper instance.
func Load() (*Config, error) {
	return LoadFrom(viper.GetViper())
}

// LoadFrom reads the configuration from v, applying defaults for anything
// unset, and validates it.
func LoadFrom(v *viper.Viper) (*Config, error) {
	SetDefaults(v)

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, errors.ErrCodeConfigInvalid, "failed to decode configuration")
	}

	// Handle origins set via env as a comma list (workaround for viper slice handling)
	if len(config.Server.AllowedOrigins) == 1 && strings.Contains(config.Server.AllowedOrigins[0], ",") {
		config.Server.AllowedOrigins = strings.Split(config.Server.AllowedOrigins[0], ",")
	}
	for i, origin := range config.Server.AllowedOrigins {
		config.Server.AllowedOrigins[i] = strings.TrimSpace(origin)
	}

	if err := validateConfig(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// validateConfig validates configuration values for security and correctness
func validateConfig(config *Config) error {
	if err := validateServerConfig(&config.Server); err != nil {
		return invalid("server config: %v", err)
	}
	if err := validateDocsConfig(&config.Docs); err != nil {
		return invalid("docs config: %v", err)
	}
	if err := validatePreviewConfig(&config.Preview); err != nil {
		return invalid("preview config: %v", err)
	}
	if err := validateLogConfig(&config.Log); err != nil {
		return invalid("log config: %v", err)
	}
	return nil
}

func invalid(format string, args ...interface{}) error {
	return errors.NewConfigError(errors.ErrCodeConfigInvalid, fmt.Sprintf(format, args...))
}

// validateServerConfig validates server configuration values
func validateServerConfig(config *ServerConfig) error {
	// Allow 0 for system-assigned ports in testing
	if config.Port < 0 || config.Port > 65535 {
		return fmt.Errorf("port %d is not in valid range 0-65535", config.Port)
	}

	if config.Host != "" {
		dangerousChars := []string{";", "&", "|", "$", "`", "(", ")", "<", ">", "\"", "'", "\\"}
		for _, char := range dangerousChars {
			if strings.Contains(config.Host, char) {
				return fmt.Errorf("host contains dangerous character: %s", char)
			}
		}
	}

	for _, origin := range config.AllowedOrigins {
		if origin == "" {
			return fmt.Errorf("empty allowed origin")
		}
	}

	return nil
}

func validateDocsConfig(config *DocsConfig) error {
	if config.Manifest == "" {
		return fmt.Errorf("manifest path is required")
	}
	if strings.Contains(filepath.Clean(config.Manifest), "..") {
		return fmt.Errorf("manifest path contains traversal: %s", config.Manifest)
	}
	return nil
}

func validatePreviewConfig(config *PreviewConfig) error {
	if config.ZoomInStep <= 0 || config.ZoomOutStep <= 0 {
		return fmt.Errorf("zoom steps must be positive, got %v and %v", config.ZoomInStep, config.ZoomOutStep)
	}
	if config.MaxInstances < 1 {
		return fmt.Errorf("max_instances must be at least 1, got %d", config.MaxInstances)
	}
	if strings.ContainsAny(config.ToolbarBaseURL, "?#\"'<> ") {
		return fmt.Errorf("toolbar_base_url must be a bare path or URL: %q", config.ToolbarBaseURL)
	}
	return nil
}

func validateLogConfig(config *LogConfig) error {
	switch strings.ToLower(config.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("unknown log level %q", config.Level)
	}
	switch config.Format {
	case "text", "json":
	default:
		return fmt.Errorf("unknown log format %q", config.Format)
	}
	return nil
}
