// Package config provides configuration management for the harvester.
// It defines configuration structures, default values and validation.
package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"
)

// BasicAuth contains HTTP Basic Authentication credentials
type BasicAuth struct {
	Username    string `mapstructure:"username" yaml:"username"`
	Password    string `mapstructure:"password" yaml:"password,omitempty"`
	UsernameEnv string `mapstructure:"username_env" yaml:"username_env,omitempty"`
	PasswordEnv string `mapstructure:"password_env" yaml:"password_env,omitempty"`
}

// BearerAuth contains a bearer token
type BearerAuth struct {
	Token    string `mapstructure:"token" yaml:"token,omitempty"`
	TokenEnv string `mapstructure:"token_env" yaml:"token_env,omitempty"`
}

// APIKeyAuth contains an API key sent in a custom header
type APIKeyAuth struct {
	Header   string `mapstructure:"header" yaml:"header"`
	Value    string `mapstructure:"value" yaml:"value,omitempty"`
	ValueEnv string `mapstructure:"value_env" yaml:"value_env,omitempty"`
}

// Auth contains authentication configuration
type Auth struct {
	Type   string      `mapstructure:"type" yaml:"type"` // basic, bearer or api-key
	Basic  *BasicAuth  `mapstructure:"basic" yaml:"basic,omitempty"`
	Bearer *BearerAuth `mapstructure:"bearer" yaml:"bearer,omitempty"`
	APIKey *APIKeyAuth `mapstructure:"apikey" yaml:"apikey,omitempty"`
}

// PatternConfig selects links: every Include regex must match and no Exclude regex may match
type PatternConfig struct {
	Include []string `mapstructure:"include" yaml:"include"`
	Exclude []string `mapstructure:"exclude" yaml:"exclude"`
}

// FieldConfig describes one output column
type FieldConfig struct {
	Name     string `mapstructure:"name" yaml:"name"`
	Selector string `mapstructure:"selector" yaml:"selector"`
	Attr     string `mapstructure:"attr" yaml:"attr,omitempty"`
	Coerce   string `mapstructure:"coerce" yaml:"coerce,omitempty"`
}

// LogConfig controls log level and optional file output
type LogConfig struct {
	Level      string `mapstructure:"level" yaml:"level"`
	File       string `mapstructure:"file" yaml:"file,omitempty"`
	MaxSizeMB  int    `mapstructure:"max_size_mb" yaml:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups" yaml:"max_backups"`
}

// HarvestConfig holds harvester configuration
type HarvestConfig struct {
	// Crawl shape
	SeedURL      string        `mapstructure:"seed_url" yaml:"seed_url"`
	IndexPattern PatternConfig `mapstructure:"index_pattern" yaml:"index_pattern"`
	LeafPattern  PatternConfig `mapstructure:"leaf_pattern" yaml:"leaf_pattern"`
	Fields       []FieldConfig `mapstructure:"fields" yaml:"fields"`
	MaxLeafPages int           `mapstructure:"max_leaf_pages" yaml:"max_leaf_pages"`
	ResolveLinks bool          `mapstructure:"resolve_links" yaml:"resolve_links"`

	// Politeness
	DelayMin       time.Duration `mapstructure:"delay_min" yaml:"delay_min"`
	DelayMax       time.Duration `mapstructure:"delay_max" yaml:"delay_max"`
	HostInterval   time.Duration `mapstructure:"host_interval" yaml:"host_interval"`
	RequestTimeout time.Duration `mapstructure:"request_timeout" yaml:"request_timeout"`
	UserAgent      string        `mapstructure:"user_agent" yaml:"user_agent"`
	RespectRobots  bool          `mapstructure:"respect_robots" yaml:"respect_robots"`

	// HTTP
	Auth    *Auth             `mapstructure:"auth" yaml:"auth,omitempty"`
	Headers map[string]string `mapstructure:"headers" yaml:"headers,omitempty"`

	// Output
	OutputPath    string `mapstructure:"output" yaml:"output"` // "-" or empty writes to stdout
	OutputFormat  string `mapstructure:"format" yaml:"format"`
	MissingMarker string `mapstructure:"missing" yaml:"missing"`
	DatabasePath  string `mapstructure:"database_path" yaml:"database_path,omitempty"`

	Log LogConfig `mapstructure:"log" yaml:"log"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *HarvestConfig {
	return &HarvestConfig{
		MaxLeafPages:   10,
		ResolveLinks:   true,
		DelayMin:       10 * time.Second,
		DelayMax:       30 * time.Second,
		RequestTimeout: 30 * time.Second,
		UserAgent:      "ListHarvest/1.0",
		RespectRobots:  true,
		OutputPath:     "-",
		OutputFormat:   "csv",
		MissingMarker:  "NA",
		Log: LogConfig{
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
	}
}

var supportedFormats = map[string]bool{"csv": true, "json": true, "markdown": true, "md": true}

// Validate checks if the configuration is valid
func (c *HarvestConfig) Validate() error {
	if c.SeedURL == "" {
		return ErrNoSeedURL
	}
	if !strings.HasPrefix(c.SeedURL, "http://") && !strings.HasPrefix(c.SeedURL, "https://") {
		return fmt.Errorf("%w: %s", ErrInvalidSeedURL, c.SeedURL)
	}
	if len(c.Fields) == 0 {
		return ErrNoFields
	}
	for _, f := range c.Fields {
		if f.Name == "" || f.Selector == "" {
			return fmt.Errorf("%w: %+v", ErrInvalidField, f)
		}
	}
	if c.MaxLeafPages <= 0 {
		return ErrInvalidMaxLeafPages
	}
	if c.DelayMin < 0 || c.DelayMax < c.DelayMin {
		return ErrInvalidDelay
	}
	if c.RequestTimeout <= 0 {
		return ErrInvalidTimeout
	}
	if !supportedFormats[c.OutputFormat] {
		return fmt.Errorf("%w: %s", ErrInvalidFormat, c.OutputFormat)
	}

	for _, p := range [][]string{c.IndexPattern.Include, c.IndexPattern.Exclude, c.LeafPattern.Include, c.LeafPattern.Exclude} {
		for _, expr := range p {
			if _, err := regexp.Compile(expr); err != nil {
				return fmt.Errorf("%w: %q: %v", ErrInvalidPattern, expr, err)
			}
		}
	}

	if c.Auth != nil && c.Auth.Type != "" {
		switch c.Auth.Type {
		case "basic", "bearer", "api-key":
		default:
			return fmt.Errorf("%w: %s", ErrInvalidAuthType, c.Auth.Type)
		}
	}

	return nil
}

// ParseFieldFlag parses "name=selector[@attr][|coerce]"
func ParseFieldFlag(s string) (FieldConfig, error) {
	name, rest, ok := strings.Cut(s, "=")
	name = strings.TrimSpace(name)
	if !ok || name == "" {
		return FieldConfig{}, fmt.Errorf("%w: %q", ErrInvalidField, s)
	}

	var fc FieldConfig
	fc.Name = name

	if i := strings.LastIndex(rest, "|"); i >= 0 && !strings.ContainsAny(rest[i:], "]=) ") {
		fc.Coerce = strings.TrimSpace(rest[i+1:])
		rest = rest[:i]
	}
	// a trailing @name selects an attribute; a[href] stays part of the selector
	if i := strings.LastIndex(rest, "@"); i >= 0 && !strings.ContainsAny(rest[i:], "]) ") {
		fc.Attr = strings.TrimSpace(rest[i+1:])
		rest = rest[:i]
	}
	fc.Selector = strings.TrimSpace(rest)

	if fc.Selector == "" {
		return FieldConfig{}, fmt.Errorf("%w: %q", ErrInvalidField, s)
	}
	return fc, nil
}

// LoadHeadersFromEnv merges LH_HEADER_* variables into Headers.
// LH_HEADER_ACCEPT_LANGUAGE=en becomes "Accept-Language: en".
func (c *HarvestConfig) LoadHeadersFromEnv() {
	const prefix = "LH_HEADER_"
	for _, kv := range os.Environ() {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(key, prefix) || len(key) == len(prefix) {
			continue
		}
		if c.Headers == nil {
			c.Headers = make(map[string]string)
		}
		c.Headers[headerName(key[len(prefix):])] = value
	}
}

func headerName(envKey string) string {
	parts := strings.Split(strings.ToLower(envKey), "_")
	for i, p := range parts {
		if p != "" {
			parts[i] = strings.ToUpper(p[:1]) + p[1:]
		}
	}
	return strings.Join(parts, "-")
}

// ParseHeaders parses "Name: Value" strings
func ParseHeaders(values []string) (map[string]string, error) {
	headers := make(map[string]string, len(values))
	for _, v := range values {
		name, value, ok := strings.Cut(v, ":")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("%w: %q", ErrInvalidHeader, v)
		}
		headers[name] = strings.TrimSpace(value)
	}
	return headers, nil
}

// GetBasicAuthCredentials returns the basic auth username and password,
// resolving environment variables if specified
func (c *HarvestConfig) GetBasicAuthCredentials() (username, password string) {
	if c.Auth == nil || c.Auth.Basic == nil {
		return "", ""
	}
	basic := c.Auth.Basic
	return fromEnv(basic.UsernameEnv, basic.Username), fromEnv(basic.PasswordEnv, basic.Password)
}

// GetBearerToken returns the bearer token
func (c *HarvestConfig) GetBearerToken() string {
	if c.Auth == nil || c.Auth.Bearer == nil {
		return ""
	}
	return fromEnv(c.Auth.Bearer.TokenEnv, c.Auth.Bearer.Token)
}

// GetAPIKeyCredentials returns the API key header name and value
func (c *HarvestConfig) GetAPIKeyCredentials() (header, value string) {
	if c.Auth == nil || c.Auth.APIKey == nil {
		return "", ""
	}
	return c.Auth.APIKey.Header, fromEnv(c.Auth.APIKey.ValueEnv, c.Auth.APIKey.Value)
}

func fromEnv(envName, fallback string) string {
	if envName != "" {
		return os.Getenv(envName)
	}
	return fallback
}
