package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/adrg/xdg"
	"github.com/charmbracelet/log"
)

// FileName is the name of the configuration file in every search location.
const FileName = "deepl.toml"

// ErrNotFound is returned by Find when no configuration file exists.
var ErrNotFound = errors.New(FileName + " not found")

// Config represents the mdtrans configuration
type Config struct {
	APIKey             string                       `toml:"api_key"`
	ProjectName        string                       `toml:"project_name"`
	BackupOriginalText bool                         `toml:"backup_original_text"`
	TargetExtensions   map[string][]string          `toml:"target_extensions"`
	Glossaries         map[string]map[string]string `toml:"glossaries"`
	IgnoreWords        map[string][]string          `toml:"ignores"`

	Endpoint      string `toml:"endpoint,omitempty"`
	LogFile       string `toml:"log_file,omitempty"`
	LogLevel      string `toml:"log_level,omitempty"`
	StateFile     string `toml:"state_file,omitempty"`
	Concurrency   int    `toml:"concurrency,omitempty"`
	MaxDepth      int    `toml:"max_depth,omitempty"`
	IncludeHidden bool   `toml:"include_hidden,omitempty"`
}

// DefaultExtensions are translated when the project lists none.
var DefaultExtensions = []string{"md"}

// DefaultConfig returns default configuration
func DefaultConfig() *Config {
	return &Config{
		ProjectName:      "default",
		TargetExtensions: map[string][]string{},
		Glossaries:       map[string]map[string]string{},
		IgnoreWords:      map[string][]string{},
		LogLevel:         "warn",
		StateFile:        StateFilePath(),
		Concurrency:      4,
	}
}

// ConfigPath returns the per-user config file location.
// Can be overridden for testing
var ConfigPath = func() string {
	return filepath.Join(xdg.ConfigHome, "mdtrans", FileName)
}

// StateFilePath returns the path to the state file
// Uses platform-specific XDG data directory
// Can be overridden for testing
var StateFilePath = func() string {
	return filepath.Join(xdg.DataHome, "mdtrans", "state.json")
}

// SearchPaths lists the locations Find tries, in order: the working
// directory, the home directory and the XDG config directory.
func SearchPaths() []string {
	paths := []string{FileName}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, "."+FileName))
	}
	return append(paths, ConfigPath())
}

// Find loads the first configuration file that exists in SearchPaths. A
// file that exists but fails to parse stops the search.
func Find() (*Config, string, error) {
	for _, p := range SearchPaths() {
		cfg, err := Load(p)
		if errors.Is(err, os.ErrNotExist) {
			log.Debug("config file not found", "path", p)
			continue
		}
		if err != nil {
			return nil, p, err
		}
		return cfg, p, nil
	}
	return nil, "", ErrNotFound
}

// Load reads, validates and expands the configuration at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes TOML configuration over the defaults.
func Parse(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	md, err := toml.Decode(string(data), cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		log.Warn("unknown config keys", "keys", strings.Join(keys, ", "))
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if err := cfg.ExpandPaths(); err != nil {
		return nil, fmt.Errorf("failed to expand paths: %w", err)
	}
	return cfg, nil
}

// Save writes configuration as TOML to path.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if strings.TrimSpace(c.APIKey) == "" {
		return fmt.Errorf("api_key cannot be empty")
	}
	if c.Concurrency < 0 {
		return fmt.Errorf("concurrency must not be negative")
	}
	if c.MaxDepth < 0 {
		return fmt.Errorf("max_depth must not be negative")
	}
	if c.LogLevel != "" {
		if _, err := log.ParseLevel(c.LogLevel); err != nil {
			return fmt.Errorf("invalid log_level '%s': %w", c.LogLevel, err)
		}
	}
	for project, exts := range c.TargetExtensions {
		for _, ext := range exts {
			if strings.TrimPrefix(ext, ".") == "" {
				return fmt.Errorf("target_extensions.%s contains an empty extension", project)
			}
		}
	}
	return nil
}

// ExpandPaths expands any ~ or relative paths to absolute paths
func (c *Config) ExpandPaths() error {
	var err error

	c.LogFile, err = expandPath(c.LogFile)
	if err != nil {
		return fmt.Errorf("failed to expand log_file: %w", err)
	}

	c.StateFile, err = expandPath(c.StateFile)
	if err != nil {
		return fmt.Errorf("failed to expand state_file: %w", err)
	}

	return nil
}

// IsFreeAPIKey reports whether the key belongs to the free plan.
func (c *Config) IsFreeAPIKey() bool {
	return strings.HasSuffix(c.APIKey, ":fx")
}

// Extensions returns the file extensions (without dot) translated for the
// current project.
func (c *Config) Extensions() []string {
	exts := c.TargetExtensions[c.ProjectName]
	if len(exts) == 0 {
		return DefaultExtensions
	}
	out := make([]string, len(exts))
	for i, e := range exts {
		out[i] = strings.ToLower(strings.TrimPrefix(e, "."))
	}
	return out
}

// Ignores returns the phrases of the current project that must never be
// translated.
func (c *Config) Ignores() []string {
	return c.IgnoreWords[c.ProjectName]
}

// GlossaryID looks up the glossary configured for the current project and
// language pair. The key has the form "{from}_{to}", e.g. "en_ja".
func (c *Config) GlossaryID(from, to string) (string, bool) {
	id, ok := c.Glossaries[c.ProjectName][from+"_"+to]
	return id, ok && id != ""
}

// Workers returns the batch concurrency, at least one.
func (c *Config) Workers() int {
	if c.Concurrency < 1 {
		return 1
	}
	return c.Concurrency
}

// expandPath expands ~ to home directory and converts to absolute path
func expandPath(path string) (string, error) {
	if path == "" {
		return path, nil
	}

	if path[0] == '~' {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		if len(path) == 1 {
			return homeDir, nil
		}
		path = filepath.Join(homeDir, path[1:])
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}

	return absPath, nil
}
