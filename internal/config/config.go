package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Result list layouts.
const (
	LayoutTopDown  = "top-down"  // Query on top, first result right below it
	LayoutBottomUp = "bottom-up" // Query at the bottom, first result right above it
)

const (
	minTickMs = 10
	maxTickMs = 1000
)

// Config represents the lookout configuration.
type Config struct {
	UI          UIConfig          `yaml:"ui"`
	Keybindings KeybindingsConfig `yaml:"keybindings"`
	Channels    []ChannelDef      `yaml:"channels"`
	History     HistoryConfig     `yaml:"history"`
	Log         LogConfig         `yaml:"log"`
}

// UIConfig holds picker display settings.
type UIConfig struct {
	Layout         string `yaml:"layout"`          // top-down or bottom-up
	ShowPreview    bool   `yaml:"show_preview"`    // Preview pane visible on start
	ShowHelp       bool   `yaml:"show_help"`       // Help table visible on start
	TickMs         int    `yaml:"tick_ms"`         // Refresh interval while a channel loads
	DefaultChannel string `yaml:"default_channel"` // Channel opened without an argument
}

// KeybindingsConfig maps a mode (channel, guide, send_to_channel) to
// action names and the keys bound to them. Bindings listed here replace
// the defaults for that action.
type KeybindingsConfig map[string]map[string][]string

// ChannelDef defines a channel backed by external commands.
type ChannelDef struct {
	Name           string `yaml:"name"`
	Description    string `yaml:"description"`
	SourceCommand  string `yaml:"source_command"`  // Each stdout line is an entry
	PreviewCommand string `yaml:"preview_command"` // "{}" is replaced by the entry
}

// HistoryConfig holds selection history settings.
type HistoryConfig struct {
	Enabled    bool `yaml:"enabled"`     // Record selections and offer the history channel
	MaxEntries int  `yaml:"max_entries"` // Selections kept on disk (0 = unlimited)
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
	File  string `yaml:"file"`  // Log file path (overrides default)
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		UI: UIConfig{
			Layout:         LayoutTopDown,
			ShowPreview:    true,
			ShowHelp:       false,
			TickMs:         50,
			DefaultChannel: "files",
		},
		Keybindings: KeybindingsConfig{},
		History: HistoryConfig{
			Enabled:    true,
			MaxEntries: 1000,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from the default path.
func Load() (*Config, error) {
	return LoadFromFile(DefaultPaths().ConfigFile())
}

// LoadFromFile loads configuration from the specified file.
// If the file doesn't exist, returns default configuration.
// Environment variable overrides are applied after file loading.
func LoadFromFile(path string) (*Config, error) {
	cfg, err := ReadFromFile(path)
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnvOverrides()
	return cfg, nil
}

// ReadFromFile is LoadFromFile without environment overrides. Use it for a
// config that will be saved back, so overrides never end up in the file.
func ReadFromFile(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Save saves the configuration to the default path.
func (c *Config) Save() error {
	return c.SaveToFile(DefaultPaths().ConfigFile())
}

// SaveToFile saves the configuration to the specified file.
func (c *Config) SaveToFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Get retrieves a configuration value by dot-separated key,
// for example "ui.layout".
func (c *Config) Get(key string) (string, error) {
	section, field, err := splitKey(key)
	if err != nil {
		return "", err
	}

	switch section {
	case "ui":
		return c.getUIField(field)
	case "history":
		return c.getHistoryField(field)
	case "log":
		return c.getLogField(field)
	default:
		return "", fmt.Errorf("unknown section: %s", section)
	}
}

// Set sets a configuration value by dot-separated key.
func (c *Config) Set(key, value string) error {
	section, field, err := splitKey(key)
	if err != nil {
		return err
	}

	switch section {
	case "ui":
		return c.setUIField(field, value)
	case "history":
		return c.setHistoryField(field, value)
	case "log":
		return c.setLogField(field, value)
	default:
		return fmt.Errorf("unknown section: %s", section)
	}
}

func splitKey(key string) (section, field string, err error) {
	parts := strings.Split(key, ".")
	if len(parts) != 2 {
		return "", "", errors.New("key must be in format 'section.key'")
	}
	return parts[0], parts[1], nil
}

func (c *Config) getUIField(field string) (string, error) {
	switch field {
	case "layout":
		return c.UI.Layout, nil
	case "show_preview":
		return strconv.FormatBool(c.UI.ShowPreview), nil
	case "show_help":
		return strconv.FormatBool(c.UI.ShowHelp), nil
	case "tick_ms":
		return strconv.Itoa(c.UI.TickMs), nil
	case "default_channel":
		return c.UI.DefaultChannel, nil
	default:
		return "", fmt.Errorf("unknown field: ui.%s", field)
	}
}

func (c *Config) setUIField(field, value string) error {
	switch field {
	case "layout":
		if !isValidLayout(value) {
			return fmt.Errorf("invalid layout: %s (must be %s or %s)", value, LayoutTopDown, LayoutBottomUp)
		}
		c.UI.Layout = value
	case "show_preview":
		v, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid value for show_preview: %w", err)
		}
		c.UI.ShowPreview = v
	case "show_help":
		v, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid value for show_help: %w", err)
		}
		c.UI.ShowHelp = v
	case "tick_ms":
		v, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid value for tick_ms: %w", err)
		}
		c.UI.TickMs = clampTick(v)
	case "default_channel":
		if value == "" {
			return errors.New("default_channel must not be empty")
		}
		c.UI.DefaultChannel = value
	default:
		return fmt.Errorf("unknown field: ui.%s", field)
	}
	return nil
}

func (c *Config) getHistoryField(field string) (string, error) {
	switch field {
	case "enabled":
		return strconv.FormatBool(c.History.Enabled), nil
	case "max_entries":
		return strconv.Itoa(c.History.MaxEntries), nil
	default:
		return "", fmt.Errorf("unknown field: history.%s", field)
	}
}

func (c *Config) setHistoryField(field, value string) error {
	switch field {
	case "enabled":
		v, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid value for enabled: %w", err)
		}
		c.History.Enabled = v
	case "max_entries":
		v, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid value for max_entries: %w", err)
		}
		if v < 0 {
			return errors.New("max_entries must be >= 0")
		}
		c.History.MaxEntries = v
	default:
		return fmt.Errorf("unknown field: history.%s", field)
	}
	return nil
}

func (c *Config) getLogField(field string) (string, error) {
	switch field {
	case "level":
		return c.Log.Level, nil
	case "file":
		return c.Log.File, nil
	default:
		return "", fmt.Errorf("unknown field: log.%s", field)
	}
}

func (c *Config) setLogField(field, value string) error {
	switch field {
	case "level":
		if !isValidLogLevel(value) {
			return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", value)
		}
		c.Log.Level = value
	case "file":
		c.Log.File = value
	default:
		return fmt.Errorf("unknown field: log.%s", field)
	}
	return nil
}

// Validate validates the configuration. Out-of-range numbers are clamped.
func (c *Config) Validate() error {
	if !isValidLayout(c.UI.Layout) {
		return fmt.Errorf("ui.layout must be %s or %s (got: %s)", LayoutTopDown, LayoutBottomUp, c.UI.Layout)
	}
	c.UI.TickMs = clampTick(c.UI.TickMs)

	if !isValidLogLevel(c.Log.Level) {
		return fmt.Errorf("log.level must be debug, info, warn, or error (got: %s)", c.Log.Level)
	}

	if c.History.MaxEntries < 0 {
		return errors.New("history.max_entries must be >= 0")
	}

	seen := make(map[string]bool, len(c.Channels))
	for i, ch := range c.Channels {
		if ch.Name == "" {
			return fmt.Errorf("channels[%d]: name is required", i)
		}
		if strings.TrimSpace(ch.SourceCommand) == "" {
			return fmt.Errorf("channels[%d] (%s): source_command is required", i, ch.Name)
		}
		if seen[ch.Name] {
			return fmt.Errorf("channels[%d]: duplicate name %q", i, ch.Name)
		}
		seen[ch.Name] = true
	}

	for mode := range c.Keybindings {
		if !isValidMode(mode) {
			return fmt.Errorf("keybindings: unknown mode %q (must be channel, guide, or send_to_channel)", mode)
		}
	}

	return nil
}

func clampTick(ms int) int {
	return min(max(ms, minTickMs), maxTickMs)
}

func isValidLayout(layout string) bool {
	return layout == LayoutTopDown || layout == LayoutBottomUp
}

func isValidLogLevel(level string) bool {
	switch level {
	case "debug", "info", "warn", "error":
		return true
	default:
		return false
	}
}

func isValidMode(mode string) bool {
	switch mode {
	case "channel", "guide", "send_to_channel":
		return true
	default:
		return false
	}
}

// ApplyEnvOverrides applies environment variable overrides to the config.
// Invalid values are ignored.
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("LOOKOUT_LAYOUT"); v != "" && isValidLayout(v) {
		c.UI.Layout = v
	}
	if v := os.Getenv("LOOKOUT_DEFAULT_CHANNEL"); v != "" {
		c.UI.DefaultChannel = v
	}
	if v := os.Getenv("LOOKOUT_LOG_LEVEL"); v != "" && isValidLogLevel(v) {
		c.Log.Level = v
	}
	if v := os.Getenv("LOOKOUT_DEBUG"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil && b {
			c.Log.Level = "debug"
		}
	}
}

// ListKeys returns the keys accepted by Get and Set.
func ListKeys() []string {
	return []string{
		"ui.layout",
		"ui.show_preview",
		"ui.show_help",
		"ui.tick_ms",
		"ui.default_channel",
		"history.enabled",
		"history.max_entries",
		"log.level",
		"log.file",
	}
}
