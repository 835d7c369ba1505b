package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"stagr/internal/errors"
	"stagr/internal/patterns"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration structure.
// It defines the repository to show, how it is refreshed and how the tree
// is presented.
type Config struct {
	Repository struct {
		Path string `yaml:"path"` // Working tree to open when none is given
	} `yaml:"repository"`
	Refresh struct {
		Interval   int  `yaml:"interval"`    // Poll interval in seconds
		DebounceMS int  `yaml:"debounce_ms"` // Quiet period before a change refresh
		Watch      bool `yaml:"watch"`       // Use file system notifications
	} `yaml:"refresh"`
	Tree struct {
		Ignore    []string `yaml:"ignore"`    // Glob patterns hidden from the tree
		Collapsed []string `yaml:"collapsed"` // Directories collapsed on start
	} `yaml:"tree"`
	Theme struct {
		Name     string `yaml:"name"`     // Theme name (default, dark, light, etc.)
		Primary  string `yaml:"primary"`  // Primary color for branding
		Success  string `yaml:"success"`  // Added paths
		Warning  string `yaml:"warning"`  // Modified paths
		Error    string `yaml:"error"`    // Deleted and conflicted paths
		Info     string `yaml:"info"`     // Renamed paths and hints
		Emphasis string `yaml:"emphasis"` // Selected row
		Border   string `yaml:"border"`   // Border color for frames
	} `yaml:"theme"`
	Log struct {
		Debug bool   `yaml:"debug"` // Enable debug entries
		JSON  bool   `yaml:"json"`  // One JSON object per entry
		File  string `yaml:"file"`  // Log file used by the interactive view
	} `yaml:"log"`
}

// DefaultPath returns the default config location
// (~/.config/stagr/config.yaml).
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "stagr", "config.yaml"), nil
}

// LoadConfig loads configuration from the default location.
func LoadConfig() (*Config, error) {
	path, err := DefaultPath()
	if err != nil {
		return nil, errors.NewConfigError("cannot locate home directory", "", errors.ConfigNotFound, err)
	}
	return LoadConfigFile(path)
}

// LoadConfigFile loads configuration from a specific file path.
// If the file doesn't exist, returns default configuration. Keys missing
// from the file keep their default values.
func LoadConfigFile(path string) (*Config, error) {
	cfg := baseConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.fillTheme()
			return cfg, nil
		}
		return nil, errors.NewConfigError("error reading config file", path, errors.ConfigNotFound, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.NewConfigError("error parsing config file", path, errors.InvalidConfig, err)
	}

	cfg.fillTheme()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// defaultConfig returns the default configuration.
func defaultConfig() *Config {
	cfg := baseConfig()
	cfg.fillTheme()
	return cfg
}

// baseConfig holds the defaults except theme colors, which follow the
// theme name once it is known.
func baseConfig() *Config {
	cfg := &Config{}

	cfg.Repository.Path = "."

	cfg.Refresh.Interval = 5
	cfg.Refresh.DebounceMS = 200
	cfg.Refresh.Watch = true

	cfg.Tree.Ignore = []string{}
	cfg.Tree.Collapsed = []string{}

	cfg.Theme.Name = "default"

	return cfg
}

// New creates a new configuration instance with default values.
func New() *Config {
	return defaultConfig()
}

// SaveConfig saves the configuration to the specified file.
// It creates parent directories if they don't exist.
func SaveConfig(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.NewFileError("failed to create config directory", filepath.Dir(path), errors.FileAccessDenied, err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return errors.Wrap(err, "failed to marshal config")
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.NewFileError("failed to write config file", path, errors.FileAccessDenied, err)
	}

	return nil
}

// Validate checks if the configuration is valid.
// Returns a ConfigError naming the offending setting.
func (c *Config) Validate() error {
	if c == nil {
		return errors.NewConfigError("nil config", "", errors.InvalidConfig, nil)
	}

	if c.Refresh.Interval < 1 {
		return errors.NewConfigError("refresh interval must be >= 1 second", "refresh.interval", errors.InvalidConfig, nil)
	}

	if c.Refresh.DebounceMS < 0 {
		return errors.NewConfigError("debounce must be >= 0 milliseconds", "refresh.debounce_ms", errors.InvalidConfig, nil)
	}

	if _, err := patterns.NewMatcher(c.Tree.Ignore); err != nil {
		return err
	}

	for i, dir := range c.Tree.Collapsed {
		if dir == "" {
			return errors.NewConfigError("collapsed directory cannot be empty", fmt.Sprintf("tree.collapsed[%d]", i), errors.InvalidConfig, nil)
		}
	}

	if !isTheme(c.Theme.Name) {
		return errors.NewConfigError("unknown theme", c.Theme.Name, errors.InvalidConfig, nil)
	}

	return nil
}

// IgnoreMatcher compiles the ignore patterns.
func (c *Config) IgnoreMatcher() (*patterns.Matcher, error) {
	return patterns.NewMatcher(c.Tree.Ignore)
}

// RefreshInterval returns the poll interval.
func (c *Config) RefreshInterval() time.Duration {
	return time.Duration(c.Refresh.Interval) * time.Second
}

// Debounce returns the quiet period for change refreshes.
func (c *Config) Debounce() time.Duration {
	return time.Duration(c.Refresh.DebounceMS) * time.Millisecond
}

var themes = map[string]map[string]string{
	"default": {
		"primary":  "213", // Purple
		"success":  "114", // Green
		"warning":  "220", // Yellow
		"error":    "196", // Red
		"info":     "39",  // Blue
		"emphasis": "212", // Light Pink
		"border":   "213", // Purple
	},
	"dark": {
		"primary":  "105",
		"success":  "78",
		"warning":  "214",
		"error":    "160",
		"info":     "33",
		"emphasis": "147",
		"border":   "105",
	},
	"light": {
		"primary":  "135",
		"success":  "28",
		"warning":  "130",
		"error":    "124",
		"info":     "25",
		"emphasis": "90",
		"border":   "135",
	},
	"monochrome": {
		"primary":  "245",
		"success":  "252",
		"warning":  "248",
		"error":    "255",
		"info":     "243",
		"emphasis": "255",
		"border":   "245",
	},
}

// GetTheme returns a predefined theme configuration by name.
// If the theme doesn't exist, returns the default theme.
func GetTheme(name string) map[string]string {
	if theme, exists := themes[name]; exists {
		return theme
	}
	return themes["default"]
}

// ApplyTheme sets the theme colors from a predefined theme. An unknown
// name is kept so Validate can report it.
func (c *Config) ApplyTheme(name string) {
	theme := GetTheme(name)

	c.Theme.Name = name
	c.Theme.Primary = theme["primary"]
	c.Theme.Success = theme["success"]
	c.Theme.Warning = theme["warning"]
	c.Theme.Error = theme["error"]
	c.Theme.Info = theme["info"]
	c.Theme.Emphasis = theme["emphasis"]
	c.Theme.Border = theme["border"]
}

// fillTheme sets every color left empty from the named theme.
func (c *Config) fillTheme() {
	if c.Theme.Name == "" {
		c.Theme.Name = "default"
	}
	theme := GetTheme(c.Theme.Name)
	fill := func(dst *string, key string) {
		if *dst == "" {
			*dst = theme[key]
		}
	}
	fill(&c.Theme.Primary, "primary")
	fill(&c.Theme.Success, "success")
	fill(&c.Theme.Warning, "warning")
	fill(&c.Theme.Error, "error")
	fill(&c.Theme.Info, "info")
	fill(&c.Theme.Emphasis, "emphasis")
	fill(&c.Theme.Border, "border")
}

// ListThemes returns the predefined theme names in sorted order.
func ListThemes() []string {
	names := make([]string, 0, len(themes))
	for name := range themes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func isTheme(name string) bool {
	_, ok := themes[name]
	return ok
}
