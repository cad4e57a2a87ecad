package internal

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/chaser/internal/ignore"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Config represents the application configuration.
type Config struct {
	App     ApplicationConfig `yaml:"app"`
	Sync    SyncConfig        `yaml:"sync"`
	History HistoryConfig     `yaml:"history"`
	Auth    AuthConfig        `yaml:"auth"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Sync.Validate(); err != nil {
		return err
	}
	return c.Auth.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	// LogFile, when set, receives logs through a rotating writer instead of stderr.
	LogFile string     `yaml:"log_file"`
	HTTP    HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// SyncConfig selects what is watched and which files are kept in step.
type SyncConfig struct {
	WatchPaths       []string `yaml:"watch_paths"`
	Recursive        bool     `yaml:"recursive"`
	IgnorePatterns   []string `yaml:"ignore_patterns"`
	Targets          []string `yaml:"targets"`
	RespectGitignore bool     `yaml:"respect_gitignore"`
}

// Validate validates the sync configuration.
func (c *SyncConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.WatchPaths, validation.Each(validation.Required)),
		validation.Field(&c.IgnorePatterns, validation.Each(validation.Required)),
		validation.Field(&c.Targets, validation.Each(validation.Required)),
	)
}

// AddWatchPath appends path unless it is already present.
func (c *SyncConfig) AddWatchPath(path string) bool {
	return addUnique(&c.WatchPaths, path)
}

// RemoveWatchPath drops path and reports whether it was present.
func (c *SyncConfig) RemoveWatchPath(path string) bool {
	return removeValue(&c.WatchPaths, path)
}

// AddIgnorePattern appends pattern unless it is already present.
func (c *SyncConfig) AddIgnorePattern(pattern string) bool {
	return addUnique(&c.IgnorePatterns, pattern)
}

// AddTarget appends location unless it is already present.
func (c *SyncConfig) AddTarget(location string) bool {
	return addUnique(&c.Targets, location)
}

// RemoveTarget drops location and reports whether it was present.
func (c *SyncConfig) RemoveTarget(location string) bool {
	return removeValue(&c.Targets, location)
}

// Matcher builds the ignore matcher for the configured roots.
func (c *SyncConfig) Matcher() *ignore.Matcher {
	return ignore.NewMatcher(ignore.MatcherOptions{
		Patterns:         c.IgnorePatterns,
		Roots:            c.WatchPaths,
		RespectGitignore: c.RespectGitignore,
	})
}

func addUnique(list *[]string, v string) bool {
	for _, have := range *list {
		if have == v {
			return false
		}
	}
	*list = append(*list, v)
	return true
}

func removeValue(list *[]string, v string) bool {
	for i, have := range *list {
		if have == v {
			*list = append((*list)[:i], (*list)[i+1:]...)
			return true
		}
	}
	return false
}

// ParseBool accepts true/1/yes/on and false/0/no/off in any case.
func ParseBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1", "yes", "on":
		return true, nil
	case "false", "0", "no", "off":
		return false, nil
	}
	return false, fmt.Errorf("invalid boolean %s", strconv.Quote(s))
}

// HistoryConfig holds the rename journal location. An empty path disables
// the journal.
type HistoryConfig struct {
	Path string `yaml:"path"`
}

// Enabled reports whether the journal is configured.
func (c *HistoryConfig) Enabled() bool {
	return c.Path != ""
}

// AuthConfig holds authentication configuration.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required, suitable for local use.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode"`
	Token string `yaml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken && c.Token == "" {
		return fmt.Errorf("auth: mode is %q but token is empty", AuthModeToken)
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8787,
			},
		},
		Sync: SyncConfig{
			WatchPaths:     []string{"./test_files"},
			Recursive:      true,
			IgnorePatterns: []string{"*.tmp", "*.log", ".git/**", "target/**"},
			Targets:        []string{},
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
	}
}
