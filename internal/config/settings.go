package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"
)

// Settings holds the runtime configuration read from the TOML settings file,
// environment variables (GOCONTACTS_*) and built-in defaults, in that order of precedence
// (environment first).
type Settings struct {
	CardsDir        string `mapstructure:"cards_dir" toml:"cards_dir"`
	IndexDir        string `mapstructure:"index_dir" toml:"index_dir"`
	ServerPort      string `mapstructure:"server_port" toml:"server_port"`
	Language        string `mapstructure:"language" toml:"language"`
	RemoteURL       string `mapstructure:"remote_url" toml:"remote_url"`
	RemoteUser      string `mapstructure:"remote_user" toml:"remote_user"`
	ReminderTrigger string `mapstructure:"reminder_trigger" toml:"reminder_trigger"` // ISO8601 duration (e.g. "-P1D")
	RefreshMinutes  int    `mapstructure:"refresh_minutes" toml:"refresh_minutes"`
	LogFormat       string `mapstructure:"log_format" toml:"log_format"`
}

// DefaultSettings returns the settings used when no file or environment override exists.
func DefaultSettings() Settings {
	return Settings{
		CardsDir:        DefaultCardsDir,
		ServerPort:      DefaultPort,
		Language:        DefaultLanguage,
		ReminderTrigger: DefaultReminder,
		RefreshMinutes:  DefaultRefreshMin,
		LogFormat:       DefaultLogFormat,
	}
}

// SettingsDir returns the platform configuration directory for the application.
func SettingsDir() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("%s: %w", ErrConfigDir, err)
	}
	return filepath.Join(dir, AppCommand), nil
}

// DefaultSettingsPath returns <user config dir>/go-contacts/config.toml.
func DefaultSettingsPath() (string, error) {
	dir, err := SettingsDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, ConfigFileName), nil
}

// Load reads settings from path. An empty path means the default location;
// a missing file at the default location is not an error.
// It returns the settings and the file actually used ("" when none).
func Load(path string) (Settings, string, error) {
	v := viper.New()

	defaults := DefaultSettings()
	v.SetDefault(KeyCardsDir, defaults.CardsDir)
	v.SetDefault(KeyIndexDir, defaults.IndexDir)
	v.SetDefault(KeyServerPort, defaults.ServerPort)
	v.SetDefault(KeyLanguage, defaults.Language)
	v.SetDefault(KeyRemoteURL, defaults.RemoteURL)
	v.SetDefault(KeyRemoteUser, defaults.RemoteUser)
	v.SetDefault(KeyReminderTrigger, defaults.ReminderTrigger)
	v.SetDefault(KeyRefreshMinutes, defaults.RefreshMinutes)
	v.SetDefault(KeyLogFormat, defaults.LogFormat)

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	explicit := path != ""
	if !explicit {
		p, err := DefaultSettingsPath()
		if err == nil {
			path = p
		}
	}

	resolved := ""
	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("toml")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			missing := errors.As(err, &notFound) || errors.Is(err, os.ErrNotExist)
			if explicit || !missing {
				return Settings{}, "", fmt.Errorf("%s: %w", ErrConfigRead, err)
			}
		} else {
			resolved = path
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return Settings{}, "", fmt.Errorf("%s: %w", ErrConfigDecode, err)
	}
	if err := s.Validate(); err != nil {
		return Settings{}, "", err
	}
	return s, resolved, nil
}

// Validate checks the fields whose values are constrained.
func (s Settings) Validate() error {
	if err := ValidatePort(s.ServerPort); err != nil {
		return err
	}
	switch s.LogFormat {
	case LogFormatText, LogFormatJSON:
	default:
		return errors.New(ErrInvalidLogFormat)
	}
	return nil
}

// ValidatePort checks that port is a decimal number in [MinPort, MaxPort].
func ValidatePort(port string) error {
	port = strings.TrimSpace(port)
	if port == "" {
		return errors.New(ErrPortRequired)
	}
	n, err := strconv.Atoi(port)
	if err != nil {
		return errors.New(ErrPortNumber)
	}
	if n < MinPort || n > MaxPort {
		return errors.New(ErrPortRange)
	}
	return nil
}

// Encode renders the settings as TOML.
func (s Settings) Encode() ([]byte, error) {
	return toml.Marshal(s)
}

// WriteSettings writes s as TOML to path, creating the parent directory.
// An existing file is only replaced when overwrite is true.
func WriteSettings(path string, s Settings, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s: %s", ErrFileExists, path)
		}
	}
	data, err := s.Encode()
	if err != nil {
		return fmt.Errorf("%s: %w", ErrConfigWrite, err)
	}
	if err := os.MkdirAll(filepath.Dir(path), DirPermUserRWX); err != nil {
		return fmt.Errorf("%s: %w", ErrCreateDir, err)
	}
	if err := os.WriteFile(path, data, FilePermUserRW); err != nil {
		return fmt.Errorf("%s: %w", ErrConfigWrite, err)
	}
	return nil
}

// ResolveIndexDir returns IndexDir, defaulting to <user cache dir>/<AppID>/index.
func (s Settings) ResolveIndexDir() (string, error) {
	if s.IndexDir != "" {
		return s.IndexDir, nil
	}
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("%s: %w", ErrCacheDir, err)
	}
	return filepath.Join(cacheDir, AppID, IndexDirName), nil
}
