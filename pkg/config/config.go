package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"todoman/pkg/keymaps"
)

// Config holds the application configuration
type Config struct {
	Database string            `mapstructure:"database"`
	Driver   string            `mapstructure:"driver"`
	LogFile  string            `mapstructure:"log_file"`
	Reminder Reminder          `mapstructure:"reminder"`
	KeyMap   map[string]string `mapstructure:"keymap"`
	Styles   Styles            `mapstructure:"styles"`
}

// Reminder holds the background reminder settings
type Reminder struct {
	Interval time.Duration `mapstructure:"interval"`
	Window   time.Duration `mapstructure:"window"`
}

// Styles holds the application colors
type Styles struct {
	BorderColor       string `mapstructure:"border_color"`
	AccentColor       string `mapstructure:"accent_color"`
	NormalTextColor   string `mapstructure:"normal_text_color"`
	SelectedTextColor string `mapstructure:"selected_text_color"`
	SelectedBgColor   string `mapstructure:"selected_bg_color"`
	ErrorColor        string `mapstructure:"error_color"`
	ReminderColor     string `mapstructure:"reminder_color"`
}

// Dir is where the config, database and log live by default.
func Dir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".config", "todoman"), nil
}

// SetDefaults registers every key with its default value on v.
func SetDefaults(v *viper.Viper, dir string) {
	v.SetDefault("database", filepath.Join(dir, "todo_tasks.db"))
	v.SetDefault("driver", "sqlite3")
	v.SetDefault("log_file", filepath.Join(dir, "todoman.log"))
	v.SetDefault("reminder.interval", "60s")
	v.SetDefault("reminder.window", "15m")
	v.SetDefault("keymap", keymaps.GetDefaultKeyMappings())
	v.SetDefault("styles.border_color", "240")
	v.SetDefault("styles.accent_color", "205")
	v.SetDefault("styles.normal_text_color", "86")
	v.SetDefault("styles.selected_text_color", "229")
	v.SetDefault("styles.selected_bg_color", "57")
	v.SetDefault("styles.error_color", "9")
	v.SetDefault("styles.reminder_color", "214")
}

// Load reads the configuration file at configPath (default ~/.config/todoman/config.json),
// writing one with default values if it doesn't exist yet. Environment variables prefixed
// with TODOMAN_ and any flags already bound on v take precedence.
func Load(v *viper.Viper, configPath string) (Config, error) {
	dir, err := Dir()
	if err != nil {
		return Config{}, err
	}
	if configPath == "" {
		configPath = filepath.Join(dir, "config.json")
	}

	SetDefaults(v, dir)
	v.SetEnvPrefix("todoman")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Config{}, fmt.Errorf("read config %s: %w", configPath, err)
			}
		}
		if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
			return Config{}, err
		}
		// only defaults go to disk, not whatever flags or env this run was started with
		defaults := viper.New()
		SetDefaults(defaults, dir)
		if err := defaults.WriteConfigAs(configPath); err != nil {
			return Config{}, fmt.Errorf("write default config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings the scheduler or store cannot work with.
func (c Config) Validate() error {
	switch c.Driver {
	case "sqlite3", "postgres":
	default:
		return fmt.Errorf("unsupported driver %q (use sqlite3 or postgres)", c.Driver)
	}
	if c.Database == "" {
		return errors.New("database must not be empty")
	}
	if c.Reminder.Interval <= 0 {
		return fmt.Errorf("reminder.interval must be positive, got %s", c.Reminder.Interval)
	}
	if c.Reminder.Window <= 0 {
		return fmt.Errorf("reminder.window must be positive, got %s", c.Reminder.Window)
	}
	return nil
}
