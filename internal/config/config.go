package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/muhammadmuzzammil1998/jsonc"
)

const DefaultProfileName = "[Current Profile]"

// LoggingConfig defines runtime logging behavior.
type LoggingConfig struct {
	Level     string `json:"level" env:"KAGA_LOG_LEVEL"`
	LogToFile bool   `json:"log_to_file" env:"KAGA_LOG_TO_FILE"`
}

// ProfileConfig selects the active profile and where kancolle-auto reads it.
type ProfileConfig struct {
	Active          string `json:"active" env:"KAGA_PROFILE"`
	KancolleAutoDir string `json:"kancolle_auto_dir" env:"KAGA_KCAUTO_DIR"`
	ExportOnChange  bool   `json:"export_on_change"`
}

// UIConfig stores persistent UI preferences.
type UIConfig struct {
	Notifications bool `json:"notifications"`
}

// AppConfig is the root persisted application configuration.
type AppConfig struct {
	Logging LoggingConfig `json:"logging"`
	Profile ProfileConfig `json:"profile"`
	UI      UIConfig      `json:"ui"`
}

func Default() AppConfig {
	return AppConfig{
		Logging: LoggingConfig{
			Level:     "info",
			LogToFile: false,
		},
		Profile: ProfileConfig{
			Active:          DefaultProfileName,
			KancolleAutoDir: "",
			ExportOnChange:  false,
		},
		UI: UIConfig{
			Notifications: true,
		},
	}
}

// Load reads the config file, tolerating comments, then
// applies environment overrides. A missing file yields defaults.
func Load(path string) (AppConfig, error) {
	cfg := Default()
	cleanPath := filepath.Clean(path)
	// #nosec G304 -- path is resolved by app runtime and points to user config dir.
	raw, err := os.ReadFile(cleanPath)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return AppConfig{}, fmt.Errorf("read config: %w", err)
	default:
		if err := json.Unmarshal(jsonc.ToJSON(raw), &cfg); err != nil {
			return AppConfig{}, fmt.Errorf("decode config json: %w", err)
		}
	}

	if err := env.Parse(&cfg); err != nil {
		return AppConfig{}, fmt.Errorf("parse env: %w", err)
	}
	cfg.FillMissingDefaults()

	return cfg, nil
}

func (c *AppConfig) FillMissingDefaults() {
	if strings.TrimSpace(c.Logging.Level) == "" {
		c.Logging.Level = "info"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	c.Profile.Active = strings.TrimSpace(c.Profile.Active)
	if c.Profile.Active == "" {
		c.Profile.Active = DefaultProfileName
	}
	c.Profile.KancolleAutoDir = strings.TrimSpace(c.Profile.KancolleAutoDir)
}

func (c AppConfig) Validate() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("unsupported log level: %q", c.Logging.Level)
	}
	if strings.ContainsAny(c.Profile.Active, `/\`) {
		return fmt.Errorf("profile name must not contain path separators: %q", c.Profile.Active)
	}
	if c.Profile.ExportOnChange && c.Profile.KancolleAutoDir == "" {
		return errors.New("kancolle-auto directory is required when export on change is enabled")
	}

	return nil
}

func Save(path string, cfg AppConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	raw, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, raw, 0o600); err != nil {
		return fmt.Errorf("write temp config: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename temp config: %w", err)
	}

	return nil
}
