// Package config resolves pdflens settings from defaults, a JSONC file,
// PDFLENS_* environment variables and command line overrides, in that order.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/tailscale/hujson"
)

// Defaults
const (
	DefaultDPI         = 110
	DefaultConcurrency = 4
	DefaultDisplay     = "auto"
	DefaultFingerprint = "stat"
	DefaultSnap        = "none"
)

// ConfigFileName is the file looked up under $XDG_CONFIG_HOME/pdflens
const ConfigFileName = "config.json"

// Errors returned by Load and Validate
var (
	ErrConfigInvalid = errors.New("invalid config")
	ErrConfigRead    = errors.New("cannot read config file")
)

// Config holds all settings
type Config struct {
	CacheDir    string `json:"cache_dir,omitempty"`
	DPI         int    `json:"dpi,omitempty"`
	Display     string `json:"display,omitempty"`
	Fingerprint string `json:"fingerprint,omitempty"`
	Snap        string `json:"snap,omitempty"`
	Concurrency int    `json:"concurrency,omitempty"`
	LogFile     string `json:"log_file,omitempty"`
	Debug       bool   `json:"debug,omitempty"`

	// Source is the config file that was loaded, empty if none
	Source string `json:"-"`
}

// Default returns the built-in configuration for an environment
func Default(env map[string]string) Config {
	return Config{
		CacheDir:    defaultCacheDir(env),
		DPI:         DefaultDPI,
		Display:     DefaultDisplay,
		Fingerprint: DefaultFingerprint,
		Snap:        DefaultSnap,
		Concurrency: DefaultConcurrency,
	}
}

// LoadInput holds the inputs for Load
type LoadInput struct {
	ConfigPath string            // explicit file; must exist when set
	Env        map[string]string // environment variables
	Overrides  Config            // non-zero fields win over everything else
}

// Load resolves the effective configuration
func Load(input LoadInput) (Config, error) {
	cfg := Default(input.Env)

	path, mustExist := input.ConfigPath, true
	if path == "" {
		path, mustExist = FilePath(input.Env), false
	}
	if path != "" {
		fileCfg, loaded, err := loadFile(path, mustExist)
		if err != nil {
			return Config{}, err
		}
		if loaded {
			cfg = merge(cfg, fileCfg)
			cfg.Source = path
		}
	}

	envCfg, err := fromEnv(input.Env)
	if err != nil {
		return Config{}, err
	}
	cfg = merge(cfg, envCfg)
	cfg = merge(cfg, input.Overrides)

	cfg.CacheDir = expandHome(cfg.CacheDir, input.Env)
	cfg.LogFile = expandHome(cfg.LogFile, input.Env)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects unknown enum values and non-positive numbers
func (c Config) Validate() error {
	if c.CacheDir == "" {
		return fmt.Errorf("%w: cache_dir is empty", ErrConfigInvalid)
	}
	if c.DPI <= 0 {
		return fmt.Errorf("%w: dpi must be positive, got %d", ErrConfigInvalid, c.DPI)
	}
	if c.Concurrency <= 0 {
		return fmt.Errorf("%w: concurrency must be positive, got %d", ErrConfigInvalid, c.Concurrency)
	}
	if err := oneOf("display", c.Display, "auto", "wezterm", "chafa"); err != nil {
		return err
	}
	if err := oneOf("fingerprint", c.Fingerprint, "stat", "content"); err != nil {
		return err
	}
	return oneOf("snap", c.Snap, "none", "match")
}

// FilePath returns $XDG_CONFIG_HOME/pdflens/config.json, or ~/.config/pdflens/config.json
func FilePath(env map[string]string) string {
	if xdg := env["XDG_CONFIG_HOME"]; xdg != "" {
		return filepath.Join(xdg, "pdflens", ConfigFileName)
	}
	if home := env["HOME"]; home != "" {
		return filepath.Join(home, ".config", "pdflens", ConfigFileName)
	}
	return ""
}

// Environ returns the process environment as a map
func Environ() map[string]string {
	env := make(map[string]string)
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok {
			env[k] = v
		}
	}
	return env
}

func defaultCacheDir(env map[string]string) string {
	if xdg := env["XDG_CACHE_HOME"]; xdg != "" {
		return filepath.Join(xdg, "pdflens")
	}
	if home := env["HOME"]; home != "" {
		return filepath.Join(home, ".cache", "pdflens")
	}
	return filepath.Join(os.TempDir(), "pdflens")
}

func loadFile(path string, mustExist bool) (Config, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !mustExist {
			return Config{}, false, nil
		}
		return Config{}, false, fmt.Errorf("%w: %s", ErrConfigRead, path)
	}

	cfg, err := parse(data)
	if err != nil {
		return Config{}, false, fmt.Errorf("%w %s: %w", ErrConfigInvalid, path, err)
	}
	return cfg, true, nil
}

func parse(data []byte) (Config, error) {
	// Standardize JSONC to JSON
	standardized, err := hujson.Standardize(data)
	if err != nil {
		return Config{}, fmt.Errorf("invalid JSONC: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(standardized, &cfg); err != nil {
		return Config{}, fmt.Errorf("invalid JSON: %w", err)
	}
	return cfg, nil
}

func fromEnv(env map[string]string) (Config, error) {
	cfg := Config{
		CacheDir:    env["PDFLENS_CACHE_DIR"],
		Display:     env["PDFLENS_DISPLAY"],
		Fingerprint: env["PDFLENS_FINGERPRINT"],
		Snap:        env["PDFLENS_SNAP"],
		LogFile:     env["PDFLENS_LOG_FILE"],
	}

	var err error
	if cfg.DPI, err = envInt(env, "PDFLENS_DPI"); err != nil {
		return Config{}, err
	}
	if cfg.Concurrency, err = envInt(env, "PDFLENS_CONCURRENCY"); err != nil {
		return Config{}, err
	}
	if v := env["PDFLENS_DEBUG"]; v != "" {
		cfg.Debug, err = strconv.ParseBool(v)
		if err != nil {
			return Config{}, fmt.Errorf("%w: PDFLENS_DEBUG=%q", ErrConfigInvalid, v)
		}
	}
	return cfg, nil
}

func envInt(env map[string]string, key string) (int, error) {
	v := env[key]
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q", ErrConfigInvalid, key, v)
	}
	return n, nil
}

func merge(base, overlay Config) Config {
	if overlay.CacheDir != "" {
		base.CacheDir = overlay.CacheDir
	}
	if overlay.DPI != 0 {
		base.DPI = overlay.DPI
	}
	if overlay.Display != "" {
		base.Display = strings.ToLower(overlay.Display)
	}
	if overlay.Fingerprint != "" {
		base.Fingerprint = strings.ToLower(overlay.Fingerprint)
	}
	if overlay.Snap != "" {
		base.Snap = strings.ToLower(overlay.Snap)
	}
	if overlay.Concurrency != 0 {
		base.Concurrency = overlay.Concurrency
	}
	if overlay.LogFile != "" {
		base.LogFile = overlay.LogFile
	}
	if overlay.Debug {
		base.Debug = true
	}
	return base
}

func oneOf(field, value string, allowed ...string) error {
	for _, a := range allowed {
		if value == a {
			return nil
		}
	}
	return fmt.Errorf("%w: %s must be one of %s, got %q", ErrConfigInvalid, field, strings.Join(allowed, "|"), value)
}

func expandHome(path string, env map[string]string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home := env["HOME"]
	if home == "" {
		home, _ = os.UserHomeDir()
	}
	return filepath.Join(home, path[1:])
}
