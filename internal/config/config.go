package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/BurntSushi/toml"
)

type RefreshConfig struct {
	IntervalMinutes      int `toml:"interval_minutes" json:"interval_minutes"`
	DebounceSeconds      int `toml:"debounce_seconds" json:"debounce_seconds"`
	ActivityDelaySeconds int `toml:"activity_delay_seconds" json:"activity_delay_seconds"`
}

type CacheConfig struct {
	EventTTLMinutes int `toml:"event_ttl_minutes" json:"event_ttl_minutes"`
}

type FetchConfig struct {
	Timeout float64 `toml:"timeout" json:"timeout"`
	BaseURL string  `toml:"base_url" json:"base_url"`
}

type WatchConfig struct {
	Paths []string `toml:"paths" json:"paths"`
}

type DisplayConfig struct {
	NoColor bool `toml:"no_color" json:"no_color"`
}

type Config struct {
	Refresh RefreshConfig `toml:"refresh" json:"refresh"`
	Cache   CacheConfig   `toml:"cache" json:"cache"`
	Fetch   FetchConfig   `toml:"fetch" json:"fetch"`
	Watch   WatchConfig   `toml:"watch" json:"watch"`
	Display DisplayConfig `toml:"display" json:"display"`
}

func DefaultConfig() Config {
	return Config{
		Refresh: RefreshConfig{
			IntervalMinutes:      30,
			DebounceSeconds:      2,
			ActivityDelaySeconds: 3,
		},
		Cache: CacheConfig{
			EventTTLMinutes: 5,
		},
		Fetch: FetchConfig{
			Timeout: 30.0,
			BaseURL: "https://cursor.com",
		},
		Watch:   WatchConfig{},
		Display: DisplayConfig{},
	}
}

func (c Config) clone() Config {
	out := c
	if c.Watch.Paths != nil {
		out.Watch.Paths = make([]string, len(c.Watch.Paths))
		copy(out.Watch.Paths, c.Watch.Paths)
	}
	return out
}

var (
	globalConfig *Config
	configMu     sync.RWMutex
)

func Get() Config {
	configMu.RLock()
	if c := globalConfig; c != nil {
		configMu.RUnlock()
		return c.clone()
	}
	configMu.RUnlock()

	configMu.Lock()
	defer configMu.Unlock()
	if globalConfig != nil {
		return globalConfig.clone()
	}
	c, _ := Load("")
	globalConfig = &c
	return c.clone()
}

// Init loads the config from disk and installs it as the global config,
// returning any parse error so callers can warn about malformed files.
func Init() (Config, error) {
	return Reload()
}

func Reload() (Config, error) {
	configMu.Lock()
	defer configMu.Unlock()
	c, err := Load("")
	globalConfig = &c
	return c.clone(), err
}

func Load(path string) (Config, error) {
	if path == "" {
		path = ConfigFile()
	}
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return applyEnvOverrides(cfg), nil
	}

	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return applyEnvOverrides(DefaultConfig()), fmt.Errorf("parsing config %s: %w", path, err)
	}

	return applyEnvOverrides(cfg), nil
}

func Save(cfg Config, path string) error {
	if path == "" {
		path = ConfigFile()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("saving config: %w", err)
	}
	defer func() { _ = f.Close() }()
	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}
	return nil
}

func applyEnvOverrides(cfg Config) Config {
	if os.Getenv("CURSOR_METER_NO_COLOR") != "" {
		cfg.Display.NoColor = true
	}
	if v := os.Getenv("CURSOR_METER_BASE_URL"); v != "" {
		cfg.Fetch.BaseURL = v
	}
	return cfg
}
