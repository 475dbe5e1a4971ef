package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/jimezsa/vacli/internal/models"
	"github.com/jimezsa/vacli/internal/network"
	"github.com/yosuke-furukawa/json5/encoding/json5"
)

const (
	DirName         = "vacli"
	ConfigFileName  = "config.json"
	ProxiesFileName = "proxies.txt"
	StoreFileName   = "vacancies.json"
	CacheFileName   = "cache.db"

	DefaultRatesURL = "https://www.cbr-xml-daily.ru/daily_json.js"
)

// Config holds the defaults for searches and provider clients.
type Config struct {
	DefaultQuantity int              `json:"default_quantity"`
	StorePath       string           `json:"store_path"`
	Transport       string           `json:"transport"`
	TimeoutSeconds  int              `json:"timeout_seconds"`
	RetryAttempts   int              `json:"retry_attempts"`
	Cache           CacheConfig      `json:"cache"`
	RatesURL        string           `json:"rates_url"`
	HeadHunter      HeadHunterConfig `json:"headhunter"`
	SuperJob        SuperJobConfig   `json:"superjob"`
}

type CacheConfig struct {
	Type     string `json:"type"`
	Path     string `json:"path"`
	TTLHours int    `json:"ttl_hours"`
}

type HeadHunterConfig struct {
	BaseURL   string `json:"base_url"`
	UserAgent string `json:"user_agent"`
}

type SuperJobConfig struct {
	BaseURL   string `json:"base_url"`
	UserAgent string `json:"user_agent"`
	AppID     string `json:"app_id"`
}

func DefaultConfig() Config {
	return Config{
		DefaultQuantity: 100,
		Transport:       network.TransportTLS,
		TimeoutSeconds:  30,
		RetryAttempts:   2,
		Cache:           CacheConfig{Type: "bbolt", TTLHours: 24},
		RatesURL:        DefaultRatesURL,
		HeadHunter:      HeadHunterConfig{BaseURL: "https://api.hh.ru"},
		SuperJob:        SuperJobConfig{BaseURL: "https://api.superjob.ru/2.0"},
	}
}

// ConfigDir is $VACLI_CONFIG_DIR or the vacli directory under the user
// config dir.
func ConfigDir() (string, error) {
	if dir := strings.TrimSpace(os.Getenv("VACLI_CONFIG_DIR")); dir != "" {
		return dir, nil
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, DirName), nil
}

func ConfigPath() (string, error) {
	return inConfigDir(ConfigFileName)
}

func ProxiesPath() (string, error) {
	return inConfigDir(ProxiesFileName)
}

func inConfigDir(name string) (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, name), nil
}

// Load reads config.json over the defaults and then applies VACLI_*
// environment overrides.
func Load() (Config, error) {
	cfg := DefaultConfig()
	path, err := ConfigPath()
	if err != nil {
		return cfg, err
	}

	data, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return cfg, err
	}
	if len(strings.TrimSpace(string(data))) > 0 {
		if err := json5.Unmarshal(data, &cfg); err != nil {
			return cfg, err
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.DefaultQuantity = envInt("VACLI_DEFAULT_QUANTITY", c.DefaultQuantity)
	c.StorePath = envString("VACLI_STORE", c.StorePath)
	c.Transport = envString("VACLI_TRANSPORT", c.Transport)
	c.TimeoutSeconds = envInt("VACLI_TIMEOUT", c.TimeoutSeconds)
	c.RetryAttempts = envInt("VACLI_RETRY_ATTEMPTS", c.RetryAttempts)
	c.Cache.Type = envString("VACLI_CACHE", c.Cache.Type)
	c.Cache.Path = envString("VACLI_CACHE_PATH", c.Cache.Path)
	c.Cache.TTLHours = envInt("VACLI_CACHE_TTL_HOURS", c.Cache.TTLHours)
	c.RatesURL = envString("VACLI_RATES_URL", c.RatesURL)
	c.HeadHunter.BaseURL = envString("VACLI_HH_URL", c.HeadHunter.BaseURL)
	c.HeadHunter.UserAgent = envString("VACLI_HH_USER_AGENT", c.HeadHunter.UserAgent)
	c.SuperJob.BaseURL = envString("VACLI_SJ_URL", c.SuperJob.BaseURL)
	c.SuperJob.UserAgent = envString("VACLI_SJ_USER_AGENT", c.SuperJob.UserAgent)
	c.SuperJob.AppID = envString("VACLI_SJ_APP_ID", c.SuperJob.AppID)
}

// ResolveStorePath returns the configured store file, defaulting to
// vacancies.json in the config directory.
func (c Config) ResolveStorePath() (string, error) {
	if path := strings.TrimSpace(c.StorePath); path != "" {
		return path, nil
	}
	return inConfigDir(StoreFileName)
}

func (c Config) ResolveCachePath() (string, error) {
	if path := strings.TrimSpace(c.Cache.Path); path != "" {
		return path, nil
	}
	return inConfigDir(CacheFileName)
}

func (c Config) CacheTTL() time.Duration {
	return time.Duration(c.Cache.TTLHours) * time.Hour
}

func (c Config) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// ClientConfig converts the provider settings for the provider clients.
func (c Config) ClientConfig() models.ClientConfig {
	return models.ClientConfig{
		Timeout:             c.Timeout(),
		RetryAttempts:       c.RetryAttempts,
		HeadHunterURL:       c.HeadHunter.BaseURL,
		HeadHunterUserAgent: c.HeadHunter.UserAgent,
		SuperJobURL:         c.SuperJob.BaseURL,
		SuperJobUserAgent:   c.SuperJob.UserAgent,
		SuperJobAppID:       c.SuperJob.AppID,
	}
}

// Init writes default config.json and proxies.txt if they don't already exist.
func Init() ([]string, error) {
	var created []string

	dir, err := ConfigDir()
	if err != nil {
		return created, err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return created, err
	}

	configPath := filepath.Join(dir, ConfigFileName)
	if _, err := os.Stat(configPath); errors.Is(err, os.ErrNotExist) {
		if err := writeConfig(configPath, DefaultConfig()); err != nil {
			return created, err
		}
		created = append(created, configPath)
	}

	proxiesPath := filepath.Join(dir, ProxiesFileName)
	if _, err := os.Stat(proxiesPath); errors.Is(err, os.ErrNotExist) {
		if err := os.WriteFile(proxiesPath, []byte(""), 0o644); err != nil {
			return created, err
		}
		created = append(created, proxiesPath)
	}

	return created, nil
}

func writeConfig(path string, cfg Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o600)
}

func LoadProxies(flagValue string) ([]string, error) {
	if strings.TrimSpace(flagValue) != "" {
		return splitCSV(flagValue), nil
	}

	if env := strings.TrimSpace(os.Getenv("VACLI_PROXIES")); env != "" {
		return splitCSV(env), nil
	}

	path, err := ProxiesPath()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	var proxies []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		proxies = append(proxies, line)
	}
	return proxies, nil
}

func envString(key, fallback string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return fallback
}

func envInt(key string, fallback int) int {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, part)
	}
	return out
}
