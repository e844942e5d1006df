package config

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	ENV_PREFIX = "LAB_ROSTER_"

	DEFAULT_HTTP_ADDR      = ":5000"
	DEFAULT_ADMIN_PASSWORD = "666666"
	INSECURE_SECRET_KEY    = "this is a secret_key"
)

type Settings struct {
	DatabaseURL   string        `yaml:"database_url"`
	AdminPassword string        `yaml:"admin_password"`
	SecretKey     string        `yaml:"secret_key"`
	HTTPAddr      string        `yaml:"http_addr"`
	SessionTTL    time.Duration `yaml:"session_ttl"`
	RememberFor   time.Duration `yaml:"remember_for"`
	RedisURL      string        `yaml:"redis_url,omitempty"`
	SecureCookies bool          `yaml:"secure_cookies"`
	// TrustProxy takes the client address from X-Real-IP/X-Forwarded-For.
	// Only enable it behind a reverse proxy that overwrites those headers.
	TrustProxy bool `yaml:"trust_proxy"`
	// MetricsAddr serves /metrics on a separate listener. Empty disables it.
	MetricsAddr string `yaml:"metrics_addr,omitempty"`
}

func DefaultSettings() *Settings {
	return &Settings{
		DatabaseURL:   DefaultDatabaseURL(),
		AdminPassword: DEFAULT_ADMIN_PASSWORD,
		SecretKey:     INSECURE_SECRET_KEY,
		HTTPAddr:      DEFAULT_HTTP_ADDR,
		SessionTTL:    12 * time.Hour,
		RememberFor:   365 * 24 * time.Hour,
	}
}

func DefaultSettingsPath() string {
	return filepath.Join(ConfigDir(), "settings.yaml")
}

// Load resolves settings in order: defaults, the YAML settings file, a .env
// file in the working directory, and LAB_ROSTER_* environment variables.
// An empty path means the default location, which is allowed to be missing.
func Load(path string, logger *slog.Logger) (*Settings, error) {
	if logger == nil {
		logger = slog.Default()
	}

	explicit := path != ""
	if !explicit {
		path = DefaultSettingsPath()
	}

	settings, err := LoadSettings(path)
	switch {
	case err == nil:
		logger.Debug("Loaded settings file", "path", path)
	case errors.Is(err, fs.ErrNotExist) && !explicit:
		logger.Debug("No settings file, using defaults", "path", path)
		settings = DefaultSettings()
	default:
		return nil, err
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logger.Warn("Failed to load .env file", "error", err)
	}

	settings.ApplyEnv()

	if err := settings.Validate(); err != nil {
		return nil, err
	}

	if settings.SecretKey == INSECURE_SECRET_KEY {
		logger.Warn("Using the built-in secret key, run `lab-roster init` or set " + ENV_PREFIX + "SECRET_KEY")
	}

	return settings, nil
}

// LoadOrInitializeSettings returns true along with fresh defaults (and a
// random secret key) when no settings file exists at path yet.
func LoadOrInitializeSettings(path string) (bool, *Settings, error) {
	settings, err := LoadSettings(path)
	if err == nil {
		return false, settings, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return false, nil, err
	}

	settings = DefaultSettings()
	secret, err := GenerateSecretKey()
	if err != nil {
		return false, nil, err
	}
	settings.SecretKey = secret

	return true, settings, nil
}

func LoadSettings(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	settings := DefaultSettings()
	if err := yaml.Unmarshal(data, settings); err != nil {
		return nil, fmt.Errorf("failed to parse settings file %s: %w", path, err)
	}

	return settings, nil
}

func (s *Settings) ApplyEnv() {
	s.DatabaseURL = getenv("DATABASE_URL", s.DatabaseURL)
	s.AdminPassword = getenv("ADMIN_PASSWORD", s.AdminPassword)
	s.SecretKey = getenv("SECRET_KEY", s.SecretKey)
	s.HTTPAddr = getenv("HTTP_ADDR", s.HTTPAddr)
	s.SessionTTL = getenvDuration("SESSION_TTL", s.SessionTTL)
	s.RememberFor = getenvDuration("REMEMBER_FOR", s.RememberFor)
	s.RedisURL = getenv("REDIS_URL", s.RedisURL)
	s.SecureCookies = getenvBool("SECURE_COOKIES", s.SecureCookies)
	s.TrustProxy = getenvBool("TRUST_PROXY", s.TrustProxy)
	s.MetricsAddr = getenv("METRICS_ADDR", s.MetricsAddr)
}

func (s *Settings) Validate() error {
	var errs []error
	if s.DatabaseURL == "" {
		errs = append(errs, errors.New("database_url must not be empty"))
	}
	if s.SecretKey == "" {
		errs = append(errs, errors.New("secret_key must not be empty"))
	}
	if s.AdminPassword == "" {
		errs = append(errs, errors.New("admin_password must not be empty"))
	}
	if s.SessionTTL <= 0 {
		errs = append(errs, errors.New("session_ttl must be positive"))
	}
	if s.RememberFor <= 0 {
		errs = append(errs, errors.New("remember_for must be positive"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid settings: %w", errors.Join(errs...))
	}
	return nil
}

func (s *Settings) Save() error {
	return s.SaveTo(DefaultSettingsPath())
}

func (s *Settings) SaveTo(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	data, err := yaml.Marshal(s)
	if err != nil {
		return err
	}

	// The file holds the admin password and the signing secret
	return os.WriteFile(path, data, 0o600)
}

func GenerateSecretKey() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate secret key: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

func getenv(key, fallback string) string {
	if val := os.Getenv(ENV_PREFIX + key); val != "" {
		return val
	}
	return fallback
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(ENV_PREFIX + key); val != "" {
		if parsed, err := time.ParseDuration(val); err == nil {
			return parsed
		}
	}
	return fallback
}

func getenvBool(key string, fallback bool) bool {
	if val := os.Getenv(ENV_PREFIX + key); val != "" {
		if parsed, err := strconv.ParseBool(val); err == nil {
			return parsed
		}
	}
	return fallback
}
