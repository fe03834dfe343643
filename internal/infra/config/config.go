package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config aggregates runtime configuration used across the service.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Auth      AuthConfig      `yaml:"auth"`
	Analysis  AnalysisConfig  `yaml:"analysis"`
	Selection SelectionConfig `yaml:"selection"`
	Storage   StorageConfig   `yaml:"storage"`
}

// HTTPConfig controls server level behavior.
type HTTPConfig struct {
	Address        string          `yaml:"address"`
	ReadTimeout    time.Duration   `yaml:"readTimeout"`
	WriteTimeout   time.Duration   `yaml:"writeTimeout"`
	RateLimit      RateLimitConfig `yaml:"rateLimit"`
	AllowedOrigins []string        `yaml:"allowedOrigins"`
}

// RateLimitConfig drives the request limiting middleware.
type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled"`
	RequestsPerMinute int  `yaml:"requestsPerMinute"`
	Burst             int  `yaml:"burst"`
}

// AuthConfig controls the session cookie and the sign-in collaborators.
type AuthConfig struct {
	Secret            string         `yaml:"secret"`
	SessionTTL        time.Duration  `yaml:"sessionTtl"`
	CookieName        string         `yaml:"cookieName"`
	CookieSecure      bool           `yaml:"cookieSecure"`
	SignInPath        string         `yaml:"signInPath"`
	PostLoginRedirect string         `yaml:"postLoginRedirect"`
	DirectSignIn      bool           `yaml:"directSignIn"`
	Provider          ProviderConfig `yaml:"provider"`
}

// ProviderConfig holds OAuth2/OIDC settings. IssuerURL, when set, takes precedence over the
// explicit endpoints through discovery.
type ProviderConfig struct {
	ClientID     string   `yaml:"clientId"`
	ClientSecret string   `yaml:"clientSecret"`
	AuthURL      string   `yaml:"authUrl"`
	TokenURL     string   `yaml:"tokenUrl"`
	RedirectURL  string   `yaml:"redirectUrl"`
	IssuerURL    string   `yaml:"issuerUrl"`
	Scopes       []string `yaml:"scopes"`
}

// AnalysisConfig configures the upstream diet analysis call.
type AnalysisConfig struct {
	Endpoint      string        `yaml:"endpoint"`
	Timeout       time.Duration `yaml:"timeout"`
	DateLocation  string        `yaml:"dateLocation"`
	FallbackError string        `yaml:"fallbackError"`
	IdleTTL       time.Duration `yaml:"idleTtl"`
}

// SelectionConfig configures where the picked photo and meal type live.
type SelectionConfig struct {
	TTL           time.Duration `yaml:"ttl"`
	MaxPhotoBytes int64         `yaml:"maxPhotoBytes"`
	Valkey        ValkeyConfig  `yaml:"valkey"`
}

// ValkeyConfig contains connection information for the selection store.
type ValkeyConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
	Prefix  string `yaml:"prefix"`
}

// StorageConfig selects the photo object storage.
type StorageConfig struct {
	S3 S3Config `yaml:"s3"`
}

// S3Config holds S3 compatible object storage settings.
type S3Config struct {
	Enabled   bool   `yaml:"enabled"`
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"accessKey"`
	SecretKey string `yaml:"secretKey"`
	Bucket    string `yaml:"bucket"`
	Region    string `yaml:"region"`
}

// Load reads configuration from a YAML file and environment variables.
func Load() (*Config, error) {
	cfg := defaultConfig()

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := hydrateFromFile(cfg, path); err != nil {
			return nil, err
		}
	} else if _, err := os.Stat("configs/config.yaml"); err == nil {
		if err := hydrateFromFile(cfg, "configs/config.yaml"); err != nil {
			return nil, err
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Location resolves the zone used for the YYYYMMDD date stamp.
func (c AnalysisConfig) Location() (*time.Location, error) {
	name := strings.TrimSpace(c.DateLocation)
	if name == "" || strings.EqualFold(name, "UTC") {
		return time.UTC, nil
	}
	return time.LoadLocation(name)
}

func hydrateFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("HTTP_ADDRESS"); v != "" {
		cfg.HTTP.Address = v
	}
	if v := os.Getenv("HTTP_ALLOWED_ORIGINS"); v != "" {
		cfg.HTTP.AllowedOrigins = splitList(v)
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_ENABLED"); v != "" {
		cfg.HTTP.RateLimit.Enabled = parseBool(v)
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_RPM"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.HTTP.RateLimit.RequestsPerMinute = parsed
		}
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_BURST"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.HTTP.RateLimit.Burst = parsed
		}
	}
	if v := os.Getenv("AUTH_SECRET"); v != "" {
		cfg.Auth.Secret = v
	}
	if v := os.Getenv("AUTH_SESSION_TTL"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.Auth.SessionTTL = parsed
		}
	}
	if v := os.Getenv("AUTH_COOKIE_SECURE"); v != "" {
		cfg.Auth.CookieSecure = parseBool(v)
	}
	if v := os.Getenv("AUTH_DIRECT_SIGNIN"); v != "" {
		cfg.Auth.DirectSignIn = parseBool(v)
	}
	if v := os.Getenv("OAUTH_CLIENT_ID"); v != "" {
		cfg.Auth.Provider.ClientID = v
	}
	if v := os.Getenv("OAUTH_CLIENT_SECRET"); v != "" {
		cfg.Auth.Provider.ClientSecret = v
	}
	if v := os.Getenv("OAUTH_AUTH_URL"); v != "" {
		cfg.Auth.Provider.AuthURL = v
	}
	if v := os.Getenv("OAUTH_TOKEN_URL"); v != "" {
		cfg.Auth.Provider.TokenURL = v
	}
	if v := os.Getenv("OAUTH_REDIRECT_URL"); v != "" {
		cfg.Auth.Provider.RedirectURL = v
	}
	if v := os.Getenv("OAUTH_ISSUER_URL"); v != "" {
		cfg.Auth.Provider.IssuerURL = v
	}
	if v := os.Getenv("ANALYSIS_ENDPOINT"); v != "" {
		cfg.Analysis.Endpoint = v
	}
	if v := os.Getenv("ANALYSIS_TIMEOUT"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.Analysis.Timeout = parsed
		}
	}
	if v := os.Getenv("ANALYSIS_DATE_LOCATION"); v != "" {
		cfg.Analysis.DateLocation = v
	}
	if v := os.Getenv("SELECTION_TTL"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.Selection.TTL = parsed
		}
	}
	if v := os.Getenv("SELECTION_VALKEY_ENABLED"); v != "" {
		cfg.Selection.Valkey.Enabled = parseBool(v)
	}
	if v := os.Getenv("SELECTION_VALKEY_ADDR"); v != "" {
		cfg.Selection.Valkey.Addr = v
	}
	if v := os.Getenv("STORAGE_S3_ENABLED"); v != "" {
		cfg.Storage.S3.Enabled = parseBool(v)
	}
	if v := os.Getenv("STORAGE_S3_ENDPOINT"); v != "" {
		cfg.Storage.S3.Endpoint = v
	}
	if v := os.Getenv("STORAGE_S3_ACCESS_KEY"); v != "" {
		cfg.Storage.S3.AccessKey = v
	}
	if v := os.Getenv("STORAGE_S3_SECRET_KEY"); v != "" {
		cfg.Storage.S3.SecretKey = v
	}
	if v := os.Getenv("STORAGE_S3_BUCKET"); v != "" {
		cfg.Storage.S3.Bucket = v
	}
	if v := os.Getenv("STORAGE_S3_REGION"); v != "" {
		cfg.Storage.S3.Region = v
	}
}

func parseBool(v string) bool {
	return v == "1" || strings.EqualFold(v, "true")
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func defaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Address:      ":3000",
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 60 * time.Second,
			RateLimit: RateLimitConfig{
				Enabled:           true,
				RequestsPerMinute: 30,
				Burst:             10,
			},
		},
		Auth: AuthConfig{
			SessionTTL:        24 * time.Hour,
			CookieName:        "foodeat_session",
			SignInPath:        "/api/auth/signin",
			PostLoginRedirect: "/analysis",
			Provider: ProviderConfig{
				Scopes: []string{"openid", "email", "profile"},
			},
		},
		Analysis: AnalysisConfig{
			Endpoint:      "http://localhost:8080/api/diet",
			Timeout:       30 * time.Second,
			DateLocation:  "UTC",
			FallbackError: "사진 분석 중 오류가 발생했습니다.",
			IdleTTL:       30 * time.Minute,
		},
		Selection: SelectionConfig{
			TTL:           24 * time.Hour,
			MaxPhotoBytes: 10 << 20,
			Valkey: ValkeyConfig{
				Prefix: "foodeat:selection",
			},
		},
	}
}

// Validate ensures the configuration is safe to use.
func (c *Config) Validate() error {
	if c.HTTP.Address == "" {
		return errors.New("http.address cannot be empty")
	}
	if c.HTTP.RateLimit.Enabled {
		if c.HTTP.RateLimit.RequestsPerMinute <= 0 {
			return errors.New("http.rateLimit.requestsPerMinute must be positive")
		}
		if c.HTTP.RateLimit.Burst <= 0 {
			return errors.New("http.rateLimit.burst must be positive")
		}
	}
	if len(c.Auth.Secret) < 32 {
		return errors.New("auth.secret must be at least 32 characters")
	}
	if c.Auth.SessionTTL <= 0 {
		return errors.New("auth.sessionTtl must be positive")
	}
	if strings.TrimSpace(c.Auth.CookieName) == "" {
		return errors.New("auth.cookieName cannot be empty")
	}
	if !strings.HasPrefix(c.Auth.SignInPath, "/") {
		return errors.New("auth.signInPath must be an absolute path")
	}
	if strings.TrimSpace(c.Analysis.Endpoint) == "" {
		return errors.New("analysis.endpoint cannot be empty")
	}
	if c.Analysis.Timeout <= 0 {
		return errors.New("analysis.timeout must be positive")
	}
	if strings.TrimSpace(c.Analysis.FallbackError) == "" {
		return errors.New("analysis.fallbackError cannot be empty")
	}
	if c.Analysis.IdleTTL < 0 {
		return errors.New("analysis.idleTtl cannot be negative")
	}
	if _, err := c.Analysis.Location(); err != nil {
		return fmt.Errorf("analysis.dateLocation: %w", err)
	}
	if c.Selection.TTL < 0 {
		return errors.New("selection.ttl cannot be negative")
	}
	if c.Selection.MaxPhotoBytes <= 0 {
		return errors.New("selection.maxPhotoBytes must be positive")
	}
	if c.Selection.Valkey.Enabled && strings.TrimSpace(c.Selection.Valkey.Addr) == "" {
		return errors.New("selection.valkey.addr cannot be empty when valkey is enabled")
	}
	if c.Storage.S3.Enabled {
		if strings.TrimSpace(c.Storage.S3.Endpoint) == "" || strings.TrimSpace(c.Storage.S3.Bucket) == "" {
			return errors.New("storage.s3.endpoint and storage.s3.bucket are required when s3 is enabled")
		}
	}
	return nil
}
