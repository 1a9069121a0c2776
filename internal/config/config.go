// Package config carga la configuración del bridge: archivo YAML opcional,
// overrides por variables de entorno, defaults y validación.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	App struct {
		// dev | staging | prod
		Env string `yaml:"env" env:"APP_ENV" validate:"omitempty,oneof=dev development test staging prod production"`
	} `yaml:"app"`

	Log struct {
		Level string `yaml:"level" env:"LOG_LEVEL" validate:"omitempty,oneof=debug info warn error"`
	} `yaml:"log"`

	Server struct {
		Addr string `yaml:"addr" env:"SERVER_ADDR"`
		// PORT (estilo PaaS) solo aplica si no hay addr.
		Port            string        `yaml:"port" env:"PORT" validate:"omitempty,numeric"`
		ReadTimeout     time.Duration `yaml:"read_timeout" env:"SERVER_READ_TIMEOUT"`
		WriteTimeout    time.Duration `yaml:"write_timeout" env:"SERVER_WRITE_TIMEOUT"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT"`
	} `yaml:"server"`

	Steam struct {
		APIKey         string        `yaml:"api_key" env:"STEAM_API_KEY" validate:"required"`
		Realm          string        `yaml:"realm" env:"REALM" validate:"required,url"`
		ReturnURL      string        `yaml:"return_url" env:"RETURN_URL" validate:"required,url"`
		OpenIDEndpoint string        `yaml:"openid_endpoint" env:"STEAM_OPENID_ENDPOINT" validate:"omitempty,url"`
		APIBaseURL     string        `yaml:"api_base_url" env:"STEAM_API_BASE_URL" validate:"omitempty,url"`
		CDNBaseURL     string        `yaml:"cdn_base_url" env:"STEAM_CDN_BASE_URL" validate:"omitempty,url"`
		VerifyTimeout  time.Duration `yaml:"verify_timeout" env:"STEAM_VERIFY_TIMEOUT"`
		APITimeout     time.Duration `yaml:"api_timeout" env:"STEAM_API_TIMEOUT"`
	} `yaml:"steam"`

	Client struct {
		ID     string `yaml:"id" env:"CLIENT_ID" validate:"required"`
		Secret string `yaml:"secret" env:"CLIENT_SECRET" validate:"required"`
		// Allowlist de redirect_uri. Vacía = cualquier URL http(s) absoluta.
		RedirectURIs []string `yaml:"redirect_uris" env:"CLIENT_REDIRECT_URIS" validate:"dive,url"`
	} `yaml:"client"`

	JWT struct {
		Secret string        `yaml:"secret" env:"JWT_SECRET" validate:"required"`
		Issuer string        `yaml:"issuer" env:"JWT_ISSUER"`
		TTL    time.Duration `yaml:"ttl" env:"JWT_TTL"`
	} `yaml:"jwt"`

	Session struct {
		CallbackTTL     time.Duration `yaml:"callback_ttl" env:"SESSION_CALLBACK_TTL"`
		CodeTTL         time.Duration `yaml:"code_ttl" env:"SESSION_CODE_TTL"`
		MaxEntries      int           `yaml:"max_entries" env:"SESSION_MAX_ENTRIES" validate:"gte=0"`
		CleanupInterval time.Duration `yaml:"cleanup_interval" env:"SESSION_CLEANUP_INTERVAL"`
	} `yaml:"session"`
}

// Load lee el YAML en path (si path != ""), aplica overrides de entorno y
// defaults. No valida: eso lo hace Validate, así check-config puede reportar
// una config incompleta.
func Load(path string) (*Config, error) {
	var c Config
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(b, &c); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := c.applyEnvOverrides(); err != nil {
		return nil, err
	}
	c.applyDefaults()
	return &c, nil
}

func (c *Config) applyDefaults() {
	if c.App.Env == "" {
		c.App.Env = "dev"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Server.Addr == "" {
		port := strings.TrimSpace(c.Server.Port)
		if port == "" {
			port = "3000"
		}
		c.Server.Addr = ":" + port
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 15 * time.Second
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 30 * time.Second
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 10 * time.Second
	}

	if c.Steam.VerifyTimeout == 0 {
		c.Steam.VerifyTimeout = 10 * time.Second
	}
	if c.Steam.APITimeout == 0 {
		c.Steam.APITimeout = 10 * time.Second
	}

	if c.JWT.Issuer == "" {
		c.JWT.Issuer = "steambridge"
	}
	if c.JWT.TTL == 0 {
		c.JWT.TTL = time.Hour
	}

	if c.Session.CallbackTTL == 0 {
		c.Session.CallbackTTL = 10 * time.Minute
	}
	if c.Session.CodeTTL == 0 {
		c.Session.CodeTTL = 2 * time.Minute
	}
	if c.Session.MaxEntries == 0 {
		c.Session.MaxEntries = 100_000
	}
	if c.Session.CleanupInterval == 0 {
		c.Session.CleanupInterval = time.Minute
	}
}

// IsProd indica si corre en producción (logs JSON).
func (c *Config) IsProd() bool {
	switch strings.ToLower(c.App.Env) {
	case "prod", "production":
		return true
	}
	return false
}

var ErrInvalid = errors.New("invalid configuration")
