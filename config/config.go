package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const ENV_FILE = ".env"
const CONFIG_FILE = "config.yaml"

type AppConfig struct {
	Server       ServerConfig       `yaml:"server"`
	Directory    DirectoryConfig    `yaml:"directory"`
	Logging      LoggingConfig      `yaml:"logging"`
	Session      SessionConfig      `yaml:"session"`
	Registration RegistrationConfig `yaml:"registration"`
	Security     SecurityConfig     `yaml:"security"`
	CORS         CORSConfig         `yaml:"cors"`
}

type ServerConfig struct {
	Addr string `yaml:"addr" env:"WEB_ADDR"`
	// Mode is passed to gin.SetMode (debug, release, test).
	Mode string `yaml:"mode" env:"GIN_MODE"`
}

// DirectoryConfig points at the upstream directory REST API.
type DirectoryConfig struct {
	BaseURL string        `yaml:"base_url" env:"DIRECTORY_BASE_URL"`
	Timeout time.Duration `yaml:"timeout" env:"DIRECTORY_TIMEOUT"`
}

type LoggingConfig struct {
	Level   string `yaml:"level" env:"LOG_LEVEL"`
	Service string `yaml:"service" env:"SERVICE_NAME"`
}

type SessionConfig struct {
	CookieName string `yaml:"cookie_name" env:"SESSION_COOKIE_NAME"`
	// MaxVisitors bounds the in-memory visitor store. The least recently seen
	// visitor is evicted and torn down once the bound is hit.
	MaxVisitors int `yaml:"max_visitors" env:"SESSION_MAX_VISITORS"`
}

type RegistrationConfig struct {
	CountdownSeconds int `yaml:"countdown_seconds" env:"OTP_COUNTDOWN_SECONDS"`
}

type SecurityConfig struct {
	// CSRFKey must be 32 bytes. CSRF protection is off when empty.
	CSRFKey       string `yaml:"csrf_key" env:"CSRF_KEY"`
	SecureCookies bool   `yaml:"secure_cookies" env:"SECURE_COOKIES"`
}

type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins" env:"CORS_ALLOWED_ORIGINS" envSeparator:","`
}

var config *AppConfig

// Default returns the configuration used when no config.yaml is found.
func Default() AppConfig {
	return AppConfig{
		Server:       ServerConfig{Addr: ":8080", Mode: "release"},
		Directory:    DirectoryConfig{BaseURL: "http://directory_service:5000", Timeout: 10 * time.Second},
		Logging:      LoggingConfig{Level: "info", Service: "district-web"},
		Session:      SessionConfig{CookieName: "district_visitor", MaxVisitors: 10000},
		Registration: RegistrationConfig{CountdownSeconds: 60},
	}
}

// InitApp loads .env, config.yaml and environment overrides into the global config.
func InitApp() error {
	base := GetBasePath()
	_ = godotenv.Load(filepath.Join(base, ENV_FILE))

	c, err := Load(filepath.Join(base, CONFIG_FILE))
	if err != nil {
		return err
	}
	config = &c
	return nil
}

// Load reads a YAML file on top of Default and then applies environment overrides.
// A missing file is not an error.
func Load(path string) (AppConfig, error) {
	c := Default()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &c); err != nil {
			return AppConfig{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist):
	default:
		return AppConfig{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	if err := env.Parse(&c); err != nil {
		return AppConfig{}, fmt.Errorf("config: env overrides: %w", err)
	}
	if err := c.validate(); err != nil {
		return AppConfig{}, err
	}
	return c, nil
}

func (c *AppConfig) validate() error {
	if c.Directory.BaseURL == "" {
		return errors.New("config: directory.base_url is required")
	}
	if c.Security.CSRFKey != "" && len(c.Security.CSRFKey) != 32 {
		return fmt.Errorf("config: security.csrf_key must be 32 bytes, got %d", len(c.Security.CSRFKey))
	}
	if c.Registration.CountdownSeconds <= 0 {
		c.Registration.CountdownSeconds = 60
	}
	if c.Session.MaxVisitors <= 0 {
		c.Session.MaxVisitors = 10000
	}
	if c.Directory.Timeout <= 0 {
		c.Directory.Timeout = 10 * time.Second
	}
	return nil
}

func GetConfig() AppConfig {
	if config == nil {
		if err := InitApp(); err != nil {
			panic(err)
		}
	}

	return *config
}

// GetBasePath walks up from the working directory to the first one holding config.yaml.
func GetBasePath() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}

	dir := cwd
	for {
		cfgPath := filepath.Join(dir, CONFIG_FILE)
		if info, err := os.Stat(cfgPath); err == nil && !info.IsDir() {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return cwd
}
