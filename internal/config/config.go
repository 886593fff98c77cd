package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

var ErrInvalid = errors.New("invalid config")

// Config is the todos.yaml structure. Environment variables override the
// file, command-line flags override both.
type Config struct {
	Server    Server    `yaml:"server"`
	Database  Database  `yaml:"database"`
	Log       Log       `yaml:"log"`
	RateLimit RateLimit `yaml:"rate_limit"`
	Tracing   Tracing   `yaml:"tracing"`
}

type Server struct {
	Addr           string        `yaml:"addr"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

type Database struct {
	Driver   string `yaml:"driver"`
	DSN      string `yaml:"dsn"`
	Path     string `yaml:"path"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"sslmode"`
}

type Log struct {
	Level string `yaml:"level"`
}

type RateLimit struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

type Tracing struct {
	Exporter string `yaml:"exporter"`
}

func Default() *Config {
	return &Config{
		Server: Server{Addr: ":3020"},
		Database: Database{
			Driver:  "sqlite",
			Path:    "data/todos.db",
			Host:    "localhost",
			Port:    5432,
			User:    "postgres",
			Name:    "todolist",
			SSLMode: "disable",
		},
		Log:       Log{Level: "info"},
		RateLimit: RateLimit{Burst: 20},
		Tracing:   Tracing{Exporter: "none"},
	}
}

// Load builds the effective config from defaults, the YAML file at path (or
// the first of todos.yaml / todos.yml when path is empty) and the
// environment. The result is not validated; callers apply their own
// overrides first and then call Validate.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = findConfigFile()
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func findConfigFile() string {
	if path := os.Getenv("TODOS_CONFIG"); path != "" {
		return path
	}
	for _, loc := range []string{"todos.yaml", "todos.yml"} {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}
	return ""
}

func (c *Config) applyEnv() error {
	str := map[string]*string{
		"TODOS_ADDR":        &c.Server.Addr,
		"TODOS_DB_DRIVER":   &c.Database.Driver,
		"TODOS_DB_DSN":      &c.Database.DSN,
		"TODOS_DB_PATH":     &c.Database.Path,
		"TODOS_DB_HOST":     &c.Database.Host,
		"TODOS_DB_USER":     &c.Database.User,
		"TODOS_DB_PASSWORD": &c.Database.Password,
		"TODOS_DB_NAME":     &c.Database.Name,
		"TODOS_DB_SSLMODE":  &c.Database.SSLMode,
		"LOG_LEVEL":         &c.Log.Level,
		"TODOS_TRACING":     &c.Tracing.Exporter,
	}
	for key, dst := range str {
		if v := env(key); v != "" {
			*dst = v
		}
	}

	if v := env("TODOS_DB_PORT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: TODOS_DB_PORT: %v", ErrInvalid, err)
		}
		c.Database.Port = n
	}
	if v := env("TODOS_RATE_LIMIT_RPS"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%w: TODOS_RATE_LIMIT_RPS: %v", ErrInvalid, err)
		}
		c.RateLimit.RPS = f
	}
	if v := env("TODOS_RATE_LIMIT_BURST"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: TODOS_RATE_LIMIT_BURST: %v", ErrInvalid, err)
		}
		c.RateLimit.Burst = n
	}
	if v := env("TODOS_REQUEST_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%w: TODOS_REQUEST_TIMEOUT: %v", ErrInvalid, err)
		}
		c.Server.RequestTimeout = d
	}
	return nil
}

// env returns the trimmed value of key; unset and empty are the same.
func env(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("%w: database driver %q (want sqlite or postgres)", ErrInvalid, c.Database.Driver)
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("%w: log level %q", ErrInvalid, c.Log.Level)
	}
	switch c.Tracing.Exporter {
	case "", "none", "stdout", "otlp":
	default:
		return fmt.Errorf("%w: tracing exporter %q", ErrInvalid, c.Tracing.Exporter)
	}
	if c.Server.Addr == "" {
		return fmt.Errorf("%w: empty server address", ErrInvalid)
	}
	if c.Server.RequestTimeout < 0 || c.RateLimit.RPS < 0 {
		return fmt.Errorf("%w: negative timeout or rate limit", ErrInvalid)
	}
	return nil
}

// PostgresURL assembles a lib/pq connection URL from the discrete fields.
func (d Database) PostgresURL() string {
	u := url.URL{
		Scheme: "postgres",
		Host:   net.JoinHostPort(d.Host, strconv.Itoa(d.Port)),
		Path:   "/" + d.Name,
	}
	if d.Password != "" {
		u.User = url.UserPassword(d.User, d.Password)
	} else if d.User != "" {
		u.User = url.User(d.User)
	}
	if d.SSLMode != "" {
		u.RawQuery = url.Values{"sslmode": {d.SSLMode}}.Encode()
	}
	return u.String()
}
