package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

type Discord struct {
	Token    string `yaml:"token" env:"DISCORD_TOKEN,required"`
	ClientID string `yaml:"client_id" env:"DISCORD_CLIENT_ID,required"`
}

type Database struct {
	Driver   string `yaml:"driver" env:"DB_DRIVER"`
	Host     string `yaml:"host" env:"DB_HOST"`
	Port     int    `yaml:"port" env:"DB_PORT"`
	User     string `yaml:"user" env:"DB_USER"`
	Password string `yaml:"password" env:"DB_PASSWORD"`
	DBName   string `yaml:"dbname" env:"DB_NAME"`
	SSLMode  string `yaml:"sslmode" env:"DB_SSLMODE"`
	MaxConns int32  `yaml:"max_conns"`
	MinConns int32  `yaml:"min_conns"`
}

// URL is the postgres connection string for d.
func (d Database) URL() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:     "/" + d.DBName,
		RawQuery: "sslmode=" + url.QueryEscape(d.SSLMode),
	}
	return u.String()
}

type Defaults struct {
	Timezone string `yaml:"timezone"`
	Language string `yaml:"language"`
}

type Limits struct {
	EventsPerSecond float64 `yaml:"events_per_second"`
	Burst           int     `yaml:"burst"`
}

type Config struct {
	Discord  Discord  `yaml:"discord"`
	Database Database `yaml:"database"`
	Defaults Defaults `yaml:"defaults"`
	Limits   Limits   `yaml:"limits"`
}

// Load reads the file named by CONFIG_PATH, or config.yaml.
func Load() (*Config, error) {
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "config.yaml"
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}
	return Parse(data, os.Environ())
}

// Parse decodes YAML after replacing ${VAR} placeholders from environ.
func Parse(data []byte, environ []string) (*Config, error) {
	// Replace environment variables in the YAML content
	content := string(data)
	lookup := make(map[string]string, len(environ))
	for _, env := range environ {
		pair := strings.SplitN(env, "=", 2)
		if len(pair) != 2 {
			continue
		}
		lookup[pair[0]] = pair[1]
		placeholder := "${" + pair[0] + "}"
		content = strings.ReplaceAll(content, placeholder, pair[1])
	}

	var cfg Config
	if err := yaml.Unmarshal([]byte(content), &cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	// Convert DB_PORT from string to int if it's an environment variable
	if portStr := lookup["DB_PORT"]; portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return nil, fmt.Errorf("invalid DB_PORT value: %w", err)
		}
		cfg.Database.Port = port
	}

	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Database.Driver == "" {
		c.Database.Driver = DriverPostgres
	}
	if c.Database.Port == 0 {
		c.Database.Port = 5432
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}
	if c.Database.MaxConns == 0 {
		c.Database.MaxConns = 10
	}
	if c.Database.MinConns == 0 {
		c.Database.MinConns = 2
	}
	if c.Defaults.Timezone == "" {
		c.Defaults.Timezone = "Europe/Berlin"
	}
	if c.Defaults.Language == "" {
		c.Defaults.Language = "en"
	}
	if c.Limits.EventsPerSecond == 0 {
		c.Limits.EventsPerSecond = 2
	}
	if c.Limits.Burst == 0 {
		c.Limits.Burst = 5
	}
}

func (c *Config) validate() error {
	if c.Discord.Token == "" {
		return fmt.Errorf("discord.token is required")
	}
	switch c.Database.Driver {
	case DriverPostgres:
		if c.Database.Host == "" || c.Database.DBName == "" {
			return fmt.Errorf("database.host and database.dbname are required for the postgres driver")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("unknown database.driver %q", c.Database.Driver)
	}
	return nil
}
