package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Port string `yaml:"port"`
	Env  string `yaml:"env"`

	Mail Mail `yaml:"mail"`

	LogBackend        string `yaml:"log_backend"`
	DataDir           string `yaml:"data_dir"`
	DatabaseURL       string `yaml:"database_url"`
	PersistencePolicy string `yaml:"persistence_policy"`

	AdminToken  string   `yaml:"admin_token"`
	CORSOrigins []string `yaml:"cors_origins"`
	AMQPURL     string   `yaml:"amqp_url"`
	RedisURL    string   `yaml:"redis_url"`
	RateLimit   int      `yaml:"rate_limit"`
	LogLevel    string   `yaml:"log_level"`
}

type Mail struct {
	Host         string        `yaml:"host"`
	Port         int           `yaml:"port"`
	User         string        `yaml:"user"`
	Password     string        `yaml:"password"`
	Timeout      time.Duration `yaml:"timeout"`
	CompanyName  string        `yaml:"company_name"`
	SupportEmail string        `yaml:"support_email"`
	SupportPhone string        `yaml:"support_phone"`
}

const (
	BackendXLSX     = "xlsx"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendNone     = "none"
)

func Default() Config {
	return Config{
		Port: "5000",
		Env:  "production",
		Mail: Mail{
			Host:        "smtp.gmail.com",
			Port:        587,
			Timeout:     15 * time.Second,
			CompanyName: "Codease",
		},
		LogBackend:        BackendXLSX,
		DataDir:           "data",
		PersistencePolicy: "strict",
		CORSOrigins:       []string{"*"},
		RateLimit:         10,
		LogLevel:          "info",
	}
}

// Load reads .env (if present), then the YAML file named by CONFIG_FILE (if set),
// then lets environment variables override both.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Default()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

func applyEnv(cfg *Config) error {
	setString(&cfg.Port, "PORT")
	setString(&cfg.Env, "NODE_ENV")
	setString(&cfg.Env, "APP_ENV")

	setString(&cfg.Mail.User, "COMPANY_EMAIL")
	setString(&cfg.Mail.Password, "COMPANY_EMAIL_PASSWORD")
	setString(&cfg.Mail.Host, "MAIL_HOST")
	setString(&cfg.Mail.CompanyName, "COMPANY_NAME")
	setString(&cfg.Mail.SupportEmail, "SUPPORT_EMAIL")
	setString(&cfg.Mail.SupportPhone, "SUPPORT_PHONE")

	setString(&cfg.LogBackend, "LOG_BACKEND")
	setString(&cfg.DataDir, "DATA_DIR")
	setString(&cfg.DatabaseURL, "DATABASE_URL")
	setString(&cfg.PersistencePolicy, "PERSISTENCE_POLICY")
	setString(&cfg.AdminToken, "ADMIN_TOKEN")
	setString(&cfg.AMQPURL, "AMQP_URL")
	setString(&cfg.RedisURL, "REDIS_URL")
	setString(&cfg.LogLevel, "LOG_LEVEL")

	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		cfg.CORSOrigins = splitList(v)
	}

	if v := os.Getenv("MAIL_PORT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("MAIL_PORT: %w", err)
		}
		cfg.Mail.Port = n
	}
	if v := os.Getenv("MAIL_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("MAIL_TIMEOUT: %w", err)
		}
		cfg.Mail.Timeout = d
	}
	if v := os.Getenv("RATE_LIMIT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("RATE_LIMIT: %w", err)
		}
		cfg.RateLimit = n
	}
	return nil
}

func (c Config) Validate() error {
	if c.Mail.User == "" {
		return fmt.Errorf("COMPANY_EMAIL is required")
	}

	switch c.LogBackend {
	case BackendXLSX, BackendSQLite, BackendNone:
	case BackendPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for the postgres backend")
		}
	default:
		return fmt.Errorf("unknown LOG_BACKEND %q", c.LogBackend)
	}

	switch c.PersistencePolicy {
	case "strict", "lenient":
	default:
		return fmt.Errorf("unknown PERSISTENCE_POLICY %q", c.PersistencePolicy)
	}
	return nil
}

// IsDevelopment enables internal error details in API responses.
func (c Config) IsDevelopment() bool {
	return strings.EqualFold(c.Env, "development")
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
