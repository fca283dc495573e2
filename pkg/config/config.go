package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	DB DBConfig `mapstructure:"db"`

	// Optional logging settings
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`

	// Path of the file the config was read from, empty when only defaults
	// and environment variables were used
	ConfigPath string `mapstructure:"-"`
}

// DBConfig describes the single store the process talks to.
type DBConfig struct {
	Driver         string `mapstructure:"driver"` // "mysql", "sqlite" or "postgres"
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Name           string `mapstructure:"name"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	PasswordPrompt bool   `mapstructure:"password_prompt"`
	Path           string `mapstructure:"path"` // sqlite only
	DSN            string `mapstructure:"dsn"`  // overrides everything above
	SSLMode        string `mapstructure:"ssl_mode"`
	CreateSchema   bool   `mapstructure:"create_schema"`
}

const (
	DriverMySQL    = "mysql"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	DefaultDriver       = DriverMySQL
	DefaultHost         = "localhost"
	DefaultMySQLPort    = 3306
	DefaultPostgresPort = 5432
	DefaultDBName       = "fit_zone_db"
	DefaultDBUser       = "root"
	DefaultSQLitePath   = "fit_zone.db"
	DefaultSSLMode      = "disable"
	DefaultLogLevel     = "warn"
	DefaultLogFormat    = "text"

	EnvPrefix = "FITZONE"
)

// Load reads configuration from configPath (optional) and FITZONE_* environment
// variables. When configPath is empty, config.yml is looked up in the working
// directory and /etc/fitzone; not finding it there is fine.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	// Set defaults
	v.SetDefault("db.driver", DefaultDriver)
	v.SetDefault("db.host", DefaultHost)
	v.SetDefault("db.port", 0)
	v.SetDefault("db.name", DefaultDBName)
	v.SetDefault("db.user", DefaultDBUser)
	v.SetDefault("db.password", "")
	v.SetDefault("db.password_prompt", false)
	v.SetDefault("db.path", DefaultSQLitePath)
	v.SetDefault("db.dsn", "")
	v.SetDefault("db.ssl_mode", DefaultSSLMode)
	v.SetDefault("db.create_schema", true)
	v.SetDefault("log_level", DefaultLogLevel)
	v.SetDefault("log_format", DefaultLogFormat)

	// Allow environment variable overrides, db.password -> FITZONE_DB_PASSWORD
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/fitzone")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.ConfigPath = v.ConfigFileUsed()

	cfg.DB.Driver = strings.ToLower(strings.TrimSpace(cfg.DB.Driver))
	if cfg.DB.Port == 0 {
		switch cfg.DB.Driver {
		case DriverMySQL:
			cfg.DB.Port = DefaultMySQLPort
		case DriverPostgres:
			cfg.DB.Port = DefaultPostgresPort
		}
	}

	// Validate required fields
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	if err := c.DB.Validate(); err != nil {
		return err
	}

	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("log_format must be 'text' or 'json'")
	}

	return nil
}

func (c *DBConfig) Validate() error {
	switch c.Driver {
	case DriverMySQL, DriverPostgres:
		if c.DSN != "" {
			return nil
		}
		if c.Host == "" {
			return fmt.Errorf("db.host is required for driver %s", c.Driver)
		}
		if c.Port <= 0 || c.Port > 65535 {
			return fmt.Errorf("db.port is out of range: %d", c.Port)
		}
		if c.Name == "" {
			return fmt.Errorf("db.name is required for driver %s", c.Driver)
		}
		if c.User == "" {
			return fmt.Errorf("db.user is required for driver %s", c.Driver)
		}
	case DriverSQLite:
		if c.DSN == "" && c.Path == "" {
			return fmt.Errorf("db.path is required for driver sqlite")
		}
		if isInMemorySQLite(c.Path) || isInMemorySQLite(c.DSN) {
			return fmt.Errorf("in-memory sqlite databases are not supported: every operation opens a new connection")
		}
	case "":
		return fmt.Errorf("db.driver is required")
	default:
		return fmt.Errorf("db.driver must be 'mysql', 'sqlite' or 'postgres'")
	}

	return nil
}

func isInMemorySQLite(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == ":memory:" || strings.HasPrefix(s, "file::memory:") || strings.Contains(s, "mode=memory")
}
