package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/mercaplaza/mercaplaza/pkg/enums"
)

// EnvPrefix is applied to every environment variable read by Load.
const EnvPrefix = "MERCAPLAZA"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App      AppConfig
	Document DocumentConfig
	Session  SessionConfig
	Password PasswordConfig
	Seed     SeedConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Document.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"MERCAPLAZA_APP_ENV" default:"dev"`
	LogLevel     string `envconfig:"MERCAPLAZA_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"MERCAPLAZA_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// DocumentConfig selects where the marketplace document blob lives.
type DocumentConfig struct {
	Driver string `envconfig:"MERCAPLAZA_DOCUMENT_DRIVER" default:"file"`
	// Path is the data directory for the file driver or the database
	// file for the sqlite driver.
	Path string `envconfig:"MERCAPLAZA_DOCUMENT_PATH" default:"./data"`
}

func (d DocumentConfig) validate() error {
	if _, err := enums.ParseStoreDriver(d.Driver); err != nil {
		return fmt.Errorf("document driver: %w", err)
	}
	if enums.StoreDriver(d.Driver) != enums.StoreDriverMemory && d.Path == "" {
		return fmt.Errorf("document path is required for driver %q", d.Driver)
	}
	return nil
}

// StoreDriver returns the parsed driver value.
func (d DocumentConfig) StoreDriver() enums.StoreDriver {
	return enums.StoreDriver(d.Driver)
}

type SessionConfig struct {
	Secret        string `envconfig:"MERCAPLAZA_SESSION_SECRET" default:"dev-session-secret"`
	Issuer        string `envconfig:"MERCAPLAZA_SESSION_ISSUER" default:"mercaplaza"`
	TTLHours      int    `envconfig:"MERCAPLAZA_SESSION_TTL_HOURS" default:"168"`
	AllowInsecure bool   `envconfig:"MERCAPLAZA_SESSION_ALLOW_INSECURE" default:"true"`
}

// TTL returns the session lifetime.
func (s SessionConfig) TTL() time.Duration {
	if s.TTLHours <= 0 {
		return 0
	}
	return time.Duration(s.TTLHours) * time.Hour
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"MERCAPLAZA_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"MERCAPLAZA_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"MERCAPLAZA_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"MERCAPLAZA_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"MERCAPLAZA_ARGON_KEY_LEN" default:"32"`
}

type SeedConfig struct {
	BrandName string `envconfig:"MERCAPLAZA_SEED_BRAND_NAME" default:"Mercaplaza"`
	Currency  string `envconfig:"MERCAPLAZA_SEED_CURRENCY" default:"COP"`
}
