package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
	"golang.org/x/text/language"
)

// Config holds all configuration for the harvesting pipeline
type Config struct {
	General    GeneralConfig    `mapstructure:"general"`
	Harvest    HarvestConfig    `mapstructure:"harvest"`
	Storage    StorageConfig    `mapstructure:"storage"`
	Translator TranslatorConfig `mapstructure:"translator"`
	Telemetry  TelemetryConfig  `mapstructure:"telemetry"`
	Server     ServerConfig     `mapstructure:"server"`
}

// GeneralConfig contains general application settings
type GeneralConfig struct {
	Debug        bool          `mapstructure:"debug"`
	LogLevel     string        `mapstructure:"log_level"`
	DataDir      string        `mapstructure:"data_dir"`
	SourceBudget time.Duration `mapstructure:"source_budget"`
}

// HarvestConfig tunes the shared harvesting protocol and lists the sources.
type HarvestConfig struct {
	RecordLimit  int                     `mapstructure:"record_limit"`
	FetchTimeout time.Duration           `mapstructure:"fetch_timeout"`
	UserAgent    string                  `mapstructure:"user_agent"`
	Sources      map[string]SourceConfig `mapstructure:"sources"`
}

// SourceConfig is the per-source harvesting knob set.
type SourceConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	MaxPages int           `mapstructure:"max_pages"`
	Delay    time.Duration `mapstructure:"delay"`
	RenderJS bool          `mapstructure:"render_js"`
	Authors  []string      `mapstructure:"authors"`
	Language string        `mapstructure:"language"`
}

func (s SourceConfig) Validate(name string) error {
	if s.Language == "" {
		return nil
	}
	if _, err := language.Parse(s.Language); err != nil {
		return fmt.Errorf("harvest.sources.%s.language %q: %w", name, s.Language, err)
	}
	return nil
}

// StorageConfig groups the backing services.
type StorageConfig struct {
	Postgres PostgresConfig `mapstructure:"postgres"`
	Redis    RedisConfig    `mapstructure:"redis"`
}

// PostgresConfig contains Postgres connection settings
type PostgresConfig struct {
	URL      string        `mapstructure:"url"`
	Host     string        `mapstructure:"host"`
	Port     string        `mapstructure:"port"`
	User     string        `mapstructure:"user"`
	Password string        `mapstructure:"password"`
	DBName   string        `mapstructure:"dbname"`
	SSLMode  string        `mapstructure:"sslmode"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

func (p PostgresConfig) Validate() error {
	if strings.TrimSpace(p.URL) != "" {
		return nil
	}
	if strings.TrimSpace(p.Host) == "" {
		return fmt.Errorf("storage.postgres.host required when url is not provided")
	}
	if strings.TrimSpace(p.DBName) == "" {
		return fmt.Errorf("storage.postgres.dbname required when url is not provided")
	}
	return nil
}

// DSN renders the connection string the store and migrations open.
func (p PostgresConfig) DSN() string {
	if p.URL != "" {
		return p.URL
	}
	port := p.Port
	if port == "" {
		port = "5432"
	}
	ssl := p.SSLMode
	if ssl == "" {
		ssl = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		p.User, p.Password, p.Host, port, p.DBName, ssl)
}

// RedisConfig contains Redis connection settings. Redis is optional: an empty
// host disables the endpoint cache.
type RedisConfig struct {
	Host     string        `mapstructure:"host"`
	Port     string        `mapstructure:"port"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TTL      time.Duration `mapstructure:"ttl"`
}

func (r RedisConfig) Enabled() bool { return strings.TrimSpace(r.Host) != "" }

func (r RedisConfig) Addr() string {
	port := r.Port
	if port == "" {
		port = "6379"
	}
	return r.Host + ":" + port
}

// TranslatorConfig points at a LibreTranslate-compatible service. Optional:
// an empty endpoint disables translation during enrichment.
type TranslatorConfig struct {
	Endpoint string        `mapstructure:"endpoint"`
	APIKey   string        `mapstructure:"api_key"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// TelemetryConfig contains metrics settings
type TelemetryConfig struct {
	Enabled     bool `mapstructure:"enabled"`
	MetricsPort int  `mapstructure:"metrics_port"`
}

func (t TelemetryConfig) Validate() error {
	if t.Enabled && t.MetricsPort <= 0 {
		return fmt.Errorf("telemetry.metrics_port must be > 0 when telemetry is enabled")
	}
	return nil
}

// ServerConfig contains the ops HTTP server settings
type ServerConfig struct {
	Address string `mapstructure:"address"`
}

// LoadConfig loads config from file and environment. The file is optional;
// QUOTEMILL_* environment variables override or replace it. Validation
// failures are fatal before any stage runs.
func LoadConfig(path string) *Config {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	setDefaults(v)

	if path == "" {
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	} else {
		v.SetConfigFile(path)
	}

	v.SetEnvPrefix("QUOTEMILL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound || path != "" {
			panic(fmt.Errorf("fatal error config file: %w", err))
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		panic(fmt.Errorf("fatal error config file: %w", err))
	}

	if err := config.Storage.Postgres.Validate(); err != nil {
		panic(err)
	}
	if err := config.Telemetry.Validate(); err != nil {
		panic(err)
	}
	for name, src := range config.Harvest.Sources {
		if err := src.Validate(name); err != nil {
			panic(err)
		}
	}
	return &config
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("general.data_dir", "data")
	v.SetDefault("general.source_budget", time.Hour)
	v.SetDefault("general.log_level", "info")

	v.SetDefault("harvest.fetch_timeout", 15*time.Second)

	v.SetDefault("harvest.sources.zenquotes.enabled", true)
	v.SetDefault("harvest.sources.zenquotes.delay", time.Second)
	v.SetDefault("harvest.sources.zenquotes.language", "en")

	v.SetDefault("harvest.sources.quotable.enabled", true)
	v.SetDefault("harvest.sources.quotable.delay", 500*time.Millisecond)
	v.SetDefault("harvest.sources.quotable.language", "en")

	v.SetDefault("harvest.sources.forismatic.enabled", true)
	v.SetDefault("harvest.sources.forismatic.delay", time.Second)
	v.SetDefault("harvest.sources.forismatic.language", "ru")

	v.SetDefault("harvest.sources.citaty.enabled", true)
	v.SetDefault("harvest.sources.citaty.delay", 5*time.Second)
	v.SetDefault("harvest.sources.citaty.language", "ru")

	v.SetDefault("harvest.sources.wikiquote.enabled", true)
	v.SetDefault("harvest.sources.wikiquote.delay", 5*time.Second)
	v.SetDefault("harvest.sources.wikiquote.language", "en")

	v.SetDefault("harvest.sources.goodreads.enabled", true)
	v.SetDefault("harvest.sources.goodreads.delay", 10*time.Second)
	v.SetDefault("harvest.sources.goodreads.language", "en")

	v.SetDefault("storage.postgres.sslmode", "disable")
	v.SetDefault("storage.redis.ttl", 24*time.Hour)

	v.SetDefault("translator.timeout", 30*time.Second)

	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.metrics_port", 9090)

	v.SetDefault("server.address", ":8080")
}
