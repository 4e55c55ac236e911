package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/emrgen/metadata/internal/compress"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	_ "github.com/joho/godotenv/autoload"
	cron "github.com/robfig/cron"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

const (
	DriverSqlite   = "sqlite"
	DriverPostgres = "postgres"
)

type Config struct {
	LogLevel string       `yaml:"log_level"`
	DB       DBConfig     `yaml:"db"`
	Redis    RedisConfig  `yaml:"redis"`
	Kafka    KafkaConfig  `yaml:"kafka"`
	Lookup   LookupConfig `yaml:"lookup"`
}

type DBConfig struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

// RedisConfig enables the lookup choices cache when Addr is set.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// KafkaConfig enables audit event publishing when Brokers is set.
type KafkaConfig struct {
	Brokers string `yaml:"brokers"`
	Topic   string `yaml:"topic"`
}

type LookupConfig struct {
	CacheTTL    time.Duration `yaml:"cache_ttl"`
	Compression string        `yaml:"compression"`
	// Refresh is the cron schedule of the lookup cache warmer.
	Refresh string `yaml:"refresh"`
	// Values are static lookup template variables.
	Values map[string]string `yaml:"values"`
}

func NewDefaultConfig() *Config {
	return &Config{
		LogLevel: logrus.InfoLevel.String(),
		DB: DBConfig{
			Driver: DriverSqlite,
			DSN:    "metadata.db",
		},
		Kafka: KafkaConfig{
			Topic: "metadata.events",
		},
		Lookup: LookupConfig{
			CacheTTL:    5 * time.Minute,
			Compression: compress.NameNop,
			Refresh:     "@every 1m",
		},
	}
}

// LoadConfig reads .env, the optional yaml file named by CONFIG_FILE and
// the environment, in that order of precedence from lowest to highest.
func LoadConfig() (*Config, error) {
	cfg := NewDefaultConfig()

	if file := os.Getenv("CONFIG_FILE"); file != "" {
		if err := loadFile(file, cfg); err != nil {
			return nil, err
		}
	}

	if err := cfg.loadEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func loadFile(filename string, cfg *Config) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", filename, err)
	}

	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), cfg); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", filename, err)
	}

	return nil
}

func (c *Config) loadEnv() error {
	setString(&c.LogLevel, "LOG_LEVEL")
	setString(&c.DB.Driver, "DB_DRIVER")
	setString(&c.DB.DSN, "DB_DSN")
	setString(&c.Redis.Addr, "REDIS_ADDR")
	setString(&c.Redis.Password, "REDIS_PASSWORD")
	setString(&c.Kafka.Brokers, "KAFKA_BROKERS")
	setString(&c.Kafka.Topic, "KAFKA_TOPIC")
	setString(&c.Lookup.Compression, "CACHE_COMPRESSION")
	setString(&c.Lookup.Refresh, "LOOKUP_REFRESH")

	if v := os.Getenv("REDIS_DB"); v != "" {
		db, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("REDIS_DB: %w", err)
		}
		c.Redis.DB = db
	}

	if v := os.Getenv("LOOKUP_CACHE_TTL"); v != "" {
		ttl, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("LOOKUP_CACHE_TTL: %w", err)
		}
		c.Lookup.CacheTTL = ttl
	}

	return nil
}

func setString(target *string, key string) {
	if v, ok := os.LookupEnv(key); ok {
		*target = strings.TrimSpace(v)
	}
}

func (c *Config) Validate() error {
	levels := make([]any, 0, len(logrus.AllLevels))
	for _, level := range logrus.AllLevels {
		levels = append(levels, level.String())
	}

	if err := validation.ValidateStruct(c,
		validation.Field(&c.LogLevel, validation.Required, validation.In(levels...)),
	); err != nil {
		return err
	}
	if err := c.DB.Validate(); err != nil {
		return err
	}
	if err := c.Redis.Validate(); err != nil {
		return err
	}
	if err := c.Kafka.Validate(); err != nil {
		return err
	}
	return c.Lookup.Validate()
}

func (c *DBConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Driver, validation.Required, validation.In(DriverSqlite, DriverPostgres)),
		validation.Field(&c.DSN, validation.Required),
	)
}

func (c *RedisConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.DB, validation.Min(0)),
	)
}

func (c *KafkaConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Topic, validation.When(c.Brokers != "", validation.Required)),
	)
}

func (c *LookupConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.CacheTTL, validation.Min(time.Duration(0))),
		validation.Field(&c.Compression, validation.In(compress.Names...)),
		validation.Field(&c.Refresh, validation.Required, validation.By(cronSpec)),
	)
}

func cronSpec(value any) error {
	spec, _ := value.(string)
	if _, err := cron.Parse(spec); err != nil {
		return errors.New("must be a valid cron schedule")
	}
	return nil
}
