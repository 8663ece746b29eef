package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App       AppConfig
	DB        DBConfig
	Redis     RedisConfig
	JWT       JWTConfig
	Reference ReferenceConfig
	Kafka     KafkaConfig
	Tracing   TracingConfig
}

type AppConfig struct {
	Name         string
	Port         string
	Env          string
	LogLevel     string
	MessagesFile string
	CORSOrigin   string
}

type DBConfig struct {
	Driver   string
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	TimeZone string
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     string
	Password string
	DB       int
	CacheTTL time.Duration
}

type JWTConfig struct {
	Secret       string
	Issuer       string
	Audience     string
	AccessExpiry time.Duration
}

// ReferenceConfig points at the services that own patients and doctors.
type ReferenceConfig struct {
	PatientServiceURL string
	DoctorServiceURL  string
	Timeout           time.Duration
}

type KafkaConfig struct {
	Enabled bool
	Brokers []string
	Topic   string
}

type TracingConfig struct {
	Enabled     bool
	Endpoint    string
	SampleRate  float64
	ServiceName string
}

const (
	DBDriverPostgres = "postgres"
	DBDriverMemory   = "memory"
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVICE_NAME", "appointment-service")
	v.SetDefault("APP_PORT", "8080")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("CORS_ALLOWED_ORIGIN", "*")
	v.SetDefault("DB_DRIVER", DBDriverPostgres)
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_TIMEZONE", "UTC")
	v.SetDefault("REDIS_ENABLED", false)
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("CACHE_TTL", "5m")
	v.SetDefault("JWT_ACCESS_EXPIRY", "15m")
	v.SetDefault("REFERENCE_TIMEOUT", "5s")
	v.SetDefault("KAFKA_ENABLED", false)
	v.SetDefault("KAFKA_TOPIC", "appointment-events")
	v.SetDefault("TRACING_ENABLED", false)
	v.SetDefault("TRACING_ENDPOINT", "localhost:4318")
	v.SetDefault("TRACING_SAMPLE_RATE", 1.0)
}

// LoadConfig reads .env from the working directory when present, then the
// process environment. Environment variables win over the file.
func LoadConfig() (*Config, error) {
	return load(".env")
}

func load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetConfigFile(path)
	v.SetConfigType("env")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
	}

	cacheTTL, err := time.ParseDuration(v.GetString("CACHE_TTL"))
	if err != nil {
		return nil, fmt.Errorf("invalid CACHE_TTL: %w", err)
	}

	accessExpiry, err := time.ParseDuration(v.GetString("JWT_ACCESS_EXPIRY"))
	if err != nil {
		accessExpiry = 15 * time.Minute
	}

	referenceTimeout, err := time.ParseDuration(v.GetString("REFERENCE_TIMEOUT"))
	if err != nil {
		return nil, fmt.Errorf("invalid REFERENCE_TIMEOUT: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name:         v.GetString("SERVICE_NAME"),
			Port:         v.GetString("APP_PORT"),
			Env:          v.GetString("APP_ENV"),
			LogLevel:     v.GetString("LOG_LEVEL"),
			MessagesFile: v.GetString("MESSAGES_FILE"),
			CORSOrigin:   v.GetString("CORS_ALLOWED_ORIGIN"),
		},
		DB: DBConfig{
			Driver:   strings.ToLower(v.GetString("DB_DRIVER")),
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			Name:     v.GetString("DB_NAME"),
			TimeZone: v.GetString("DB_TIMEZONE"),
		},
		Redis: RedisConfig{
			Enabled:  v.GetBool("REDIS_ENABLED"),
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetString("REDIS_PORT"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
			CacheTTL: cacheTTL,
		},
		JWT: JWTConfig{
			Secret:       v.GetString("JWT_SECRET"),
			Issuer:       v.GetString("JWT_ISSUER"),
			Audience:     v.GetString("JWT_AUDIENCE"),
			AccessExpiry: accessExpiry,
		},
		Reference: ReferenceConfig{
			PatientServiceURL: v.GetString("PATIENT_SERVICE_URL"),
			DoctorServiceURL:  v.GetString("DOCTOR_SERVICE_URL"),
			Timeout:           referenceTimeout,
		},
		Kafka: KafkaConfig{
			Enabled: v.GetBool("KAFKA_ENABLED"),
			Brokers: splitList(v.GetString("KAFKA_BROKERS")),
			Topic:   v.GetString("KAFKA_TOPIC"),
		},
		Tracing: TracingConfig{
			Enabled:     v.GetBool("TRACING_ENABLED"),
			Endpoint:    v.GetString("TRACING_ENDPOINT"),
			SampleRate:  v.GetFloat64("TRACING_SAMPLE_RATE"),
			ServiceName: v.GetString("SERVICE_NAME"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.DB.Driver {
	case DBDriverPostgres, DBDriverMemory:
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DB.Driver)
	}
	if c.JWT.Secret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return errors.New("KAFKA_BROKERS is required when KAFKA_ENABLED is true")
	}
	if c.Tracing.SampleRate < 0 || c.Tracing.SampleRate > 1 {
		return fmt.Errorf("TRACING_SAMPLE_RATE must be within [0,1], got %v", c.Tracing.SampleRate)
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
