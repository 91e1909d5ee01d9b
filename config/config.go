package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

//go:embed config.yml
var embeddedConfig []byte

// JWTConfig holds the token-signing configuration. The secret is process-wide
// state loaded once at startup and must never be logged.
type JWTConfig struct {
	SecretKey      string        `mapstructure:"secretKey"`
	Issuer         string        `mapstructure:"issuer"`
	Audience       string        `mapstructure:"audience"`
	AccessTokenTTL time.Duration `mapstructure:"accessTokenTTL"`
}

// AuthConfig holds password-hashing settings.
type AuthConfig struct {
	BcryptCost int `mapstructure:"bcryptCost"`
}

// MediaConfig holds the object-store settings for profile image uploads.
type MediaConfig struct {
	Endpoint       string   `mapstructure:"endpoint"`
	AccessKey      string   `mapstructure:"accessKey"`
	SecretKey      string   `mapstructure:"secretKey"`
	Bucket         string   `mapstructure:"bucket"`
	UseSSL         bool     `mapstructure:"useSSL"`
	MaxUploadBytes int64    `mapstructure:"maxUploadBytes"`
	AllowedTypes   []string `mapstructure:"allowedTypes"`
}

type Config struct {
	Mode         string `mapstructure:"mode"`
	Repositories struct {
		Postgres struct {
			Host     string `mapstructure:"host"`
			Password string `mapstructure:"password"`
			Port     string `mapstructure:"port"`
			Username string `mapstructure:"username"`
			DB       string `mapstructure:"db"`
			SSLMode  string `mapstructure:"sslmode"`
		} `mapstructure:"postgres"`
	} `mapstructure:"repositories"`
	Server struct {
		HTTPPort    string        `mapstructure:"HTTPPort"`
		MetricsPort string        `mapstructure:"metricsPort"`
		Timeout     time.Duration `mapstructure:"HTTPTimeout"`
	} `mapstructure:"server"`
	CORS struct {
		AllowedOrigins []string `mapstructure:"allowedOrigins"`
	} `mapstructure:"cors"`
	JWT   JWTConfig   `mapstructure:"jwt"`
	Auth  AuthConfig  `mapstructure:"auth"`
	Media MediaConfig `mapstructure:"media"`
}

func InitConfig() (Config, error) {
	var config Config
	v := viper.New()

	// Add file-based config paths
	v.AddConfigPath(".")
	v.AddConfigPath("config")
	v.AddConfigPath("/app/config")

	v.SetConfigName("config")
	v.SetConfigType("yml")

	// Try to load file-based config
	err := v.ReadInConfig()
	if err != nil {
		fmt.Printf("Warning: Failed to find file-based config: %s. Falling back to embedded config.\n", err)
		if err = v.ReadConfig(bytes.NewReader(embeddedConfig)); err != nil {
			return Config{}, fmt.Errorf("failed to read embedded config: %s", err)
		}
	}

	// Unmarshal the config into the Config struct
	if err = v.Unmarshal(&config); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %s", err)
	}

	// Secrets come from the environment, never from the committed YAML.
	applyEnvOverrides(&config)

	if config.JWT.SecretKey == "" {
		return Config{}, fmt.Errorf("JWT secret key is not configured (set JWT_SECRET_KEY)")
	}

	return config, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("JWT_SECRET_KEY"); v != "" {
		cfg.JWT.SecretKey = v
	}
	if v := os.Getenv("POSTGRES_PASSWORD"); v != "" {
		cfg.Repositories.Postgres.Password = v
	}
	if v := os.Getenv("MINIO_ACCESS_KEY"); v != "" {
		cfg.Media.AccessKey = v
	}
	if v := os.Getenv("MINIO_SECRET_KEY"); v != "" {
		cfg.Media.SecretKey = v
	}
	if v := os.Getenv("JWT_EXPIRES"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.JWT.AccessTokenTTL = d
		}
	}
}
