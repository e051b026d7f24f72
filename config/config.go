package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

//go:embed config.yml
var embeddedConfig []byte

// JWTConfig holds the token signing settings. SecretKey is read from the
// SN_JWT_SECRET_KEY environment variable, never from the config file.
type JWTConfig struct {
	SecretKey      string        `mapstructure:"secretKey"`
	AccessTokenTTL time.Duration `mapstructure:"accessTokenTTL"`
	Issuer         string        `mapstructure:"issuer"`
}

type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	Password string `mapstructure:"password"`
	Port     string `mapstructure:"port"`
	Username string `mapstructure:"username"`
	DB       string `mapstructure:"db"`
	SSLMode  string `mapstructure:"sslmode"`
}

type GatewayConfig struct {
	HTTPPort       string        `mapstructure:"HTTPPort"`
	UserServiceURL string        `mapstructure:"userServiceURL"`
	RequestTimeout time.Duration `mapstructure:"requestTimeout"`
}

type Config struct {
	Mode     string `mapstructure:"mode"`
	Handlers struct {
		Prometheus struct {
			Port string `mapstructure:"port"`
		} `mapstructure:"prometheus"`
	} `mapstructure:"handlers"`
	Repositories struct {
		Postgres PostgresConfig `mapstructure:"postgres"`
	} `mapstructure:"repositories"`
	Server struct {
		HTTPPort string        `mapstructure:"HTTPPort"`
		Timeout  time.Duration `mapstructure:"HTTPTimeout"`
	} `mapstructure:"server"`
	Gateway GatewayConfig `mapstructure:"gateway"`
	JWT     JWTConfig     `mapstructure:"jwt"`
}

func InitConfig() (Config, error) {
	var config Config
	v := viper.New()

	v.AddConfigPath(".")
	v.AddConfigPath("config")
	v.AddConfigPath("/app/config")

	v.SetConfigName("config")
	v.SetConfigType("yml")

	v.SetEnvPrefix("SN")
	v.AutomaticEnv()
	if err := v.BindEnv("jwt.secretKey", "SN_JWT_SECRET_KEY"); err != nil {
		return Config{}, fmt.Errorf("failed to bind jwt secret env var: %w", err)
	}

	err := v.ReadInConfig()
	if err != nil {
		if err = v.ReadConfig(bytes.NewReader(embeddedConfig)); err != nil {
			return Config{}, fmt.Errorf("failed to read embedded config: %w", err)
		}
	}

	if err = v.Unmarshal(&config); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if config.JWT.AccessTokenTTL == 0 {
		config.JWT.AccessTokenTTL = 30 * time.Minute
	}

	return config, nil
}

// ValidateProduction enforces settings that may only be relaxed in tests.
func (c *Config) ValidateProduction() error {
	if c.Mode != "production" {
		return nil
	}
	if c.JWT.SecretKey == "" {
		return errors.New("jwt secret key must be set in production (SN_JWT_SECRET_KEY)")
	}
	return nil
}
