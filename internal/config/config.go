package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type TradeConfig struct {
	Env string `yaml:"env"`
	HTTPServer   `yaml:"http_server"`
	MarketDB     `yaml:"market_db"`
	Matching     `yaml:"matching"`
	LogConfig    `yaml:"log_config"`
	KafkaService `yaml:"kafka-service"`
}

type HTTPServer struct {
	Host string `yaml:"host"`
	Port string `yaml:"port"`
}

type MarketDB struct {
	Driver         string `yaml:"driver" env-default:"postgres"`
	Dsn            string `yaml:"dsn"`
	Path           string `yaml:"path"`
	MigrationsPath string `yaml:"migrations_path"`
}

type Matching struct {
	Interval         time.Duration `yaml:"interval" env-default:"30s"`
	MaxTransactItems int           `yaml:"max_transact_items" env-default:"100"`
	Auto             bool          `yaml:"auto" env-default:"true"`
}

type LogConfig struct {
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
	LogOutput string `yaml:"log_output"`
}

type KafkaService struct {
	Enabled bool   `yaml:"enabled"`
	Host    string `yaml:"host"`
	Port    string `yaml:"port"`
}

func MustLoad() *TradeConfig {

	// Processing env config variable and file
	configPath := os.Getenv("TRADE_CONFIG_PATH")

	if configPath == "" {
		log.Fatalf("TRADE_CONFIG_PATH was not found\n")
	}

	if _, err := os.Stat(configPath); err != nil {
		log.Fatalf("failed to find config file: %v\n", err)
	}

	// YAML to struct object
	var cfg TradeConfig
	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		log.Fatalf("failed to read config file: %v", err)
	}

	if err := cfg.validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	return &cfg
}

func (cfg *TradeConfig) validate() error {
	// A settlement pair is two coupled mutations; a ceiling below 2
	// could never commit a single trade.
	if cfg.Matching.MaxTransactItems < 2 {
		return fmt.Errorf("matching.max_transact_items must be at least 2, got %d", cfg.Matching.MaxTransactItems)
	}
	return nil
}
