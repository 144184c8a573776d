package config

import (
	"lieng-server/internal/util"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config provides configuration for the Liêng server
type Config struct {
	loaded         bool
	PGDSN          string   `yaml:"pgDsn" envconfig:"pg_dsn"`
	MigrationsPath string   `yaml:"migrationsPath" envconfig:"migrations_path"`
	Admins         []string `yaml:"admins"`
	JWT            struct {
		PublicKey  string `yaml:"publicKey" envconfig:"public_key"`
		PrivateKey string `yaml:"privateKey" envconfig:"private_key"`
	}
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	}
	NATS struct {
		URL string `yaml:"url"`
	}
	Log struct {
		Level             string `yaml:"level"`
		DisableAccessLogs bool   `yaml:"disableAccessLogs" envconfig:"disable_access_logs"`
	}
	Game Game
}

// Game holds the tunables of the Liêng engine
type Game struct {
	InviteTimeout    time.Duration `yaml:"inviteTimeout" envconfig:"invite_timeout"`
	TurnTimeout      time.Duration `yaml:"turnTimeout" envconfig:"turn_timeout"`
	DealDelay        time.Duration `yaml:"dealDelay" envconfig:"deal_delay"`
	DefaultBet       int           `yaml:"defaultBet" envconfig:"default_bet"`
	ActionsPerSecond float64       `yaml:"actionsPerSecond" envconfig:"actions_per_second"`
}

var config Config

// DefaultConfig returns the configuration used when nothing is overridden
func DefaultConfig() Config {
	var c Config
	c.PGDSN = "postgres://postgres@localhost:5432/postgres?sslmode=disable"
	c.MigrationsPath = "./sql"
	c.JWT.PublicKey = "public.pem"
	c.JWT.PrivateKey = "private.key"
	c.Redis.Addr = "localhost:6379"
	c.NATS.URL = "nats://localhost:4222"
	c.Log.Level = "info"
	c.Game = Game{
		InviteTimeout:    time.Second * 30,
		TurnTimeout:      time.Second * 30,
		DealDelay:        time.Millisecond * 500,
		DefaultBet:       1000,
		ActionsPerSecond: 2,
	}

	return c
}

// Instance returns a singleton instance
// If the config hasn't been loaded, it will be loaded
func Instance() Config {
	if !config.loaded {
		if err := Load(); err != nil {
			panic(err)
		}
	}

	return config
}

// Load will load the configuration
// A missing config file is not an error, the defaults and environment are used instead.
func Load() error {
	config = DefaultConfig()

	configFile := util.Getenv("LIENG_CONFIG_FILE", "config.yaml")
	file, err := os.Open(configFile)
	if err != nil && !os.IsNotExist(err) {
		return err
	}

	if file != nil {
		defer file.Close()
		if err := yaml.NewDecoder(file).Decode(&config); err != nil {
			return err
		}
	}

	if err := envconfig.Process("lieng", &config); err != nil {
		return err
	}

	config.loaded = true
	return nil
}
