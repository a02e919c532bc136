// internal/config/config.go
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"wallet-ledger/pkg/db" // Import db package for its Config struct
)

// AppConfig holds all application-wide configurations.
type AppConfig struct {
	Environment string
	LogLevel    string
	DB          db.Config
	Redis       RedisConfig
	Worker      WorkerConfig
}

// RedisConfig holds the snapshot cache configuration.
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
	Enabled  bool
}

// WorkerConfig holds the audit sweep worker configuration.
type WorkerConfig struct {
	ListenAddr    string        // Health/status endpoint address
	SweepInterval time.Duration // How often the audit sweep runs
	Concurrency   int           // Concurrent audits per sweep
	BatchSize     int           // Users listed per page
	Repair        bool          // Replay wallets that fail the audit
}

// LoadConfig reads configuration from a YAML file or environment variables,
// with sane defaults for local development.
func LoadConfig(path string) (*AppConfig, error) {
	v := viper.New()

	setDefaults(v)

	v.AddConfigPath(path)
	v.AddConfigPath(".")
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine; ENV vars and defaults take over.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &AppConfig{
		Environment: v.GetString("environment"),
		LogLevel:    v.GetString("logging.level"),
		DB: db.Config{
			Host:            v.GetString("database.host"),
			Port:            v.GetInt("database.port"),
			User:            v.GetString("database.user"),
			Password:        v.GetString("database.password"),
			DBName:          v.GetString("database.name"),
			SSLMode:         v.GetString("database.sslmode"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: v.GetDuration("database.conn_max_lifetime"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("redis.host"),
			Port:     v.GetInt("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
			Enabled:  v.GetBool("redis.enabled"),
		},
		Worker: WorkerConfig{
			ListenAddr:    v.GetString("worker.listen_addr"),
			SweepInterval: v.GetDuration("worker.sweep_interval"),
			Concurrency:   v.GetInt("worker.concurrency"),
			BatchSize:     v.GetInt("worker.batch_size"),
			Repair:        v.GetBool("worker.repair"),
		},
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("environment", "development")
	v.SetDefault("logging.level", "info")

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "user")
	v.SetDefault("database.password", "password")
	v.SetDefault("database.name", "walletdb")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.conn_max_lifetime", 5*time.Minute)

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.enabled", false)

	v.SetDefault("worker.listen_addr", ":8081")
	v.SetDefault("worker.sweep_interval", 5*time.Minute)
	v.SetDefault("worker.concurrency", 8)
	v.SetDefault("worker.batch_size", 500)
	v.SetDefault("worker.repair", false)
}
