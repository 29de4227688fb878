package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server  ServerConfig
	DB      DBConfig
	Redis   RedisConfig
	Storage StorageConfig
	Worker  WorkerConfig
}

type ServerConfig struct {
	Port            string
	BodyLimit       int
	ShutdownTimeout time.Duration
}

type DBConfig struct {
	Host string
	Port string
	Name string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type StorageConfig struct {
	// Root is the directory blobs are written under. Created on first write
	// if absent.
	Root string
}

type WorkerConfig struct {
	Concurrency int
}

// Load reads configuration from environment variables, falling back to the
// documented defaults.
func Load() *Config {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("PORT", "5000")
	v.SetDefault("SERVER_BODY_LIMIT_MB", 50)
	v.SetDefault("SERVER_SHUTDOWN_TIMEOUT", "10s")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "27017")
	v.SetDefault("DB_DATABASE", "files_manager")
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("FOLDER_PATH", "/tmp/files_manager")
	v.SetDefault("WORKER_CONCURRENCY", 4)

	return &Config{
		Server: ServerConfig{
			Port:            v.GetString("PORT"),
			BodyLimit:       v.GetInt("SERVER_BODY_LIMIT_MB") * 1024 * 1024,
			ShutdownTimeout: v.GetDuration("SERVER_SHUTDOWN_TIMEOUT"),
		},
		DB: DBConfig{
			Host: v.GetString("DB_HOST"),
			Port: v.GetString("DB_PORT"),
			Name: v.GetString("DB_DATABASE"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetString("REDIS_PORT"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		Storage: StorageConfig{
			Root: v.GetString("FOLDER_PATH"),
		},
		Worker: WorkerConfig{
			Concurrency: v.GetInt("WORKER_CONCURRENCY"),
		},
	}
}

func (c DBConfig) URI() string {
	return fmt.Sprintf("mongodb://%s:%s", c.Host, c.Port)
}

func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}
