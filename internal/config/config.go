package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds the configuration for the scheduler service.
type Config struct {
	DB struct {
		Host     string `mapstructure:"host"`
		Port     int    `mapstructure:"port"`
		User     string `mapstructure:"user"`
		Password string `mapstructure:"password"`
		Name     string `mapstructure:"name"`
		SSLMode  string `mapstructure:"sslmode"`
	} `mapstructure:"db"`
	Redis struct {
		Addr     string `mapstructure:"addr"`
		PoolSize int    `mapstructure:"pool_size"`
	} `mapstructure:"redis"`
	HTTP struct {
		Addr string `mapstructure:"addr"`
	} `mapstructure:"http"`
	Scheduler struct {
		// Timezone defines the calendar-day boundary for all once-per-day
		// semantics. Empty means the process-local zone.
		Timezone              string `mapstructure:"timezone"`
		ScheduleWindowMinutes int    `mapstructure:"schedule_window_minutes"`
		LockTTLSeconds        int    `mapstructure:"lock_ttl_seconds"`
	} `mapstructure:"scheduler"`
}

// LoadConfig loads the configuration from a file and the environment.
func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.SetEnvPrefix("renotimeline")
	viper.AutomaticEnv()

	viper.SetDefault("db.host", "localhost")
	viper.SetDefault("db.port", 5432)
	viper.SetDefault("db.user", "postgres")
	viper.SetDefault("db.name", "renotimeline")
	viper.SetDefault("db.sslmode", "disable")
	viper.SetDefault("redis.addr", "localhost:6379")
	viper.SetDefault("redis.pool_size", 100)
	viper.SetDefault("http.addr", ":8080")
	viper.SetDefault("scheduler.schedule_window_minutes", 15)
	viper.SetDefault("scheduler.lock_ttl_seconds", 120)

	if err := viper.ReadInConfig(); err != nil {
		// A missing config file is fine; defaults and env cover everything.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// DSN renders the postgres connection string for gorm.
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=%s",
		c.DB.Host, c.DB.User, c.DB.Password, c.DB.Name, c.DB.Port, c.DB.SSLMode)
}

// Location resolves the scheduler timezone.
func (c *Config) Location() (*time.Location, error) {
	if c.Scheduler.Timezone == "" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Scheduler.Timezone)
}

func (c *Config) ScheduleWindow() time.Duration {
	return time.Duration(c.Scheduler.ScheduleWindowMinutes) * time.Minute
}

func (c *Config) LockTTL() time.Duration {
	return time.Duration(c.Scheduler.LockTTLSeconds) * time.Second
}
