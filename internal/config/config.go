package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	DBDriver      string `mapstructure:"db_driver"`
	DBHost        string `mapstructure:"db_host"`
	DBPort        string `mapstructure:"db_port"`
	DBUser        string `mapstructure:"db_user"`
	DBPassword    string `mapstructure:"db_password"`
	DBName        string `mapstructure:"db_name"`
	DBPath        string `mapstructure:"db_path"`
	RedisHost     string `mapstructure:"redis_host"`
	RedisPort     string `mapstructure:"redis_port"`
	SessionSecret string `mapstructure:"session_secret"`
	GinMode       string `mapstructure:"gin_mode"`
	OpenAIAPIKey  string `mapstructure:"openai_api_key"`
	LogLevel      string `mapstructure:"log_level"`
	HTTPAddr      string `mapstructure:"http_addr"`
}

var defaults = map[string]string{
	"db_driver":      "mysql",
	"db_host":        "localhost",
	"db_port":        "3306",
	"db_user":        "taskuser",
	"db_password":    "taskpassword",
	"db_name":        "task_management",
	"db_path":        "teamtasks.db",
	"redis_host":     "localhost",
	"redis_port":     "6379",
	"session_secret": "default-secret-key-change-me",
	"gin_mode":       "debug",
	"openai_api_key": "",
	"log_level":      "info",
	"http_addr":      ":8080",
}

// Load reads defaults, then an optional YAML file (TEAMTASKS_CONFIG or ./config.yaml),
// then environment variables such as DB_HOST or REDIS_PORT.
func Load() (*Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
		// Bind explicitly so Unmarshal sees env values for keys absent from the file.
		if err := v.BindEnv(key, strings.ToUpper(key)); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", key, err)
		}
	}

	path := os.Getenv("TEAMTASKS_CONFIG")
	if path == "" {
		path = "config.yaml"
	}
	if err := loadFile(v, path); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}

func loadFile(v *viper.Viper, path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}

	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config %s: %w", path, err)
	}
	return nil
}

// IsProduction reports whether gin runs in release mode.
func (c *Config) IsProduction() bool {
	return c.GinMode == "release"
}
