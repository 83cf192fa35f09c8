package library

import (
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds the handful of knobs this application has. Values come from a
// YAML file when one exists, with environment variables taking precedence.
type Config struct {
	DBPath         string        `yaml:"db_path" env:"LIBRARY_DB_PATH" env-default:"library.db"`
	PageSize       int           `yaml:"page_size" env:"LIBRARY_PAGE_SIZE" env-default:"50"`
	OverdueRefresh time.Duration `yaml:"overdue_refresh" env:"LIBRARY_OVERDUE_REFRESH" env-default:"5m"`
	SecretCode     string        `yaml:"secret_code" env:"LIBRARY_SECRET_CODE" env-default:"YDT-library-mgmt-code"`
	LogLevel       string        `yaml:"log_level" env:"LIBRARY_LOG_LEVEL" env-default:"info"`
	LogPretty      bool          `yaml:"log_pretty" env:"LIBRARY_LOG_PRETTY" env-default:"true"`
}

// LoadConfig reads configuration from path, or from the environment alone
// when the file does not exist.
func LoadConfig(path string) (Config, error) {
	var cfg Config
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := cleanenv.ReadConfig(path, &cfg); err != nil {
				return Config{}, err
			}
			return cfg, nil
		}
	}
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
