package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App struct {
		Name string `envconfig:"APP_NAME" default:"Spendviz"`
		Port int    `envconfig:"PORT" default:"8080"`
		Env  string `envconfig:"APP_ENV" default:"development"`
	}

	Server struct {
		Timeout time.Duration `envconfig:"SERVER_TIMEOUT" default:"30s"`
	}

	Upload struct {
		MaxBytes              int64 `envconfig:"UPLOAD_MAX_BYTES" default:"33554432"`
		RatePerMinute         int   `envconfig:"UPLOAD_RATE_PER_MINUTE" default:"20"`
		DownloadRatePerMinute int   `envconfig:"DOWNLOAD_RATE_PER_MINUTE" default:"120"`
	}

	Dataset struct {
		TTL time.Duration `envconfig:"DATASET_TTL" default:"30m"`
	}

	CORS struct {
		AllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`
	}

	Report struct {
		// Source is the CSV the terminal menu opens when no path is given.
		Source      string `envconfig:"SPEND_CSV" default:"custom_invoice_line_report.csv"`
		ExportDir   string `envconfig:"EXPORT_DIR" default:"."`
		TopProducts int    `envconfig:"TOP_PRODUCTS" default:"20"`
	}
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.App.Port)
}

// Production reports whether the app runs behind TLS in production.
func (c *Config) Production() bool {
	return c.App.Env == "production"
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	return &cfg, nil
}
