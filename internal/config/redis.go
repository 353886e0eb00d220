package config

import "time"

// Redis configures the dashboard summary cache. An empty address disables it.
type Redis struct {
	Addr       string        `env:"REDIS_ADDR"`
	Password   string        `env:"REDIS_PASSWORD"`
	DB         int           `env:"REDIS_DB" envDefault:"0"`
	SummaryKey string        `env:"REDIS_SUMMARY_KEY" envDefault:"sales-tracker:dashboard:summary"`
	SummaryTTL time.Duration `env:"REDIS_SUMMARY_TTL" envDefault:"30s"`
}
