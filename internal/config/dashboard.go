package config

type Dashboard struct {
	Currency string `env:"DASHBOARD_CURRENCY" envDefault:"UGX"`
}
