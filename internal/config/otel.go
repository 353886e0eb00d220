package config

// Otel configures trace export. An empty CollectorURL disables the exporter.
type Otel struct {
	ServiceName   string  `env:"OTEL_SERVICE_NAME" envDefault:"sales-tracker"`
	CollectorURL  string  `env:"OTEL_COLLECTOR_URL"`
	Insecure      bool    `env:"OTEL_INSECURE"`
	TraceIDRatio  float64 `env:"OTEL_TRACE_ID_RATIO" envDefault:"0.1"`
	CollectorAuth string  `env:"OTEL_COLLECTOR_AUTH"`
}
