package exporter

import "time"

// Config defines the configuration for the metrics exporter. It covers both
// export paths: the pull-based scrape endpoint and the push-gateway loop
// (enabled when PushGatewayURL is set).
type Config struct {
	// ListenAddr is the address the scrape endpoint binds to
	// Default: ":3312"
	ListenAddr string `yaml:"listen_addr" env:"METRICS_LISTEN_ADDR"`

	// Format selects the text exposition dialect served to scrapers.
	// One of "open_metrics", "open_metrics_for_prometheus", "prometheus"
	// Default: "open_metrics_for_prometheus" (understood by stock Prometheus)
	Format string `yaml:"format" env:"METRICS_FORMAT"`

	// PushGatewayURL is the full push-gateway endpoint URL, including job
	// and instance path segments. Leave empty to disable pushing.
	PushGatewayURL string `yaml:"push_gateway_url" env:"METRICS_PUSH_GATEWAY_URL"`

	// PushInterval is the period between push-gateway uploads
	// Default: 10 seconds
	PushInterval time.Duration `yaml:"push_interval" env:"METRICS_PUSH_INTERVAL"`

	// ShutdownTimeout bounds the connection-draining phase of a graceful
	// shutdown; connections still open afterwards are closed forcefully
	// Default: 5 seconds
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"METRICS_SHUTDOWN_TIMEOUT"`
}

// Default values for configuration
const (
	DefaultListenAddr      = ":3312"
	DefaultFormat          = "open_metrics_for_prometheus"
	DefaultPushInterval    = 10 * time.Second
	DefaultShutdownTimeout = 5 * time.Second
)

// withDefaults fills unset fields with the package defaults.
func (c Config) withDefaults() Config {
	if c.ListenAddr == "" {
		c.ListenAddr = DefaultListenAddr
	}
	if c.Format == "" {
		c.Format = DefaultFormat
	}
	if c.PushInterval <= 0 {
		c.PushInterval = DefaultPushInterval
	}
	if c.ShutdownTimeout <= 0 {
		c.ShutdownTimeout = DefaultShutdownTimeout
	}
	return c
}
