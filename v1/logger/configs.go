package logger

// Config defines the configuration for the shared logger.
type Config struct {
	// Level is the minimum level that gets logged.
	// One of "debug", "info", "warn", "error"
	// Default: "info"
	Level string `yaml:"level" env:"LOG_LEVEL"`

	// ServiceName is attached to every log entry as the "service" field.
	// Useful when several services log into one aggregation pipeline.
	ServiceName string `yaml:"service_name" env:"LOG_SERVICE_NAME"`

	// Development switches to the human-readable console encoding with
	// colored levels instead of production JSON
	// Default: false
	Development bool `yaml:"development" env:"LOG_DEVELOPMENT"`
}

// Default values for configuration
const (
	DefaultLevel = "info"
)
