package log

import (
	"fmt"
	"strings"
)

// Config defines logging configuration.
type Config struct {
	// Level sets the minimum log level
	Level string `json:"level" yaml:"level" mapstructure:"level"`

	// Format sets the output format (json, text)
	Format string `json:"format" yaml:"format" mapstructure:"format"`

	// Output is stderr, stdout, null or a file path
	Output string `json:"output" yaml:"output" mapstructure:"output"`

	// EnableCaller adds the call site to text output
	EnableCaller bool `json:"enable_caller" yaml:"enable_caller" mapstructure:"enable_caller"`

	// NoColor disables colored text output
	NoColor bool `json:"no_color" yaml:"no_color" mapstructure:"no_color"`

	// RedactedFields lists field keys whose values are masked
	RedactedFields []string `json:"redacted_fields" yaml:"redacted_fields" mapstructure:"redacted_fields"`
}

// DefaultConfig returns a default configuration.
func DefaultConfig() *Config {
	return &Config{
		Level:  "warn",
		Format: "text",
		Output: "stderr",
	}
}

// ApplyConfig creates a logger from a configuration.
func ApplyConfig(config *Config) (Logger, error) {
	if config == nil {
		config = DefaultConfig()
	}

	level, err := ParseLevel(config.Level)
	if err != nil {
		return nil, err
	}

	options := []LoggerOption{WithLevel(level)}

	switch strings.ToLower(config.Format) {
	case "json":
		options = append(options, WithFormatter(NewJSONFormatter()))
	case "", "text":
		options = append(options, WithFormatter(&TextFormatter{
			TimestampFormat: "15:04:05.000",
			DisableColors:   config.NoColor,
			ShowCaller:      config.EnableCaller,
		}))
	default:
		return nil, fmt.Errorf("unsupported log format: %s", config.Format)
	}

	output, err := createOutput(config.Output)
	if err != nil {
		return nil, err
	}
	options = append(options, WithOutput(output))

	if len(config.RedactedFields) > 0 {
		options = append(options, WithHook(NewRedactionHook(config.RedactedFields)))
	}

	return NewLogger(options...), nil
}

func createOutput(target string) (Output, error) {
	switch strings.ToLower(target) {
	case "", "stderr":
		return NewConsoleOutput(WithStderr()), nil
	case "stdout":
		return NewConsoleOutput(WithStdout()), nil
	case "null", "none":
		return NewNullOutput(), nil
	default:
		return NewFileOutput(target)
	}
}

// ParseLevel parses a level string into a Level.
func ParseLevel(level string) (Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return DebugLevel, nil
	case "", "info":
		return InfoLevel, nil
	case "warn", "warning":
		return WarnLevel, nil
	case "error":
		return ErrorLevel, nil
	default:
		return InfoLevel, fmt.Errorf("unknown log level: %s", level)
	}
}
