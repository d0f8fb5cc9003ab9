// Package cli provides command-line interface setup and configuration
// for the kikitori application. It handles flag parsing, command
// creation, configuration management using cobra and viper, logger
// construction and wiring the pipeline stages from configuration.
package cli
