// Package utils holds the CLI plumbing shared by every changetree command.
//
// LoggerFactory builds zap loggers, ConfigurationLoader layers embedded
// defaults, configuration files and environment variables through Viper, and
// CommandContextAccessor carries per-run values through cobra contexts.
package utils
