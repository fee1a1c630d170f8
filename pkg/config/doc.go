// Package config provides configuration management for the ragkit bridge.
//
// This package handles loading, validating, and managing configuration from
// YAML files with environment variable overrides. Every field has a sensible
// default so the bridge can run without any configuration file at all.
//
// # Configuration Loading
//
// Configuration can be loaded in two ways:
//
//  1. From a YAML file only:
//     cfg, err := config.LoadConfig("config.yaml")
//
//  2. From a YAML file with environment variable overrides:
//     cfg, err := config.LoadConfigWithEnvOverrides("config.yaml")
//
// # Environment Variable Overrides
//
// Environment variables follow the naming convention RAGKIT_SECTION_FIELD.
// For example:
//
//   - RAGKIT_BACKEND_MODE overrides backend.mode
//   - RAGKIT_BRIDGE_LISTEN_ADDRESS overrides bridge.listen_address
//   - RAGKIT_TELEMETRY_LOGGING_LEVEL overrides telemetry.logging.level
//
// Environment variables always take precedence over file-based configuration.
//
// # Configuration Precedence
//
// Configuration values are applied in the following order (later overrides earlier):
//
//  1. Built-in defaults (DefaultConfig)
//  2. YAML file
//  3. Environment variables
//
// # Hot Reload
//
// Watcher observes the configuration file with fsnotify and calls back with the
// freshly loaded configuration. Only settings that are safe to change at
// runtime (the log level) are applied by the bridge; everything else takes
// effect on the next start.
package config
