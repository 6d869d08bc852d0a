// Package config provides the gosolve service configuration: defaults,
// YAML loading, config file discovery and validation.
package config
