// Package config defines the runtime configuration shared by all nbctl
// commands.
//
// A [Config] is assembled in layers: built-in defaults, an optional YAML
// file, environment variables, and finally command-line flags applied by
// the handlers through [Config.ApplyOverrides]. Timeouts are read from the
// environment by [LoadTimeouts].
package config
