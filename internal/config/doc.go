// Package config loads, validates, and normalizes sitevault configuration.
//
// Configuration lives in a TOML file resolved from an explicit path,
// ~/.config/sitevault/config.toml, or ./sitevault.toml. Defaults cover every
// field so a missing file still yields a runnable configuration once the
// archive root is set. Load expands ~ in path fields and rejects invalid
// values up front so stages can trust the config they receive.
package config
