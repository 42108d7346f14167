// Package logging builds slog loggers for the importer and centralizes the
// structured field vocabulary used across pipeline stages.
//
// Loggers write to stdout/stderr plus an optional log file, in either console
// or JSON format. Attr constructors mirror the slog versions so call sites
// stay terse, and WithContext augments a logger with the stage, location, and
// digest fields carried in a context by the services package.
package logging
