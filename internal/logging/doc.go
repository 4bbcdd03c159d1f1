// Package logging constructs slog loggers for the voxver CLI.
//
// Two handler formats are supported: a console handler that renders
// "timestamp LEVEL component: message key=value" lines, and a JSON handler
// for machine consumption. Output fans out to stderr and an append-only log
// file under the configured log directory; stdout is reserved for command
// output so `--json` pipelines stay clean.
package logging
