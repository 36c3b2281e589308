// Package logging defines the Logger interface consumed by every planmesh
// component plus slog-backed and no-op implementations. Components never log
// through slog directly; they accept a logging.Logger so callers control the
// sink and format.
package logging
