// Package testutil provides shared test helpers: fluent builders for
// sessions and planning requests plus fixture helpers for busy calendars.
// It is internal so the helpers never leak into the public API surface.
package testutil
