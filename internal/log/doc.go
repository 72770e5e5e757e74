// Package log provides structured logging helpers for pagetree.
//
// Crawlers log values of unbounded size: page titles, extracted text,
// very long URLs. TrimHandler wraps any slog.Handler and truncates
// oversized string attributes before they reach the output, so a single
// pathological page cannot flood the logs.
package log
