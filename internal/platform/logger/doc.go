// Package logger provides structured logging functionality for the application.
//
// It utilizes Go's standard library log/slog package to implement structured JSON logging
// with configurable log levels. Loggers travel in context.Context so that request- and
// unit-of-work-scoped attributes reach the data-access layer.
package logger
