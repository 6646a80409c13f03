// Package interfaces holds the contracts host applications implement to plug into the site
// content layer.
package interfaces

import "context"

// LoggerProvider resolves the logger for a site module such as "site.content" or "site.admin".
type LoggerProvider interface {
	GetLogger(name string) Logger
}

// Logger is the leveled logger every module writes to. Its method set matches
// github.com/goliatone/go-logger loggers.
type Logger interface {
	Trace(msg string, args ...any)
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	Fatal(msg string, args ...any)
	WithContext(ctx context.Context) Logger
}

// FieldsLogger is optional. Loggers implementing it receive page_id, locale and source as
// persistent fields; others get the fields dropped.
type FieldsLogger interface {
	WithFields(fields map[string]any) Logger
}
