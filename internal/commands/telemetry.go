package commands

import (
	"context"
	"time"

	command "github.com/goliatone/go-command"

	"github.com/goliatone/go-sitecontent/internal/logging"
	"github.com/goliatone/go-sitecontent/pkg/interfaces"
)

// TelemetryStatus is the outcome category of a command execution.
type TelemetryStatus string

const (
	TelemetryStatusSuccess      TelemetryStatus = "success"
	TelemetryStatusFailed       TelemetryStatus = "failed"
	TelemetryStatusContextError TelemetryStatus = "context_error"
)

// SlowCommandThreshold is the duration past which a successful command is reported at warn level.
const SlowCommandThreshold = 2 * time.Second

// TelemetryInfo is passed to telemetry callbacks once a command finishes.
type TelemetryInfo struct {
	Command   string
	Operation string
	Fields    map[string]any
	Duration  time.Duration
	Error     error
	Status    TelemetryStatus
	Logger    interfaces.Logger
}

// Slow reports whether a successful run crossed SlowCommandThreshold.
func (i TelemetryInfo) Slow() bool {
	return i.Status == TelemetryStatusSuccess && i.Duration >= SlowCommandThreshold
}

// Telemetry is an optional post-execution callback.
type Telemetry[T command.Message] func(ctx context.Context, msg T, info TelemetryInfo)

// DefaultTelemetry reports the duration of every command. Fast successes go to debug so that
// routine saves stay quiet; slow ones go to warn and failures to error.
func DefaultTelemetry[T command.Message](logger interfaces.Logger) Telemetry[T] {
	logger = logging.Ensure(logger)
	return func(_ context.Context, _ T, info TelemetryInfo) {
		entry := logging.WithFields(logger, info.Fields)
		args := []any{"status", string(info.Status), "duration_ms", info.Duration.Milliseconds()}
		switch {
		case info.Slow():
			entry.Warn("command finished slowly", append(args, "threshold_ms", SlowCommandThreshold.Milliseconds())...)
		case info.Status == TelemetryStatusSuccess:
			entry.Debug("command finished", args...)
		default:
			entry.Error("command did not finish", append(args, "error", info.Error)...)
		}
	}
}
