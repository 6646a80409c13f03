package commands

import (
	"strings"

	"github.com/goliatone/go-sitecontent/internal/logging"
	"github.com/goliatone/go-sitecontent/pkg/interfaces"
)

const defaultCommandArea = "admin"

// CommandLogger returns the logger for the command handlers of one site area. Handlers for the
// admin area log under site.admin.commands.
func CommandLogger(provider interfaces.LoggerProvider, area string) interfaces.Logger {
	area = strings.ToLower(strings.TrimSpace(area))
	if area == "" {
		area = defaultCommandArea
	}
	logger := logging.ModuleLogger(provider, logging.QualifyModule(area)+".commands")
	return logging.WithFields(logger, map[string]any{
		"dispatch": "command",
		"area":     area,
	})
}
