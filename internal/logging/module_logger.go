package logging

import (
	"context"
	"strings"

	"github.com/goliatone/go-sitecontent/pkg/interfaces"
)

const (
	rootModule     = "site"
	contentModule  = "site.content"
	versionsModule = "site.versions"
	adminModule    = "site.admin"
	linksModule    = "site.links"
	httpModule     = "site.http"
)

const (
	fieldPageID = "page_id"
	fieldLocale = "locale"
	fieldSource = "source"
)

// ModuleLogger returns a logger tagged with the module name, or a no-op logger when
// provider is nil.
func ModuleLogger(provider interfaces.LoggerProvider, module string) interfaces.Logger {
	if module == "" {
		module = rootModule
	}

	logger := NoOp()
	if provider != nil {
		if provided := provider.GetLogger(module); provided != nil {
			logger = provided
		}
	}

	return WithFields(logger, map[string]any{
		"module": module,
	})
}

// QualifyModule prefixes a short module name ("admin") with the site root ("site.admin").
func QualifyModule(name string) string {
	name = strings.TrimSpace(name)
	if name == "" || name == rootModule || strings.HasPrefix(name, rootModule+".") {
		return name
	}
	return rootModule + "." + name
}

// ContentLogger is used by the content service and sources.
func ContentLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, contentModule)
}

// VersionsLogger is used by the version history service.
func VersionsLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, versionsModule)
}

// AdminLogger is used by the admin save pipeline and commands.
func AdminLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, adminModule)
}

// LinksLogger is used when link audits are reported.
func LinksLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, linksModule)
}

// HTTPLogger is used by the HTTP handlers.
func HTTPLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, httpModule)
}

// WithPageContext adds page id, locale and source fields. Empty values are skipped.
func WithPageContext(logger interfaces.Logger, pageID, locale, source string) interfaces.Logger {
	fields := map[string]any{}
	if trimmed := strings.TrimSpace(pageID); trimmed != "" {
		fields[fieldPageID] = trimmed
	}
	if trimmed := strings.TrimSpace(locale); trimmed != "" {
		fields[fieldLocale] = trimmed
	}
	if trimmed := strings.TrimSpace(source); trimmed != "" {
		fields[fieldSource] = trimmed
	}
	return WithFields(logger, fields)
}

// NoOp returns a logger that drops every entry.
func NoOp() interfaces.Logger {
	return noopLogger{}
}

type noopLogger struct{}

var _ interfaces.Logger = noopLogger{}

func (noopLogger) Trace(string, ...any) {}
func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
func (noopLogger) Fatal(string, ...any) {}

func (n noopLogger) WithFields(map[string]any) interfaces.Logger {
	return n
}

func (n noopLogger) WithContext(context.Context) interfaces.Logger {
	return n
}
