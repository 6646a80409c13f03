package logging

import (
	"context"
	"testing"

	"github.com/goliatone/go-sitecontent/pkg/interfaces"
)

type recordingLogger struct {
	fields []map[string]any
}

func (r *recordingLogger) Trace(string, ...any) {}
func (r *recordingLogger) Debug(string, ...any) {}
func (r *recordingLogger) Info(string, ...any)  {}
func (r *recordingLogger) Warn(string, ...any)  {}
func (r *recordingLogger) Error(string, ...any) {}
func (r *recordingLogger) Fatal(string, ...any) {}

func (r *recordingLogger) WithFields(fields map[string]any) interfaces.Logger {
	copied := make(map[string]any, len(fields))
	for k, v := range fields {
		copied[k] = v
	}
	r.fields = append(r.fields, copied)
	return r
}

func (r *recordingLogger) WithContext(context.Context) interfaces.Logger {
	return r
}

type stubProvider struct {
	requested []string
	logger    interfaces.Logger
}

func (s *stubProvider) GetLogger(name string) interfaces.Logger {
	s.requested = append(s.requested, name)
	return s.logger
}

func TestModuleLoggerFallsBackToNoOp(t *testing.T) {
	logger := ModuleLogger(nil, contentModule)
	if _, ok := logger.(noopLogger); !ok {
		t.Fatalf("expected noopLogger fallback, got %T", logger)
	}
	logger.WithContext(context.Background()).Info("noop")
}

func TestModuleLoggerAnnotatesModule(t *testing.T) {
	rec := &recordingLogger{}
	provider := &stubProvider{logger: rec}

	_ = VersionsLogger(provider)

	if len(provider.requested) != 1 || provider.requested[0] != versionsModule {
		t.Fatalf("expected module %s, got %v", versionsModule, provider.requested)
	}
	if rec.fields[0]["module"] != versionsModule {
		t.Fatalf("expected module field %s, got %v", versionsModule, rec.fields[0]["module"])
	}
}

func TestModuleLoggerDefaultsToRoot(t *testing.T) {
	rec := &recordingLogger{}
	provider := &stubProvider{logger: rec}

	_ = ModuleLogger(provider, "")

	if provider.requested[0] != rootModule {
		t.Fatalf("expected root module request, got %v", provider.requested)
	}
}

func TestWithPageContextSkipsEmptyValues(t *testing.T) {
	rec := &recordingLogger{}
	_ = WithPageContext(rec, "home", "", "file")

	if len(rec.fields) != 1 {
		t.Fatalf("expected a single WithFields call, got %d", len(rec.fields))
	}
	got := rec.fields[0]
	if got[fieldPageID] != "home" || got[fieldSource] != "file" {
		t.Fatalf("unexpected fields %v", got)
	}
	if _, ok := got[fieldLocale]; ok {
		t.Fatalf("empty locale should be skipped")
	}
}
