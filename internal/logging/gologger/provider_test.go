package gologger

import (
	"context"
	"testing"

	glog "github.com/goliatone/go-logger/glog"
)

func TestNewProviderRejectsUnknownFormat(t *testing.T) {
	if _, err := NewProvider(Config{Format: "xml"}); err == nil {
		t.Fatalf("expected error for unsupported format")
	}
}

func TestProviderReturnsUsableLogger(t *testing.T) {
	p, err := NewProvider(Config{Level: "debug", Format: "console"})
	if err != nil {
		t.Fatalf("NewProvider: %v", err)
	}
	logger := p.GetLogger("site.content")
	if logger == nil {
		t.Fatal("expected logger")
	}
	logger.WithContext(context.Background()).Debug("content.loaded", "page_id", "home")
}

func TestProviderReusesModuleLoggers(t *testing.T) {
	p, err := NewProvider(Config{Format: "json", Focus: []string{"admin", " site.links ", ""}})
	if err != nil {
		t.Fatalf("NewProvider: %v", err)
	}
	if p.GetLogger("site.admin") != p.GetLogger(" site.admin ") {
		t.Fatal("expected the same logger for repeated module lookups")
	}
	focus := focusModules([]string{"admin", " site.links ", ""})
	if len(focus) != 2 || focus[0] != "site.admin" || focus[1] != "site.links" {
		t.Fatalf("unexpected focus modules %v", focus)
	}
}

func TestAdapterClonesFieldsAndDelegates(t *testing.T) {
	stub := &stubLogger{}
	adapted := wrap(stub)

	adapted.Info("info")
	adapted.Warn("warn")

	fields := map[string]any{"page_id": "home"}
	adapted.(*adapter).WithFields(fields)
	fields["page_id"] = "team"

	if len(stub.fields) != 1 || stub.fields[0]["page_id"] != "home" {
		t.Fatalf("expected cloned fields, got %v", stub.fields)
	}
	if len(stub.calls) != 2 || stub.calls[0] != "info" || stub.calls[1] != "warn" {
		t.Fatalf("unexpected calls %v", stub.calls)
	}
}

type stubLogger struct {
	calls  []string
	fields []map[string]any
}

var _ glog.Logger = (*stubLogger)(nil)
var _ glog.FieldsLogger = (*stubLogger)(nil)

func (s *stubLogger) Trace(string, ...any) { s.calls = append(s.calls, "trace") }
func (s *stubLogger) Debug(string, ...any) { s.calls = append(s.calls, "debug") }
func (s *stubLogger) Info(string, ...any)  { s.calls = append(s.calls, "info") }
func (s *stubLogger) Warn(string, ...any)  { s.calls = append(s.calls, "warn") }
func (s *stubLogger) Error(string, ...any) { s.calls = append(s.calls, "error") }
func (s *stubLogger) Fatal(string, ...any) { s.calls = append(s.calls, "fatal") }

func (s *stubLogger) WithContext(context.Context) glog.Logger {
	return s
}

func (s *stubLogger) WithFields(fields map[string]any) glog.Logger {
	copied := make(map[string]any, len(fields))
	for k, v := range fields {
		copied[k] = v
	}
	s.fields = append(s.fields, copied)
	return s
}
