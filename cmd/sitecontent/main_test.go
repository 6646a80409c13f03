package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goliatone/go-sitecontent/pkg/testsupport"
)

func setupSite(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	contentDir := filepath.Join(root, "content")
	if err := testsupport.WritePageFile(contentDir, "pages/home.json", testsupport.PageDocument("home", 1)); err != nil {
		t.Fatalf("write page: %v", err)
	}
	t.Setenv("SITE_CONTENT_DIR", contentDir)
	t.Setenv("SITE_VERSIONS_DIR", filepath.Join(root, "versions"))
	t.Setenv("SITE_LOG_PROVIDER", "noop")
	t.Setenv("SITE_USE_DATABASE", "false")
	return contentDir
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestGetPrintsPage(t *testing.T) {
	setupSite(t)
	out, err := run(t, "get", "home", "--locale", "es")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !strings.Contains(out, `"pageId": "home"`) {
		t.Fatalf("expected page JSON, got %s", out)
	}
}

func TestGetRejectsUnknownLocale(t *testing.T) {
	setupSite(t)
	if _, err := run(t, "get", "home", "--locale", "fr"); err == nil {
		t.Fatalf("expected locale error")
	}
}

func TestSaveThenHistory(t *testing.T) {
	setupSite(t)
	if _, err := run(t, "save", "home", "hero.headline", "Hola CLI", "--locale", "es", "--author", "ops"); err != nil {
		t.Fatalf("save: %v", err)
	}
	out, err := run(t, "history", "home")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if !strings.HasPrefix(out, "v2\t") || !strings.Contains(out, "ops") {
		t.Fatalf("unexpected history output: %q", out)
	}

	out, err = run(t, "get", "home", "--locale", "es")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !strings.Contains(out, "Hola CLI") {
		t.Fatalf("expected saved headline, got %s", out)
	}
}

func TestLinksReportsBrokenLinks(t *testing.T) {
	setupSite(t)
	if _, err := run(t, "save", "home", "hero.cta.link", "/gone"); err != nil {
		t.Fatalf("save: %v", err)
	}
	out, err := run(t, "links", "home")
	if err == nil {
		t.Fatalf("expected broken link error")
	}
	if !strings.Contains(out, "/gone") {
		t.Fatalf("expected warning for /gone, got %q", out)
	}
}

func TestValidateFiles(t *testing.T) {
	contentDir := setupSite(t)
	good := filepath.Join(contentDir, "pages", "home.json")
	bad := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(bad, []byte(`{"meta":{"pageId":"bad","lastUpdated":"2026-01-01T00:00:00Z","version":-1}}`), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	out, err := run(t, "validate", good)
	if err != nil {
		t.Fatalf("validate good: %v (%s)", err, out)
	}
	out, err = run(t, "validate", bad)
	if err == nil {
		t.Fatalf("expected validation failure")
	}
	if !strings.Contains(out, "meta.version") {
		t.Fatalf("expected meta.version issue, got %q", out)
	}
}
