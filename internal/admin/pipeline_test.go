package admin_test

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/goliatone/go-sitecontent/content"
	"github.com/goliatone/go-sitecontent/internal/admin"
	"github.com/goliatone/go-sitecontent/internal/links"
	"github.com/goliatone/go-sitecontent/internal/pages"
	"github.com/goliatone/go-sitecontent/internal/sources"
	"github.com/goliatone/go-sitecontent/internal/versions"
	"github.com/goliatone/go-sitecontent/pkg/testsupport"
)

type fixture struct {
	source   *sources.MemorySource
	content  pages.Service
	versions versions.Service
	pipeline *admin.Pipeline
}

func newFixture(t *testing.T, versionStore versions.Store, opts ...admin.PipelineOption) fixture {
	t.Helper()
	src := sources.NewMemorySource()
	src.Put("home", testsupport.PageDocument("home", 3))
	contentSvc := pages.NewService(src)
	versionSvc := versions.NewService(versionStore)
	clock := admin.WithClock(func() time.Time { return time.Date(2026, 6, 1, 8, 0, 0, 0, time.UTC) })
	return fixture{
		source:   src,
		content:  contentSvc,
		versions: versionSvc,
		pipeline: admin.NewPipeline(contentSvc, versionSvc, append([]admin.PipelineOption{clock}, opts...)...),
	}
}

func headline(t *testing.T, page *content.ContentPage) map[string]any {
	t.Helper()
	return page.Content["hero"].(map[string]any)["headline"].(map[string]any)
}

func TestSaveSpanishHeadlineLeavesEnglishIdentical(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, versions.NewMemoryStore())

	before, err := f.content.Get(ctx, "home", content.Spanish)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	beforeEN, _ := json.Marshal(headline(t, before)["en"])

	result, err := f.pipeline.Save(ctx, admin.SaveRequest{
		PageID: "home",
		Field:  "hero.headline",
		Value:  "¡Bienvenidos!",
		Locale: content.Spanish,
		Author: "editor",
	})
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	after, err := f.content.Get(ctx, "home", content.Spanish)
	if err != nil {
		t.Fatalf("get after save: %v", err)
	}
	afterEN, _ := json.Marshal(headline(t, after)["en"])
	if string(beforeEN) != string(afterEN) {
		t.Fatalf("english headline changed: %s -> %s", beforeEN, afterEN)
	}
	if headline(t, after)["es"] != "¡Bienvenidos!" {
		t.Fatalf("expected spanish headline updated, got %v", headline(t, after)["es"])
	}
	if headline(t, before)["es"] != "Hola" {
		t.Fatalf("expected previously cached page untouched")
	}

	if after.Meta.Version != 4 {
		t.Fatalf("expected version bumped to 4, got %d", after.Meta.Version)
	}
	if after.Meta.LastUpdated != "2026-06-01T08:00:00Z" {
		t.Fatalf("unexpected lastUpdated %q", after.Meta.LastUpdated)
	}
	if result.Entry == nil || result.Entry.Version != 4 || result.Entry.Author != "editor" {
		t.Fatalf("expected history entry for version 4, got %+v", result.Entry)
	}

	latest, _ := f.versions.GetLatestVersion(ctx, "home")
	if latest == nil || latest.Version != 4 {
		t.Fatalf("expected latest history version 4, got %+v", latest)
	}
}

func TestSaveFieldsSingleVersionBump(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, versions.NewMemoryStore())

	result, err := f.pipeline.SaveFields(ctx, admin.SaveFieldsRequest{
		PageID: "home",
		Locale: content.English,
		Fields: []admin.FieldPatch{
			{Field: "hero.headline", Value: "Hi"},
			{Field: "hero.subtitle", Value: "Made by hand"},
		},
	})
	if err != nil {
		t.Fatalf("save fields: %v", err)
	}
	if result.Page.Meta.Version != 4 {
		t.Fatalf("expected one bump, got %d", result.Page.Meta.Version)
	}
	history, _ := f.versions.GetHistory(ctx, "home")
	if len(history.Versions) != 1 {
		t.Fatalf("expected one history entry, got %d", len(history.Versions))
	}
}

func TestSaveRejectsBadRequests(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, versions.NewMemoryStore())

	if _, err := f.pipeline.Save(ctx, admin.SaveRequest{PageID: "home", Field: "hero.headline", Value: "x", Locale: "fr"}); err == nil {
		t.Fatalf("expected locale error")
	}
	if _, err := f.pipeline.Save(ctx, admin.SaveRequest{PageID: "home", Field: "", Value: "x", Locale: content.English}); !errors.Is(err, admin.ErrFieldRequired) {
		t.Fatalf("expected ErrFieldRequired, got %v", err)
	}
	if _, err := f.pipeline.Save(ctx, admin.SaveRequest{PageID: "ghost", Field: "a", Value: "x", Locale: content.English}); !errors.Is(err, content.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if f.source.Reads("home") != 0 {
		t.Fatalf("expected invalid requests to skip the source")
	}
}

func TestSaveRejectsPatchThatBreaksSchema(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, versions.NewMemoryStore())

	_, err := f.pipeline.Save(ctx, admin.SaveRequest{
		PageID: "home",
		Field:  "team_members",
		Value:  []any{map[string]any{"name": "Ana", "language": "german", "displayOrder": 1}},
		Locale: content.English,
	})
	var validationErr *content.ValidationError
	if !errors.As(err, &validationErr) || !validationErr.HasPath("content.team_members.0.language") {
		t.Fatalf("expected team member validation error, got %v", err)
	}
	history, _ := f.versions.GetHistory(ctx, "home")
	if len(history.Versions) != 0 {
		t.Fatalf("expected nothing recorded")
	}
}

func TestSaveHistoryFailureIsPartial(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, brokenStore{})

	result, err := f.pipeline.Save(ctx, admin.SaveRequest{
		PageID: "home",
		Field:  "hero.headline",
		Value:  "Persisted anyway",
		Locale: content.English,
	})
	if !errors.Is(err, admin.ErrHistoryNotRecorded) || !admin.IsPartialSave(err) {
		t.Fatalf("expected partial save error, got %v", err)
	}
	var partial *admin.PartialSaveError
	if !errors.As(err, &partial) || partial.Version != 4 || partial.PageID != "home" {
		t.Fatalf("unexpected partial error %#v", err)
	}
	if result == nil || result.Page == nil {
		t.Fatalf("expected persisted page in result")
	}

	page, err := f.content.Get(ctx, "home", content.English)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if page.Meta.Version != 4 || headline(t, page)["en"] != "Persisted anyway" {
		t.Fatalf("expected content persisted ahead of history")
	}
}

func TestSaveReportsLinkWarnings(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, versions.NewMemoryStore(), admin.WithLinkValidator(links.NewValidator()))

	result, err := f.pipeline.Save(ctx, admin.SaveRequest{
		PageID: "home",
		Field:  "hero.cta.link",
		Value:  "/nowhere",
		Locale: content.English,
	})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if len(result.LinkWarnings) != 1 || result.LinkWarnings[0].Path != "hero.cta.link" {
		t.Fatalf("expected one link warning, got %+v", result.LinkWarnings)
	}
}

type brokenStore struct{}

func (brokenStore) Load(context.Context, string) (*content.VersionHistory, error) { return nil, nil }
func (brokenStore) Save(context.Context, *content.VersionHistory) error {
	return errors.New("history volume read-only")
}

// rendezvousSource holds each Get until a second reader arrives or the wait elapses, so
// overlapping saves read the page at the same time unless something serialises them.
type rendezvousSource struct {
	*sources.MemorySource
	mu      sync.Mutex
	waiting int
	arrived chan struct{}
}

func (s *rendezvousSource) Get(ctx context.Context, pageID string, locale content.Language) (*content.ContentPage, error) {
	s.mu.Lock()
	s.waiting++
	if s.waiting == 2 {
		close(s.arrived)
	}
	s.mu.Unlock()

	select {
	case <-s.arrived:
	case <-time.After(50 * time.Millisecond):
	}
	return s.MemorySource.Get(ctx, pageID, locale)
}

func TestConcurrentSavesToOnePageBumpOnceEach(t *testing.T) {
	ctx := context.Background()
	mem := sources.NewMemorySource()
	mem.Put("home", testsupport.PageDocument("home", 3))
	src := &rendezvousSource{MemorySource: mem, arrived: make(chan struct{})}
	contentSvc := pages.NewService(src)
	versionSvc := versions.NewService(versions.NewMemoryStore())
	pipeline := admin.NewPipeline(contentSvc, versionSvc)

	requests := []admin.SaveRequest{
		{PageID: "home", Field: "hero.headline", Value: "Hola de nuevo", Locale: content.Spanish},
		{PageID: "home", Field: "hero.headline", Value: "Hello again", Locale: content.English},
	}
	results := make([]int, len(requests))
	errs := make([]error, len(requests))
	var wg sync.WaitGroup
	for i, req := range requests {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := pipeline.Save(ctx, req)
			errs[i] = err
			if result != nil && result.Page != nil {
				results[i] = result.Page.Meta.Version
			}
		}()
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Fatalf("save %d: %v", i, err)
		}
	}
	sort.Ints(results)
	if results[0] != 4 || results[1] != 5 {
		t.Fatalf("expected versions 4 and 5, got %v", results)
	}

	page, err := mem.Get(ctx, "home", content.English)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if page.Meta.Version != 5 {
		t.Fatalf("expected stored version 5, got %d", page.Meta.Version)
	}
	text := headline(t, page)
	if text["es"] != "Hola de nuevo" || text["en"] != "Hello again" {
		t.Fatalf("expected both edits to survive, got %v", text)
	}

	history, err := versionSvc.GetHistory(ctx, "home")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history.Versions) != 2 || history.Versions[0].Version != 4 || history.Versions[1].Version != 5 {
		t.Fatalf("expected history 4,5, got %+v", history.Versions)
	}
}
