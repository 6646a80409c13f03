package admin_test

import (
	"context"
	"testing"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-sitecontent/content"
	"github.com/goliatone/go-sitecontent/internal/admin"
	"github.com/goliatone/go-sitecontent/internal/versions"
)

func TestSaveContentFieldCommandValidate(t *testing.T) {
	valid := admin.SaveContentFieldCommand{PageID: "home", Field: "hero.headline", Value: "x", Locale: "es-MX"}
	if err := valid.Validate(); err != nil {
		t.Fatalf("expected valid command, got %v", err)
	}
	invalid := admin.SaveContentFieldCommand{PageID: "../x", Field: "hero..headline", Locale: "fr"}
	if err := invalid.Validate(); err == nil {
		t.Fatalf("expected validation errors")
	}
}

func TestSaveContentFieldHandlerExecutes(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, versions.NewMemoryStore())
	handler := admin.NewSaveContentFieldHandler(f.pipeline, nil)

	err := handler.Execute(ctx, admin.SaveContentFieldCommand{
		PageID: "home",
		Field:  "hero.headline",
		Value:  "Hola de nuevo",
		Locale: "es",
	})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	page, _ := f.content.Get(ctx, "home", content.Spanish)
	if headline(t, page)["es"] != "Hola de nuevo" {
		t.Fatalf("expected command to patch spanish headline")
	}
}

func TestSaveContentFieldHandlerCategorisesErrors(t *testing.T) {
	f := newFixture(t, versions.NewMemoryStore())
	handler := admin.NewSaveContentFieldHandler(f.pipeline, nil)

	err := handler.Execute(context.Background(), admin.SaveContentFieldCommand{PageID: "home", Field: "x", Locale: "zz"})
	if !goerrors.IsCategory(err, goerrors.CategoryValidation) {
		t.Fatalf("expected validation category, got %v", err)
	}
	err = handler.Execute(context.Background(), admin.SaveContentFieldCommand{PageID: "ghost", Field: "x", Value: "y", Locale: "en"})
	if !goerrors.IsCategory(err, goerrors.CategoryCommand) {
		t.Fatalf("expected command category, got %v", err)
	}
}
