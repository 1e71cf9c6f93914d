package main

import (
	"net/http"
	"testing"

	"github.com/styrkr/styrkr/internal/e2etest"
	"github.com/styrkr/styrkr/internal/testhelpers"
)

func Test_application_library(t *testing.T) {
	ctx := t.Context()
	server, err := e2etest.StartServer(t, testhelpers.NewWriter(t), testLookupEnv, run)
	if err != nil {
		t.Fatalf("Failed to start server: %v", err)
	}
	client := server.Client()

	var etag string
	t.Run("Library carries an ETag", func(t *testing.T) {
		resp, getErr := client.Get(ctx, "/api/library")
		if getErr != nil {
			t.Fatalf("Failed to get library: %v", getErr)
		}
		_ = resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("Expected status 200, got %d", resp.StatusCode)
		}
		if etag = resp.Header.Get("ETag"); etag == "" {
			t.Fatal("Expected an ETag header")
		}
	})

	t.Run("Matching If-None-Match", func(t *testing.T) {
		header := http.Header{}
		header.Set("If-None-Match", etag)
		resp, getErr := client.Do(ctx, http.MethodGet, "/api/library", nil, header)
		if getErr != nil {
			t.Fatalf("Failed to get library: %v", getErr)
		}
		_ = resp.Body.Close()
		if resp.StatusCode != http.StatusNotModified {
			t.Errorf("Expected status 304, got %d", resp.StatusCode)
		}
	})

	t.Run("Exercise filters", func(t *testing.T) {
		var all, mains, none []struct {
			Category string `json:"category"`
		}
		if err = client.JSON(ctx, http.MethodGet, "/api/library/exercises", nil, &all); err != nil {
			t.Fatalf("Failed to list exercises: %v", err)
		}
		if err = client.JSON(ctx, http.MethodGet, "/api/library/exercises?category=main", nil, &mains); err != nil {
			t.Fatalf("Failed to list exercises: %v", err)
		}
		if len(mains) == 0 || len(mains) >= len(all) {
			t.Errorf("Expected the main category to be a strict subset, got %d of %d", len(mains), len(all))
		}
		for _, e := range mains {
			if e.Category != "main" {
				t.Errorf("Expected only main exercises, got %q", e.Category)
			}
		}
		if err = client.JSON(ctx, http.MethodGet, "/api/library/exercises?q=zzzzzz", nil, &none); err != nil {
			t.Fatalf("Failed to list exercises: %v", err)
		}
		if none == nil || len(none) != 0 {
			t.Errorf("Expected an empty list, got %v", none)
		}
	})

	t.Run("Unknown filters are rejected", func(t *testing.T) {
		for _, path := range []string{"/api/library/exercises?category=cardio", "/api/library/exercises?slot=nope"} {
			err = client.JSON(ctx, http.MethodGet, path, nil, nil)
			if got := apiError(t, err); got.Status != http.StatusBadRequest {
				t.Errorf("%s: expected 400, got %v", path, got)
			}
		}
	})

	t.Run("Template", func(t *testing.T) {
		var tmpl struct {
			SessionTemplates map[string]any `json:"sessionTemplates"`
		}
		if err = client.JSON(ctx, http.MethodGet, "/api/template", nil, &tmpl); err != nil {
			t.Fatalf("Failed to get template: %v", err)
		}
		if len(tmpl.SessionTemplates) == 0 {
			t.Error("Expected session templates")
		}
	})
}
