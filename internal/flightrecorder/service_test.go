package flightrecorder_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/styrkr/styrkr/internal/flightrecorder"
	"github.com/styrkr/styrkr/internal/testhelpers"
)

func newRecorder(t *testing.T, cooldown time.Duration) (*flightrecorder.Recorder, string) {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "traces")
	r, err := flightrecorder.New(flightrecorder.Config{
		Logger:   testhelpers.NewLogger(testhelpers.NewWriter(t)),
		Dir:      dir,
		MinAge:   0,
		MaxBytes: 0,
		Cooldown: cooldown,
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err = r.Start(t.Context()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	t.Cleanup(func() { r.Stop(t.Context()) })
	return r, dir
}

func TestNew_requiresDir(t *testing.T) {
	_, err := flightrecorder.New(flightrecorder.Config{
		Logger:   testhelpers.NewLogger(testhelpers.NewWriter(t)),
		Dir:      "",
		MinAge:   0,
		MaxBytes: 0,
		Cooldown: 0,
	})
	if err == nil {
		t.Fatal("Expected an error without a trace directory")
	}
}

func TestRecorder_Capture(t *testing.T) {
	r, dir := newRecorder(t, 0)

	path := r.Capture(t.Context(), "timeout")
	if path == "" {
		t.Fatal("Expected a trace to be written")
	}
	if filepath.Dir(path) != dir {
		t.Errorf("Expected trace in %s, got %s", dir, path)
	}
	name := filepath.Base(path)
	if !strings.HasPrefix(name, "timeout-") || !strings.HasSuffix(name, ".trace") {
		t.Errorf("Unexpected trace file name %s", name)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat() error = %v", err)
	}
	if info.Size() == 0 {
		t.Error("Expected a non-empty trace")
	}
}

func TestRecorder_CaptureCooldown(t *testing.T) {
	r, dir := newRecorder(t, time.Hour)

	if r.Capture(t.Context(), "timeout") == "" {
		t.Fatal("Expected the first capture to be written")
	}
	if path := r.Capture(t.Context(), "timeout"); path != "" {
		t.Errorf("Expected the cooldown to skip the second capture, got %s", path)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("Expected one trace file, got %d", len(entries))
	}
}
