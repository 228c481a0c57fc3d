package preview

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/starford/ansuz/internal/builder"
	"github.com/starford/ansuz/internal/storage"
	"github.com/starford/ansuz/internal/testutil"
)

func testServer(t *testing.T) (*Server, *storage.FS) {
	t.Helper()
	_, store := testutil.TestTree(t, testutil.ValidTree())
	b := builder.New(store, builder.WithReproducible(true))
	s := NewServer(store, b, "config/resume.yaml", ":0", slog.Default())
	t.Cleanup(s.broker.Close)
	return s, store
}

func TestRebuildWritesArtifact(t *testing.T) {
	s, store := testServer(t)
	if err := s.rebuild(context.Background(), true); err != nil {
		t.Fatalf("rebuild: %v", err)
	}
	data, err := store.Read("out/resume.html")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if !strings.Contains(string(data), "Ada Example") {
		t.Error("artifact content missing")
	}
}

func TestRebuildDeduplicatesUnchangedOutput(t *testing.T) {
	s, _ := testServer(t)
	if err := s.rebuild(context.Background(), true); err != nil {
		t.Fatalf("rebuild: %v", err)
	}

	ch := s.broker.Subscribe()
	defer s.broker.Unsubscribe(ch)

	// Identical content; no reload event should go out.
	if err := s.rebuild(context.Background(), false); err != nil {
		t.Fatalf("rebuild: %v", err)
	}
	select {
	case msg := <-ch:
		t.Errorf("unexpected event: %q", msg)
	default:
	}
}

func TestServeArtifact(t *testing.T) {
	s, _ := testServer(t)
	if err := s.rebuild(context.Background(), true); err != nil {
		t.Fatalf("rebuild: %v", err)
	}

	srv := httptest.NewServer(s.router())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("content type = %q", ct)
	}

	health, err := http.Get(srv.URL + "/health/live")
	if err != nil {
		t.Fatal(err)
	}
	defer health.Body.Close()
	if health.StatusCode != http.StatusOK {
		t.Errorf("health status = %d", health.StatusCode)
	}
}

func TestServeArtifactBeforeBuild(t *testing.T) {
	s, _ := testServer(t)

	srv := httptest.NewServer(s.router())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("status = %d", resp.StatusCode)
	}
}
