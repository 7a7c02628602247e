package download

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/nodegraph/modelresolver/internal/db"
	"github.com/nodegraph/modelresolver/internal/registry"
)

// rangeServer serves a fixed payload and honors Range requests, mirroring
// how HuggingFace/Civitai CDN endpoints behave.
func rangeServer(t *testing.T, payload []byte) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Accept-Ranges", "bytes")
		w.Header().Set("Content-Length", strconv.Itoa(len(payload)))
		if r.Method == http.MethodHead {
			w.WriteHeader(http.StatusOK)
			return
		}

		body := payload
		if rng := r.Header.Get("Range"); rng != "" {
			if start, err := parseRangeStart(rng); err == nil && start < len(payload) {
				body = payload[start:]
			} else if err == nil {
				body = nil
			}
			w.WriteHeader(http.StatusPartialContent)
		} else {
			w.WriteHeader(http.StatusOK)
		}
		w.Write(body)
	}))
}

func parseRangeStart(rng string) (int, error) {
	s := strings.TrimPrefix(rng, "bytes=")
	s = strings.TrimSuffix(s, "-")
	return strconv.Atoi(s)
}

func newTestManager(t *testing.T) (*Manager, *db.DB) {
	t.Helper()
	d, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { d.Close() })
	m := New(Config{Concurrency: 2, MaxRetries: 2}, d, nil)
	return m, d
}

func TestEnqueueDownloadsAtomically(t *testing.T) {
	payload := []byte("model-weights-payload")
	srv := rangeServer(t, payload)
	defer srv.Close()

	dir := t.TempDir()
	target := filepath.Join(dir, "model.safetensors")

	m, _ := newTestManager(t)
	id, err := m.Enqueue(context.Background(), Task{
		Filename:     "model.safetensors",
		Kind:         registry.KindCheckpoint,
		SourceURL:    srv.URL,
		TargetPath:   target,
		TempPath:     target + ".part",
		ExpectedSize: int64(len(payload)),
	})
	if err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	m.Wait()

	got, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("target file missing after download: %v", err)
	}
	if string(got) != string(payload) {
		t.Errorf("downloaded content = %q, want %q", got, payload)
	}
	if _, err := os.Stat(target + ".part"); !os.IsNotExist(err) {
		t.Errorf("expected temp file to be renamed away, got err=%v", err)
	}

	st := m.Status()
	if len(st.History) != 1 || st.History[0].ID != id || st.History[0].State != StateSucceeded {
		t.Errorf("expected one succeeded history entry for %s, got %+v", id, st.History)
	}
}

func TestEnqueueRejectsBusyTarget(t *testing.T) {
	payload := []byte("x")
	srv := rangeServer(t, payload)
	defer srv.Close()

	dir := t.TempDir()
	target := filepath.Join(dir, "dup.safetensors")

	m, _ := newTestManager(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	task := Task{Filename: "dup.safetensors", SourceURL: srv.URL, TargetPath: target, TempPath: target + ".part", ExpectedSize: 1}
	if _, err := m.Enqueue(ctx, task); err != nil {
		t.Fatalf("first Enqueue: %v", err)
	}
	if _, err := m.Enqueue(ctx, task); err == nil {
		t.Error("expected second Enqueue for the same target to fail")
	}
	m.Wait()
}

func TestTargetFreedAfterCompletion(t *testing.T) {
	payload := []byte("abc")
	srv := rangeServer(t, payload)
	defer srv.Close()

	dir := t.TempDir()
	target := filepath.Join(dir, "reuse.safetensors")

	m, _ := newTestManager(t)
	task := Task{Filename: "reuse.safetensors", SourceURL: srv.URL, TargetPath: target, TempPath: target + ".part", ExpectedSize: int64(len(payload))}

	if _, err := m.Enqueue(context.Background(), task); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	m.Wait()

	os.Remove(target)
	if _, err := m.Enqueue(context.Background(), task); err != nil {
		t.Errorf("expected target to be reusable after completion, got %v", err)
	}
	m.Wait()
}

func TestExistingFileWithMatchingSizeShortCircuits(t *testing.T) {
	payload := []byte("already-here")
	srv := rangeServer(t, payload)
	defer srv.Close()

	dir := t.TempDir()
	target := filepath.Join(dir, "existing.safetensors")
	if err := os.WriteFile(target, payload, 0o644); err != nil {
		t.Fatalf("seed target: %v", err)
	}

	m, _ := newTestManager(t)
	if _, err := m.Enqueue(context.Background(), Task{
		Filename: "existing.safetensors", SourceURL: srv.URL, TargetPath: target,
		TempPath: target + ".part", ExpectedSize: int64(len(payload)),
	}); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	m.Wait()

	st := m.Status()
	if len(st.History) != 1 || st.History[0].State != StateSucceeded {
		t.Errorf("expected short-circuited success, got %+v", st.History)
	}
}

func TestCancelQueuedTask(t *testing.T) {
	m, _ := newTestManager(t)

	blocked := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-blocked
	}))
	defer srv.Close()

	dir := t.TempDir()
	id, err := m.Enqueue(context.Background(), Task{
		Filename: "slow.safetensors", SourceURL: srv.URL,
		TargetPath: filepath.Join(dir, "slow.safetensors"),
		TempPath:   filepath.Join(dir, "slow.safetensors.part"),
	})
	if err != nil {
		t.Fatalf("Enqueue: %v", err)
	}

	// Give the worker a moment to pick the task up, then cancel it; Cancel
	// must succeed whether the task is still queued or already active.
	time.Sleep(10 * time.Millisecond)
	if err := m.Cancel(id); err != nil {
		t.Errorf("Cancel: %v", err)
	}
	close(blocked)
	m.Wait()
}
