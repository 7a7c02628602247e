package cache

import (
	"testing"

	"github.com/nodegraph/modelresolver/internal/db"
)

func newTestCache(t *testing.T) *Cache {
	t.Helper()
	d, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory() error: %v", err)
	}
	t.Cleanup(func() { d.Close() })
	return New(d)
}

func TestSetGetWithinTTL(t *testing.T) {
	c := newTestCache(t)

	if err := c.Set(NamespaceSearch, "catalog_H:flux1-dev", []byte("hits"), 60, 1000); err != nil {
		t.Fatalf("Set() error: %v", err)
	}

	got, ok, err := c.Get(NamespaceSearch, "catalog_H:flux1-dev", 1030)
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if !ok || string(got) != "hits" {
		t.Fatalf("Get() = (%q, %v), want (\"hits\", true)", got, ok)
	}
}

func TestGetExpiresOutsideTTL(t *testing.T) {
	c := newTestCache(t)

	if err := c.Set(NamespaceInventory, "/models", []byte("index"), 60, 1000); err != nil {
		t.Fatalf("Set() error: %v", err)
	}

	_, ok, err := c.Get(NamespaceInventory, "/models", 1060)
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if ok {
		t.Fatal("expected a miss once now - inserted_at >= ttl")
	}
}

func TestGetMissingKey(t *testing.T) {
	c := newTestCache(t)
	_, ok, err := c.Get(NamespaceSearch, "nope", 0)
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if ok {
		t.Fatal("expected a miss for an absent key")
	}
}

func TestClearNamespace(t *testing.T) {
	c := newTestCache(t)
	c.Set(NamespaceSearch, "a", []byte("1"), 60, 0)
	c.Set(NamespaceInventory, "b", []byte("2"), 60, 0)

	if err := c.Clear(NamespaceSearch); err != nil {
		t.Fatalf("Clear() error: %v", err)
	}

	if _, ok, _ := c.Get(NamespaceSearch, "a", 0); ok {
		t.Fatal("expected search namespace to be cleared")
	}
	if _, ok, _ := c.Get(NamespaceInventory, "b", 0); !ok {
		t.Fatal("expected inventory namespace to survive a scoped clear")
	}
}

func TestStatsByNamespace(t *testing.T) {
	c := newTestCache(t)
	c.Set(NamespaceSearch, "a", []byte("1234"), 60, 0)
	c.Set(NamespaceSearch, "b", []byte("56"), 60, 0)

	stats, err := c.StatsByNamespace()
	if err != nil {
		t.Fatalf("StatsByNamespace() error: %v", err)
	}
	if len(stats) != 1 || stats[0].Count != 2 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}
