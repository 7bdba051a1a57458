package cache

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestCacheKey(t *testing.T) {
	const facts = "person=police,warrant=-,category=-"
	base := CacheKey("graph", "rank=TB", facts, "svg")

	tests := []struct {
		desc string
		key  string
	}{
		{desc: "format", key: CacheKey("graph", "rank=TB", facts, "png")},
		{desc: "graph", key: CacheKey("graph2", "rank=TB", facts, "svg")},
		{desc: "options", key: CacheKey("graph", "rank=LR", facts, "svg")},
		{desc: "facts", key: CacheKey("graph", "rank=TB", "person=citizen,warrant=-,category=-", "svg")},
	}
	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			if tt.key == base {
				t.Errorf("expected a distinct key when %s differs", tt.desc)
			}
		})
	}

	if base != CacheKey("graph", "rank=TB", facts, "svg") {
		t.Error("expected stable key")
	}
	if len(base) != len("arrestflow:v2:")+64 {
		t.Errorf("unexpected key length %d", len(base))
	}
}

func TestMemoryCache(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)

	if _, ok := c.Get("k"); ok {
		t.Fatal("expected miss")
	}
	if err := c.Set("k", []byte("svg"), 0); err != nil {
		t.Fatal(err)
	}
	got, ok := c.Get("k")
	if !ok || string(got) != "svg" {
		t.Errorf("Get = %q, %v", got, ok)
	}

	_ = c.Delete("k")
	if _, ok := c.Get("k"); ok {
		t.Error("expected miss after delete")
	}

	_ = c.Set("a", []byte("1"), 0)
	_ = c.Clear()
	if _, ok := c.Get("a"); ok {
		t.Error("expected empty cache after clear")
	}
}

func TestMemoryCache_Expiry(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)
	_ = c.Set("k", []byte("v"), time.Millisecond)
	time.Sleep(5 * time.Millisecond)
	if _, ok := c.Get("k"); ok {
		t.Error("expected expired entry to miss")
	}
}

func TestMemoryCache_ZeroTTLUsesDefault(t *testing.T) {
	c := NewMemoryCache(time.Millisecond, time.Minute)
	_ = c.Set("short", []byte("v"), 0)
	_ = c.Set("long", []byte("v"), time.Hour)
	time.Sleep(5 * time.Millisecond)

	if _, ok := c.Get("short"); ok {
		t.Error("expected zero ttl entry to expire with the cache default")
	}
	if _, ok := c.Get("long"); !ok {
		t.Error("expected explicit ttl to override the cache default")
	}
}

func TestDiskCache(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "cache")
	c := NewDiskCache(dir, time.Hour)
	key := CacheKey("g", "o", "f", "svg")

	if _, ok := c.Get(key); ok {
		t.Fatal("expected miss on empty cache")
	}
	if err := c.Set(key, []byte("<svg/>"), 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, ok := c.Get(key)
	if !ok || string(got) != "<svg/>" {
		t.Errorf("Get = %q, %v", got, ok)
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("expected one cache file, got %d", len(entries))
	}

	if err := c.Delete(key); err != nil {
		t.Errorf("Delete: %v", err)
	}
	if err := c.Delete(key); err != nil {
		t.Errorf("Delete of missing entry: %v", err)
	}
}

func TestDiskCache_Expired(t *testing.T) {
	c := NewDiskCache(t.TempDir(), time.Hour)
	if err := c.Set("k", []byte("v"), -time.Second); err != nil {
		t.Fatal(err)
	}
	if _, ok := c.Get("k"); ok {
		t.Error("expected expired entry to miss")
	}
}

func TestDiskCache_Corrupt(t *testing.T) {
	dir := t.TempDir()
	c := NewDiskCache(dir, time.Hour)
	if err := os.WriteFile(c.path("k"), []byte("not json"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, ok := c.Get("k"); ok {
		t.Error("expected corrupt entry to miss")
	}
	if _, err := os.Stat(c.path("k")); !os.IsNotExist(err) {
		t.Error("expected corrupt entry to be removed")
	}
}

func TestLayeredCache_PromotesDiskHits(t *testing.T) {
	dir := t.TempDir()
	disk := NewDiskCache(dir, time.Hour)
	if err := disk.Set("k", []byte("from disk"), 0); err != nil {
		t.Fatal(err)
	}

	mem := NewMemoryCache(time.Hour, time.Minute)
	c := &LayeredCache{memory: mem, disk: disk}

	got, ok := c.Get("k")
	if !ok || string(got) != "from disk" {
		t.Fatalf("Get = %q, %v", got, ok)
	}
	if _, ok := mem.Get("k"); !ok {
		t.Error("expected disk hit to be promoted to memory")
	}
}

func TestLayeredCache_SetAndClear(t *testing.T) {
	c := NewLayeredCache(time.Hour, t.TempDir(), time.Hour)
	if err := c.Set("k", []byte("v"), 0); err != nil {
		t.Fatal(err)
	}
	if _, ok := c.Get("k"); !ok {
		t.Fatal("expected hit")
	}
	if err := c.Delete("k"); err != nil {
		t.Errorf("Delete: %v", err)
	}
	if _, ok := c.Get("k"); ok {
		t.Error("expected miss after delete")
	}
	if err := c.Clear(); err != nil {
		t.Errorf("Clear: %v", err)
	}
}

func TestNop(t *testing.T) {
	var c Cache = Nop{}
	_ = c.Set("k", []byte("v"), 0)
	if _, ok := c.Get("k"); ok {
		t.Error("Nop should never hit")
	}
}
