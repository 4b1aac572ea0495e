package core

import (
	"errors"
	"testing"
)

type countingSource struct {
	calls int
}

func (s *countingSource) Icon(key int) ([]byte, error) {
	s.calls++
	if key < 0 {
		return nil, errors.New("no icon")
	}
	return []byte{byte(key)}, nil
}

func TestIconCache(t *testing.T) {
	src := &countingSource{}
	c, err := NewIconCache(src, 2)
	if err != nil {
		t.Fatalf("NewIconCache: %v", err)
	}

	for _, key := range []int{1, 1, 2, 1} {
		if _, err := c.Icon(key); err != nil {
			t.Fatalf("Icon(%d): %v", key, err)
		}
	}
	if src.calls != 2 {
		t.Errorf("source calls = %d, want 2", src.calls)
	}
	if hits, misses := c.Stats(); hits != 2 || misses != 2 {
		t.Errorf("Stats() = %d hits, %d misses; want 2, 2", hits, misses)
	}

	// Key 2 is least recently used and gets evicted.
	_, _ = c.Icon(3)
	if c.Len() != 2 {
		t.Errorf("Len() = %d, want 2", c.Len())
	}
	_, _ = c.Icon(2)
	if src.calls != 4 {
		t.Errorf("source calls = %d, want 4 after eviction", src.calls)
	}
}

func TestIconCache_ErrorsNotCached(t *testing.T) {
	src := &countingSource{}
	c, _ := NewIconCache(src, 2)

	if _, err := c.Icon(-1); err == nil {
		t.Fatal("expected error")
	}
	_, _ = c.Icon(-1)
	if src.calls != 2 {
		t.Errorf("source calls = %d, want 2", src.calls)
	}
	if c.Len() != 0 {
		t.Errorf("Len() = %d, want 0", c.Len())
	}
}

func TestIconCache_NilSource(t *testing.T) {
	c, _ := NewIconCache(nil, 0)
	if _, err := c.Icon(1); !errors.Is(err, ErrNotFound) {
		t.Errorf("Icon with nil source = %v, want ErrNotFound", err)
	}
}
