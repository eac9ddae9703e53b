package ids

import (
	"sync"
	"testing"
)

func TestGenerateUnique(t *testing.T) {
	const n = 10000
	seen := make(map[int64]struct{}, n)
	last := int64(0)
	for i := 0; i < n; i++ {
		id := Generate()
		if _, dup := seen[id]; dup {
			t.Fatalf("duplicate id %d", id)
		}
		seen[id] = struct{}{}
		if id <= last {
			t.Fatalf("id %d not increasing after %d", id, last)
		}
		last = id
	}
}

func TestGenerateConcurrent(t *testing.T) {
	const goroutines, per = 8, 1000
	var mu sync.Mutex
	seen := make(map[int64]struct{}, goroutines*per)

	var wg sync.WaitGroup
	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ids := make([]int64, 0, per)
			for i := 0; i < per; i++ {
				ids = append(ids, Generate())
			}
			mu.Lock()
			defer mu.Unlock()
			for _, id := range ids {
				if _, dup := seen[id]; dup {
					t.Errorf("duplicate id %d", id)
					return
				}
				seen[id] = struct{}{}
			}
		}()
	}
	wg.Wait()
}

func TestSetNodeIDClamps(t *testing.T) {
	defer SetNodeID(1)

	SetNodeID(1024) // out of range falls back to the default
	if node := (Generate() >> 12) & 0x3FF; node != 1 {
		t.Fatalf("node bits = %d, want 1", node)
	}
	SetNodeID(77)
	if node := (Generate() >> 12) & 0x3FF; node != 77 {
		t.Fatalf("node bits = %d, want 77", node)
	}
}

func TestGenerateString(t *testing.T) {
	if GenerateString() == GenerateString() {
		t.Fatal("string ids collide")
	}
}
