package handle

import (
	"sync"
	"testing"
)

func TestAllocatorIssuesUniqueNonZeroIDs(t *testing.T) {
	alloc := NewAllocator()
	const workers, perWorker = 8, 200

	var mu sync.Mutex
	seen := make(map[ID]struct{}, workers*perWorker)
	var wg sync.WaitGroup
	for range workers {
		wg.Go(func() {
			for range perWorker {
				id := alloc.Next()
				mu.Lock()
				seen[id] = struct{}{}
				mu.Unlock()
			}
		})
	}
	wg.Wait()

	if len(seen) != workers*perWorker {
		t.Fatalf("unique ids = %d, want %d", len(seen), workers*perWorker)
	}
	if _, ok := seen[0]; ok {
		t.Fatalf("zero id must never be issued")
	}
}

func TestAllocatorIsMonotonic(t *testing.T) {
	alloc := NewAllocator()
	first := alloc.Next()
	second := alloc.Next()
	if second <= first {
		t.Fatalf("Next() = %v after %v, want increasing", second, first)
	}
	if first.String() != "#1" {
		t.Fatalf("String() = %q, want #1", first.String())
	}
}
