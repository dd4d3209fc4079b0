package postgres

import (
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
)

func TestULIDGeneratorIsMonotonicWithinMillisecond(t *testing.T) {
	g := NewULIDGenerator()
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	g.now = func() time.Time { return fixed }

	ids := make([]string, 100)
	for i := range ids {
		ids[i] = g.Generate()
	}

	if !sort.StringsAreSorted(ids) {
		t.Fatal("ids minted in the same millisecond are not sorted")
	}
	for _, id := range ids {
		parsed, err := ulid.ParseStrict(id)
		if err != nil {
			t.Fatalf("invalid ulid %q: %v", id, err)
		}
		if !ulid.Time(parsed.Time()).Equal(fixed) {
			t.Errorf("unexpected timestamp in %s", id)
		}
	}
}

func TestULIDGeneratorConcurrentUse(t *testing.T) {
	g := NewULIDGenerator()

	const n = 200
	var (
		mu   sync.Mutex
		seen = make(map[string]bool, n)
		wg   sync.WaitGroup
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id := g.Generate()
			mu.Lock()
			seen[id] = true
			mu.Unlock()
		}()
	}
	wg.Wait()

	if len(seen) != n {
		t.Fatalf("expected %d unique ids, got %d", n, len(seen))
	}
}
