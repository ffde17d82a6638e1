package tracker

import (
	"strings"
	"sync"
	"testing"
)

func TestTrackerCounts(t *testing.T) {
	tr := New()

	tr.TrackCacheHit("nominatim")
	tr.TrackCacheHit("nominatim")
	tr.TrackCacheMiss("nominatim")
	tr.TrackAPISuccess("nominatim")
	tr.TrackAPIFailure("nominatim")
	tr.TrackAPIZero("nominatim")

	snap := tr.Snapshot()
	s, ok := snap["nominatim"]
	if !ok {
		t.Fatal("expected nominatim stats")
	}

	if s.CacheHits != 2 || s.CacheMisses != 1 || s.APISuccess != 1 || s.APIFailures != 1 || s.APIZeroResult != 1 {
		t.Errorf("unexpected stats: %+v", s)
	}
}

func TestTrackerConcurrent(t *testing.T) {
	tr := New()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tr.TrackCacheHit("nominatim")
			tr.TrackAPISuccess("nominatim")
		}()
	}
	wg.Wait()

	snap := tr.Snapshot()
	if snap["nominatim"].CacheHits != 50 {
		t.Errorf("expected 50 hits, got %d", snap["nominatim"].CacheHits)
	}
	if snap["nominatim"].APISuccess != 50 {
		t.Errorf("expected 50 successes, got %d", snap["nominatim"].APISuccess)
	}
}

func TestSummaryStableOrder(t *testing.T) {
	tr := New()
	tr.TrackCacheHit("zeta")
	tr.TrackCacheHit("alpha")

	out := tr.Summary()
	if !strings.Contains(out, "alpha") || !strings.Contains(out, "zeta") {
		t.Fatalf("summary missing providers: %q", out)
	}
	if strings.Index(out, "alpha") > strings.Index(out, "zeta") {
		t.Errorf("expected alpha before zeta: %q", out)
	}
}
