package geocoder

import (
	"path/filepath"
	"testing"
)

func TestSerializeIndexRoundTrip(t *testing.T) {
	original := buildTestIndex()

	data, err := SerializeIndex(original)
	if err != nil {
		t.Fatalf("SerializeIndex: %v", err)
	}
	restored, err := DeserializeIndex(data)
	if err != nil {
		t.Fatalf("DeserializeIndex: %v", err)
	}

	oe, os, oi := original.Counts()
	re, rs, ri := restored.Counts()
	if oe != re || os != rs || oi != ri {
		t.Errorf("counts after round trip = (%d, %d, %d), want (%d, %d, %d)",
			re, rs, ri, oe, os, oi)
	}

	got, ok := restored.LookupExact("kennedy station")
	if !ok {
		t.Fatal("restored index lost exact entry")
	}
	if !coordClose(got, Coordinate{43.7325, -79.2631}) {
		t.Errorf("restored exact coordinate = %+v", got)
	}
	if _, ok := restored.LookupStation("king station"); !ok {
		t.Error("restored index lost station window")
	}
	if _, ok := restored.LookupIntersection("wilson", "bathurst"); !ok {
		t.Error("restored index lost intersection entry")
	}

	// Partial matching depends on insertion order surviving the round trip.
	res := NewResolver(restored).Resolve("bathurst wilson")
	if !res.Matched || res.Method != MatchPartial {
		t.Errorf("partial match after round trip = %+v", res)
	}
}

func TestIndexCacheFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.gob")
	original := buildTestIndex()

	if err := SaveIndexCache(path, original); err != nil {
		t.Fatalf("SaveIndexCache: %v", err)
	}
	restored, err := LoadIndexCache(path)
	if err != nil {
		t.Fatalf("LoadIndexCache: %v", err)
	}

	if _, ok := restored.LookupExact("main street station"); !ok {
		t.Error("cached index lost exact entry")
	}
}

func TestLoadIndexCacheMissing(t *testing.T) {
	if _, err := LoadIndexCache(filepath.Join(t.TempDir(), "absent.gob")); err == nil {
		t.Error("expected error for missing cache file")
	}
}

func TestDeserializeIndexGarbage(t *testing.T) {
	if _, err := DeserializeIndex([]byte("not a gob stream")); err == nil {
		t.Error("expected error for corrupt payload")
	}
}
