package geocoder

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"os"
)

// indexSnapshot is the gob wire form of a ReferenceIndex. gob only encodes
// exported fields, so the internal maps are copied through this shape.
type indexSnapshot struct {
	Exact         map[string]Coordinate
	ExactOrder    []entrySnapshot
	Station       map[string]Coordinate
	Intersections []intersectionSnapshot
}

type entrySnapshot struct {
	Key    string
	Tokens []string
}

type intersectionSnapshot struct {
	A     string
	B     string
	Coord Coordinate
}

// SerializeIndex encodes a ReferenceIndex to bytes for disk-based caching,
// so large registries can skip re-parsing stops.txt on startup.
//
// Thread safety: safe once the index is fully constructed.
func SerializeIndex(ix *ReferenceIndex) ([]byte, error) {
	snap := indexSnapshot{
		Exact:   ix.exact,
		Station: ix.station,
	}
	snap.ExactOrder = make([]entrySnapshot, 0, len(ix.exactOrder))
	for _, e := range ix.exactOrder {
		snap.ExactOrder = append(snap.ExactOrder, entrySnapshot{Key: e.key, Tokens: e.tokens})
	}
	snap.Intersections = make([]intersectionSnapshot, 0, len(ix.intersection))
	for k, c := range ix.intersection {
		snap.Intersections = append(snap.Intersections, intersectionSnapshot{A: k.A, B: k.B, Coord: c})
	}
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(snap); err != nil {
		return nil, fmt.Errorf("failed to encode index: %w", err)
	}
	return buf.Bytes(), nil
}

// DeserializeIndex decodes an index previously produced by SerializeIndex.
func DeserializeIndex(data []byte) (*ReferenceIndex, error) {
	var snap indexSnapshot
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&snap); err != nil {
		return nil, fmt.Errorf("failed to decode index: %w", err)
	}
	ix := &ReferenceIndex{
		exact:        snap.Exact,
		station:      snap.Station,
		intersection: make(map[intersectionKey]Coordinate, len(snap.Intersections)),
	}
	if ix.exact == nil {
		ix.exact = map[string]Coordinate{}
	}
	if ix.station == nil {
		ix.station = map[string]Coordinate{}
	}
	ix.exactOrder = make([]exactEntry, 0, len(snap.ExactOrder))
	for _, e := range snap.ExactOrder {
		ix.exactOrder = append(ix.exactOrder, exactEntry{key: e.Key, tokens: e.Tokens})
	}
	for _, e := range snap.Intersections {
		ix.intersection[intersectionKey{A: e.A, B: e.B}] = e.Coord
	}
	return ix, nil
}

// SaveIndexCache writes a serialized index to path.
func SaveIndexCache(path string, ix *ReferenceIndex) error {
	data, err := SerializeIndex(ix)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// LoadIndexCache reads an index previously written by SaveIndexCache.
func LoadIndexCache(path string) (*ReferenceIndex, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return DeserializeIndex(data)
}
