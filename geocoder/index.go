package geocoder

import (
	"strings"

	"github.com/theoremus-urban-solutions/delay-prediction-engine/stops"
)

// Coordinate is an averaged latitude/longitude index value.
type Coordinate struct {
	Latitude  float64
	Longitude float64
}

type coordAccum struct {
	sumLat float64
	sumLon float64
	n      int
}

func (a *coordAccum) add(lat, lon float64) {
	a.sumLat += lat
	a.sumLon += lon
	a.n++
}

func (a *coordAccum) mean() Coordinate {
	return Coordinate{Latitude: a.sumLat / float64(a.n), Longitude: a.sumLon / float64(a.n)}
}

// intersectionKey is an unordered pair of leading street tokens, stored
// sorted so "king at bay" and "bay at king" collide.
type intersectionKey struct {
	A string
	B string
}

func makeIntersectionKey(a, b string) intersectionKey {
	if b < a {
		a, b = b, a
	}
	return intersectionKey{A: a, B: b}
}

// exactEntry retains the first-seen order of exact keys plus the meaningful
// token set the partial-overlap fallback scans. Deterministic ordering here
// is what makes the partial tie-break ("first seen wins") reproducible.
type exactEntry struct {
	key    string
	tokens []string
}

// ReferenceIndex holds the three lookup structures the resolver matches
// against: exact normalized names, station suffix windows, and intersection
// street pairs. Built once from the stop registry and immutable afterwards;
// safe for concurrent reads.
type ReferenceIndex struct {
	exact        map[string]Coordinate
	exactOrder   []exactEntry
	station      map[string]Coordinate
	intersection map[intersectionKey]Coordinate
}

// Station keys span 1-4 tokens: the token "station" plus up to 3 preceding
// tokens, so queries naming a station with varying qualifier counts still hit.
const maxStationWindow = 4

// BuildIndex normalizes every stop name and builds the three indexes.
// Coordinates for keys fed by multiple stops are arithmetic means over all
// contributors. O(number of stops); run once at startup.
func BuildIndex(registry []stops.Stop) *ReferenceIndex {
	exact := map[string]*coordAccum{}
	order := []string{}
	station := map[string]*coordAccum{}
	intersection := map[intersectionKey]*coordAccum{}

	accumulate := func(m map[string]*coordAccum, key string, lat, lon float64) {
		acc, ok := m[key]
		if !ok {
			acc = &coordAccum{}
			m[key] = acc
		}
		acc.add(lat, lon)
	}

	for _, s := range registry {
		name := Normalize(s.Name)
		if name == "" {
			continue
		}
		if _, ok := exact[name]; !ok {
			order = append(order, name)
		}
		accumulate(exact, name, s.Latitude, s.Longitude)

		toks := strings.Fields(name)
		for i, tok := range toks {
			if tok != stationToken {
				continue
			}
			for w := 1; w <= maxStationWindow && w <= i+1; w++ {
				key := strings.Join(toks[i+1-w:i+1], " ")
				accumulate(station, key, s.Latitude, s.Longitude)
			}
		}

		if a, b, ok := intersectionStreets(toks); ok {
			key := makeIntersectionKey(a, b)
			acc, found := intersection[key]
			if !found {
				acc = &coordAccum{}
				intersection[key] = acc
			}
			acc.add(s.Latitude, s.Longitude)
		}
	}

	ix := &ReferenceIndex{
		exact:        make(map[string]Coordinate, len(exact)),
		exactOrder:   make([]exactEntry, 0, len(order)),
		station:      make(map[string]Coordinate, len(station)),
		intersection: make(map[intersectionKey]Coordinate, len(intersection)),
	}
	for key, acc := range exact {
		ix.exact[key] = acc.mean()
	}
	for _, key := range order {
		ix.exactOrder = append(ix.exactOrder, exactEntry{key: key, tokens: meaningfulTokens(key)})
	}
	for key, acc := range station {
		ix.station[key] = acc.mean()
	}
	for key, acc := range intersection {
		ix.intersection[key] = acc.mean()
	}
	return ix
}

// intersectionStreets splits a tokenized name on its first "at" token and
// returns the leading token of each side.
func intersectionStreets(toks []string) (string, string, bool) {
	for i, tok := range toks {
		if tok != atToken {
			continue
		}
		if i == 0 || i == len(toks)-1 {
			return "", "", false
		}
		return toks[0], toks[i+1], true
	}
	return "", "", false
}

// LookupExact returns the averaged coordinates for a normalized name.
func (ix *ReferenceIndex) LookupExact(name string) (Coordinate, bool) {
	c, ok := ix.exact[name]
	return c, ok
}

// LookupStation returns the averaged coordinates for a station suffix key.
func (ix *ReferenceIndex) LookupStation(key string) (Coordinate, bool) {
	c, ok := ix.station[key]
	return c, ok
}

// LookupIntersection returns the averaged coordinates for two leading street
// tokens in either order.
func (ix *ReferenceIndex) LookupIntersection(a, b string) (Coordinate, bool) {
	c, ok := ix.intersection[makeIntersectionKey(a, b)]
	return c, ok
}

// Counts reports the number of keys per index, for startup logging.
func (ix *ReferenceIndex) Counts() (exact, station, intersection int) {
	return len(ix.exact), len(ix.station), len(ix.intersection)
}
