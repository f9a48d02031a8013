package geocoder

import "strings"

// MatchMethod identifies which resolution strategy produced a result.
type MatchMethod string

const (
	MatchExact        MatchMethod = "exact"
	MatchStation      MatchMethod = "station"
	MatchIntersection MatchMethod = "intersection"
	MatchPartial      MatchMethod = "partial"
	MatchFailed       MatchMethod = "failed"
)

// Resolution is the outcome of resolving one location string. Method is
// always set; coordinates are meaningful only when Matched is true and Score
// only for partial matches.
type Resolution struct {
	Latitude  float64     `json:"latitude,omitempty"`
	Longitude float64     `json:"longitude,omitempty"`
	Matched   bool        `json:"matched"`
	Method    MatchMethod `json:"method"`
	Score     float64     `json:"score,omitempty"`
}

// DefaultPartialThreshold is the minimum overlap score the partial fallback
// accepts. A heuristic bound on false positives; override per resolver when
// tuning against a registry.
const DefaultPartialThreshold = 0.5

// minSharedTokens keeps the partial fallback from firing on a single shared
// word of short, ambiguous fragments.
const minSharedTokens = 2

// Option configures a Resolver.
type Option func(*Resolver)

// WithPartialThreshold overrides the partial-overlap acceptance score.
func WithPartialThreshold(threshold float64) Option {
	return func(r *Resolver) { r.threshold = threshold }
}

type matchStrategy interface {
	tryMatch(normalized string) (Resolution, bool)
}

// Resolver applies the strategy chain in strict priority order - exact,
// station, intersection, partial - against a shared read-only index. First
// success wins. Safe for concurrent use.
type Resolver struct {
	threshold float64
	chain     []matchStrategy
}

// NewResolver builds the strategy chain over idx.
func NewResolver(idx *ReferenceIndex, opts ...Option) *Resolver {
	r := &Resolver{threshold: DefaultPartialThreshold}
	for _, opt := range opts {
		opt(r)
	}
	r.chain = []matchStrategy{
		exactStrategy{idx: idx},
		stationStrategy{idx: idx},
		intersectionStrategy{idx: idx},
		partialStrategy{idx: idx, threshold: r.threshold},
	}
	return r
}

// Resolve normalizes raw and walks the strategy chain. It never panics:
// empty and unmatchable inputs return a Failed resolution, which is a valid
// terminal outcome, not an error.
func (r *Resolver) Resolve(raw string) Resolution {
	normalized := Normalize(raw)
	if normalized == "" {
		return Resolution{Method: MatchFailed}
	}
	for _, s := range r.chain {
		if res, ok := s.tryMatch(normalized); ok {
			return res
		}
	}
	return Resolution{Method: MatchFailed}
}

func matched(c Coordinate, method MatchMethod) Resolution {
	return Resolution{Latitude: c.Latitude, Longitude: c.Longitude, Matched: true, Method: method}
}

type exactStrategy struct {
	idx *ReferenceIndex
}

func (s exactStrategy) tryMatch(normalized string) (Resolution, bool) {
	if c, ok := s.idx.LookupExact(normalized); ok {
		return matched(c, MatchExact), true
	}
	return Resolution{}, false
}

type stationStrategy struct {
	idx *ReferenceIndex
}

func (s stationStrategy) tryMatch(normalized string) (Resolution, bool) {
	toks := strings.Fields(normalized)
	stationAt := -1
	for i, tok := range toks {
		if tok == stationToken {
			stationAt = i
			break
		}
	}
	if stationAt < 0 {
		return Resolution{}, false
	}
	if c, ok := s.idx.LookupStation(normalized); ok {
		return matched(c, MatchStation), true
	}
	// Suffix windows of up to 3 tokens before "station", widest first, so
	// the most specific qualifier wins.
	for w := 3; w >= 1; w-- {
		if stationAt-w < 0 {
			continue
		}
		key := strings.Join(toks[stationAt-w:stationAt+1], " ")
		if c, ok := s.idx.LookupStation(key); ok {
			return matched(c, MatchStation), true
		}
	}
	return Resolution{}, false
}

type intersectionStrategy struct {
	idx *ReferenceIndex
}

func (s intersectionStrategy) tryMatch(normalized string) (Resolution, bool) {
	toks := strings.Fields(normalized)
	a, b, ok := intersectionStreets(toks)
	if !ok {
		return Resolution{}, false
	}
	if c, found := s.idx.LookupIntersection(a, b); found {
		return matched(c, MatchIntersection), true
	}
	return Resolution{}, false
}

type partialStrategy struct {
	idx       *ReferenceIndex
	threshold float64
}

func (s partialStrategy) tryMatch(normalized string) (Resolution, bool) {
	query := meaningfulTokens(normalized)
	if len(query) < 2 {
		return Resolution{}, false
	}
	querySet := make(map[string]struct{}, len(query))
	for _, tok := range query {
		querySet[tok] = struct{}{}
	}

	bestKey := ""
	bestScore := 0.0
	for i := range s.idx.exactOrder {
		entry := &s.idx.exactOrder[i]
		shared := 0
		for _, tok := range entry.tokens {
			if _, ok := querySet[tok]; ok {
				shared++
			}
		}
		if shared < minSharedTokens {
			continue
		}
		union := len(querySet) + len(entry.tokens) - shared
		score := float64(shared) / float64(union)
		// Strict > keeps the first-seen candidate on score ties.
		if score > bestScore {
			bestScore = score
			bestKey = entry.key
		}
	}
	if bestKey == "" || bestScore < s.threshold {
		return Resolution{}, false
	}
	c := s.idx.exact[bestKey]
	return Resolution{
		Latitude:  c.Latitude,
		Longitude: c.Longitude,
		Matched:   true,
		Method:    MatchPartial,
		Score:     bestScore,
	}, true
}

// Summary aggregates batch resolution outcomes by method. Producing it is a
// required output of batch geocoding, not optional logging.
type Summary struct {
	Exact        int `json:"exact"`
	Station      int `json:"station"`
	Intersection int `json:"intersection"`
	Partial      int `json:"partial"`
	Failed       int `json:"failed"`
}

// Add counts one resolution outcome.
func (s *Summary) Add(m MatchMethod) {
	switch m {
	case MatchExact:
		s.Exact++
	case MatchStation:
		s.Station++
	case MatchIntersection:
		s.Intersection++
	case MatchPartial:
		s.Partial++
	default:
		s.Failed++
	}
}

// Total is the number of resolutions counted.
func (s *Summary) Total() int {
	return s.Exact + s.Station + s.Intersection + s.Partial + s.Failed
}

// Matched is the number of resolutions that produced coordinates.
func (s *Summary) Matched() int {
	return s.Exact + s.Station + s.Intersection + s.Partial
}

// MatchRate is the matched fraction, 0 for an empty summary.
func (s *Summary) MatchRate() float64 {
	total := s.Total()
	if total == 0 {
		return 0
	}
	return float64(s.Matched()) / float64(total)
}
