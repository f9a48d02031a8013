package features

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/theoremus-urban-solutions/delay-prediction-engine/utils"
)

// AggregateSource supplies the historical fallback statistics for columns a
// single request cannot derive on its own. Implemented by history.Aggregates;
// an interface so a live-updating source can be swapped in without touching
// reconstruction logic. A nil source falls back to the fixed estimates below.
type AggregateSource interface {
	RouteFrequency(route string) (float64, bool)
	MedianRouteFrequency() float64
	IncidentMeanDelay(incident string) (float64, bool)
	MeanIncidentDelay() float64
	MeanDelay() float64
	CellStats(lat, lon float64) (mean float64, count int, ok bool)
	IncidentTypes() []string
}

// Default city center: downtown Toronto, the registry's service area.
const (
	DefaultCenterLat = 43.6532
	DefaultCenterLon = -79.3832
)

// One-hot column families the training pipeline emits.
const (
	incidentPrefix  = "incident_"
	directionPrefix = "dir_"
	dayPrefix       = "day_"
)

// otherIncident is the bucket all training-time rare incident types were
// collapsed into. Unseen serving-time types must collapse the same way.
const otherIncident = "Other"

// Fixed fill values for when no historical aggregates are available at all.
const (
	defaultRouteFrequency    = 100.0
	defaultIncidentDelay     = 15.0
	defaultCellDelay         = 15.0
	defaultLocationFrequency = 10.0
)

// incidentDelayEstimates is the rough per-type delay table used when no
// historical data was loaded.
var incidentDelayEstimates = map[string]float64{
	"Mechanical":            20,
	"Collision - TTC":       30,
	"Emergency Services":    15,
	"Operations - Operator": 10,
	"Diversion":             25,
	"Investigation":         18,
}

// Option configures a Reconstructor.
type Option func(*Reconstructor)

// WithCityCenter overrides the reference point for the distance-from-center
// feature.
func WithCityCenter(lat, lon float64) Option {
	return func(r *Reconstructor) {
		r.centerLat = lat
		r.centerLon = lon
	}
}

// Reconstructor rebuilds training-shaped feature vectors for single
// requests. Holds only read-only state; safe for concurrent use.
type Reconstructor struct {
	schema    *Schema
	aggs      AggregateSource
	centerLat float64
	centerLon float64
}

// NewReconstructor binds a schema and an aggregate source. aggs may be nil,
// in which case fixed fallback estimates stand in for every historical
// statistic.
func NewReconstructor(schema *Schema, aggs AggregateSource, opts ...Option) (*Reconstructor, error) {
	if schema == nil {
		return nil, fmt.Errorf("nil schema")
	}
	r := &Reconstructor{
		schema:    schema,
		aggs:      aggs,
		centerLat: DefaultCenterLat,
		centerLon: DefaultCenterLon,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Schema returns the schema vectors are reconstructed against.
func (r *Reconstructor) Schema() *Schema {
	return r.schema
}

// Reconstruct builds the feature vector for one request. The result covers
// the schema's column set and order exactly: columns the request cannot
// derive are filled from aggregates or defaults, and derivable values the
// schema lacks are dropped. Columns no rule covers stay 0.
func (r *Reconstructor) Reconstruct(req Request) (*Vector, error) {
	if req.Time.IsZero() {
		return nil, fmt.Errorf("request has no timestamp")
	}

	v := newVector(r.schema)

	for col, value := range temporalFeatures(req.Time) {
		v.set(col, value)
	}

	v.set("latitude", req.Latitude)
	v.set("longitude", req.Longitude)
	v.set("dist_from_center", utils.DegreeDistance(req.Latitude, req.Longitude, r.centerLat, r.centerLon))

	r.setRoute(v, req.Route)
	v.set("incident_avg_delay", r.incidentAvgDelay(req.Incident))
	r.setOneHots(v, req)
	r.setLocationAggregates(v, req.Latitude, req.Longitude)

	return v, nil
}

func (r *Reconstructor) setRoute(v *Vector, route string) {
	if isDigits(route) {
		n, _ := strconv.ParseFloat(route, 64)
		v.set("route_numeric", n)
		v.set("route_is_numeric", 1)
	} else {
		v.set("route_numeric", -1)
		v.set("route_is_numeric", 0)
	}

	switch {
	case r.aggs == nil:
		v.set("route_frequency", defaultRouteFrequency)
	default:
		if freq, ok := r.aggs.RouteFrequency(route); ok {
			v.set("route_frequency", freq)
		} else {
			v.set("route_frequency", r.aggs.MedianRouteFrequency())
		}
	}
}

func (r *Reconstructor) incidentAvgDelay(incident string) float64 {
	if r.aggs == nil {
		if est, ok := incidentDelayEstimates[incident]; ok {
			return est
		}
		return defaultIncidentDelay
	}
	if mean, ok := r.aggs.IncidentMeanDelay(incident); ok {
		return mean
	}
	return r.aggs.MeanIncidentDelay()
}

// setOneHots fills the incident, direction and day-name one-hot families.
// An incident type with no matching schema column collapses to the "Other"
// bucket, replicating the training-time rare-type collapse.
func (r *Reconstructor) setOneHots(v *Vector, req Request) {
	incidentSeen := false
	for _, col := range r.schema.ColumnsWithPrefix(incidentPrefix) {
		name := strings.TrimPrefix(col, incidentPrefix)
		if name == otherIncident {
			continue
		}
		if req.Incident == name {
			v.set(col, 1)
			incidentSeen = true
		}
	}
	if !incidentSeen {
		v.set(incidentPrefix+otherIncident, 1)
	}

	for _, col := range r.schema.ColumnsWithPrefix(directionPrefix) {
		if req.Direction == strings.TrimPrefix(col, directionPrefix) {
			v.set(col, 1)
		}
	}

	dayName := dayNames[weekday(req.Time)]
	for _, col := range r.schema.ColumnsWithPrefix(dayPrefix) {
		if dayName == strings.TrimPrefix(col, dayPrefix) {
			v.set(col, 1)
		}
	}
}

func (r *Reconstructor) setLocationAggregates(v *Vector, lat, lon float64) {
	if r.aggs == nil {
		v.set("spatial_cell_avg_delay", defaultCellDelay)
		v.set("location_frequency", defaultLocationFrequency)
		return
	}
	if mean, count, ok := r.aggs.CellStats(lat, lon); ok {
		v.set("spatial_cell_avg_delay", mean)
		v.set("location_frequency", float64(count))
		return
	}
	v.set("spatial_cell_avg_delay", r.aggs.MeanDelay())
	v.set("location_frequency", defaultLocationFrequency)
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
