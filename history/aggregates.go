package history

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/theoremus-urban-solutions/delay-prediction-engine/utils"
)

// DefaultCellSize is the spatial bucket width, in degrees, used for
// location-level delay statistics.
const DefaultCellSize = 0.01

type cellKey struct {
	row, col int
}

type cellPoint struct {
	lat, lon float64
	delay    float64
}

// Aggregates holds the historical statistics the feature reconstructor
// consumes. Built once, immutable afterwards, safe for concurrent reads.
type Aggregates struct {
	routeFreq         map[string]float64
	medianRouteFreq   float64
	incidentDelay     map[string]float64
	meanIncidentDelay float64
	meanDelay         float64
	incidentTypes     []string
	cells             map[cellKey][]cellPoint
	cellSize          float64
}

// BuildAggregates computes route frequencies, per-incident-type mean delays
// and spatial delay cells from the historical incidents. cellSize is the
// spatial bucket width in degrees; values <= 0 fall back to DefaultCellSize.
// Only geocoded incidents contribute to the spatial cells.
func BuildAggregates(incidents []Incident, cellSize float64) *Aggregates {
	if cellSize <= 0 {
		cellSize = DefaultCellSize
	}
	agg := &Aggregates{
		routeFreq:     make(map[string]float64),
		incidentDelay: make(map[string]float64),
		cells:         make(map[cellKey][]cellPoint),
		cellSize:      cellSize,
	}

	delaySums := make(map[string]float64)
	delayCounts := make(map[string]int)
	allDelays := make([]float64, 0, len(incidents))
	for _, inc := range incidents {
		if inc.Route != "" {
			agg.routeFreq[inc.Route]++
		}
		if inc.Incident != "" {
			delaySums[inc.Incident] += inc.MinDelay
			delayCounts[inc.Incident]++
		}
		allDelays = append(allDelays, inc.MinDelay)

		if inc.Geocoded {
			row, col := utils.CellKey(inc.Latitude, inc.Longitude, cellSize)
			key := cellKey{row, col}
			agg.cells[key] = append(agg.cells[key], cellPoint{
				lat:   inc.Latitude,
				lon:   inc.Longitude,
				delay: inc.MinDelay,
			})
		}
	}

	if len(agg.routeFreq) > 0 {
		freqs := make([]float64, 0, len(agg.routeFreq))
		for _, f := range agg.routeFreq {
			freqs = append(freqs, f)
		}
		sort.Float64s(freqs)
		agg.medianRouteFreq = stat.Quantile(0.5, stat.LinInterp, freqs, nil)
	}

	if len(delaySums) > 0 {
		means := make([]float64, 0, len(delaySums))
		agg.incidentTypes = make([]string, 0, len(delaySums))
		for incident, sum := range delaySums {
			mean := sum / float64(delayCounts[incident])
			agg.incidentDelay[incident] = mean
			agg.incidentTypes = append(agg.incidentTypes, incident)
			means = append(means, mean)
		}
		sort.Strings(agg.incidentTypes)
		agg.meanIncidentDelay = stat.Mean(means, nil)
	}

	if len(allDelays) > 0 {
		agg.meanDelay = stat.Mean(allDelays, nil)
	}
	return agg
}

// RouteFrequency returns the number of historical incidents on route.
func (a *Aggregates) RouteFrequency(route string) (float64, bool) {
	f, ok := a.routeFreq[route]
	return f, ok
}

// MedianRouteFrequency returns the median per-route incident count, the
// fallback for routes missing from the history.
func (a *Aggregates) MedianRouteFrequency() float64 {
	return a.medianRouteFreq
}

// IncidentMeanDelay returns the historical mean delay for an incident type.
func (a *Aggregates) IncidentMeanDelay(incident string) (float64, bool) {
	d, ok := a.incidentDelay[incident]
	return d, ok
}

// MeanIncidentDelay returns the mean of the per-type mean delays, the
// fallback for unseen incident types.
func (a *Aggregates) MeanIncidentDelay() float64 {
	return a.meanIncidentDelay
}

// MeanDelay returns the dataset-wide mean delay.
func (a *Aggregates) MeanDelay() float64 {
	return a.meanDelay
}

// IncidentTypes returns the distinct incident types seen in the history,
// sorted.
func (a *Aggregates) IncidentTypes() []string {
	return a.incidentTypes
}

// CellStats returns the mean delay and incident count within the square
// window of one cell width around the given point. ok is false when no
// geocoded incident falls inside the window.
func (a *Aggregates) CellStats(lat, lon float64) (float64, int, bool) {
	row, col := utils.CellKey(lat, lon, a.cellSize)

	var sum float64
	var count int
	for dr := -1; dr <= 1; dr++ {
		for dc := -1; dc <= 1; dc++ {
			for _, p := range a.cells[cellKey{row + dr, col + dc}] {
				if math.Abs(p.lat-lat) < a.cellSize && math.Abs(p.lon-lon) < a.cellSize {
					sum += p.delay
					count++
				}
			}
		}
	}
	if count == 0 {
		return 0, 0, false
	}
	return sum / float64(count), count, true
}
