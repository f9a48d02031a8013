package history

import (
	"database/sql"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"gonum.org/v1/gonum/stat"
	_ "modernc.org/sqlite"

	"github.com/theoremus-urban-solutions/delay-prediction-engine/utils"
)

// DB wraps the incident database.
type DB struct {
	*sql.DB
}

// Open opens (or creates) the incident database at path.
func Open(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open incident db: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS incidents (
			timestamp TEXT NOT NULL,
			route TEXT,
			day TEXT,
			location TEXT NOT NULL,
			incident TEXT,
			min_delay DOUBLE,
			min_gap DOUBLE,
			direction TEXT,
			vehicle TEXT,
			latitude DOUBLE,
			longitude DOUBLE,
			geocoded INTEGER NOT NULL DEFAULT 0
		);
		CREATE INDEX IF NOT EXISTS idx_incidents_timestamp ON incidents(timestamp);
		CREATE TABLE IF NOT EXISTS geocode_runs (
			id TEXT PRIMARY KEY,
			started_at TEXT NOT NULL,
			finished_at TEXT NOT NULL,
			total INTEGER,
			exact INTEGER,
			station INTEGER,
			intersection INTEGER,
			partial INTEGER,
			failed INTEGER
		);
	`)
	if err != nil {
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &DB{db}, nil
}

// InsertIncidents writes a batch of incidents in one transaction.
func (db *DB) InsertIncidents(incidents []Incident) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin insert tx: %w", err)
	}
	stmt, err := tx.Prepare(`
		INSERT INTO incidents (
			timestamp, route, day, location, incident,
			min_delay, min_gap, direction, vehicle,
			latitude, longitude, geocoded
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, inc := range incidents {
		_, err := stmt.Exec(
			utils.Iso8601FromTime(inc.Timestamp),
			inc.Route,
			inc.Day,
			inc.Location,
			inc.Incident,
			inc.MinDelay,
			inc.MinGap,
			inc.Direction,
			inc.Vehicle,
			inc.Latitude,
			inc.Longitude,
			inc.Geocoded,
		)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("insert incident: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit insert tx: %w", err)
	}
	return nil
}

// Incidents returns every stored incident, oldest first.
func (db *DB) Incidents() ([]Incident, error) {
	rows, err := db.Query(`
		SELECT timestamp, route, day, location, incident,
			min_delay, min_gap, direction, vehicle,
			latitude, longitude, geocoded
		FROM incidents ORDER BY timestamp ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query incidents: %w", err)
	}
	defer rows.Close()

	var incidents []Incident
	for rows.Next() {
		var inc Incident
		var ts string
		err := rows.Scan(&ts, &inc.Route, &inc.Day, &inc.Location, &inc.Incident,
			&inc.MinDelay, &inc.MinGap, &inc.Direction, &inc.Vehicle,
			&inc.Latitude, &inc.Longitude, &inc.Geocoded)
		if err != nil {
			return nil, fmt.Errorf("scan incident row: %w", err)
		}
		inc.Timestamp, err = time.Parse(time.RFC3339, ts)
		if err != nil {
			return nil, fmt.Errorf("parse stored timestamp %q: %w", ts, err)
		}
		incidents = append(incidents, inc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return incidents, nil
}

// SaveRun records a completed geocode run.
func (db *DB) SaveRun(run GeocodeRun) error {
	_, err := db.Exec(`
		INSERT INTO geocode_runs (
			id, started_at, finished_at,
			total, exact, station, intersection, partial, failed
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		run.ID,
		utils.Iso8601FromTime(run.StartedAt),
		utils.Iso8601FromTime(run.FinishedAt),
		run.Total, run.Exact, run.Station, run.Intersection, run.Partial, run.Failed,
	)
	if err != nil {
		return fmt.Errorf("insert geocode run: %w", err)
	}
	return nil
}

// Runs returns all recorded geocode runs, newest first.
func (db *DB) Runs() ([]GeocodeRun, error) {
	rows, err := db.Query(`
		SELECT id, started_at, finished_at,
			total, exact, station, intersection, partial, failed
		FROM geocode_runs ORDER BY started_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("query geocode runs: %w", err)
	}
	defer rows.Close()

	var runs []GeocodeRun
	for rows.Next() {
		var run GeocodeRun
		var started, finished string
		err := rows.Scan(&run.ID, &started, &finished,
			&run.Total, &run.Exact, &run.Station, &run.Intersection, &run.Partial, &run.Failed)
		if err != nil {
			return nil, fmt.Errorf("scan geocode run row: %w", err)
		}
		if run.StartedAt, err = time.Parse(time.RFC3339, started); err != nil {
			return nil, fmt.Errorf("parse run started_at %q: %w", started, err)
		}
		if run.FinishedAt, err = time.Parse(time.RFC3339, finished); err != nil {
			return nil, fmt.Errorf("parse run finished_at %q: %w", finished, err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return runs, nil
}

// LocationMatch summarizes the stored incidents at one geocoded location.
type LocationMatch struct {
	Location  string   `json:"location"`
	Latitude  float64  `json:"latitude"`
	Longitude float64  `json:"longitude"`
	Routes    []string `json:"routes"`
	Count     int      `json:"count"`
}

// SearchLocations finds geocoded incident locations containing the query,
// case-insensitively. Coordinates are the per-location medians; routes are
// sorted and distinct. Results are ordered by incident count, capped at
// limit (default 10).
func (db *DB) SearchLocations(query string, limit int) ([]LocationMatch, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("empty location query")
	}
	if limit <= 0 {
		limit = 10
	}

	rows, err := db.Query(`
		SELECT location, latitude, longitude, route
		FROM incidents
		WHERE geocoded = 1 AND LOWER(location) LIKE ?
	`, "%"+strings.ToLower(query)+"%")
	if err != nil {
		return nil, fmt.Errorf("query locations: %w", err)
	}
	defer rows.Close()

	type locationAccum struct {
		lats, lons []float64
		routes     map[string]struct{}
		count      int
	}
	groups := make(map[string]*locationAccum)
	var order []string
	for rows.Next() {
		var location, route string
		var lat, lon float64
		if err := rows.Scan(&location, &lat, &lon, &route); err != nil {
			return nil, fmt.Errorf("scan location row: %w", err)
		}
		acc, ok := groups[location]
		if !ok {
			acc = &locationAccum{routes: make(map[string]struct{})}
			groups[location] = acc
			order = append(order, location)
		}
		acc.lats = append(acc.lats, lat)
		acc.lons = append(acc.lons, lon)
		if route != "" {
			acc.routes[route] = struct{}{}
		}
		acc.count++
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	matches := make([]LocationMatch, 0, len(groups))
	for _, location := range order {
		acc := groups[location]
		routes := make([]string, 0, len(acc.routes))
		for r := range acc.routes {
			routes = append(routes, r)
		}
		sort.Strings(routes)
		matches = append(matches, LocationMatch{
			Location:  location,
			Latitude:  median(acc.lats),
			Longitude: median(acc.lons),
			Routes:    routes,
			Count:     acc.count,
		})
	}
	sort.SliceStable(matches, func(i, j int) bool { return matches[i].Count > matches[j].Count })
	if len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}

// TimeRange describes the stored data coverage.
type TimeRange struct {
	Earliest  time.Time `json:"earliest"`
	Latest    time.Time `json:"latest"`
	Incidents int       `json:"incidents"`
}

// TimeRange reports the earliest and latest stored incident timestamps and
// the row count.
func (db *DB) TimeRange() (TimeRange, error) {
	var tr TimeRange
	var earliest, latest sql.NullString
	err := db.QueryRow(`SELECT MIN(timestamp), MAX(timestamp), COUNT(*) FROM incidents`).
		Scan(&earliest, &latest, &tr.Incidents)
	if err != nil {
		return TimeRange{}, fmt.Errorf("query time range: %w", err)
	}
	if tr.Incidents == 0 {
		return tr, nil
	}
	if tr.Earliest, err = time.Parse(time.RFC3339, earliest.String); err != nil {
		return TimeRange{}, fmt.Errorf("parse earliest timestamp %q: %w", earliest.String, err)
	}
	if tr.Latest, err = time.Parse(time.RFC3339, latest.String); err != nil {
		return TimeRange{}, fmt.Errorf("parse latest timestamp %q: %w", latest.String, err)
	}
	return tr, nil
}

// HeatmapCell is one populated spatial cell of a heatmap.
type HeatmapCell struct {
	Row       int     `json:"row"`
	Col       int     `json:"col"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Count     int     `json:"count"`
	AvgDelay  float64 `json:"avg_delay"`
	MaxDelay  float64 `json:"max_delay"`
}

// Heatmap bins geocoded incidents into a spatial grid over the data extent,
// with an hour-of-day histogram alongside.
type Heatmap struct {
	MinLat   float64       `json:"min_lat"`
	MaxLat   float64       `json:"max_lat"`
	MinLon   float64       `json:"min_lon"`
	MaxLon   float64       `json:"max_lon"`
	GridSize int           `json:"grid_size"`
	Cells    []HeatmapCell `json:"cells"`
	Hours    [24]int       `json:"hours"`
}

// Heatmap builds a gridSize x gridSize delay heatmap from the geocoded
// incidents between start and end with at least minDelay minutes of delay.
// gridSize defaults to 20.
func (db *DB) Heatmap(start, end time.Time, gridSize int, minDelay float64) (*Heatmap, error) {
	if gridSize <= 0 {
		gridSize = 20
	}

	rows, err := db.Query(`
		SELECT timestamp, latitude, longitude, min_delay
		FROM incidents
		WHERE geocoded = 1 AND min_delay >= ? AND timestamp >= ? AND timestamp <= ?
	`, minDelay, utils.Iso8601FromTime(start), utils.Iso8601FromTime(end))
	if err != nil {
		return nil, fmt.Errorf("query heatmap points: %w", err)
	}
	defer rows.Close()

	type point struct {
		hour     int
		lat, lon float64
		delay    float64
	}
	var points []point
	for rows.Next() {
		var ts string
		var p point
		if err := rows.Scan(&ts, &p.lat, &p.lon, &p.delay); err != nil {
			return nil, fmt.Errorf("scan heatmap row: %w", err)
		}
		t, err := time.Parse(time.RFC3339, ts)
		if err != nil {
			return nil, fmt.Errorf("parse stored timestamp %q: %w", ts, err)
		}
		p.hour = t.Hour()
		points = append(points, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	hm := &Heatmap{GridSize: gridSize}
	if len(points) == 0 {
		return hm, nil
	}

	hm.MinLat, hm.MaxLat = points[0].lat, points[0].lat
	hm.MinLon, hm.MaxLon = points[0].lon, points[0].lon
	for _, p := range points[1:] {
		hm.MinLat = math.Min(hm.MinLat, p.lat)
		hm.MaxLat = math.Max(hm.MaxLat, p.lat)
		hm.MinLon = math.Min(hm.MinLon, p.lon)
		hm.MaxLon = math.Max(hm.MaxLon, p.lon)
	}

	latSpan := hm.MaxLat - hm.MinLat
	lonSpan := hm.MaxLon - hm.MinLon
	cellIndex := func(v, min, span float64) int {
		if span == 0 {
			return 0
		}
		i := int((v - min) / span * float64(gridSize))
		if i >= gridSize {
			i = gridSize - 1
		}
		return i
	}

	type cellAccum struct {
		count int
		sum   float64
		max   float64
	}
	cells := make(map[[2]int]*cellAccum)
	for _, p := range points {
		hm.Hours[p.hour]++
		key := [2]int{cellIndex(p.lat, hm.MinLat, latSpan), cellIndex(p.lon, hm.MinLon, lonSpan)}
		acc, ok := cells[key]
		if !ok {
			acc = &cellAccum{}
			cells[key] = acc
		}
		acc.count++
		acc.sum += p.delay
		acc.max = math.Max(acc.max, p.delay)
	}

	for key, acc := range cells {
		row, col := key[0], key[1]
		hm.Cells = append(hm.Cells, HeatmapCell{
			Row:       row,
			Col:       col,
			Latitude:  hm.MinLat + (float64(row)+0.5)*latSpan/float64(gridSize),
			Longitude: hm.MinLon + (float64(col)+0.5)*lonSpan/float64(gridSize),
			Count:     acc.count,
			AvgDelay:  acc.sum / float64(acc.count),
			MaxDelay:  acc.max,
		})
	}
	sort.Slice(hm.Cells, func(i, j int) bool {
		if hm.Cells[i].Row != hm.Cells[j].Row {
			return hm.Cells[i].Row < hm.Cells[j].Row
		}
		return hm.Cells[i].Col < hm.Cells[j].Col
	})
	return hm, nil
}

// median returns the linear-interpolated median of xs.
func median(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sorted := make([]float64, len(xs))
	copy(sorted, xs)
	sort.Float64s(sorted)
	return stat.Quantile(0.5, stat.LinInterp, sorted, nil)
}
