package history

import (
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/theoremus-urban-solutions/delay-prediction-engine/utils"
)

// headerAliases maps the column-name variants seen across export vintages to
// their canonical names.
var headerAliases = map[string]string{
	"report_date": "date",
	"min__delay":  "min_delay",
	"delay":       "min_delay",
	"min__gap":    "min_gap",
	"gap":         "min_gap",
}

func canonicalHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	h = strings.ReplaceAll(h, " ", "_")
	h = strings.ReplaceAll(h, "-", "_")
	if alias, ok := headerAliases[h]; ok {
		return alias
	}
	return h
}

var directions = map[string]string{
	"E": "E", "EB": "E",
	"W": "W", "WB": "W",
	"N": "N", "NB": "N",
	"S": "S", "SB": "S",
}

// NormalizeDirection collapses the direction variants ("EB", "eb", " E ") to
// single-letter compass values. Unrecognized values become "Other"; an empty
// value stays empty.
func NormalizeDirection(raw string) string {
	d := strings.ToUpper(strings.TrimSpace(raw))
	if d == "" {
		return ""
	}
	if canon, ok := directions[d]; ok {
		return canon
	}
	return "Other"
}

// LoadCSV reads a historical delay export from disk.
func LoadCSV(path string) ([]Incident, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open incident csv: %w", err)
	}
	defer f.Close()
	return ReadCSV(f)
}

// ReadCSV parses a historical delay export. Headers are canonicalized before
// lookup, so "Report Date", "Min Delay" and "Min-Delay" all resolve. Rows
// without a usable timestamp or location are skipped and counted.
func ReadCSV(r io.Reader) ([]Incident, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read incident csv: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("empty incident file")
	}

	head := records[0]
	if len(head) > 0 {
		head[0] = strings.TrimPrefix(head[0], "\ufeff")
	}
	cols := make(map[string]int, len(head))
	for i, h := range head {
		name := canonicalHeader(h)
		if _, seen := cols[name]; !seen {
			cols[name] = i
		}
	}
	field := func(row []string, name string) string {
		i, ok := cols[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	if _, ok := cols["location"]; !ok {
		return nil, fmt.Errorf("incident file missing location column")
	}
	_, hasDate := cols["date"]
	_, hasTimestamp := cols["timestamp"]
	if !hasDate && !hasTimestamp {
		return nil, fmt.Errorf("incident file missing date column")
	}

	incidents := make([]Incident, 0, len(records)-1)
	skipped := 0
	for _, row := range records[1:] {
		location := field(row, "location")
		if location == "" {
			skipped++
			continue
		}

		var ts time.Time
		var tsErr error
		if raw := field(row, "timestamp"); raw != "" {
			ts, tsErr = utils.ParseTimestamp(raw)
		} else {
			ts, tsErr = utils.CombineDateTime(field(row, "date"), field(row, "time"))
		}
		if tsErr != nil {
			skipped++
			continue
		}

		inc := Incident{
			Timestamp: ts,
			Route:     field(row, "route"),
			Day:       field(row, "day"),
			Location:  location,
			Incident:  field(row, "incident"),
			MinDelay:  parseFloat(field(row, "min_delay")),
			MinGap:    parseFloat(field(row, "min_gap")),
			Direction: NormalizeDirection(field(row, "direction")),
			Vehicle:   field(row, "vehicle"),
		}
		if lat, lon, ok := parseCoords(field(row, "latitude"), field(row, "longitude")); ok {
			inc.Latitude = lat
			inc.Longitude = lon
			inc.Geocoded = true
		}
		incidents = append(incidents, inc)
	}
	if skipped > 0 {
		log.Printf("history: skipped %d rows without usable timestamp or location", skipped)
	}
	return incidents, nil
}

func parseFloat(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

// parseCoords accepts rows that already carry coordinates from an earlier
// run. The 0,0 pair is treated as unset.
func parseCoords(latStr, lonStr string) (float64, float64, bool) {
	if latStr == "" || lonStr == "" {
		return 0, 0, false
	}
	lat, errLat := strconv.ParseFloat(latStr, 64)
	lon, errLon := strconv.ParseFloat(lonStr, 64)
	if errLat != nil || errLon != nil {
		return 0, 0, false
	}
	if lat == 0 && lon == 0 {
		return 0, 0, false
	}
	return lat, lon, true
}
