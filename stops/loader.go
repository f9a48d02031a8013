package stops

import (
	"archive/zip"
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Load reads a stop registry from path. A ".zip" path is treated as a GTFS
// bundle containing stops.txt; anything else is parsed as stops.txt CSV.
func Load(path string) ([]Stop, error) {
	if strings.EqualFold(filepath.Ext(path), ".zip") {
		return loadFromZip(path)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return FromReader(f)
}

func loadFromZip(path string) ([]Stop, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, err
	}
	defer zr.Close()
	for _, f := range zr.File {
		if strings.ToLower(f.Name) != "stops.txt" {
			continue
		}
		r, err := f.Open()
		if err != nil {
			return nil, err
		}
		defer r.Close()
		return FromReader(r)
	}
	return nil, fmt.Errorf("no stops.txt in %s", path)
}

// FromReader parses stops.txt CSV content. Rows with a missing name or
// unparseable coordinates are skipped and counted, not fatal.
func FromReader(r io.Reader) ([]Stop, error) {
	csvr := csv.NewReader(r)
	rec, err := csvr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rec) == 0 {
		return nil, fmt.Errorf("empty stops file")
	}
	head := rec[0]
	if len(head) > 0 {
		head[0] = strings.TrimPrefix(head[0], "\ufeff")
	}
	idx := func(col string) int {
		for i, h := range head {
			if strings.EqualFold(strings.TrimSpace(h), col) {
				return i
			}
		}
		return -1
	}
	sID := idx("stop_id")
	sN := idx("stop_name")
	sLat := idx("stop_lat")
	sLon := idx("stop_lon")
	if sN < 0 || sLat < 0 || sLon < 0 {
		return nil, fmt.Errorf("stops file missing required headers stop_name/stop_lat/stop_lon")
	}
	out := make([]Stop, 0, len(rec)-1)
	skipped := 0
	for _, row := range rec[1:] {
		if sN >= len(row) || sLat >= len(row) || sLon >= len(row) {
			skipped++
			continue
		}
		name := strings.TrimSpace(row[sN])
		if name == "" {
			skipped++
			continue
		}
		lat, errLat := strconv.ParseFloat(strings.TrimSpace(row[sLat]), 64)
		lon, errLon := strconv.ParseFloat(strings.TrimSpace(row[sLon]), 64)
		if errLat != nil || errLon != nil {
			skipped++
			continue
		}
		s := Stop{Name: name, Latitude: lat, Longitude: lon}
		if sID >= 0 && sID < len(row) {
			s.ID = strings.TrimSpace(row[sID])
		}
		out = append(out, s)
	}
	if skipped > 0 {
		log.Printf("stops: skipped %d rows with missing name or coordinates", skipped)
	}
	return out, nil
}
