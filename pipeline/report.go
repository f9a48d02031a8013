package pipeline

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/theoremus-urban-solutions/delay-prediction-engine/history"
)

// geocodedHeader is the canonical column order of a geocoded export.
var geocodedHeader = []string{
	"date", "route", "time", "day", "location", "incident",
	"min_delay", "min_gap", "direction", "vehicle",
	"latitude", "longitude", "geocoded",
}

// WriteReportJSON writes an indented run report.
func WriteReportJSON(w io.Writer, report Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return fmt.Errorf("encode geocode report: %w", err)
	}
	return nil
}

// WriteGeocodedCSV writes incidents back out in the canonical export column
// order, with the timestamp split into its date and time columns.
func WriteGeocodedCSV(w io.Writer, incidents []history.Incident) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(geocodedHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, inc := range incidents {
		lat, lon, geocoded := "", "", "0"
		if inc.Geocoded {
			lat = strconv.FormatFloat(inc.Latitude, 'f', -1, 64)
			lon = strconv.FormatFloat(inc.Longitude, 'f', -1, 64)
			geocoded = "1"
		}
		row := []string{
			inc.Timestamp.Format("2006-01-02"),
			inc.Route,
			inc.Timestamp.Format("15:04:05"),
			inc.Day,
			inc.Location,
			inc.Incident,
			strconv.FormatFloat(inc.MinDelay, 'f', -1, 64),
			strconv.FormatFloat(inc.MinGap, 'f', -1, 64),
			inc.Direction,
			inc.Vehicle,
			lat,
			lon,
			geocoded,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}
