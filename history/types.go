package history

import "time"

// Incident is one delay report from a historical export.
type Incident struct {
	Timestamp time.Time `json:"timestamp"`
	Route     string    `json:"route"`
	Day       string    `json:"day"`
	Location  string    `json:"location"`
	Incident  string    `json:"incident"`
	MinDelay  float64   `json:"min_delay"`
	MinGap    float64   `json:"min_gap"`
	Direction string    `json:"direction"`
	Vehicle   string    `json:"vehicle"`
	Latitude  float64   `json:"latitude,omitempty"`
	Longitude float64   `json:"longitude,omitempty"`
	Geocoded  bool      `json:"geocoded"`
}

// GeocodeRun records one pipeline pass over an export, with per-method match
// counts.
type GeocodeRun struct {
	ID           string    `json:"id"`
	StartedAt    time.Time `json:"started_at"`
	FinishedAt   time.Time `json:"finished_at"`
	Total        int       `json:"total"`
	Exact        int       `json:"exact"`
	Station      int       `json:"station"`
	Intersection int       `json:"intersection"`
	Partial      int       `json:"partial"`
	Failed       int       `json:"failed"`
}
