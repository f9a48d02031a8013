package features

import "time"

// Request is one prediction query. Validation happens at the serving
// boundary (engine/CLI) before reconstruction; the reconstructor assumes a
// well-typed request.
type Request struct {
	Time      time.Time `json:"time" validate:"required"`
	Latitude  float64   `json:"latitude" validate:"gte=-90,lte=90"`
	Longitude float64   `json:"longitude" validate:"gte=-180,lte=180"`
	Route     string    `json:"route"`
	Incident  string    `json:"incident"`
	Direction string    `json:"direction"`
}
