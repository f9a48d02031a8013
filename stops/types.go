package stops

// Stop is one stop registry entry. Name is the free-form display name
// incident location strings are resolved against.
type Stop struct {
	ID        string  `json:"stop_id,omitempty"`
	Name      string  `json:"stop_name"`
	Latitude  float64 `json:"stop_lat"`
	Longitude float64 `json:"stop_lon"`
}
