// Package pipeline runs batch geocoding over historical incident exports:
// a worker pool resolves each row's location text against the shared
// read-only reference index and the run is summarized in a match-rate
// report. Each row is independent, so the map is embarrassingly parallel.
package pipeline
