// Package history loads, stores and summarizes historical delay incidents.
//
// The loader reads the published delay exports (CSV with per-agency header
// quirks), the store persists incidents and geocode runs in SQLite, and
// Aggregates precomputes the route, incident-type and spatial statistics the
// feature reconstructor consumes.
package history
