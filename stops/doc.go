// Package stops loads the reference stop registry the resolver matches
// incident locations against.
//
// The loader accepts a bare stops.txt CSV or a full GTFS zip bundle; only
// stop_name, stop_lat and stop_lon are required. It does NOT handle HTTP
// downloads - fetch the file with your own tooling and hand it a path or
// reader.
package stops
