// Package features rebuilds, for a single prediction request, the exact
// feature vector shape a trained delay model was fitted on. The schema
// captured at training time is the contract: every reconstructed vector
// covers its column set and order exactly, with historical aggregates
// filling the columns a lone request cannot derive.
package features
