// Package utils provides internal utility functions shared across the
// delay prediction engine.
//
// It contains:
//   - Timestamp parsing and formatting for the historical incident exports
//   - Degree-space distance and grid-cell helpers
package utils
