// Package geo provides the great-circle distance used for yard
// classification and nearest-truck matching.
//
// It contains:
//   - HaversineMiles, the surface distance in statute miles
//   - RoundTo, the rounding applied to reported distances
//   - Shared constants
package geo
