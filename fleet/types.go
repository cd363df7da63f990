package fleet

import (
	"math"
	"time"
)

// AssetClass names one of the two independently polled asset populations.
type AssetClass string

const (
	Trucks   AssetClass = "trucks"
	Trailers AssetClass = "trailers"
)

// Classes lists every asset class in a stable order.
var Classes = []AssetClass{Trucks, Trailers}

// Coordinate is a latitude/longitude pair in decimal degrees.
type Coordinate struct {
	Lat float64 `json:"lat" cbor:"lat"`
	Lon float64 `json:"lon" cbor:"lon"`
}

// Valid reports whether both components are finite numbers.
func (c Coordinate) Valid() bool {
	return !math.IsNaN(c.Lat) && !math.IsInf(c.Lat, 0) &&
		!math.IsNaN(c.Lon) && !math.IsInf(c.Lon, 0)
}

// Position is one normalized report for a truck or trailer.
type Position struct {
	ID       string      `json:"id" cbor:"id"`
	Position *Coordinate `json:"position,omitempty" cbor:"position,omitempty"`
	LastSeen *time.Time  `json:"lastSeen,omitempty" cbor:"lastSeen,omitempty"`
}

// Known reports whether the report carries a coordinate.
func (p Position) Known() bool { return p.Position != nil }

// Dedupe collapses reports sharing an ID. The last report for an ID wins
// but keeps the slot of the first occurrence, so iteration order stays
// the provider's order.
func Dedupe(in []Position) []Position {
	if len(in) < 2 {
		return in
	}
	index := make(map[string]int, len(in))
	out := make([]Position, 0, len(in))
	for _, p := range in {
		if i, ok := index[p.ID]; ok {
			out[i] = p
			continue
		}
		index[p.ID] = len(out)
		out = append(out, p)
	}
	return out
}

// Clone returns a deep copy so callers may hold a snapshot without
// sharing coordinate pointers with a later pass.
func Clone(in []Position) []Position {
	if in == nil {
		return nil
	}
	out := make([]Position, len(in))
	for i, p := range in {
		out[i] = p.Clone()
	}
	return out
}

// Clone copies the report including its coordinate and timestamp.
func (p Position) Clone() Position {
	if p.Position != nil {
		c := *p.Position
		p.Position = &c
	}
	if p.LastSeen != nil {
		t := *p.LastSeen
		p.LastSeen = &t
	}
	return p
}
