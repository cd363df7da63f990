package matching

import (
	"github.com/theoremus-urban-solutions/fleet-pairs/fleet"
)

// Status classifies one trailer's outcome for a pass.
type Status string

const (
	StatusPaired                 Status = "paired"
	StatusYardSolo               Status = "yard_solo"
	StatusNoTruckAvailable       Status = "no_truck_available"
	StatusUnknownTrailerPosition Status = "unknown_trailer_position"
)

// Statuses lists every status in a stable order.
var Statuses = []Status{
	StatusPaired,
	StatusYardSolo,
	StatusNoTruckAvailable,
	StatusUnknownTrailerPosition,
}

// DistanceDigits is the precision of reported pair distances.
const DistanceDigits = 2

// Yard is the circular geofence exempting parked trailers from matching.
type Yard struct {
	Center      fleet.Coordinate `json:"center" cbor:"center"`
	RadiusMiles float64          `json:"radiusMiles" cbor:"radiusMiles"`
}

// Assignment is one trailer's result. DistanceMiles is set exactly when
// Status is paired or yard_solo; TruckID and Truck only when paired.
type Assignment struct {
	TrailerID     string          `json:"trailerId" cbor:"trailerId"`
	TruckID       *string         `json:"truckId" cbor:"truckId"`
	DistanceMiles *float64        `json:"distanceMiles" cbor:"distanceMiles"`
	Status        Status          `json:"status" cbor:"status"`
	Trailer       fleet.Position  `json:"trailer" cbor:"trailer"`
	Truck         *fleet.Position `json:"truck" cbor:"truck"`
}

// Input is everything one reconciliation pass needs.
type Input struct {
	// Trucks and Trailers are this pass's poll results, possibly empty.
	Trucks   []fleet.Position
	Trailers []fleet.Position
	// LastTrucks and LastTrailers are the stored snapshots.
	LastTrucks   []fleet.Position
	LastTrailers []fleet.Position
	Yard         Yard
}

// Result carries the assignments and the merged sets they were computed
// from.
type Result struct {
	Assignments []Assignment
	Trucks      []fleet.Position
	Trailers    []fleet.Position
}
