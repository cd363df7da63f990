package matching

import (
	"math"

	"github.com/theoremus-urban-solutions/fleet-pairs/fleet"
	"github.com/theoremus-urban-solutions/fleet-pairs/geo"
)

// Merge returns current when it holds any record, otherwise last.
func Merge(current, last []fleet.Position) []fleet.Position {
	if len(current) > 0 {
		return current
	}
	return last
}

// Reconcile merges both asset classes and assigns every trailer.
func Reconcile(in Input) Result {
	trucks := Merge(in.Trucks, in.LastTrucks)
	trailers := Merge(in.Trailers, in.LastTrailers)
	return Result{
		Assignments: Match(trucks, trailers, in.Yard),
		Trucks:      trucks,
		Trailers:    trailers,
	}
}

// Match produces exactly one assignment per trailer, in trailer order.
func Match(trucks, trailers []fleet.Position, yard Yard) []Assignment {
	out := make([]Assignment, 0, len(trailers))
	for _, tr := range trailers {
		out = append(out, assign(tr, trucks, yard))
	}
	return out
}

// InYard reports whether c lies within the yard radius, boundary included.
func (y Yard) InYard(c fleet.Coordinate) bool {
	return geo.HaversineMiles(c, y.Center) <= y.RadiusMiles
}

func assign(trailer fleet.Position, trucks []fleet.Position, yard Yard) Assignment {
	a := Assignment{TrailerID: trailer.ID, Trailer: trailer.Clone()}

	if !trailer.Known() {
		a.Status = StatusUnknownTrailerPosition
		return a
	}
	if yard.InYard(*trailer.Position) {
		zero := 0.0
		a.Status = StatusYardSolo
		a.DistanceMiles = &zero
		return a
	}

	best := -1
	bestDist := math.Inf(1)
	for i, tk := range trucks {
		if !tk.Known() {
			continue
		}
		// strict less-than keeps the first truck on ties and never selects NaN
		if d := geo.HaversineMiles(*trailer.Position, *tk.Position); d < bestDist {
			best, bestDist = i, d
		}
	}
	if best < 0 {
		a.Status = StatusNoTruckAvailable
		return a
	}

	truck := trucks[best].Clone()
	truckID := truck.ID
	dist := geo.RoundTo(bestDist, DistanceDigits)
	a.Status = StatusPaired
	a.TruckID = &truckID
	a.DistanceMiles = &dist
	a.Truck = &truck
	return a
}

// Summarize counts assignments per status. Every status is present.
func Summarize(as []Assignment) map[Status]int {
	counts := make(map[Status]int, len(Statuses))
	for _, s := range Statuses {
		counts[s] = 0
	}
	for _, a := range as {
		counts[a.Status]++
	}
	return counts
}
