package matching

import (
	"encoding/json"
	"math"
	"reflect"
	"strings"
	"testing"

	"github.com/theoremus-urban-solutions/fleet-pairs/fleet"
	"github.com/theoremus-urban-solutions/fleet-pairs/geo"
)

var testYard = Yard{Center: fleet.Coordinate{Lat: 41.43063, Lon: -88.19651}, RadiusMiles: 0.5}

func at(id string, lat, lon float64) fleet.Position {
	return fleet.Position{ID: id, Position: &fleet.Coordinate{Lat: lat, Lon: lon}}
}

func unknown(id string) fleet.Position { return fleet.Position{ID: id} }

func checkAssignments(t *testing.T, trucks, trailers []fleet.Position, got []Assignment) {
	t.Helper()
	if len(got) != len(trailers) {
		t.Fatalf("got %d assignments for %d trailers", len(got), len(trailers))
	}
	known := map[string]bool{}
	for _, tk := range trucks {
		if tk.Position != nil {
			known[tk.ID] = true
		}
	}
	for i, a := range got {
		if a.TrailerID != trailers[i].ID {
			t.Errorf("assignment %d is for %q, want %q", i, a.TrailerID, trailers[i].ID)
		}
		wantDist := a.Status == StatusPaired || a.Status == StatusYardSolo
		if (a.DistanceMiles != nil) != wantDist {
			t.Errorf("trailer %s: status %s with distance %v", a.TrailerID, a.Status, a.DistanceMiles)
		}
		if a.TruckID != nil && !known[*a.TruckID] {
			t.Errorf("trailer %s references truck %s without a known position", a.TrailerID, *a.TruckID)
		}
		if (a.TruckID != nil) != (a.Status == StatusPaired) || (a.Truck != nil) != (a.Status == StatusPaired) {
			t.Errorf("trailer %s: truck fields inconsistent with status %s", a.TrailerID, a.Status)
		}
	}
}

func TestMatch_YardAndNearest(t *testing.T) {
	trucks := []fleet.Position{at("T1", 41.51, -88.11), at("T2", 41.60, -88.00)}
	trailers := []fleet.Position{at("A", 41.4306, -88.1965), at("B", 41.50, -88.10)}

	got := Match(trucks, trailers, testYard)
	checkAssignments(t, trucks, trailers, got)

	if got[0].Status != StatusYardSolo || *got[0].DistanceMiles != 0 || got[0].TruckID != nil {
		t.Errorf("trailer A = %+v, want yard_solo at 0", got[0])
	}
	b := got[1]
	if b.Status != StatusPaired || *b.TruckID != "T1" {
		t.Fatalf("trailer B = %+v, want paired with T1", b)
	}
	want := geo.RoundTo(geo.HaversineMiles(*trailers[1].Position, *trucks[0].Position), 2)
	if *b.DistanceMiles != want {
		t.Errorf("distance = %v, want %v", *b.DistanceMiles, want)
	}
	if *b.DistanceMiles < 0.8 || *b.DistanceMiles > 0.9 {
		t.Errorf("distance %v outside expected haversine range", *b.DistanceMiles)
	}
	if b.Truck == nil || b.Truck.ID != "T1" || b.Trailer.ID != "B" {
		t.Errorf("denormalized records wrong: %+v", b)
	}
}

func TestMatch_UnknownTrailerPosition(t *testing.T) {
	trucks := []fleet.Position{at("T1", 41.5, -88.1)}
	trailers := []fleet.Position{unknown("X")}
	got := Match(trucks, trailers, testYard)
	checkAssignments(t, trucks, trailers, got)
	if got[0].Status != StatusUnknownTrailerPosition || got[0].TruckID != nil || got[0].DistanceMiles != nil {
		t.Errorf("got %+v", got[0])
	}
}

func TestMatch_YardCenterAlwaysSolo(t *testing.T) {
	c := testYard.Center
	trucks := []fleet.Position{at("T1", c.Lat, c.Lon)}
	trailers := []fleet.Position{at("Y", c.Lat, c.Lon)}
	got := Match(trucks, trailers, testYard)
	if got[0].Status != StatusYardSolo {
		t.Errorf("trailer at yard center = %s, want yard_solo", got[0].Status)
	}
}

func TestMatch_YardBoundary(t *testing.T) {
	trailer := at("E", 41.44, -88.19)
	d := geo.HaversineMiles(*trailer.Position, testYard.Center)
	trucks := []fleet.Position{at("T1", 41.45, -88.18)}

	exact := Yard{Center: testYard.Center, RadiusMiles: d}
	if got := Match(trucks, []fleet.Position{trailer}, exact); got[0].Status != StatusYardSolo {
		t.Errorf("trailer exactly at radius = %s, want yard_solo", got[0].Status)
	}

	inside := Yard{Center: testYard.Center, RadiusMiles: d - 1e-9}
	if got := Match(trucks, []fleet.Position{trailer}, inside); got[0].Status != StatusPaired {
		t.Errorf("trailer just beyond radius = %s, want paired", got[0].Status)
	}
}

func TestMatch_NoKnownTrucks(t *testing.T) {
	trucks := []fleet.Position{unknown("T1"), unknown("T2")}
	trailers := []fleet.Position{at("A", 41.6, -88.0), at("B", 41.7, -87.9), unknown("C")}
	got := Match(trucks, trailers, testYard)
	checkAssignments(t, trucks, trailers, got)
	for _, a := range got[:2] {
		if a.Status != StatusNoTruckAvailable {
			t.Errorf("trailer %s = %s, want no_truck_available", a.TrailerID, a.Status)
		}
	}
	if got[2].Status != StatusUnknownTrailerPosition {
		t.Errorf("trailer C = %s", got[2].Status)
	}
	if empty := Match(nil, trailers[:1], testYard); empty[0].Status != StatusNoTruckAvailable {
		t.Errorf("nil trucks = %s", empty[0].Status)
	}
}

func TestMatch_SingleKnownTruckTakesAll(t *testing.T) {
	trucks := []fleet.Position{unknown("T0"), at("T1", 40.0, -90.0)}
	trailers := []fleet.Position{at("A", 41.6, -88.0), at("B", 35.0, -80.0), at("C", 45.0, -100.0)}
	got := Match(trucks, trailers, testYard)
	checkAssignments(t, trucks, trailers, got)
	for _, a := range got {
		if a.Status != StatusPaired || *a.TruckID != "T1" {
			t.Errorf("trailer %s = %+v, want paired to T1", a.TrailerID, a)
		}
	}
}

func TestMatch_TieFirstTruckWins(t *testing.T) {
	trucks := []fleet.Position{at("first", 41.7, -88.0), at("second", 41.7, -88.0)}
	got := Match(trucks, []fleet.Position{at("A", 41.6, -88.0)}, testYard)
	if *got[0].TruckID != "first" {
		t.Errorf("tie went to %s, want first", *got[0].TruckID)
	}
}

func TestMatch_TrailersMayShareTruck(t *testing.T) {
	trucks := []fleet.Position{at("near", 41.70, -88.00), at("far", 30.0, -100.0)}
	trailers := []fleet.Position{at("A", 41.71, -88.01), at("B", 41.69, -87.99)}
	got := Match(trucks, trailers, testYard)
	if *got[0].TruckID != "near" || *got[1].TruckID != "near" {
		t.Errorf("both trailers should pick the nearest truck: %+v", got)
	}
}

func TestMatch_NaNTruckIgnored(t *testing.T) {
	trucks := []fleet.Position{at("bad", math.NaN(), -88), at("good", 41.8, -88.0)}
	got := Match(trucks, []fleet.Position{at("A", 41.6, -88.0)}, testYard)
	if got[0].Status != StatusPaired || *got[0].TruckID != "good" {
		t.Errorf("got %+v", got[0])
	}
}

func TestMatch_AssignmentsDoNotAliasInputs(t *testing.T) {
	trucks := []fleet.Position{at("T1", 41.8, -88.0)}
	trailers := []fleet.Position{at("A", 41.6, -88.0)}
	got := Match(trucks, trailers, testYard)
	trucks[0].Position.Lat = 0
	trailers[0].Position.Lat = 0
	if got[0].Truck.Position.Lat != 41.8 || got[0].Trailer.Position.Lat != 41.6 {
		t.Errorf("assignment changed after inputs were mutated: %+v", got[0])
	}
}

func TestMerge(t *testing.T) {
	last := []fleet.Position{at("T1", 41, -88), at("T2", 42, -87)}
	if got := Merge(nil, last); !reflect.DeepEqual(got, last) {
		t.Errorf("empty poll should reuse last snapshot, got %+v", got)
	}
	if got := Merge([]fleet.Position{}, last); len(got) != 2 {
		t.Errorf("zero-length poll should reuse last snapshot, got %+v", got)
	}
	partial := []fleet.Position{at("T3", 40, -86)}
	if got := Merge(partial, last); !reflect.DeepEqual(got, partial) {
		t.Errorf("non-empty poll should replace wholesale, got %+v", got)
	}
	if got := Merge(nil, nil); len(got) != 0 {
		t.Errorf("nothing known should stay empty, got %+v", got)
	}
}

func TestReconcile_MasksEmptyTruckPoll(t *testing.T) {
	last := []fleet.Position{at("T1", 41.8, -88.0), at("T2", 41.9, -88.1)}
	res := Reconcile(Input{
		Trucks:     nil,
		Trailers:   []fleet.Position{at("A", 41.6, -88.0)},
		LastTrucks: last,
		Yard:       testYard,
	})
	if !reflect.DeepEqual(res.Trucks, last) {
		t.Errorf("trucks = %+v, want previous snapshot verbatim", res.Trucks)
	}
	if res.Assignments[0].Status != StatusPaired || *res.Assignments[0].TruckID != "T1" {
		t.Errorf("assignment = %+v", res.Assignments[0])
	}
}

func TestReconcile_MasksEmptyTrailerPoll(t *testing.T) {
	lastTrailers := []fleet.Position{at("A", 41.6, -88.0), unknown("B")}
	res := Reconcile(Input{
		Trucks:       []fleet.Position{at("T1", 41.8, -88.0)},
		LastTrailers: lastTrailers,
		Yard:         testYard,
	})
	if len(res.Assignments) != 2 {
		t.Fatalf("expected one assignment per stored trailer, got %d", len(res.Assignments))
	}
	if !reflect.DeepEqual(res.Trailers, lastTrailers) {
		t.Errorf("trailers = %+v", res.Trailers)
	}
}

func TestSummarize(t *testing.T) {
	trucks := []fleet.Position{at("T1", 41.8, -88.0)}
	trailers := []fleet.Position{at("A", 41.6, -88.0), unknown("B"), at("Y", 41.43063, -88.19651)}
	counts := Summarize(Match(trucks, trailers, testYard))
	want := map[Status]int{
		StatusPaired:                 1,
		StatusYardSolo:               1,
		StatusNoTruckAvailable:       0,
		StatusUnknownTrailerPosition: 1,
	}
	if !reflect.DeepEqual(counts, want) {
		t.Errorf("counts = %v, want %v", counts, want)
	}
}

func TestAssignment_JSONShape(t *testing.T) {
	got := Match(nil, []fleet.Position{unknown("X")}, testYard)
	b, err := json.Marshal(got[0])
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	s := string(b)
	for _, frag := range []string{`"trailerId":"X"`, `"truckId":null`, `"distanceMiles":null`, `"status":"unknown_trailer_position"`, `"truck":null`, `"trailer":{"id":"X"}`} {
		if !strings.Contains(s, frag) {
			t.Errorf("JSON %s missing %s", s, frag)
		}
	}
}
