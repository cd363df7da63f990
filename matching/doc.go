// Package matching is the reconciliation engine: it merges each pass's
// polls with the last-known snapshots and assigns every trailer to its
// nearest truck.
//
// # Merge
//
// Each asset class is merged independently. An empty poll means "nothing
// new" and the previous snapshot is reused verbatim; a non-empty poll
// replaces the snapshot wholesale. There is no per-asset merging, so a
// partial poll is taken at face value.
//
// # Assignment
//
// For every trailer in the merged trailer set, in order:
//
//  1. unknown coordinate: unknown_trailer_position
//  2. within the yard radius (inclusive): yard_solo, distance 0
//  3. no truck with a known coordinate: no_truck_available
//  4. otherwise paired with the strictly nearest truck; the first truck in
//     iteration order wins exact ties
//
// Distances are haversine miles rounded to two decimals with math.Round
// (half away from zero).
//
// Assignment is nearest-truck, not a bipartite matching: several trailers
// may be assigned the same truck. This is intentional; an exclusive
// assignment would be a different algorithm.
package matching
