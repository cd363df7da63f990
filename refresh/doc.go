// Package refresh runs reconciliation passes: fetch both asset classes,
// fold in the last known snapshots, assign trailers and persist the result.
// A Scheduler triggers passes on a fixed interval.
package refresh
