// Package fleet holds the normalized position model shared by the feed
// adapters, the snapshot store and the matching engine.
//
// Every upstream provider is adapted into a slice of Position values. A
// Position with a nil coordinate is a tracked asset whose location is not
// currently known; it is a valid state, not an error.
package fleet
