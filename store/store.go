package store

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/theoremus-urban-solutions/fleet-pairs/fleet"
	"github.com/theoremus-urban-solutions/fleet-pairs/matching"
)

// KeyPairs holds the latest AssignmentSet.
const KeyPairs = "pairs/current"

// SnapshotKey is the key of the last-known-good snapshot for class.
func SnapshotKey(class fleet.AssetClass) string {
	return "latest/" + string(class)
}

// AssignmentSet is the atomic unit persisted and served after each pass.
type AssignmentSet struct {
	Pairs     []matching.Assignment `json:"pairs" cbor:"pairs"`
	UpdatedAt time.Time             `json:"updatedAt" cbor:"updatedAt"`
}

// Store is the Snapshot Store plus assignment persistence on top of a KV.
type Store struct {
	kv     KV
	logger zerolog.Logger
}

func New(kv KV, logger zerolog.Logger) *Store {
	return &Store{kv: kv, logger: logger.With().Str("component", "store").Logger()}
}

// GetLast returns the stored snapshot for class. A missing or unreadable
// snapshot is reported as empty; read failures are logged.
func (s *Store) GetLast(ctx context.Context, class fleet.AssetClass) []fleet.Position {
	key := SnapshotKey(class)
	raw, ok, err := s.kv.Get(ctx, key)
	if err != nil {
		s.logger.Error().Err(err).Str("key", key).Msg("snapshot read failed")
		return []fleet.Position{}
	}
	if !ok {
		return []fleet.Position{}
	}
	var out []fleet.Position
	if err := unmarshal(raw, &out); err != nil {
		s.logger.Error().Err(err).Str("key", key).Msg("snapshot decode failed")
		return []fleet.Position{}
	}
	if out == nil {
		out = []fleet.Position{}
	}
	return out
}

// SetLast replaces the snapshot for class in one write.
func (s *Store) SetLast(ctx context.Context, class fleet.AssetClass, records []fleet.Position) error {
	if records == nil {
		records = []fleet.Position{}
	}
	raw, err := marshal(records)
	if err != nil {
		return fmt.Errorf("store: encode %s snapshot: %w", class, err)
	}
	return s.kv.Set(ctx, SnapshotKey(class), raw)
}

// LoadAssignments returns the persisted set and whether one exists.
func (s *Store) LoadAssignments(ctx context.Context) (AssignmentSet, bool, error) {
	raw, ok, err := s.kv.Get(ctx, KeyPairs)
	if err != nil || !ok {
		return AssignmentSet{}, false, err
	}
	var set AssignmentSet
	if err := unmarshal(raw, &set); err != nil {
		return AssignmentSet{}, false, fmt.Errorf("store: decode %s: %w", KeyPairs, err)
	}
	if set.Pairs == nil {
		set.Pairs = []matching.Assignment{}
	}
	return set, true, nil
}

// SaveAssignments replaces the persisted set in one write.
func (s *Store) SaveAssignments(ctx context.Context, set AssignmentSet) error {
	if set.Pairs == nil {
		set.Pairs = []matching.Assignment{}
	}
	raw, err := marshal(set)
	if err != nil {
		return fmt.Errorf("store: encode %s: %w", KeyPairs, err)
	}
	return s.kv.Set(ctx, KeyPairs, raw)
}

// Close closes the underlying KV.
func (s *Store) Close() error { return s.kv.Close() }
