package feeds

import (
	"context"

	"github.com/theoremus-urban-solutions/fleet-pairs/fleet"
)

// Source is one polled provider. FetchPositions is total: every failure
// yields an empty slice.
type Source interface {
	Class() fleet.AssetClass
	FetchPositions(ctx context.Context) []fleet.Position
}

// normalizer maps loosely typed vendor records onto fleet.Position.
type normalizer struct {
	// RecordPaths locate the record array in the payload; a payload that
	// is itself an array is used directly.
	RecordPaths []string
	ID          FieldRule
	// TagFields, when set, replace ID with ShortTag over these fields.
	TagFields  FieldRule
	Coordinate CoordinateRule
	ObservedAt FieldRule
}

func (n normalizer) records(payload any) []any {
	if arr, ok := payload.([]any); ok {
		return arr
	}
	for _, p := range n.RecordPaths {
		v, ok := lookup(payload, p)
		if !ok {
			continue
		}
		if arr, ok := v.([]any); ok {
			return arr
		}
	}
	return nil
}

func (n normalizer) id(rec any) string {
	if len(n.TagFields.Paths) > 0 {
		return ShortTag(n.TagFields.Strings(rec), UnknownTag)
	}
	if id, ok := n.ID.String(rec); ok {
		return id
	}
	return UnknownTag
}

// normalize converts one payload. Records without a usable coordinate are
// dropped; duplicate IDs collapse with the last record winning.
func (n normalizer) normalize(payload any) (out []fleet.Position, dropped int) {
	recs := n.records(payload)
	out = make([]fleet.Position, 0, len(recs))
	for _, rec := range recs {
		if _, ok := rec.(map[string]any); !ok {
			dropped++
			continue
		}
		coord, ok := n.Coordinate.Coordinate(rec)
		if !ok {
			dropped++
			continue
		}
		p := fleet.Position{ID: n.id(rec), Position: &coord}
		if ts, ok := n.ObservedAt.Time(rec); ok {
			p.LastSeen = &ts
		}
		out = append(out, p)
	}
	return fleet.Dedupe(out), dropped
}
