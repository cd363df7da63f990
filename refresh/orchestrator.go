package refresh

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/theoremus-urban-solutions/fleet-pairs/feeds"
	"github.com/theoremus-urban-solutions/fleet-pairs/fleet"
	"github.com/theoremus-urban-solutions/fleet-pairs/matching"
	"github.com/theoremus-urban-solutions/fleet-pairs/store"
)

// Orchestrator owns one truck source, one trailer source and the store.
// Refresh is safe to call concurrently; the last pass to finish wins.
type Orchestrator struct {
	trucks   feeds.Source
	trailers feeds.Source
	store    *store.Store
	yard     matching.Yard
	logger   zerolog.Logger
	now      func() time.Time
}

// New builds an Orchestrator. A nil now uses time.Now.
func New(trucks, trailers feeds.Source, st *store.Store, yard matching.Yard, logger zerolog.Logger, now func() time.Time) *Orchestrator {
	if now == nil {
		now = time.Now
	}
	return &Orchestrator{
		trucks:   trucks,
		trailers: trailers,
		store:    st,
		yard:     yard,
		logger:   logger.With().Str("component", "refresh").Logger(),
		now:      now,
	}
}

// Refresh runs one pass and returns the resulting set. It never fails:
// a fault inside the pass yields the last persisted set, or an empty one.
func (o *Orchestrator) Refresh(ctx context.Context) (set store.AssignmentSet) {
	start := o.now()
	defer func() {
		if r := recover(); r != nil {
			o.logger.Error().Interface("panic", r).Msg("refresh pass failed, serving last result")
			set = o.fallback(ctx)
		}
	}()

	var trucks, trailers []fleet.Position
	var wg sync.WaitGroup
	var faults []any
	var mu sync.Mutex
	fetch := func(src feeds.Source, dst *[]fleet.Position) {
		defer wg.Done()
		defer func() {
			if r := recover(); r != nil {
				mu.Lock()
				faults = append(faults, fmt.Sprintf("%s: %v", src.Class(), r))
				mu.Unlock()
			}
		}()
		*dst = src.FetchPositions(ctx)
	}
	wg.Add(2)
	go fetch(o.trucks, &trucks)
	go fetch(o.trailers, &trailers)
	wg.Wait()
	if len(faults) > 0 {
		o.logger.Error().Interface("faults", faults).Msg("source failed, serving last result")
		return o.fallback(ctx)
	}

	res := matching.Reconcile(matching.Input{
		Trucks:       trucks,
		Trailers:     trailers,
		LastTrucks:   o.store.GetLast(ctx, fleet.Trucks),
		LastTrailers: o.store.GetLast(ctx, fleet.Trailers),
		Yard:         o.yard,
	})

	polled := map[fleet.AssetClass][]fleet.Position{fleet.Trucks: trucks, fleet.Trailers: trailers}
	for _, class := range fleet.Classes {
		if len(polled[class]) == 0 {
			continue
		}
		if err := o.store.SetLast(ctx, class, polled[class]); err != nil {
			o.logger.Error().Err(err).Str("class", string(class)).Msg("saving snapshot")
		}
	}

	set = store.AssignmentSet{Pairs: res.Assignments, UpdatedAt: o.now().UTC()}
	if err := o.store.SaveAssignments(ctx, set); err != nil {
		o.logger.Error().Err(err).Msg("saving assignments")
	}

	counts := matching.Summarize(set.Pairs)
	o.logger.Info().
		Int("trucks_polled", len(trucks)).
		Int("trailers_polled", len(trailers)).
		Int("trucks_used", len(res.Trucks)).
		Int("trailers_used", len(res.Trailers)).
		Int(string(matching.StatusPaired), counts[matching.StatusPaired]).
		Int(string(matching.StatusYardSolo), counts[matching.StatusYardSolo]).
		Int(string(matching.StatusNoTruckAvailable), counts[matching.StatusNoTruckAvailable]).
		Int(string(matching.StatusUnknownTrailerPosition), counts[matching.StatusUnknownTrailerPosition]).
		Dur("took", o.now().Sub(start)).
		Msg("refresh complete")
	return set
}

// fallback must not panic itself: the store it reads may be what failed.
func (o *Orchestrator) fallback(ctx context.Context) (set store.AssignmentSet) {
	defer func() {
		if r := recover(); r != nil {
			o.logger.Error().Interface("panic", r).Msg("loading last assignments failed, serving empty result")
			set = store.AssignmentSet{Pairs: []matching.Assignment{}, UpdatedAt: o.now().UTC()}
		}
	}()
	set, ok, err := o.store.LoadAssignments(ctx)
	if err != nil {
		o.logger.Error().Err(err).Msg("loading last assignments")
	}
	if ok {
		return set
	}
	return store.AssignmentSet{Pairs: []matching.Assignment{}, UpdatedAt: o.now().UTC()}
}

// Current returns the persisted set, computing one if none exists yet.
func (o *Orchestrator) Current(ctx context.Context) store.AssignmentSet {
	if set, ok := o.Latest(ctx); ok {
		return set
	}
	return o.Refresh(ctx)
}

// Latest returns the persisted set without running a pass.
func (o *Orchestrator) Latest(ctx context.Context) (store.AssignmentSet, bool) {
	set, ok, err := o.store.LoadAssignments(ctx)
	if err != nil {
		o.logger.Error().Err(err).Msg("loading assignments")
		return store.AssignmentSet{}, false
	}
	return set, ok
}
