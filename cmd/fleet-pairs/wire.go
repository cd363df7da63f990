package main

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/theoremus-urban-solutions/fleet-pairs/config"
	"github.com/theoremus-urban-solutions/fleet-pairs/feeds"
	"github.com/theoremus-urban-solutions/fleet-pairs/fleet"
	"github.com/theoremus-urban-solutions/fleet-pairs/matching"
	"github.com/theoremus-urban-solutions/fleet-pairs/refresh"
	"github.com/theoremus-urban-solutions/fleet-pairs/store"
)

func newOrchestrator(cfg *config.AppConfig, st *store.Store, logger zerolog.Logger) *refresh.Orchestrator {
	policy := feeds.RetryPolicy{
		MaxAttempts: cfg.Retry.MaxAttempts,
		BaseDelay:   cfg.Retry.BaseDelay(),
	}
	samsara := feeds.NewSamsara(cfg.Samsara,
		feeds.NewClient(&http.Client{Timeout: cfg.Samsara.Timeout()}, policy, logger), logger)
	skybitz := feeds.NewSkyBitz(cfg.SkyBitz,
		feeds.NewClient(&http.Client{Timeout: cfg.SkyBitz.Timeout()}, policy, logger), logger)

	yard := matching.Yard{
		Center:      fleet.Coordinate{Lat: cfg.Yard.Lat, Lon: cfg.Yard.Lon},
		RadiusMiles: cfg.Yard.RadiusMiles,
	}
	return refresh.New(samsara, skybitz, st, yard, logger, nil)
}
