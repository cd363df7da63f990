package feeds

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/rs/zerolog"

	"github.com/theoremus-urban-solutions/fleet-pairs/config"
	"github.com/theoremus-urban-solutions/fleet-pairs/fleet"
)

// DefaultSamsaraTagFields are used for truck tags when short IDs are on
// and no list is configured.
var DefaultSamsaraTagFields = []string{"name", "externalIds.vin", "id"}

// Samsara polls current vehicle locations for trucks.
type Samsara struct {
	cfg    config.SamsaraConfig
	client *Client
	logger zerolog.Logger
	norm   normalizer
}

// NewSamsara builds the truck source.
func NewSamsara(cfg config.SamsaraConfig, client *Client, logger zerolog.Logger) *Samsara {
	norm := normalizer{
		RecordPaths: []string{"data", "vehicles"},
		ID:          FieldRule{Name: "id", Paths: []string{"id", "vehicleId", "externalIds.vin", "name"}},
		Coordinate: CoordinateRule{
			{Lat: "location.latitude", Lon: "location.longitude"},
			{Lat: "gps.latitude", Lon: "gps.longitude"},
			{Lat: "latitude", Lon: "longitude"},
		},
		ObservedAt: FieldRule{Name: "observedAt", Paths: []string{"location.time", "gps.time", "time"}},
	}
	if cfg.ShortIDs {
		fields := cfg.TagFields
		if len(fields) == 0 {
			fields = DefaultSamsaraTagFields
		}
		norm.TagFields = FieldRule{Name: "tag", Paths: fields}
	}
	return &Samsara{
		cfg:    cfg,
		client: client,
		logger: logger.With().Str("source", "samsara").Logger(),
		norm:   norm,
	}
}

func (s *Samsara) Class() fleet.AssetClass { return fleet.Trucks }

// FetchPositions follows pagination up to MaxPages. A failure on a later
// page keeps the pages already read.
func (s *Samsara) FetchPositions(ctx context.Context) []fleet.Position {
	if s.cfg.Token == "" || s.cfg.BaseURL == "" {
		s.logger.Debug().Msg("no token or base URL configured, skipping poll")
		return []fleet.Position{}
	}
	maxPages := s.cfg.MaxPages
	if maxPages < 1 {
		maxPages = 1
	}

	header := http.Header{}
	header.Set("Authorization", "Bearer "+s.cfg.Token)

	var out []fleet.Position
	dropped := 0
	cursor := ""
	for page := 1; page <= maxPages; page++ {
		payload, err := s.client.GetJSON(ctx, Request{
			URL:            s.pageURL(cursor),
			Header:         header,
			SoftErrorPaths: []string{"errorCode", "error.code"},
		})
		if err != nil {
			s.logger.Error().Err(err).Int("page", page).Msg("vehicle locations unavailable")
			break
		}
		batch, d := s.norm.normalize(payload)
		out = append(out, batch...)
		dropped += d

		more, _ := lookup(payload, "pagination.hasNextPage")
		next, _ := FieldRule{Paths: []string{"pagination.endCursor"}}.String(payload)
		if b, ok := more.(bool); !ok || !b || next == "" {
			break
		}
		cursor = next
	}
	out = fleet.Dedupe(out)
	s.logger.Info().Int("positions", len(out)).Int("dropped", dropped).Msg("polled trucks")
	if out == nil {
		return []fleet.Position{}
	}
	return out
}

func (s *Samsara) pageURL(cursor string) string {
	u := strings.TrimRight(s.cfg.BaseURL, "/") + "/fleet/vehicles/locations"
	if cursor != "" {
		u += "?" + url.Values{"after": {cursor}}.Encode()
	}
	return u
}
