package feeds

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/url"
	"strings"

	"github.com/rs/zerolog"

	"github.com/theoremus-urban-solutions/fleet-pairs/config"
	"github.com/theoremus-urban-solutions/fleet-pairs/fleet"
)

// DefaultSkyBitzTagFields is the priority order for trailer tags. The
// device serial (mtsn) is the last resort.
var DefaultSkyBitzTagFields = []string{
	"assetid",
	"AssetID",
	"asset.assetid",
	"asset.assetname",
	"id",
	"name",
	"mtsn",
}

// SkyBitz polls trailer positions from the QueryPositions endpoint.
type SkyBitz struct {
	cfg    config.SkyBitzConfig
	client *Client
	logger zerolog.Logger
	norm   normalizer
}

// NewSkyBitz builds the trailer source.
func NewSkyBitz(cfg config.SkyBitzConfig, client *Client, logger zerolog.Logger) *SkyBitz {
	fields := cfg.TagFields
	if len(fields) == 0 {
		fields = DefaultSkyBitzTagFields
	}
	return &SkyBitz{
		cfg:    cfg,
		client: client,
		logger: logger.With().Str("source", "skybitz").Logger(),
		norm: normalizer{
			RecordPaths: []string{"positions", "PositionList", "skybitz.gls", "gls"},
			TagFields:   FieldRule{Name: "tag", Paths: fields},
			Coordinate: CoordinateRule{
				{Lat: "lastlatitude", Lon: "lastlongitude"},
				{Lat: "latitude", Lon: "longitude"},
				{Lat: "latlon.latitude", Lon: "latlon.longitude"},
			},
			ObservedAt: FieldRule{Name: "observedAt", Paths: []string{"lastreporttime", "timestamp", "time"}},
		},
	}
}

func (s *SkyBitz) Class() fleet.AssetClass { return fleet.Trailers }

func (s *SkyBitz) FetchPositions(ctx context.Context) []fleet.Position {
	if s.cfg.Username == "" || s.cfg.Password == "" || s.cfg.BaseURL == "" {
		s.logger.Debug().Msg("no credentials or base URL configured, skipping poll")
		return []fleet.Position{}
	}
	header := http.Header{}
	header.Set("Authorization", "Basic "+base64.StdEncoding.EncodeToString([]byte(s.cfg.Username+":"+s.cfg.Password)))

	payload, err := s.client.GetJSON(ctx, Request{
		URL:    s.queryURL(),
		Header: header,
		SoftErrorPaths: []string{
			"skybitz.error",
			"skybitz.error.code",
			"error.errorcode",
			"error.code",
			"errorcode",
			"errorCode",
		},
	})
	if err != nil {
		s.logger.Error().Err(err).Msg("trailer positions unavailable")
		return []fleet.Position{}
	}
	out, dropped := s.norm.normalize(payload)
	s.logger.Info().Int("positions", len(out)).Int("dropped", dropped).Msg("polled trailers")
	return out
}

func (s *SkyBitz) queryURL() string {
	version := s.cfg.Version
	if version == "" {
		version = "2.76"
	}
	q := url.Values{
		"version": {version},
		"assetid": {"ALL"},
		"getJson": {"1"},
	}
	return strings.TrimRight(s.cfg.BaseURL, "/") + "/QueryPositions?" + q.Encode()
}
