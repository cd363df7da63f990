// Package feeds adapts the upstream telemetry providers into normalized
// fleet.Position reports.
//
// It provides:
//   - Client: GET + JSON decode with a bounded, linearly increasing retry
//     schedule. Network errors, non-2xx statuses, malformed payloads and
//     error codes embedded in 200 responses are all retried.
//   - FieldRule / CoordinateRule: ordered lists of dotted paths tried in a
//     fixed priority order against loosely typed vendor JSON.
//   - ShortTag: derivation of the short numeric asset tags used as public IDs.
//   - Samsara (trucks) and SkyBitz (trailers) sources.
//
// A Source never returns an error. Missing credentials, exhausted retries
// and unparseable payloads all surface as an empty slice, which the
// matching engine treats as "nothing new this pass".
package feeds
