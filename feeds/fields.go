package feeds

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/theoremus-urban-solutions/fleet-pairs/fleet"
)

// FieldRule extracts one logical attribute from a vendor record. Paths are
// dotted keys into nested objects and are tried in order; the first path
// holding a usable value wins.
type FieldRule struct {
	Name  string
	Paths []string
}

// CoordinatePair names the latitude and longitude paths of one candidate
// location inside a record.
type CoordinatePair struct {
	Lat string
	Lon string
}

// CoordinateRule tries each pair in order and takes the first pair where
// both components parse.
type CoordinateRule []CoordinatePair

// timeLayouts are the textual timestamp formats seen across provider
// API versions, tried in order.
var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006/01/02 15:04:05",
	"01/02/2006 15:04:05",
}

// lookup walks a dotted path through nested JSON objects.
func lookup(v any, path string) (any, bool) {
	cur := v
	for _, key := range strings.Split(path, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = m[key]
		if !ok || cur == nil {
			return nil, false
		}
	}
	return cur, true
}

// String returns the first non-empty textual value.
func (r FieldRule) String(rec any) (string, bool) {
	for _, p := range r.Paths {
		v, ok := lookup(rec, p)
		if !ok {
			continue
		}
		if s, ok := asString(v); ok {
			return s, true
		}
	}
	return "", false
}

// Strings returns every non-empty textual value in path order.
func (r FieldRule) Strings(rec any) []string {
	out := make([]string, 0, len(r.Paths))
	for _, p := range r.Paths {
		v, ok := lookup(rec, p)
		if !ok {
			continue
		}
		if s, ok := asString(v); ok {
			out = append(out, s)
		}
	}
	return out
}

// Float returns the first value that parses as a finite number.
func (r FieldRule) Float(rec any) (float64, bool) {
	for _, p := range r.Paths {
		v, ok := lookup(rec, p)
		if !ok {
			continue
		}
		if f, ok := asFloat(v); ok {
			return f, true
		}
	}
	return 0, false
}

// Time returns the first value that parses as a timestamp, in UTC.
func (r FieldRule) Time(rec any) (time.Time, bool) {
	for _, p := range r.Paths {
		v, ok := lookup(rec, p)
		if !ok {
			continue
		}
		if t, ok := asTime(v); ok {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// Coordinate returns the first complete, finite pair. The exact (0, 0)
// pair is how several devices report "no fix" and is treated as absent.
func (r CoordinateRule) Coordinate(rec any) (fleet.Coordinate, bool) {
	for _, pair := range r {
		latV, okLat := lookup(rec, pair.Lat)
		lonV, okLon := lookup(rec, pair.Lon)
		if !okLat || !okLon {
			continue
		}
		lat, okLat := asFloat(latV)
		lon, okLon := asFloat(lonV)
		if !okLat || !okLon {
			continue
		}
		c := fleet.Coordinate{Lat: lat, Lon: lon}
		if !c.Valid() || (lat == 0 && lon == 0) {
			continue
		}
		return c, true
	}
	return fleet.Coordinate{}, false
}

func asString(v any) (string, bool) {
	var s string
	switch x := v.(type) {
	case string:
		s = x
	case json.Number:
		s = x.String()
	case float64:
		s = strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return "", false
	}
	s = strings.TrimSpace(s)
	return s, s != ""
}

func asFloat(v any) (float64, bool) {
	var f float64
	var err error
	switch x := v.(type) {
	case json.Number:
		f, err = x.Float64()
	case float64:
		f = x
	case string:
		f, err = strconv.ParseFloat(strings.TrimSpace(x), 64)
	default:
		return 0, false
	}
	if err != nil {
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func asTime(v any) (time.Time, bool) {
	switch x := v.(type) {
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return time.Time{}, false
		}
		for _, layout := range timeLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t, true
			}
		}
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return fromEpoch(n), true
		}
	case json.Number:
		if n, err := x.Int64(); err == nil {
			return fromEpoch(n), true
		}
		if f, err := x.Float64(); err == nil {
			return fromEpoch(int64(f)), true
		}
	case float64:
		return fromEpoch(int64(x)), true
	}
	return time.Time{}, false
}

// fromEpoch accepts seconds or milliseconds since the Unix epoch.
func fromEpoch(n int64) time.Time {
	if n > 1e12 || n < -1e12 {
		return time.UnixMilli(n)
	}
	return time.Unix(n, 0)
}
