package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/theoremus-urban-solutions/fleet-pairs/fleet"
	"github.com/theoremus-urban-solutions/fleet-pairs/matching"
	"github.com/theoremus-urban-solutions/fleet-pairs/store"
)

type fakePairs struct {
	latest    *store.AssignmentSet
	computed  store.AssignmentSet
	refreshes int
}

func (f *fakePairs) Refresh(context.Context) store.AssignmentSet {
	f.refreshes++
	set := f.computed
	f.latest = &set
	return set
}

func (f *fakePairs) Current(ctx context.Context) store.AssignmentSet {
	if f.latest != nil {
		return *f.latest
	}
	return f.Refresh(ctx)
}

func (f *fakePairs) Latest(context.Context) (store.AssignmentSet, bool) {
	if f.latest == nil {
		return store.AssignmentSet{}, false
	}
	return *f.latest, true
}

func sampleSet() store.AssignmentSet {
	yard := matching.Yard{Center: fleet.Coordinate{Lat: 41.43063, Lon: -88.19651}, RadiusMiles: 0.5}
	trucks := []fleet.Position{{ID: "T1", Position: &fleet.Coordinate{Lat: 41.51, Lon: -88.11}}}
	trailers := []fleet.Position{
		{ID: "A", Position: &fleet.Coordinate{Lat: 41.50, Lon: -88.10}},
		{ID: "U"},
	}
	return store.AssignmentSet{
		Pairs:     matching.Match(trucks, trailers, yard),
		UpdatedAt: time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC),
	}
}

func do(t *testing.T, h http.Handler, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	return rec
}

func TestHealth(t *testing.T) {
	f := &fakePairs{computed: sampleSet()}
	h := New(0, 0, f, zerolog.Nop()).Handler()

	rec := do(t, h, http.MethodGet, "/api/health")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["ok"] != true || body["havePairs"] != false || body["updatedAt"] != nil {
		t.Errorf("cold health = %v", body)
	}
	if f.refreshes != 0 {
		t.Error("health must not trigger a pass")
	}

	f.Refresh(context.Background())
	rec = do(t, h, http.MethodGet, "/api/health")
	body = nil
	_ = json.Unmarshal(rec.Body.Bytes(), &body)
	if body["havePairs"] != true || body["updatedAt"] != "2024-05-01T08:00:00Z" {
		t.Errorf("warm health = %v", body)
	}
	counts, _ := body["counts"].(map[string]any)
	if counts["paired"] != float64(1) || counts["unknown_trailer_position"] != float64(1) || counts["yard_solo"] != float64(0) {
		t.Errorf("counts = %v", counts)
	}
}

func TestPairs_LazyThenCached(t *testing.T) {
	f := &fakePairs{computed: sampleSet()}
	h := New(0, 0, f, zerolog.Nop()).Handler()

	for i := 0; i < 2; i++ {
		rec := do(t, h, http.MethodGet, "/api/pairs")
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
		if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
			t.Errorf("content type = %q", ct)
		}
		var set struct {
			Pairs []struct {
				TrailerID     string   `json:"trailerId"`
				TruckID       *string  `json:"truckId"`
				DistanceMiles *float64 `json:"distanceMiles"`
				Status        string   `json:"status"`
			} `json:"pairs"`
			UpdatedAt time.Time `json:"updatedAt"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &set); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if len(set.Pairs) != 2 || set.Pairs[0].Status != "paired" || set.Pairs[0].TruckID == nil {
			t.Errorf("pairs = %+v", set.Pairs)
		}
		if set.Pairs[1].TruckID != nil || set.Pairs[1].DistanceMiles != nil {
			t.Errorf("unknown trailer should carry nulls: %+v", set.Pairs[1])
		}
	}
	if f.refreshes != 1 {
		t.Errorf("refreshes = %d, want 1", f.refreshes)
	}
}

func TestPairs_NullFieldsPresent(t *testing.T) {
	f := &fakePairs{computed: sampleSet()}
	rec := do(t, New(0, 0, f, zerolog.Nop()).Handler(), http.MethodGet, "/api/pairs")
	if !strings.Contains(rec.Body.String(), `"truckId":null`) {
		t.Errorf("body should carry explicit nulls: %s", rec.Body.String())
	}
}

func TestRefresh_Endpoint(t *testing.T) {
	f := &fakePairs{computed: sampleSet()}
	h := New(0, 0, f, zerolog.Nop()).Handler()

	rec := do(t, h, http.MethodGet, "/api/refresh")
	if rec.Code != http.StatusMethodNotAllowed || rec.Header().Get("Allow") != http.MethodPost {
		t.Errorf("GET /api/refresh = %d allow %q", rec.Code, rec.Header().Get("Allow"))
	}

	for i := 0; i < 2; i++ {
		rec = do(t, h, http.MethodPost, "/api/refresh")
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
	}
	if f.refreshes != 2 {
		t.Errorf("refreshes = %d, want 2", f.refreshes)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	h := New(0, 0, &fakePairs{}, zerolog.Nop()).Handler()
	for _, path := range []string{"/api/health", "/api/pairs"} {
		t.Run(path, func(t *testing.T) {
			rec := do(t, h, http.MethodDelete, path)
			if rec.Code != http.StatusMethodNotAllowed {
				t.Errorf("status = %d", rec.Code)
			}
		})
	}
}

func TestUnknownPath(t *testing.T) {
	rec := do(t, New(0, 0, &fakePairs{}, zerolog.Nop()).Handler(), http.MethodGet, "/api/trucks")
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestNew_WriteTimeoutCoversPass(t *testing.T) {
	tests := []struct {
		name   string
		budget time.Duration
		want   time.Duration
	}{
		{"bounded", 315 * time.Second, 315*time.Second + writeMargin},
		{"unbounded", 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(8000, tt.budget, &fakePairs{}, zerolog.Nop())
			if s.http.WriteTimeout != tt.want {
				t.Errorf("WriteTimeout = %v, want %v", s.http.WriteTimeout, tt.want)
			}
		})
	}
}
