package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/lawnchairsociety/dungeongen/internal/config"
	"github.com/lawnchairsociety/dungeongen/internal/directory"
)

func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Dungeon.WidthInChunks = 8
	cfg.Dungeon.HeightInChunks = 8
	cfg.Dungeon.PreloadRadius = 1
	return cfg
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	s := New(testConfig(), nil)

	rec := get(t, s.Handler(), "/health")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"status":"ok"`) {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestLevelManifest(t *testing.T) {
	cfg := testConfig()
	s := New(cfg, nil)

	rec := get(t, s.Handler(), "/api/levels/5")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	var m LevelManifest
	if err := json.Unmarshal(rec.Body.Bytes(), &m); err != nil {
		t.Fatalf("decode failed: %v", err)
	}

	if m.Level != 5 || m.Seed != 5042 {
		t.Errorf("level/seed = %d/%d, want 5/5042", m.Level, m.Seed)
	}
	if m.Style != "narrow" || m.Layout != "winding" {
		t.Errorf("style/layout = %s/%s, want narrow/winding", m.Style, m.Layout)
	}
	if m.WidthInTiles != 64 || m.HeightInChunks != 8 || m.ChunkSize != 8 || m.TileSize != 32 {
		t.Errorf("dimensions = %+v", m)
	}

	// Same seed, same geometry
	want, err := directory.New(42, directoryOptions(cfg)).Get(5)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if m.Fingerprint != want.Fingerprint {
		t.Errorf("Fingerprint = %s, want %s", m.Fingerprint, want.Fingerprint)
	}
	if want.Carver.IsWall(m.Spawn.X, m.Spawn.Y) {
		t.Errorf("spawn (%d,%d) is a wall", m.Spawn.X, m.Spawn.Y)
	}
}

func TestLevelManifestBadLevel(t *testing.T) {
	s := New(testConfig(), nil)

	for _, path := range []string{"/api/levels/0", "/api/levels/-2", "/api/levels/abc"} {
		if rec := get(t, s.Handler(), path); rec.Code != http.StatusBadRequest {
			t.Errorf("GET %s status = %d, want 400", path, rec.Code)
		}
	}
}

func TestLevelManifestAboveMaxLevel(t *testing.T) {
	cfg := testConfig()
	cfg.Dungeon.MaxLevel = 3
	s := New(cfg, nil)

	if rec := get(t, s.Handler(), "/api/levels/3"); rec.Code != http.StatusOK {
		t.Errorf("GET level 3 status = %d, want 200", rec.Code)
	}
	for _, path := range []string{"/api/levels/4", "/api/levels/1000000/chunks/0/0", "/api/levels/9999/map"} {
		if rec := get(t, s.Handler(), path); rec.Code != http.StatusBadRequest {
			t.Errorf("GET %s status = %d, want 400", path, rec.Code)
		}
	}
	if n := s.levels.CachedLevels(); n != 1 {
		t.Errorf("CachedLevels = %d, want 1", n)
	}
}

func TestLevelManifestDegenerateSize(t *testing.T) {
	cfg := testConfig()
	cfg.Dungeon.WidthInChunks = 1
	cfg.Dungeon.HeightInChunks = 1
	s := New(cfg, nil)

	if rec := get(t, s.Handler(), "/api/levels/1"); rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
}

func TestChunkEndpoint(t *testing.T) {
	s := New(testConfig(), nil)

	rec := get(t, s.Handler(), "/api/levels/1/chunks/0/0")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	var c ChunkPayload
	if err := json.Unmarshal(rec.Body.Bytes(), &c); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if len(c.Rows) != 8 {
		t.Fatalf("rows = %d, want 8", len(c.Rows))
	}
	if c.Rows[0] != "########" {
		t.Errorf("top row = %q, want all border", c.Rows[0])
	}
	if c.OriginX != 0 || c.OriginY != 0 {
		t.Errorf("origin = (%d,%d), want (0,0)", c.OriginX, c.OriginY)
	}

	rec = get(t, s.Handler(), "/api/levels/1/chunks/3/2")
	if err := json.Unmarshal(rec.Body.Bytes(), &c); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if c.OriginX != 24 || c.OriginY != 16 {
		t.Errorf("origin = (%d,%d), want (24,16)", c.OriginX, c.OriginY)
	}
}

func TestChunkEndpointErrors(t *testing.T) {
	s := New(testConfig(), nil)

	tests := []struct {
		path string
		code int
	}{
		{"/api/levels/1/chunks/8/0", http.StatusNotFound},
		{"/api/levels/1/chunks/-1/0", http.StatusNotFound},
		{"/api/levels/1/chunks/0/x", http.StatusBadRequest},
		{"/api/levels/0/chunks/0/0", http.StatusBadRequest},
	}

	for _, tt := range tests {
		if rec := get(t, s.Handler(), tt.path); rec.Code != tt.code {
			t.Errorf("GET %s status = %d, want %d", tt.path, rec.Code, tt.code)
		}
	}
}

func TestMapEndpoint(t *testing.T) {
	s := New(testConfig(), nil)

	rec := get(t, s.Handler(), "/api/levels/2/map")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Errorf("Content-Type = %q", ct)
	}

	body := rec.Body.String()
	if n := strings.Count(body, "\n"); n != 64 {
		t.Errorf("lines = %d, want 64", n)
	}
	if strings.Count(body, "@") != 1 {
		t.Error("map should mark exactly one spawn point")
	}
}

func TestAPIRateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.Server.RequestsPerMinute = 2
	s := New(cfg, nil)

	for i := 0; i < 2; i++ {
		rec := get(t, s.Handler(), "/api/levels/1")
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d status = %d, want 200", i, rec.Code)
		}
		if rec.Header().Get("X-RateLimit-Limit") != "2" {
			t.Errorf("X-RateLimit-Limit = %q, want 2", rec.Header().Get("X-RateLimit-Limit"))
		}
	}

	rec := get(t, s.Handler(), "/api/levels/1")
	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("status = %d, want 429", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Error("missing Retry-After header")
	}

	// Health checks are not rate limited
	if rec := get(t, s.Handler(), "/health"); rec.Code != http.StatusOK {
		t.Errorf("health status = %d, want 200", rec.Code)
	}
}

func TestAPIRateLimitPerClient(t *testing.T) {
	cfg := testConfig()
	cfg.Server.RequestsPerMinute = 1
	s := New(cfg, nil)

	for _, ip := range []string{"203.0.113.1", "203.0.113.2"} {
		req := httptest.NewRequest(http.MethodGet, "/api/levels/1", nil)
		req.Header.Set("X-Forwarded-For", ip)
		rec := httptest.NewRecorder()
		s.Handler().ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Errorf("first request from %s status = %d, want 200", ip, rec.Code)
		}
	}
}
