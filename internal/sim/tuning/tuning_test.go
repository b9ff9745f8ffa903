package tuning

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_OverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tuning.yaml")
	raw := []byte(`
tick_rate_hz: 20
seed: 1234
view_radius: 5
rate_limits:
  msgs_per_sec: 10
  msg_burst: 20
`)
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	tn, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if tn.TickRateHz != 20 || tn.Seed != 1234 || tn.ViewRadius != 5 {
		t.Fatalf("overrides not applied: %+v", tn)
	}
	// Untouched keys keep defaults.
	if tn.WorldChunksY != Default().WorldChunksY || tn.LoaderWorkers != Default().LoaderWorkers {
		t.Fatalf("defaults lost: %+v", tn)
	}
	if tn.RateLimits.MsgsPerSec != 10 || tn.RateLimits.MsgBurst != 20 {
		t.Fatalf("rate limits not applied: %+v", tn.RateLimits)
	}
}

func TestLoad_RejectsInvalid(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tuning.yaml")
	if err := os.WriteFile(path, []byte("tick_rate_hz: 0\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestDefaultValidates(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("Default: %v", err)
	}
}
