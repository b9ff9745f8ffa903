package tuning

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Tuning struct {
	ProtocolVersion string `yaml:"protocol_version"`

	TickRateHz int   `yaml:"tick_rate_hz"`
	Seed       int64 `yaml:"seed"`

	// Vertical world extent, in chunks. Interest spans chunk rows
	// [0, world_chunks_y).
	WorldChunksY int64 `yaml:"world_chunks_y"`

	// Horizontal interest radius around a player's chunk, in chunks.
	ViewRadius int64 `yaml:"view_radius"`

	// Workers servicing chunk loads off the world goroutine.
	LoaderWorkers int `yaml:"loader_workers"`

	// Unsaved loaded chunks are flushed to the save store this often.
	// 0 disables the sweep; chunks then save only on unload.
	SaveEveryTicks int `yaml:"save_every_ticks"`

	RateLimits RateLimits `yaml:"rate_limits"`
}

type RateLimits struct {
	// Inbound client messages per second, with burst headroom.
	MsgsPerSec float64 `yaml:"msgs_per_sec"`
	MsgBurst   int     `yaml:"msg_burst"`
}

func Default() Tuning {
	return Tuning{
		ProtocolVersion: "1.0",
		TickRateHz:      10,
		Seed:            0,
		WorldChunksY:    4,
		ViewRadius:      3,
		LoaderWorkers:   4,
		SaveEveryTicks:  200,
		RateLimits: RateLimits{
			MsgsPerSec: 30,
			MsgBurst:   60,
		},
	}
}

func Load(path string) (Tuning, error) {
	t := Default()
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	if err := t.Validate(); err != nil {
		return t, err
	}
	return t, nil
}

func (t Tuning) Validate() error {
	if t.TickRateHz < 1 {
		return fmt.Errorf("tick_rate_hz must be >= 1, got %d", t.TickRateHz)
	}
	if t.WorldChunksY < 1 {
		return fmt.Errorf("world_chunks_y must be >= 1, got %d", t.WorldChunksY)
	}
	if t.ViewRadius < 0 {
		return fmt.Errorf("view_radius must be >= 0, got %d", t.ViewRadius)
	}
	if t.LoaderWorkers < 1 {
		return fmt.Errorf("loader_workers must be >= 1, got %d", t.LoaderWorkers)
	}
	if t.SaveEveryTicks < 0 {
		return fmt.Errorf("save_every_ticks must be >= 0, got %d", t.SaveEveryTicks)
	}
	return nil
}
