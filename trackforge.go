package trackforge

import (
	"context"
	"fmt"

	"github.com/trackforge/trackforge/pkg/generator"
	"github.com/trackforge/trackforge/pkg/preset"
	"github.com/trackforge/trackforge/pkg/track"
)

type Config struct {
	Mode       string
	Project    string
	Location   string
	Token      string
	Model      string
	PresetsDir string
	Debug      bool
}

// Generate renders and runs a single track generation. It is a
// convenience wrapper for library consumers; the CLI and REST surfaces
// use the underlying packages directly.
func Generate(ctx context.Context, cfg *Config, trackCfg *track.TrackConfig) (*generator.Result, error) {
	gen, err := generator.New(&generator.Config{
		Mode:     cfg.Mode,
		Project:  cfg.Project,
		Location: cfg.Location,
		Token:    cfg.Token,
		Model:    cfg.Model,
		Debug:    cfg.Debug,
	})
	if err != nil {
		return nil, err
	}
	return gen.Generate(ctx, trackCfg)
}

// GenerateWithPreset generates a track using a stored preset as the base
// configuration.
func GenerateWithPreset(ctx context.Context, cfg *Config, presetName, text string, duration int) (*generator.Result, error) {
	store, err := preset.New(cfg.PresetsDir)
	if err != nil {
		return nil, err
	}
	p, err := store.Load(presetName)
	if err != nil {
		return nil, fmt.Errorf("couldn't load preset: %w", err)
	}
	return Generate(ctx, cfg, p.TrackConfig(text, duration))
}
