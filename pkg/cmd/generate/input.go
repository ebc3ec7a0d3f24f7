package generate

import (
	"fmt"
	"os"

	"github.com/gocarina/gocsv"

	"github.com/trackforge/trackforge/pkg/preset"
	"github.com/trackforge/trackforge/pkg/track"
)

// row is one batch input entry.
type row struct {
	Text        string  `csv:"text"`
	Genre       string  `csv:"genre"`
	Duration    int     `csv:"duration"`
	Preset      string  `csv:"preset"`
	Styles      string  `csv:"styles"`
	Temperature float64 `csv:"temperature"`
}

func loadRows(path string) ([]row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("generate: couldn't open input file: %w", err)
	}
	defer f.Close()
	var rows []row
	if err := gocsv.UnmarshalFile(f, &rows); err != nil {
		return nil, fmt.Errorf("generate: couldn't parse input file: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("generate: input file %s has no rows", path)
	}
	return rows, nil
}

func (r row) track(presets *preset.Store) (*track.TrackConfig, error) {
	duration := r.Duration
	if duration == 0 {
		duration = track.DefaultDuration
	}
	if r.Preset != "" {
		p, err := presets.Load(r.Preset)
		if err != nil {
			return nil, err
		}
		cfg := p.TrackConfig(r.Text, duration)
		if r.Temperature > 0 {
			cfg.Temperature = r.Temperature
		}
		return cfg, nil
	}
	refs, err := ParseStyles(r.Styles)
	if err != nil {
		return nil, err
	}
	temperature := r.Temperature
	if temperature == 0 {
		temperature = track.DefaultTemperature
	}
	return &track.TrackConfig{
		TextInput:       r.Text,
		Genre:           r.Genre,
		DurationSeconds: duration,
		Structure:       track.DefaultStructure(),
		StyleReferences: refs,
		Temperature:     temperature,
	}, nil
}
