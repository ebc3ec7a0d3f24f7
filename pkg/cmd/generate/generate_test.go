package generate

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/trackforge/trackforge/pkg/preset"
	"github.com/trackforge/trackforge/pkg/track"
)

func TestParseStyles(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []track.StyleReference
		wantErr bool
	}{
		{
			name:  "empty",
			input: "",
		},
		{
			name:  "single",
			input: "style:arena rock",
			want: []track.StyleReference{
				{Kind: "style", Value: "arena rock"},
			},
		},
		{
			name:  "multiple",
			input: "style:edm, sound:heavy bass",
			want: []track.StyleReference{
				{Kind: "style", Value: "edm"},
				{Kind: "sound", Value: "heavy bass"},
			},
		},
		{
			name:  "value with colon",
			input: "similar_to:artist: the one",
			want: []track.StyleReference{
				{Kind: "similar_to", Value: "artist: the one"},
			},
		},
		{
			name:    "missing separator",
			input:   "arena rock",
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseStyles(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseStyles() err = %v; wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if len(got) != len(tt.want) {
				t.Fatalf("ParseStyles() = %d refs; want %d", len(got), len(tt.want))
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("ParseStyles()[%d] = %v; want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestLoadRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "input.csv")
	data := "text,genre,duration,preset,styles,temperature\n" +
		"first lyrics,rock,120,,style:arena rock,0.8\n" +
		"second lyrics,,,jazz_smooth,,\n"
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatalf("couldn't write input file: %v", err)
	}
	rows, err := loadRows(path)
	if err != nil {
		t.Fatalf("loadRows() err = %v; want nil", err)
	}
	if len(rows) != 2 {
		t.Fatalf("loadRows() = %d rows; want 2", len(rows))
	}
	if rows[0].Genre != "rock" || rows[0].Duration != 120 || rows[0].Temperature != 0.8 {
		t.Fatalf("loadRows()[0] = %+v; want rock/120/0.8", rows[0])
	}
	if rows[1].Preset != "jazz_smooth" {
		t.Fatalf("loadRows()[1] preset = %q; want jazz_smooth", rows[1].Preset)
	}
}

func TestRowTrack(t *testing.T) {
	presets, err := preset.New(t.TempDir())
	if err != nil {
		t.Fatalf("preset.New() err = %v; want nil", err)
	}

	// Row with explicit fields
	r := row{
		Text:        "first lyrics",
		Genre:       "rock",
		Duration:    120,
		Styles:      "style:arena rock",
		Temperature: 0.8,
	}
	cfg, err := r.track(presets)
	if err != nil {
		t.Fatalf("track() err = %v; want nil", err)
	}
	if cfg.Genre != "rock" || cfg.DurationSeconds != 120 || cfg.Temperature != 0.8 {
		t.Fatalf("track() = %+v; want rock/120/0.8", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() err = %v; want nil", err)
	}

	// Row using a preset, defaults applied
	r = row{Text: "second lyrics", Preset: "jazz_smooth"}
	cfg, err = r.track(presets)
	if err != nil {
		t.Fatalf("track() err = %v; want nil", err)
	}
	if cfg.Genre != "jazz" {
		t.Fatalf("track() genre = %q; want jazz", cfg.Genre)
	}
	if cfg.DurationSeconds != track.DefaultDuration {
		t.Fatalf("track() duration = %d; want %d", cfg.DurationSeconds, track.DefaultDuration)
	}

	// Unknown preset
	r = row{Text: "x", Preset: "nope"}
	if _, err := r.track(presets); err == nil {
		t.Fatal("track() err = nil; want error")
	}
}
