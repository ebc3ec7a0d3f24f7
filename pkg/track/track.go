package track

import (
	"fmt"
	"strings"
)

// Duration and temperature bounds for a track request.
const (
	MinDuration    = 60
	MaxDuration    = 240
	MinVerses      = 1
	MaxVerses      = 5
	MinChoruses    = 1
	MaxChoruses    = 4
	MinTemperature = 0.0
	MaxTemperature = 1.0

	DefaultDuration    = 180
	DefaultTemperature = 0.7
)

// Style reference kinds.
const (
	KindStyle     = "style"
	KindSound     = "sound"
	KindArtist    = "artist"
	KindSimilarTo = "similar_to"
)

// SongStructure defines the sections of a song.
type SongStructure struct {
	Intro       bool `json:"intro" yaml:"intro"`
	VerseCount  int  `json:"verse_count" yaml:"verse_count"`
	ChorusCount int  `json:"chorus_count" yaml:"chorus_count"`
	Bridge      bool `json:"bridge" yaml:"bridge"`
	Outro       bool `json:"outro" yaml:"outro"`
}

// DefaultStructure returns the standard intro/verse/chorus/bridge/outro layout.
func DefaultStructure() SongStructure {
	return SongStructure{
		Intro:       true,
		VerseCount:  2,
		ChorusCount: 2,
		Bridge:      true,
		Outro:       true,
	}
}

func (s SongStructure) Validate() error {
	if s.VerseCount < MinVerses || s.VerseCount > MaxVerses {
		return fmt.Errorf("track: verse count %d out of range [%d, %d]", s.VerseCount, MinVerses, MaxVerses)
	}
	if s.ChorusCount < MinChoruses || s.ChorusCount > MaxChoruses {
		return fmt.Errorf("track: chorus count %d out of range [%d, %d]", s.ChorusCount, MinChoruses, MaxChoruses)
	}
	return nil
}

// StyleReference is a tagged hint influencing the rendered prompt.
type StyleReference struct {
	Kind  string `json:"type" yaml:"type"`
	Value string `json:"value" yaml:"value"`
}

func (r StyleReference) Validate() error {
	switch r.Kind {
	case KindStyle, KindSound, KindArtist, KindSimilarTo:
	default:
		return fmt.Errorf("track: unknown style reference type %q", r.Kind)
	}
	if r.Value == "" {
		return fmt.Errorf("track: style reference %q has an empty value", r.Kind)
	}
	return nil
}

// TrackConfig is the configuration for generating a single track.
type TrackConfig struct {
	TextInput       string           `json:"text_input" yaml:"text_input"`
	Genre           string           `json:"genre" yaml:"genre"`
	DurationSeconds int              `json:"duration_seconds" yaml:"duration_seconds"`
	Structure       SongStructure    `json:"structure" yaml:"structure"`
	StyleReferences []StyleReference `json:"style_references" yaml:"style_references"`
	Temperature     float64          `json:"temperature" yaml:"temperature"`
}

func (c *TrackConfig) Validate() error {
	if c.TextInput == "" {
		return fmt.Errorf("track: text input is required")
	}
	if c.Genre == "" {
		return fmt.Errorf("track: genre is required")
	}
	if c.DurationSeconds < MinDuration || c.DurationSeconds > MaxDuration {
		return fmt.Errorf("track: duration %d out of range [%d, %d]", c.DurationSeconds, MinDuration, MaxDuration)
	}
	if c.Temperature < MinTemperature || c.Temperature > MaxTemperature {
		return fmt.Errorf("track: temperature %.2f out of range [%.1f, %.1f]", c.Temperature, MinTemperature, MaxTemperature)
	}
	if err := c.Structure.Validate(); err != nil {
		return err
	}
	for _, ref := range c.StyleReferences {
		if err := ref.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// PresetConfig is a named, reusable default track configuration.
type PresetConfig struct {
	Name            string           `json:"name" yaml:"name"`
	Description     string           `json:"description,omitempty" yaml:"description,omitempty"`
	Genre           string           `json:"genre" yaml:"genre"`
	Structure       SongStructure    `json:"structure" yaml:"structure"`
	StyleReferences []StyleReference `json:"style_references" yaml:"style_references"`
	Temperature     float64          `json:"temperature" yaml:"temperature"`
	Tips            string           `json:"tips,omitempty" yaml:"tips,omitempty"`
}

func (p *PresetConfig) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("track: preset name is required")
	}
	// Preset names become file names, so they must not traverse directories.
	if strings.ContainsAny(p.Name, `/\`) || strings.Contains(p.Name, "..") {
		return fmt.Errorf("track: preset name %q contains path characters", p.Name)
	}
	if p.Genre == "" {
		return fmt.Errorf("track: preset %q genre is required", p.Name)
	}
	if p.Temperature < MinTemperature || p.Temperature > MaxTemperature {
		return fmt.Errorf("track: temperature %.2f out of range [%.1f, %.1f]", p.Temperature, MinTemperature, MaxTemperature)
	}
	if err := p.Structure.Validate(); err != nil {
		return err
	}
	for _, ref := range p.StyleReferences {
		if err := ref.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// TrackConfig converts the preset into a track configuration for the given
// text input and duration.
func (p *PresetConfig) TrackConfig(text string, duration int) *TrackConfig {
	if duration == 0 {
		duration = DefaultDuration
	}
	return &TrackConfig{
		TextInput:       text,
		Genre:           p.Genre,
		DurationSeconds: duration,
		Structure:       p.Structure,
		StyleReferences: p.StyleReferences,
		Temperature:     p.Temperature,
	}
}
