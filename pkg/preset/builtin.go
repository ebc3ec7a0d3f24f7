package preset

import "github.com/trackforge/trackforge/pkg/track"

// Builtin returns the presets seeded on store creation.
func Builtin() []*track.PresetConfig {
	return []*track.PresetConfig{
		{
			Name:        "rock_anthem",
			Description: "High-energy rock anthem with powerful vocals",
			Genre:       "rock",
			Structure: track.SongStructure{
				Intro:       true,
				VerseCount:  2,
				ChorusCount: 3,
				Bridge:      true,
				Outro:       true,
			},
			StyleReferences: []track.StyleReference{
				{Kind: track.KindStyle, Value: "arena rock"},
				{Kind: track.KindSound, Value: "distorted electric guitars with powerful drums"},
			},
			Temperature: 0.8,
			Tips:        "Use energetic and empowering lyrics. Great for anthems and motivational songs.",
		},
		{
			Name:        "jazz_smooth",
			Description: "Smooth jazz with relaxed tempo",
			Genre:       "jazz",
			Structure: track.SongStructure{
				Intro:       true,
				VerseCount:  2,
				ChorusCount: 2,
				Bridge:      true,
				Outro:       true,
			},
			StyleReferences: []track.StyleReference{
				{Kind: track.KindStyle, Value: "smooth jazz"},
				{Kind: track.KindSound, Value: "saxophone and piano with brushed drums"},
			},
			Temperature: 0.6,
			Tips:        "Focus on sophisticated, laid-back lyrics. Perfect for evening moods.",
		},
		{
			Name:        "electronic_dance",
			Description: "Upbeat electronic dance music",
			Genre:       "electronic",
			Structure: track.SongStructure{
				Intro:       true,
				VerseCount:  2,
				ChorusCount: 3,
				Bridge:      true,
				Outro:       true,
			},
			StyleReferences: []track.StyleReference{
				{Kind: track.KindStyle, Value: "EDM"},
				{Kind: track.KindSound, Value: "synthesizers with heavy bass and electronic beats"},
			},
			Temperature: 0.9,
			Tips:        "Keep lyrics simple and repetitive. Build energy through structure.",
		},
		{
			Name:        "classical_orchestral",
			Description: "Classical orchestral composition",
			Genre:       "classical",
			Structure: track.SongStructure{
				Intro:       true,
				VerseCount:  3,
				ChorusCount: 2,
				Bridge:      true,
				Outro:       true,
			},
			StyleReferences: []track.StyleReference{
				{Kind: track.KindStyle, Value: "romantic era classical"},
				{Kind: track.KindSound, Value: "full orchestra with strings and brass"},
			},
			Temperature: 0.5,
			Tips:        "Use poetic and dramatic text. Focus on emotional depth and dynamics.",
		},
		{
			Name:        "pop_catchy",
			Description: "Catchy pop song with radio-friendly structure",
			Genre:       "pop",
			Structure: track.SongStructure{
				Intro:       true,
				VerseCount:  2,
				ChorusCount: 3,
				Bridge:      true,
				Outro:       false,
			},
			StyleReferences: []track.StyleReference{
				{Kind: track.KindStyle, Value: "contemporary pop"},
				{Kind: track.KindSound, Value: "bright synths with acoustic elements"},
			},
			Temperature: 0.7,
			Tips:        "Focus on memorable hooks and relatable themes. Keep it upbeat and accessible.",
		},
	}
}
