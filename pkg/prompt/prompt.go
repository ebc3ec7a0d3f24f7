// Package prompt renders a track configuration into the natural-language
// prompt sent to the music generation model.
package prompt

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/trackforge/trackforge/pkg/track"
)

// Build renders the prompt for the given configuration. It is a pure
// function: identical configurations yield byte-identical prompts.
func Build(cfg *track.TrackConfig) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Generate a %s music track with the following specifications:\n\n", cfg.Genre)

	mins := cfg.DurationSeconds / 60
	secs := cfg.DurationSeconds % 60
	fmt.Fprintf(&b, "Duration: %d seconds (%d minutes %d seconds)\n\n", cfg.DurationSeconds, mins, secs)

	fmt.Fprintf(&b, "Song structure: %s\n\n", Structure(cfg.Structure))

	fmt.Fprintf(&b, "Lyrics/Text input:\n%s\n", cfg.TextInput)
	b.WriteString(styleReferences(cfg.StyleReferences))
	b.WriteString("\n\n")

	b.WriteString("Create a track that follows this structure and incorporates the provided text and style references.\n")
	fmt.Fprintf(&b, "Temperature: %s\n", strconv.FormatFloat(cfg.Temperature, 'g', -1, 64))

	return b.String()
}

// Structure renders the section sequence, interleaving verses and choruses.
func Structure(s track.SongStructure) string {
	var parts []string
	if s.Intro {
		parts = append(parts, "intro")
	}
	max := s.VerseCount
	if s.ChorusCount > max {
		max = s.ChorusCount
	}
	for i := 0; i < max; i++ {
		if i < s.VerseCount {
			parts = append(parts, fmt.Sprintf("verse %d", i+1))
		}
		if i < s.ChorusCount {
			parts = append(parts, "chorus")
		}
	}
	if s.Bridge {
		parts = append(parts, "bridge")
	}
	if s.Outro {
		parts = append(parts, "outro")
	}
	return strings.Join(parts, " -> ")
}

func styleReferences(refs []track.StyleReference) string {
	if len(refs) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("\nStyle references:\n")
	for _, ref := range refs {
		fmt.Fprintf(&b, "- %s: %s\n", ref.Kind, ref.Value)
	}
	return strings.TrimSuffix(b.String(), "\n")
}
