package presets

import (
	"context"
	"fmt"
	"log"
	"os"
	"text/tabwriter"

	"github.com/trackforge/trackforge/pkg/cmd/generate"
	"github.com/trackforge/trackforge/pkg/preset"
	"github.com/trackforge/trackforge/pkg/prompt"
	"github.com/trackforge/trackforge/pkg/track"
)

type Config struct {
	Debug      bool
	PresetsDir string

	Name        string
	Description string
	Genre       string
	Intro       bool
	Verses      int
	Choruses    int
	Bridge      bool
	Outro       bool
	Styles      string
	Temperature float64
	Tips        string
}

// RunList prints all presets with their genre and description.
func RunList(ctx context.Context, cfg *Config) error {
	store, err := preset.New(cfg.PresetsDir)
	if err != nil {
		return fmt.Errorf("presets: %w", err)
	}
	mds, err := store.ListMetadata()
	if err != nil {
		return fmt.Errorf("presets: %w", err)
	}
	if len(mds) == 0 {
		log.Println("presets: no presets found")
		return nil
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tGENRE\tDESCRIPTION")
	for _, md := range mds {
		fmt.Fprintf(w, "%s\t%s\t%s\n", md.Name, md.Genre, md.Description)
	}
	return w.Flush()
}

// RunShow prints the full configuration of one preset.
func RunShow(ctx context.Context, cfg *Config, name string) error {
	store, err := preset.New(cfg.PresetsDir)
	if err != nil {
		return fmt.Errorf("presets: %w", err)
	}
	p, err := store.Load(name)
	if err != nil {
		return fmt.Errorf("presets: %w", err)
	}
	fmt.Println(p.Name)
	if p.Description != "" {
		fmt.Println(p.Description)
	}
	fmt.Println()
	fmt.Println("genre:", p.Genre)
	fmt.Println("temperature:", p.Temperature)
	fmt.Println("structure:", prompt.Structure(p.Structure))
	if len(p.StyleReferences) > 0 {
		fmt.Println("style references:")
		for _, ref := range p.StyleReferences {
			fmt.Printf("  - %s: %s\n", ref.Kind, ref.Value)
		}
	}
	if p.Tips != "" {
		fmt.Println()
		fmt.Println("tips:", p.Tips)
	}
	return nil
}

// RunSave creates or updates a preset from flags.
func RunSave(ctx context.Context, cfg *Config) error {
	refs, err := generate.ParseStyles(cfg.Styles)
	if err != nil {
		return fmt.Errorf("presets: %w", err)
	}
	p := &track.PresetConfig{
		Name:        cfg.Name,
		Description: cfg.Description,
		Genre:       cfg.Genre,
		Structure: track.SongStructure{
			Intro:       cfg.Intro,
			VerseCount:  cfg.Verses,
			ChorusCount: cfg.Choruses,
			Bridge:      cfg.Bridge,
			Outro:       cfg.Outro,
		},
		StyleReferences: refs,
		Temperature:     cfg.Temperature,
		Tips:            cfg.Tips,
	}
	store, err := preset.New(cfg.PresetsDir)
	if err != nil {
		return fmt.Errorf("presets: %w", err)
	}
	if err := store.Save(p); err != nil {
		return fmt.Errorf("presets: %w", err)
	}
	log.Printf("presets: saved %q\n", p.Name)
	return nil
}

// RunDelete removes a preset by name.
func RunDelete(ctx context.Context, cfg *Config, name string) error {
	store, err := preset.New(cfg.PresetsDir)
	if err != nil {
		return fmt.Errorf("presets: %w", err)
	}
	if err := store.Delete(name); err != nil {
		return fmt.Errorf("presets: %w", err)
	}
	log.Printf("presets: deleted %q\n", name)
	return nil
}
