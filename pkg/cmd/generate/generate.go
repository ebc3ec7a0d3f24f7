package generate

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/trackforge/trackforge/pkg/generator"
	"github.com/trackforge/trackforge/pkg/preset"
	"github.com/trackforge/trackforge/pkg/storage"
	"github.com/trackforge/trackforge/pkg/track"
)

type Config struct {
	Debug       bool
	DBType      string
	DBConn      string
	PresetsDir  string
	Concurrency int
	Limit       int

	Mode     string
	Project  string
	Location string
	Token    string
	Model    string

	Input  string
	Output string

	Text        string
	Genre       string
	Duration    int
	Preset      string
	Intro       bool
	Verses      int
	Choruses    int
	Bridge      bool
	Outro       bool
	Styles      string
	Temperature float64
}

// Run launches the track generation process supporting both a single
// request from flags and a batch request from a csv input file.
func Run(ctx context.Context, cfg *Config) error {
	log.Println("generate: process started")
	defer log.Println("generate: process ended")

	debug := func(format string, args ...interface{}) {
		if !cfg.Debug {
			return
		}
		format += "\n"
		log.Printf(format, args...)
	}

	presets, err := preset.New(cfg.PresetsDir)
	if err != nil {
		return fmt.Errorf("generate: couldn't create preset store: %w", err)
	}

	gen, err := generator.New(&generator.Config{
		Mode:     cfg.Mode,
		Project:  cfg.Project,
		Location: cfg.Location,
		Token:    cfg.Token,
		Model:    cfg.Model,
		Debug:    cfg.Debug,
	})
	if err != nil {
		return fmt.Errorf("generate: %w", err)
	}

	var store *storage.Store
	if cfg.DBType != "" {
		store, err = storage.New(cfg.DBType, cfg.DBConn, cfg.Debug)
		if err != nil {
			return fmt.Errorf("generate: couldn't create orm store: %w", err)
		}
		if err := store.Start(ctx); err != nil {
			return fmt.Errorf("generate: couldn't start orm store: %w", err)
		}
	}

	if cfg.Input != "" {
		return runBatch(ctx, cfg, presets, gen, store, debug)
	}

	trackCfg, err := buildTrack(cfg, presets)
	if err != nil {
		return err
	}
	estimate := gen.EstimateCost(trackCfg)
	log.Printf("generate: estimated cost %.4f USD\n", estimate.EstimatedTotalUSD)

	result, err := generate(ctx, gen, store, trackCfg, cfg.Preset)
	if err != nil {
		return err
	}
	fmt.Println(result.Prompt)
	log.Printf("generate: status %s (%s mode)\n", result.Status, result.Mode)
	if result.Output != "" {
		fmt.Println(result.Output)
	}
	if cfg.Output != "" {
		path, err := result.Save(cfg.Output)
		if err != nil {
			return fmt.Errorf("generate: %w", err)
		}
		log.Printf("generate: saved result to %s\n", path)
	}
	return nil
}

func buildTrack(cfg *Config, presets *preset.Store) (*track.TrackConfig, error) {
	if cfg.Text == "" {
		return nil, fmt.Errorf("generate: missing text")
	}
	duration := cfg.Duration
	if duration == 0 {
		duration = track.DefaultDuration
	}
	if cfg.Preset != "" {
		p, err := presets.Load(cfg.Preset)
		if err != nil {
			return nil, fmt.Errorf("generate: %w", err)
		}
		if p.Tips != "" {
			log.Printf("generate: preset tips: %s\n", p.Tips)
		}
		return p.TrackConfig(cfg.Text, duration), nil
	}
	if cfg.Genre == "" {
		return nil, fmt.Errorf("generate: missing genre")
	}
	refs, err := ParseStyles(cfg.Styles)
	if err != nil {
		return nil, fmt.Errorf("generate: %w", err)
	}
	return &track.TrackConfig{
		TextInput:       cfg.Text,
		Genre:           cfg.Genre,
		DurationSeconds: duration,
		Structure: track.SongStructure{
			Intro:       cfg.Intro,
			VerseCount:  cfg.Verses,
			ChorusCount: cfg.Choruses,
			Bridge:      cfg.Bridge,
			Outro:       cfg.Outro,
		},
		StyleReferences: refs,
		Temperature:     cfg.Temperature,
	}, nil
}

// ParseStyles parses a comma separated list of "type:value" style
// references.
func ParseStyles(s string) ([]track.StyleReference, error) {
	if s == "" {
		return nil, nil
	}
	var refs []track.StyleReference
	for _, item := range strings.Split(s, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		kind, value, ok := strings.Cut(item, ":")
		if !ok {
			return nil, fmt.Errorf("invalid style format %q, expected \"type:value\"", item)
		}
		refs = append(refs, track.StyleReference{
			Kind:  strings.TrimSpace(kind),
			Value: strings.TrimSpace(value),
		})
	}
	return refs, nil
}

func generate(ctx context.Context, gen *generator.Generator, store *storage.Store, trackCfg *track.TrackConfig, presetName string) (*generator.Result, error) {
	result, err := gen.Generate(ctx, trackCfg)
	if err != nil {
		return nil, fmt.Errorf("generate: couldn't generate track: %w", err)
	}
	if store != nil {
		if err := store.SetGeneration(ctx, &storage.Generation{
			ID:              ulid.Make().String(),
			Mode:            result.Mode,
			Genre:           result.Genre,
			DurationSeconds: result.DurationSeconds,
			Temperature:     trackCfg.Temperature,
			Preset:          presetName,
			Prompt:          result.Prompt,
			Status:          result.Status,
			Output:          result.Output,
		}); err != nil {
			return nil, fmt.Errorf("generate: couldn't save generation to database: %w", err)
		}
	}
	return result, nil
}

func runBatch(ctx context.Context, cfg *Config, presets *preset.Store, gen *generator.Generator, store *storage.Store, debug func(string, ...interface{})) error {
	rows, err := loadRows(cfg.Input)
	if err != nil {
		return err
	}
	if cfg.Limit > 0 && len(rows) > cfg.Limit {
		rows = rows[:cfg.Limit]
	}
	log.Printf("generate: %d tracks to generate\n", len(rows))

	// Print time stats
	start := time.Now()
	defer func() {
		total := time.Since(start)
		log.Printf("generate: total time %s, average time %s\n", total, total/time.Duration(len(rows)))
	}()

	// Concurrency settings
	concurrency := cfg.Concurrency
	if concurrency == 0 {
		concurrency = 1
	}
	sem := make(chan struct{}, concurrency)
	var wg sync.WaitGroup
	defer wg.Wait()

	for i, row := range rows {
		select {
		case <-ctx.Done():
			return fmt.Errorf("generate: %w", ctx.Err())
		case sem <- struct{}{}:
		}
		i, row := i, row
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() { <-sem }()
			debug("generate: start %d %s", i+1, row.Genre)
			trackCfg, err := row.track(presets)
			if err != nil {
				log.Printf("generate: row %d: %v\n", i+1, err)
				return
			}
			if _, err := generate(ctx, gen, store, trackCfg, row.Preset); err != nil {
				log.Printf("generate: row %d: %v\n", i+1, err)
				return
			}
			debug("generate: end %d %s", i+1, row.Genre)
		}()
	}
	return nil
}
