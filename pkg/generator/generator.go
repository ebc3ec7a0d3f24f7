// Package generator is the generation facade. In simulate mode it returns
// the rendered prompt and synthetic metadata without contacting any
// service; in openai or vertex mode it forwards the prompt to the
// external platform and relays the response.
package generator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/trackforge/trackforge/pkg/openai"
	"github.com/trackforge/trackforge/pkg/prompt"
	"github.com/trackforge/trackforge/pkg/track"
	"github.com/trackforge/trackforge/pkg/vertex"
)

// Operating modes.
const (
	ModeSimulate = "simulate"
	ModeOpenAI   = "openai"
	ModeVertex   = "vertex"
)

type Config struct {
	Mode     string
	Project  string
	Location string
	Token    string
	Model    string
	Debug    bool
}

type Generator struct {
	mode   string
	debug  bool
	openai *openai.Client
	vertex *vertex.Client
}

// New creates a generator for the configured mode. Missing external-mode
// configuration is reported as an error here, not at generation time.
func New(cfg *Config) (*Generator, error) {
	mode := cfg.Mode
	if mode == "" {
		mode = ModeSimulate
	}
	g := &Generator{
		mode:  mode,
		debug: cfg.Debug,
	}
	switch mode {
	case ModeSimulate:
	case ModeOpenAI:
		if cfg.Token == "" {
			return nil, errors.New("generator: openai mode requires a token")
		}
		g.openai = openai.New(&openai.Config{
			Debug: cfg.Debug,
			Token: cfg.Token,
			Model: cfg.Model,
		})
	case ModeVertex:
		if cfg.Project == "" {
			return nil, errors.New("generator: vertex mode requires a project")
		}
		client, err := vertex.New(&vertex.Config{
			Project:  cfg.Project,
			Location: cfg.Location,
			Token:    cfg.Token,
			Model:    cfg.Model,
			Debug:    cfg.Debug,
		})
		if err != nil {
			return nil, fmt.Errorf("generator: %w", err)
		}
		g.vertex = client
	default:
		return nil, fmt.Errorf("generator: unknown mode: %s", mode)
	}
	return g, nil
}

// Mode returns the operating mode of the generator.
func (g *Generator) Mode() string {
	return g.mode
}

// Metadata is the synthetic metadata bundle returned with each result.
type Metadata struct {
	Structure       track.SongStructure    `json:"structure"`
	StyleReferences []track.StyleReference `json:"style_references"`
	Temperature     float64                `json:"temperature"`
}

type Result struct {
	Status          string   `json:"status"`
	Mode            string   `json:"mode"`
	Genre           string   `json:"genre"`
	DurationSeconds int      `json:"duration_seconds"`
	Prompt          string   `json:"prompt"`
	Metadata        Metadata `json:"metadata"`
	Output          string   `json:"output,omitempty"`
	Message         string   `json:"message"`
}

// Generate validates the configuration, renders the prompt and produces a
// result according to the operating mode. External call failures are
// returned to the caller unmodified.
func (g *Generator) Generate(ctx context.Context, cfg *track.TrackConfig) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	p := prompt.Build(cfg)
	if g.debug {
		log.Printf("generator: %s track (%ds) prompt:\n%s\n", cfg.Genre, cfg.DurationSeconds, p)
	}
	r := &Result{
		Mode:            g.mode,
		Genre:           cfg.Genre,
		DurationSeconds: cfg.DurationSeconds,
		Prompt:          p,
		Metadata: Metadata{
			Structure:       cfg.Structure,
			StyleReferences: cfg.StyleReferences,
			Temperature:     cfg.Temperature,
		},
	}
	switch g.mode {
	case ModeSimulate:
		r.Status = "simulated"
		r.Message = "Track generation simulated. No external service was contacted; the rendered prompt and metadata describe the track that would be generated."
	case ModeOpenAI:
		out, err := g.openai.ChatCompletionWithTemperature(ctx, p, cfg.Temperature)
		if err != nil {
			return nil, err
		}
		r.Status = "completed"
		r.Output = out
		r.Message = "Prompt forwarded to the OpenAI chat completion API."
	case ModeVertex:
		out, err := g.vertex.Predict(ctx, p, cfg.Temperature)
		if err != nil {
			return nil, err
		}
		r.Status = "completed"
		r.Output = out
		r.Message = "Prompt forwarded to the Vertex AI predict API."
	}
	return r, nil
}

// Save writes the result bundle as an indented JSON file next to the
// given output path, creating parent folders as needed.
func (r *Result) Save(output string) (string, error) {
	ext := filepath.Ext(output)
	path := strings.TrimSuffix(output, ext) + ".json"
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("generator: couldn't create output folder: %w", err)
	}
	b, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", fmt.Errorf("generator: couldn't marshal result: %w", err)
	}
	if err := os.WriteFile(path, b, 0644); err != nil {
		return "", fmt.Errorf("generator: couldn't write result: %w", err)
	}
	return path, nil
}

// Estimate holds the cost estimate for one generation.
type Estimate struct {
	BaseCostUSD       float64 `json:"base_cost_usd"`
	DurationCostUSD   float64 `json:"duration_cost_usd"`
	EstimatedTotalUSD float64 `json:"estimated_total_usd"`
}

// EstimateCost returns the expected cost of generating the track. Actual
// costs depend on the platform's pricing.
func (g *Generator) EstimateCost(cfg *track.TrackConfig) Estimate {
	base := 0.01
	duration := float64(cfg.DurationSeconds) * 0.0001
	return Estimate{
		BaseCostUSD:       base,
		DurationCostUSD:   duration,
		EstimatedTotalUSD: base + duration,
	}
}
