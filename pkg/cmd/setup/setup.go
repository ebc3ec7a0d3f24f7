package setup

import (
	"context"
	"fmt"
	"log"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Output   string
	Mode     string
	Project  string
	Location string
	Token    string
	Model    string
	APIKey   string
}

// fileConfig is the yaml layout consumed via the -config flag of every
// command.
type fileConfig struct {
	Mode     string `yaml:"mode"`
	Project  string `yaml:"project,omitempty"`
	Location string `yaml:"location,omitempty"`
	Token    string `yaml:"token,omitempty"`
	Model    string `yaml:"model,omitempty"`
	APIKey   string `yaml:"api-key,omitempty"`
}

// Run writes a starter configuration file that other commands can load
// with the -config flag.
func Run(ctx context.Context, cfg *Config) error {
	output := cfg.Output
	if output == "" {
		output = "trackforge.yaml"
	}
	mode := cfg.Mode
	if mode == "" {
		mode = "simulate"
	}
	if mode == "vertex" && cfg.Project == "" {
		return fmt.Errorf("setup: vertex mode requires a project")
	}
	if mode == "openai" && cfg.Token == "" {
		return fmt.Errorf("setup: openai mode requires a token")
	}
	fc := &fileConfig{
		Mode:     mode,
		Project:  cfg.Project,
		Location: cfg.Location,
		Token:    cfg.Token,
		Model:    cfg.Model,
		APIKey:   cfg.APIKey,
	}
	b, err := yaml.Marshal(fc)
	if err != nil {
		return fmt.Errorf("setup: couldn't marshal config: %w", err)
	}
	if err := os.WriteFile(output, b, 0600); err != nil {
		return fmt.Errorf("setup: couldn't write config: %w", err)
	}
	log.Printf("setup: configuration saved to %s\n", output)
	log.Println("setup: run with -config", output)
	return nil
}
