package cli

import (
	"context"
	"flag"
	"fmt"
	"runtime/debug"
	"strings"

	"github.com/peterbourgon/ff/ffyaml"
	"github.com/peterbourgon/ff/v3"
	"github.com/peterbourgon/ff/v3/ffcli"

	"github.com/trackforge/trackforge/pkg/cmd/generate"
	"github.com/trackforge/trackforge/pkg/cmd/migrate"
	"github.com/trackforge/trackforge/pkg/cmd/presets"
	"github.com/trackforge/trackforge/pkg/cmd/serve"
	"github.com/trackforge/trackforge/pkg/cmd/setup"
	"github.com/trackforge/trackforge/pkg/track"
)

func New(version, commit, date string) *ffcli.Command {
	fs := flag.NewFlagSet("trackforge", flag.ExitOnError)

	return &ffcli.Command{
		ShortUsage: "trackforge [flags] <subcommand>",
		FlagSet:    fs,
		Exec: func(context.Context, []string) error {
			return flag.ErrHelp
		},
		Subcommands: []*ffcli.Command{
			newVersionCommand(version, commit, date),
			newGenerateCommand(),
			newListPresetsCommand(),
			newShowPresetCommand(),
			newSavePresetCommand(),
			newDeletePresetCommand(),
			newServeCommand(),
			newSetupCommand(),
			newMigrateCommand(),
		},
	}
}

func options() []ff.Option {
	return []ff.Option{
		ff.WithConfigFileFlag("config"),
		ff.WithConfigFileParser(ffyaml.Parser),
		ff.WithEnvVarPrefix("TRACKFORGE"),
	}
}

func newVersionCommand(version, commit, date string) *ffcli.Command {
	return &ffcli.Command{
		Name:       "version",
		ShortUsage: "trackforge version",
		ShortHelp:  "print version",
		Exec: func(ctx context.Context, args []string) error {
			v := version
			if v == "" {
				if buildInfo, ok := debug.ReadBuildInfo(); ok {
					v = buildInfo.Main.Version
				}
			}
			if v == "" {
				v = "dev"
			}
			versionFields := []string{v}
			if commit != "" {
				versionFields = append(versionFields, commit)
			}
			if date != "" {
				versionFields = append(versionFields, date)
			}
			fmt.Println(strings.Join(versionFields, " "))
			return nil
		},
	}
}

func newGenerateCommand() *ffcli.Command {
	cmd := "generate"
	fs := flag.NewFlagSet(cmd, flag.ExitOnError)
	_ = fs.String("config", "", "config file (optional)")

	cfg := &generate.Config{}

	fs.BoolVar(&cfg.Debug, "debug", false, "debug mode")
	fs.StringVar(&cfg.DBType, "db-type", "", "db type for the generation history (sqlite, mysql, postgres), empty to disable")
	fs.StringVar(&cfg.DBConn, "db-conn", "", "path for sqlite, dsn for mysql or postgres")
	fs.StringVar(&cfg.PresetsDir, "presets-dir", "", "folder with preset files (defaults to ./presets)")
	fs.IntVar(&cfg.Concurrency, "concurrency", 1, "number of concurrent generations for batch input")
	fs.IntVar(&cfg.Limit, "limit", 0, "limit the number of batch rows (0 means no limit)")

	fs.StringVar(&cfg.Mode, "mode", "simulate", "generation mode (simulate, openai, vertex)")
	fs.StringVar(&cfg.Project, "project", "", "cloud project id for vertex mode")
	fs.StringVar(&cfg.Location, "location", "us-central1", "cloud region for vertex mode")
	fs.StringVar(&cfg.Token, "token", "", "api token for external modes")
	fs.StringVar(&cfg.Model, "model", "", "model name for external modes")

	fs.StringVar(&cfg.Input, "input", "", "csv with batch requests (fields: text,genre,duration,preset,styles,temperature)")
	fs.StringVar(&cfg.Output, "output", "", "output file for the result bundle")

	fs.StringVar(&cfg.Text, "text", "", "lyrics or text description for the track")
	fs.StringVar(&cfg.Genre, "genre", "", "music genre (e.g. rock, jazz, electronic)")
	fs.IntVar(&cfg.Duration, "duration", track.DefaultDuration, "duration in seconds (60-240)")
	fs.StringVar(&cfg.Preset, "preset", "", "preset to use as base configuration")
	fs.BoolVar(&cfg.Intro, "intro", true, "include intro section")
	fs.IntVar(&cfg.Verses, "verses", 2, "number of verses (1-5)")
	fs.IntVar(&cfg.Choruses, "choruses", 2, "number of choruses (1-4)")
	fs.BoolVar(&cfg.Bridge, "bridge", true, "include bridge section")
	fs.BoolVar(&cfg.Outro, "outro", true, "include outro section")
	fs.StringVar(&cfg.Styles, "style", "", "style references, comma separated \"type:value\" pairs")
	fs.Float64Var(&cfg.Temperature, "temperature", track.DefaultTemperature, "creativity level (0.0-1.0)")

	return &ffcli.Command{
		Name:       cmd,
		ShortUsage: fmt.Sprintf("trackforge %s [flags]", cmd),
		Options:    options(),
		ShortHelp:  "generate a track prompt and metadata bundle",
		FlagSet:    fs,
		Exec: func(ctx context.Context, args []string) error {
			return generate.Run(ctx, cfg)
		},
	}
}

func presetFlagSet(cmd string, cfg *presets.Config) *flag.FlagSet {
	fs := flag.NewFlagSet(cmd, flag.ExitOnError)
	_ = fs.String("config", "", "config file (optional)")
	fs.BoolVar(&cfg.Debug, "debug", false, "debug mode")
	fs.StringVar(&cfg.PresetsDir, "presets-dir", "", "folder with preset files (defaults to ./presets)")
	return fs
}

func newListPresetsCommand() *ffcli.Command {
	cmd := "list-presets"
	cfg := &presets.Config{}
	fs := presetFlagSet(cmd, cfg)

	return &ffcli.Command{
		Name:       cmd,
		ShortUsage: fmt.Sprintf("trackforge %s [flags]", cmd),
		Options:    options(),
		ShortHelp:  "list all available presets",
		FlagSet:    fs,
		Exec: func(ctx context.Context, args []string) error {
			return presets.RunList(ctx, cfg)
		},
	}
}

func newShowPresetCommand() *ffcli.Command {
	cmd := "show-preset"
	cfg := &presets.Config{}
	fs := presetFlagSet(cmd, cfg)

	return &ffcli.Command{
		Name:       cmd,
		ShortUsage: fmt.Sprintf("trackforge %s [flags] <name>", cmd),
		Options:    options(),
		ShortHelp:  "show the configuration of a preset",
		FlagSet:    fs,
		Exec: func(ctx context.Context, args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("usage: trackforge %s <name>", cmd)
			}
			return presets.RunShow(ctx, cfg, args[0])
		},
	}
}

func newSavePresetCommand() *ffcli.Command {
	cmd := "save-preset"
	cfg := &presets.Config{}
	fs := presetFlagSet(cmd, cfg)

	fs.StringVar(&cfg.Name, "name", "", "preset name")
	fs.StringVar(&cfg.Description, "description", "", "preset description")
	fs.StringVar(&cfg.Genre, "genre", "", "music genre")
	fs.BoolVar(&cfg.Intro, "intro", true, "include intro section")
	fs.IntVar(&cfg.Verses, "verses", 2, "number of verses (1-5)")
	fs.IntVar(&cfg.Choruses, "choruses", 2, "number of choruses (1-4)")
	fs.BoolVar(&cfg.Bridge, "bridge", true, "include bridge section")
	fs.BoolVar(&cfg.Outro, "outro", true, "include outro section")
	fs.StringVar(&cfg.Styles, "style", "", "style references, comma separated \"type:value\" pairs")
	fs.Float64Var(&cfg.Temperature, "temperature", track.DefaultTemperature, "creativity level (0.0-1.0)")
	fs.StringVar(&cfg.Tips, "tips", "", "tips for using this preset")

	return &ffcli.Command{
		Name:       cmd,
		ShortUsage: fmt.Sprintf("trackforge %s [flags]", cmd),
		Options:    options(),
		ShortHelp:  "create or update a preset",
		FlagSet:    fs,
		Exec: func(ctx context.Context, args []string) error {
			return presets.RunSave(ctx, cfg)
		},
	}
}

func newDeletePresetCommand() *ffcli.Command {
	cmd := "delete-preset"
	cfg := &presets.Config{}
	fs := presetFlagSet(cmd, cfg)

	return &ffcli.Command{
		Name:       cmd,
		ShortUsage: fmt.Sprintf("trackforge %s [flags] <name>", cmd),
		Options:    options(),
		ShortHelp:  "delete a preset",
		FlagSet:    fs,
		Exec: func(ctx context.Context, args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("usage: trackforge %s <name>", cmd)
			}
			return presets.RunDelete(ctx, cfg, args[0])
		},
	}
}

func newServeCommand() *ffcli.Command {
	cmd := "serve"
	fs := flag.NewFlagSet(cmd, flag.ExitOnError)
	_ = fs.String("config", "", "config file (optional)")

	cfg := &serve.Config{}

	fs.BoolVar(&cfg.Debug, "debug", false, "debug mode")
	fs.StringVar(&cfg.Addr, "addr", ":8080", "address to listen on")
	fs.StringVar(&cfg.APIKey, "api-key", "", "api key required on requests, empty to disable auth")
	fs.StringVar(&cfg.PresetsDir, "presets-dir", "", "folder with preset files (defaults to ./presets)")
	fs.StringVar(&cfg.DBType, "db-type", "", "db type for the generation history (sqlite, mysql, postgres), empty to disable")
	fs.StringVar(&cfg.DBConn, "db-conn", "", "path for sqlite, dsn for mysql or postgres")

	fs.StringVar(&cfg.Mode, "mode", "simulate", "generation mode (simulate, openai, vertex)")
	fs.StringVar(&cfg.Project, "project", "", "cloud project id for vertex mode")
	fs.StringVar(&cfg.Location, "location", "us-central1", "cloud region for vertex mode")
	fs.StringVar(&cfg.Token, "token", "", "api token for external modes")
	fs.StringVar(&cfg.Model, "model", "", "model name for external modes")

	return &ffcli.Command{
		Name:       cmd,
		ShortUsage: fmt.Sprintf("trackforge %s [flags]", cmd),
		Options:    options(),
		ShortHelp:  "start the REST service",
		FlagSet:    fs,
		Exec: func(ctx context.Context, args []string) error {
			return serve.Serve(ctx, cfg)
		},
	}
}

func newSetupCommand() *ffcli.Command {
	cmd := "setup"
	fs := flag.NewFlagSet(cmd, flag.ExitOnError)
	_ = fs.String("config", "", "config file (optional)")

	cfg := &setup.Config{}

	fs.StringVar(&cfg.Output, "output", "trackforge.yaml", "output config file")
	fs.StringVar(&cfg.Mode, "mode", "simulate", "generation mode (simulate, openai, vertex)")
	fs.StringVar(&cfg.Project, "project", "", "cloud project id for vertex mode")
	fs.StringVar(&cfg.Location, "location", "us-central1", "cloud region for vertex mode")
	fs.StringVar(&cfg.Token, "token", "", "api token for external modes")
	fs.StringVar(&cfg.Model, "model", "", "model name for external modes")
	fs.StringVar(&cfg.APIKey, "api-key", "", "api key for the REST service")

	return &ffcli.Command{
		Name:       cmd,
		ShortUsage: fmt.Sprintf("trackforge %s [flags]", cmd),
		Options:    options(),
		ShortHelp:  "write a starter configuration file",
		FlagSet:    fs,
		Exec: func(ctx context.Context, args []string) error {
			return setup.Run(ctx, cfg)
		},
	}
}

func newMigrateCommand() *ffcli.Command {
	cmd := "migrate"
	fs := flag.NewFlagSet(cmd, flag.ExitOnError)
	_ = fs.String("config", "", "config file (optional)")

	cfg := &migrate.Config{}

	fs.BoolVar(&cfg.Debug, "debug", false, "debug mode")
	fs.StringVar(&cfg.DBType, "db-type", "", "db type (sqlite, mysql, postgres)")
	fs.StringVar(&cfg.DBConn, "db-conn", "", "path for sqlite, dsn for mysql or postgres")

	return &ffcli.Command{
		Name:       cmd,
		ShortUsage: fmt.Sprintf("trackforge %s [flags]", cmd),
		Options:    options(),
		ShortHelp:  "run the generation history database migrations",
		FlagSet:    fs,
		Exec: func(ctx context.Context, args []string) error {
			return migrate.Run(ctx, cfg)
		},
	}
}
