package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/ansuz/internal"
	"github.com/starford/ansuz/internal/builder"
	"github.com/starford/ansuz/internal/preview"
	"github.com/starford/ansuz/internal/render"
	"github.com/starford/ansuz/internal/search"
	"github.com/starford/ansuz/internal/storage"
	"github.com/starford/ansuz/internal/validator"
	pkgconfig "github.com/starford/ansuz/pkg/config"
)

func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.LoadOptional(cmd.String("config"), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if root := cmd.String("root"); root != "" {
		cfg.Tree.Root = root
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	return cfg, nil
}

// newBuilder applies the configured template and output directories on
// top of the builder defaults.
func newBuilder(cfg *internal.Config, store *storage.FS, opts ...builder.Option) *builder.Builder {
	all := []builder.Option{
		builder.WithRenderer(render.NewText(filepath.Join(store.Root(), cfg.Build.TemplatesDir))),
		builder.WithOutDir(cfg.Build.OutDir),
	}
	all = append(all, opts...)
	return builder.New(store, all...)
}

func runBuild(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	store, err := storage.NewFS(cfg.Tree.Root)
	if err != nil {
		return err
	}

	b := newBuilder(cfg, store, builder.WithReproducible(cmd.Bool("reproducible")))
	artifact, err := b.Build(ctx, cmd.String("manifest"))
	if err != nil {
		return err
	}
	fmt.Println(artifact)
	return nil
}

func runValidate(_ context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return cli.Exit(err.Error(), 2)
	}
	target := cmd.String("target")
	if target == "" {
		target = cfg.Tree.Root
	}

	report, err := validator.Run(target)
	if err != nil {
		return cli.Exit(fmt.Sprintf("validate: %v", err), 2)
	}

	fmt.Print(report.Format(isTerminal(os.Stdout)))
	if !report.OK() {
		return cli.Exit("", 1)
	}
	return nil
}

func runSearch(_ context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	store, err := storage.NewFS(cfg.Tree.Root)
	if err != nil {
		return err
	}

	matches, err := search.Run(store, cmd.String("query"))
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(matches)
}

func runPreview(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	store, err := storage.NewFS(cfg.Tree.Root)
	if err != nil {
		return err
	}

	addr := cmd.String("addr")
	if addr == "" {
		addr = cfg.Preview.Address()
	}

	b := newBuilder(cfg, store)
	server := preview.NewServer(store, b, cmd.String("manifest"), addr, slog.Default())
	return server.Run(ctx)
}

func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}

func main() {
	cmd := &cli.Command{
		Name:  "ansuz",
		Usage: "Resume-as-data toolkit: validate a YAML content tree and build targeted resume artifacts",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "ansuz.yaml",
				Value:       "ansuz.yaml",
				Sources:     cli.EnvVars("ANSUZ_CONFIG_FILE"),
			},
			&cli.StringFlag{
				Name:    "root",
				Usage:   "Content tree root (overrides config)",
				Sources: cli.EnvVars("ANSUZ_ROOT"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "build",
				Usage:  "Build one resume artifact from a manifest",
				Action: runBuild,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "manifest",
						Aliases:  []string{"m"},
						Usage:    "Manifest path relative to the tree root",
						Required: true,
					},
					&cli.BoolFlag{
						Name:  "reproducible",
						Usage: "Pin build metadata so output is byte-identical across runs",
					},
				},
			},
			{
				Name:   "validate",
				Usage:  "Validate the whole content tree; exit 1 on findings, 2 on usage errors",
				Action: runValidate,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "target",
						Usage: "Tree to validate (defaults to the configured root)",
					},
				},
			},
			{
				Name:   "search",
				Usage:  "Score content entries against comma-separated keywords",
				Action: runSearch,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "query",
						Aliases:  []string{"q"},
						Usage:    "Comma-separated search terms",
						Required: true,
					},
				},
			},
			{
				Name:   "preview",
				Usage:  "Serve the built artifact with live reload on content changes",
				Action: runPreview,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "manifest",
						Aliases:  []string{"m"},
						Usage:    "Manifest path relative to the tree root",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "addr",
						Usage: "Listen address (overrides config)",
					},
				},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		if exitErr, ok := err.(cli.ExitCoder); ok {
			if msg := err.Error(); msg != "" {
				fmt.Fprintln(os.Stderr, msg)
			}
			os.Exit(exitErr.ExitCode())
		}
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
