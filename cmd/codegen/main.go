package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/0xmhha/indexer-codegen/internal/config"
	"github.com/0xmhha/indexer-codegen/internal/logger"
	"github.com/0xmhha/indexer-codegen/pkg/codegen"
	"github.com/0xmhha/indexer-codegen/pkg/humanconfig"
)

var (
	// Version information (injected at build time)
	version   = "dev"
	commit    = "none"
	buildTime = "unknown"
)

var (
	settingsFlag = &cli.PathFlag{
		Name:      "settings",
		Usage:     "Path to the codegen settings file (YAML)",
		TakesFile: true,
	}
	configFlag = &cli.StringFlag{
		Name:  "config",
		Usage: "Indexer config file, relative to the project root",
	}
	projectRootFlag = &cli.PathFlag{
		Name:  "project-root",
		Usage: "Project directory",
	}
	generatedFlag = &cli.StringFlag{
		Name:  "generated",
		Usage: "Directory for generated files, relative to the project root",
	}
	logLevelFlag = &cli.StringFlag{
		Name:  "log-level",
		Usage: "Log level (debug, info, warn, error)",
	}
	logFormatFlag = &cli.StringFlag{
		Name:  "log-format",
		Usage: "Log format (json, console)",
	}
	metricsFileFlag = &cli.PathFlag{
		Name:      "metrics-file",
		Usage:     "Write run metrics to this file in Prometheus text format",
		TakesFile: true,
	}
)

func main() {
	if err := loadDotEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load environment: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp().RunContext(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:    "codegen",
		Usage:   "Generate indexer models from a contract configuration",
		Version: fmt.Sprintf("%s (commit %s, built %s)", version, commit, buildTime),
		Flags: []cli.Flag{
			settingsFlag,
			configFlag,
			projectRootFlag,
			generatedFlag,
			logLevelFlag,
			logFormatFlag,
			metricsFileFlag,
		},
		Commands: []*cli.Command{
			{
				Name:   "generate",
				Usage:  "Build the model and write model.json and schema.graphql",
				Action: generateAction,
			},
			{
				Name:   "validate",
				Usage:  "Load, resolve and build the model without writing files",
				Action: validateAction,
			},
			{
				Name:   "schema",
				Usage:  "Print the JSON schema of the indexer config",
				Action: schemaAction,
			},
		},
	}
}

// loadDotEnv loads environment variables from a .env file if it exists.
func loadDotEnv() error {
	info, err := os.Stat(".env")
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to stat .env: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf(".env exists but is a directory")
	}
	if err := godotenv.Load(".env"); err != nil {
		return fmt.Errorf("failed to load .env: %w", err)
	}
	return nil
}

// loadConfig runs the config ladder and applies command-line flags on top
func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.Load(c.Path(settingsFlag.Name))
	if err != nil {
		return nil, err
	}

	if c.IsSet(projectRootFlag.Name) {
		cfg.Project.Root = c.Path(projectRootFlag.Name)
	}
	if c.IsSet(configFlag.Name) {
		cfg.Project.ConfigPath = c.String(configFlag.Name)
	}
	if c.IsSet(generatedFlag.Name) {
		cfg.Output.GeneratedDir = c.String(generatedFlag.Name)
	}
	if c.IsSet(logLevelFlag.Name) {
		cfg.Log.Level = c.String(logLevelFlag.Name)
	}
	if c.IsSet(logFormatFlag.Name) {
		cfg.Log.Format = c.String(logFormatFlag.Name)
	}
	if c.IsSet(metricsFileFlag.Name) {
		cfg.Metrics.File = c.Path(metricsFileFlag.Name)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// run loads the config, generates the model and hands the result to write
func run(c *cli.Context, write bool) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	log, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	ctx, cancel := context.WithTimeout(c.Context, cfg.Output.Timeout)
	defer cancel()
	ctx = logger.WithLogger(ctx, log)

	var metrics *codegen.Metrics
	if cfg.Metrics.File != "" {
		metrics = codegen.NewMetrics("", "")
		defer func() {
			if err := metrics.WriteToTextfile(cfg.Metrics.File); err != nil {
				log.Warn("Failed to write metrics", zap.String("file", cfg.Metrics.File), zap.Error(err))
			}
		}()
	}

	log.Info("Starting codegen",
		zap.String("version", version),
		zap.String("project_root", cfg.Project.Root),
		zap.String("config", cfg.ConfigFile()),
	)

	res, err := codegen.NewGenerator(log, metrics).Generate(ctx, cfg.ConfigFile())
	if err != nil {
		return err
	}
	if !write {
		log.Info("Config is valid", zap.Int("entities", len(res.Schema.Entities)))
		return nil
	}

	dir, err := cfg.GeneratedPath()
	if err != nil {
		return err
	}
	written, err := res.Write(dir)
	if err != nil {
		return err
	}
	log.Info("Generated files written", zap.Strings("files", written))
	return nil
}

func generateAction(c *cli.Context) error {
	return run(c, true)
}

func validateAction(c *cli.Context) error {
	return run(c, false)
}

func schemaAction(c *cli.Context) error {
	doc, err := humanconfig.JSONSchemaDocument()
	if err != nil {
		return err
	}
	_, err = c.App.Writer.Write(doc)
	return err
}
