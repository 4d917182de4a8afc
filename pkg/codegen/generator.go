// Package codegen runs the code generation stages for a project: load and
// validate the config, resolve contracts against their globals, parse the
// selected events, flatten their parameters and build the template model.
package codegen

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/0xmhha/indexer-codegen/internal/constants"
	"github.com/0xmhha/indexer-codegen/internal/logger"
	"github.com/0xmhha/indexer-codegen/pkg/humanconfig"
	"github.com/0xmhha/indexer-codegen/pkg/model"
	"github.com/0xmhha/indexer-codegen/pkg/systemconfig"
)

// Result is the output of one run
type Result struct {
	Config *systemconfig.SystemConfig
	Model  *model.Model
	Schema model.Schema
}

// Generator runs the generation stages
type Generator struct {
	logger  *zap.Logger
	metrics *Metrics
}

// NewGenerator creates a generator. A nil logger falls back to the logger
// carried by the context of each run; nil metrics disable recording.
func NewGenerator(log *zap.Logger, metrics *Metrics) *Generator {
	g := &Generator{metrics: metrics}
	if log != nil {
		g.logger = logger.WithComponent(log, "codegen")
	}
	return g
}

func (g *Generator) log(ctx context.Context) *zap.Logger {
	if g.logger != nil {
		return g.logger
	}
	return logger.WithComponent(logger.FromContext(ctx), "codegen")
}

// Generate builds the model of the project whose config lives at configPath.
// The first failure aborts the run; the context is checked between stages.
func (g *Generator) Generate(ctx context.Context, configPath string) (*Result, error) {
	start := time.Now()

	res, err := g.generate(ctx, configPath)

	duration := time.Since(start)
	if g.metrics != nil {
		g.metrics.ObserveRun(duration)
	}
	if err != nil {
		if g.metrics != nil {
			g.metrics.ObserveFailure(err)
		}
		g.log(ctx).Error("generation failed",
			zap.String("config", configPath),
			zap.String("kind", KindLabel(err)),
			zap.Error(err),
		)
		return nil, err
	}

	if g.metrics != nil {
		g.metrics.ObserveModel(res.Model)
	}
	g.log(ctx).Info("generation complete",
		zap.String("project", res.Model.ProjectName),
		zap.Int("entities", len(res.Schema.Entities)),
		zap.Duration("duration", duration),
	)
	return res, nil
}

func (g *Generator) generate(ctx context.Context, configPath string) (*Result, error) {
	log := g.log(ctx)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	cfg, err := humanconfig.Load(configPath)
	if err != nil {
		return nil, err
	}
	log.Debug("config loaded",
		zap.String("config", configPath),
		zap.String("project", cfg.Name),
		zap.Int("networks", len(cfg.Networks)),
		zap.Int("global_contracts", len(cfg.Contracts)),
	)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	sc, err := systemconfig.FromHumanConfig(cfg, filepath.Dir(configPath))
	if err != nil {
		return nil, err
	}
	for _, n := range sc.Networks {
		log.Debug("network resolved",
			zap.Uint64("network", n.ID),
			zap.Int("contracts", len(n.Contracts)),
		)
	}
	for _, c := range sc.Contracts {
		log.Debug("contract events selected",
			zap.String("contract", c.Name),
			zap.Int("events", len(c.Events)),
		)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	built, err := model.NewBuilder().Build(sc)
	if err != nil {
		return nil, err
	}

	schema, err := built.Schema()
	if err != nil {
		return nil, err
	}
	if err := schema.Validate(); err != nil {
		return nil, err
	}
	if _, err := schema.Executable(); err != nil {
		return nil, err
	}
	log.Debug("model built",
		zap.Int("contracts", len(built.Contracts)),
		zap.Int("entities", len(schema.Entities)),
	)

	return &Result{Config: sc, Model: built, Schema: schema}, nil
}

// Write writes model.json and schema.graphql into dir and returns their paths
func (r *Result) Write(dir string) ([]string, error) {
	if err := os.MkdirAll(dir, constants.DirPerm); err != nil {
		return nil, fmt.Errorf("failed to create generated directory: %w", err)
	}

	data, err := json.MarshalIndent(r.Model, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode model: %w", err)
	}

	files := []struct {
		name string
		data []byte
	}{
		{constants.ModelFileName, append(data, '\n')},
		{constants.SchemaFileName, []byte(r.Schema.SDL())},
	}

	written := make([]string, 0, len(files))
	for _, f := range files {
		path := filepath.Join(dir, f.name)
		if err := os.WriteFile(path, f.data, constants.FilePerm); err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", f.name, err)
		}
		written = append(written, path)
	}
	return written, nil
}
