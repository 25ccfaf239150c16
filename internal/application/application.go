package application

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/eugenenazirov/docs-e2e/internal/artifacts"
	"github.com/eugenenazirov/docs-e2e/internal/config"
	"github.com/eugenenazirov/docs-e2e/internal/runner"
)

// App encapsulates the dependencies of one suite run.
type App struct {
	cfg     config.Config
	store   *artifacts.Store
	runner  *runner.Runner
	logger  *zap.Logger
	options []runner.Option
}

// Option configures an App.
type Option func(*App)

// WithRunnerOptions forwards options to the runner.
func WithRunnerOptions(opts ...runner.Option) Option {
	return func(a *App) {
		a.options = append(a.options, opts...)
	}
}

// New initializes the application with all dependencies from the provided configuration.
func New(cfg config.Config, logger *zap.Logger, opts ...Option) (*App, error) {
	paths, err := resolveFeaturePaths(cfg.FeaturePaths)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve feature paths: %w", err)
	}
	cfg.FeaturePaths = paths

	a := &App{
		cfg:    cfg,
		store:  artifacts.NewStore(cfg.ReportDir),
		logger: logger,
	}
	for _, opt := range opts {
		opt(a)
	}
	a.runner = runner.New(cfg, logger, a.store, a.options...)

	return a, nil
}

// Config returns the configuration the app was built with.
func (a *App) Config() config.Config {
	return a.cfg
}

// Artifacts returns the artifact store shared by every scenario.
func (a *App) Artifacts() *artifacts.Store {
	return a.store
}

// Run executes the suite and logs a summary.
func (a *App) Run(ctx context.Context) (runner.Result, error) {
	a.logger.Info("running feature suite",
		zap.String("environment", a.cfg.Profile.Name),
		zap.String("base_url", a.cfg.Profile.BaseURL),
		zap.Strings("features", a.cfg.FeaturePaths),
		zap.String("tags", a.cfg.Tags),
		zap.Int("concurrency", a.cfg.Concurrency),
		zap.Int("retries", a.cfg.Retries),
		zap.String("device", a.cfg.Device),
	)

	res, err := a.runner.Run(ctx)
	if err != nil {
		return res, err
	}

	a.logger.Info("feature suite finished",
		zap.Stringer("status", res.Status),
		zap.Int("attempts", res.Attempts),
		zap.Int("artifacts", len(a.store.Attachments())),
		zap.String("report_dir", a.cfg.ReportDir),
	)
	return res, nil
}

// resolveFeaturePaths keeps paths that exist and resolves the rest relative
// to the project root.
func resolveFeaturePaths(paths []string) ([]string, error) {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		if filepath.IsAbs(p) {
			out = append(out, p)
			continue
		}
		if _, err := os.Stat(p); err == nil {
			out = append(out, p)
			continue
		}
		resolved, err := resolveProjectPath(p)
		if err != nil {
			return nil, err
		}
		out = append(out, resolved)
	}
	return out, nil
}

// resolveProjectPath locates a file or directory relative to the project root by walking up the directory tree.
func resolveProjectPath(relative string) (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		candidate := filepath.Join(dir, relative)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", fmt.Errorf("unable to locate %s", relative)
}
