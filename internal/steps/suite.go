package steps

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cucumber/godog"
	"go.uber.org/zap"

	"github.com/eugenenazirov/docs-e2e/internal/apiclient"
	"github.com/eugenenazirov/docs-e2e/internal/artifacts"
	"github.com/eugenenazirov/docs-e2e/internal/browser"
	"github.com/eugenenazirov/docs-e2e/internal/config"
	"github.com/eugenenazirov/docs-e2e/internal/helpers"
	"github.com/eugenenazirov/docs-e2e/internal/pages"
)

// apiTag marks scenarios that only talk to the API and need no browser.
const apiTag = "@api"

// Suite registers hooks and steps for one execution attempt.
type Suite struct {
	cfg     config.Config
	logger  *zap.Logger
	store   *artifacts.Store
	attempt int
	launch  Launcher
	clock   func() time.Time
	failed  func(*godog.Scenario)
}

// Option configures a Suite.
type Option func(*Suite)

// WithLauncher replaces the chromedp launcher, primarily for tests.
func WithLauncher(l Launcher) Option {
	return func(s *Suite) {
		s.launch = l
	}
}

// WithClock overrides the time source used for durations and artifact names.
func WithClock(clock func() time.Time) Option {
	return func(s *Suite) {
		s.clock = clock
	}
}

// WithFailureHook registers fn to receive every scenario that fails.
func WithFailureHook(fn func(*godog.Scenario)) Option {
	return func(s *Suite) {
		s.failed = fn
	}
}

// New builds the step suite. attempt is 0 for the first run and counts retries after that.
func New(cfg config.Config, logger *zap.Logger, store *artifacts.Store, attempt int, opts ...Option) *Suite {
	s := &Suite{
		cfg:     cfg,
		logger:  logger,
		store:   store,
		attempt: attempt,
		launch:  LaunchChrome,
		clock:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// InitializeTestSuite logs the suite boundaries.
func (s *Suite) InitializeTestSuite(ctx *godog.TestSuiteContext) {
	ctx.BeforeSuite(func() {
		s.logger.Info("starting feature suite",
			zap.String("environment", s.cfg.Profile.Name),
			zap.String("base_url", s.cfg.Profile.BaseURL),
			zap.Int("attempt", s.attempt),
		)
	})
	ctx.AfterSuite(func() {
		s.logger.Info("feature suite completed", zap.Int("attempt", s.attempt))
	})
}

// InitializeScenario wires hooks and step definitions.
func (s *Suite) InitializeScenario(ctx *godog.ScenarioContext) {
	ctx.Before(s.before)
	ctx.After(s.after)
	registerNavigationSteps(ctx)
	registerAPISteps(ctx)
}

func (s *Suite) browserOptions() browser.Options {
	dev, _ := browser.LookupDevice(s.cfg.Device)
	return browser.Options{
		Headless:          s.cfg.Headless,
		SlowMo:            s.cfg.SlowMo,
		Timeout:           s.cfg.Timeout,
		ActionTimeout:     s.cfg.ActionTimeout(),
		NavigationTimeout: s.cfg.NavigationTimeout(),
		Device:            dev,
		BaseURL:           s.cfg.Profile.BaseURL,
		Trace:             s.cfg.Profile.Trace.Record(s.attempt),
		ExecPath:          s.cfg.ChromePath,
	}
}

func (s *Suite) before(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
	w := &World{
		TestName:  sc.Name,
		StartTime: s.clock(),
	}
	ctx = withWorld(ctx, w)

	s.logger.Info("starting scenario", zap.String("scenario", w.TestName), zap.Int("attempt", s.attempt))

	if s.cfg.Profile.HasAPIURL() {
		client, err := apiclient.New(s.cfg.Profile, s.logger, apiclient.WithRetries(s.cfg.Retries+1, time.Second))
		if err != nil {
			return ctx, err
		}
		w.api = client
	}

	if hasTag(sc, apiTag) {
		return ctx, nil
	}

	b, err := s.launch(ctx, s.browserOptions(), s.logger)
	if err != nil {
		return ctx, fmt.Errorf("open browser: %w", err)
	}
	w.browser = b

	page, err := b.NewPage(ctx)
	if err != nil {
		return ctx, fmt.Errorf("create page: %w", err)
	}
	w.setPage(page, s.store)

	return ctx, nil
}

func (s *Suite) after(ctx context.Context, sc *godog.Scenario, scenarioErr error) (context.Context, error) {
	if scenarioErr != nil && s.failed != nil {
		s.failed(sc)
	}

	w, ok := WorldFrom(ctx)
	if !ok {
		return ctx, nil
	}

	failed := scenarioErr != nil
	duration := s.clock().Sub(w.StartTime)
	artifactName := helpers.TimestampedName(w.TestName, s.clock())
	if failed {
		artifactName = "failed-" + artifactName
		s.logger.Warn("scenario failed",
			zap.String("scenario", w.TestName),
			zap.Duration("duration", duration),
			zap.Error(scenarioErr),
		)
	} else {
		s.logger.Info("scenario passed", zap.String("scenario", w.TestName), zap.Duration("duration", duration))
	}

	var errs []error
	if w.page != nil {
		errs = append(errs, s.captureArtifacts(ctx, w, artifactName, failed)...)
	}

	if s.cfg.Profile.Video.Keep(s.attempt, failed) {
		s.logger.Debug("video retention requested but not recorded over CDP",
			zap.String("scenario", w.TestName),
			zap.String("policy", string(s.cfg.Profile.Video)),
		)
	}

	if w.browser != nil {
		if entries := w.browser.Trace(); len(entries) > 0 && s.cfg.Profile.Trace.Keep(s.attempt, failed) {
			if _, err := s.store.SaveTrace(artifactName, entries); err != nil {
				errs = append(errs, err)
			}
		}
		if err := w.browser.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close browser: %w", err))
		}
	}

	s.logger.Debug("cleanup completed", zap.String("scenario", w.TestName))

	if err := errors.Join(errs...); err != nil {
		// Artifact problems must not mask the scenario result.
		s.logger.Error("scenario cleanup failed", zap.String("scenario", w.TestName), zap.Error(err))
	}
	return ctx, nil
}

func (s *Suite) captureArtifacts(ctx context.Context, w *World, name string, failed bool) []error {
	var errs []error

	if s.cfg.Profile.Screenshot.Keep(failed) {
		if png, err := w.page.Screenshot(ctx, true); err != nil {
			errs = append(errs, err)
		} else if _, err := s.store.SaveScreenshot(name, png); err != nil {
			errs = append(errs, err)
		}
	}

	if failed {
		if html, err := w.page.Content(ctx); err != nil {
			errs = append(errs, err)
		} else if _, err := s.store.SavePage(name, html); err != nil {
			errs = append(errs, err)
		}
	}

	return errs
}

func (w *World) setPage(p Page, store *artifacts.Store) {
	w.page = p
	w.home = pages.NewHome(p, store)
}

func hasTag(sc *godog.Scenario, tag string) bool {
	for _, t := range sc.Tags {
		if t.Name == tag {
			return true
		}
	}
	return false
}
