// Package runner executes the feature suite with godog and re-runs the failed
// scenarios while retries remain.
package runner

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/cucumber/godog"
	"go.uber.org/zap"

	"github.com/eugenenazirov/docs-e2e/internal/artifacts"
	"github.com/eugenenazirov/docs-e2e/internal/config"
	"github.com/eugenenazirov/docs-e2e/internal/steps"
)

const (
	cucumberReport = "cucumber-report.json"
	junitReport    = "results.xml"
)

// Status is the outcome of a run as reported by godog.
type Status int

const (
	StatusPassed Status = 0
	StatusFailed Status = 1
	// StatusInvalid is returned for option or feature parsing errors.
	StatusInvalid Status = 2
)

func (s Status) String() string {
	switch s {
	case StatusPassed:
		return "passed"
	case StatusFailed:
		return "failed"
	case StatusInvalid:
		return "invalid"
	}
	return fmt.Sprintf("status(%d)", int(s))
}

// Result summarises a run across all attempts.
type Result struct {
	Status   Status
	Attempts int
}

// Passed reports whether the last attempt succeeded.
func (r Result) Passed() bool {
	return r.Status == StatusPassed
}

// SuiteFunc runs one attempt over paths, reports each failed scenario to
// fail and returns the godog status.
type SuiteFunc func(ctx context.Context, attempt int, paths []string, fail func(*godog.Scenario)) Status

// Runner drives the suite.
type Runner struct {
	cfg    config.Config
	logger *zap.Logger
	store  *artifacts.Store
	output io.Writer
	suite  SuiteFunc
	steps  []steps.Option
}

// Option configures a Runner.
type Option func(*Runner)

// WithOutput sends formatter output to w instead of stdout.
func WithOutput(w io.Writer) Option {
	return func(r *Runner) {
		r.output = w
	}
}

// WithSuite replaces the godog execution of one attempt.
func WithSuite(fn SuiteFunc) Option {
	return func(r *Runner) {
		r.suite = fn
	}
}

// WithStepOptions passes options to the step suite of every attempt.
func WithStepOptions(opts ...steps.Option) Option {
	return func(r *Runner) {
		r.steps = append(r.steps, opts...)
	}
}

// New builds a Runner.
func New(cfg config.Config, logger *zap.Logger, store *artifacts.Store, opts ...Option) *Runner {
	r := &Runner{
		cfg:    cfg,
		logger: logger,
		store:  store,
		output: os.Stdout,
	}
	r.suite = r.runGodog
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes the suite, then re-runs its failed scenarios up to cfg.Retries
// times while any of them fail.
func (r *Runner) Run(ctx context.Context) (Result, error) {
	if err := os.MkdirAll(r.cfg.ReportDir, 0o755); err != nil {
		return Result{Status: StatusInvalid}, fmt.Errorf("create report dir: %w", err)
	}

	var res Result
	paths := r.cfg.FeaturePaths
	for attempt := 0; attempt <= r.cfg.Retries; attempt++ {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		var failed failures
		res.Attempts = attempt + 1
		res.Status = r.suite(ctx, attempt, paths, failed.add)

		r.logger.Info("suite attempt finished",
			zap.Int("attempt", attempt),
			zap.Stringer("status", res.Status),
			zap.Strings("paths", paths),
		)

		// Invalid options will not improve on a retry.
		if res.Status != StatusFailed {
			break
		}
		if next := rerunPaths(failed.list(), r.logger); len(next) > 0 {
			paths = next
		}
	}
	return res, nil
}

func (r *Runner) runGodog(ctx context.Context, attempt int, paths []string, fail func(*godog.Scenario)) Status {
	opts := append([]steps.Option{steps.WithFailureHook(fail)}, r.steps...)
	s := steps.New(r.cfg, r.logger, r.store, attempt, opts...)

	suite := godog.TestSuite{
		Name:                 "docs-e2e",
		TestSuiteInitializer: s.InitializeTestSuite,
		ScenarioInitializer:  s.InitializeScenario,
		Options:              r.options(ctx, attempt, paths),
	}
	return Status(suite.Run())
}

func (r *Runner) options(ctx context.Context, attempt int, paths []string) *godog.Options {
	return &godog.Options{
		Format:         r.format(attempt),
		Output:         r.output,
		Paths:          paths,
		Tags:           r.cfg.Tags,
		Concurrency:    r.cfg.Concurrency,
		Strict:         r.cfg.Strict,
		DefaultContext: ctx,
	}
}

// format joins the console formatters with the file reports. Retries write
// to suffixed files so the first attempt's reports survive.
func (r *Runner) format(attempt int) string {
	formats := append([]string(nil), r.cfg.Formats...)
	if len(formats) == 0 {
		formats = []string{"pretty"}
	}
	formats = append(formats,
		"cucumber:"+r.reportPath(cucumberReport, attempt),
		"junit:"+r.reportPath(junitReport, attempt),
	)
	return strings.Join(formats, ",")
}

func (r *Runner) reportPath(name string, attempt int) string {
	if attempt > 0 {
		ext := filepath.Ext(name)
		name = fmt.Sprintf("%s-retry%d%s", strings.TrimSuffix(name, ext), attempt, ext)
	}
	return filepath.Join(r.cfg.ReportDir, name)
}
