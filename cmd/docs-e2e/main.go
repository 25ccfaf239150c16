package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/eugenenazirov/docs-e2e/internal/application"
	"github.com/eugenenazirov/docs-e2e/internal/config"
	"github.com/eugenenazirov/docs-e2e/internal/environments"
	"github.com/eugenenazirov/docs-e2e/internal/logging"
)

const (
	exitOK      = 0
	exitFailed  = 1
	exitInvalid = 2
)

var signalNotify = signal.Notify

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

type runFlags struct {
	configFile  *string
	env         *string
	headless    *bool
	headlessSet bool
	slowMo      *string
	timeout     *string
	concurrency *int
	retries     *int
	device      *string
	features    *[]string
	reportDir   *string
	formats     *[]string
	tags        *string
	logLevel    *string
	dev         *bool
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	kingpinApp := kingpin.New("docs-e2e", "End-to-end browser suite for the documentation site")
	kingpinApp.UsageWriter(stdout)
	kingpinApp.ErrorWriter(stderr)
	kingpinApp.Terminate(nil)

	kingpinApp.Command("envs", "List known environment names")

	showCmd := kingpinApp.Command("show", "Print the resolved environment profile as YAML")
	showName := showCmd.Arg("name", "Environment name (defaults to TEST_ENV, then production)").String()

	checkCmd := kingpinApp.Command("check", "Exit non-zero unless the environment name is known")
	checkName := checkCmd.Arg("name", "Environment name").Required().String()

	runCmd := kingpinApp.Command("run", "Run the feature suite").Default()
	flags := runFlags{
		configFile:  runCmd.Flag("config", "Path to YAML configuration file").String(),
		env:         runCmd.Flag("env", "Environment profile name (overrides TEST_ENV)").String(),
		slowMo:      runCmd.Flag("slow-mo", "Delay between browser actions, e.g. 250ms").String(),
		timeout:     runCmd.Flag("timeout", "Default operation timeout, e.g. 30s").String(),
		concurrency: runCmd.Flag("concurrency", "Scenarios run in parallel").Default("0").Int(),
		retries:     runCmd.Flag("retries", "Suite re-runs after a failure (set -1 to keep the profile value)").Default("-1").Int(),
		device:      runCmd.Flag("device", "Emulated device name").String(),
		reportDir:   runCmd.Flag("report-dir", "Directory for reports and artifacts").String(),
		formats:     runCmd.Flag("format", "Console formatter; repeatable").Strings(),
		tags:        runCmd.Flag("tags", "Tag expression filtering scenarios").String(),
		logLevel:    runCmd.Flag("log-level", "Log level: debug, info, warn, error").String(),
		dev:         runCmd.Flag("dev", "Human-readable console logs").Bool(),
		features:    runCmd.Arg("paths", "Feature files or directories").Strings(),
	}
	flags.headless = runCmd.Flag("headless", "Run the browser without a window").IsSetByUser(&flags.headlessSet).Bool()

	command, err := kingpinApp.Parse(args)
	if err != nil {
		fmt.Fprintf(stderr, "docs-e2e: %v\n", err)
		return exitInvalid
	}

	switch command {
	case "envs":
		for _, name := range environments.Names() {
			fmt.Fprintln(stdout, name)
		}
		return exitOK
	case "show":
		return showProfile(*showName, stdout, stderr)
	case "check":
		if !environments.IsKnown(*checkName) {
			err := &environments.NotFoundError{Name: *checkName, Available: environments.Names()}
			fmt.Fprintf(stderr, "docs-e2e: %v\n", err)
			return exitInvalid
		}
		fmt.Fprintf(stdout, "%s: ok\n", *checkName)
		return exitOK
	case "run":
		return runSuite(ctx, flags, stderr)
	}

	// --help and --version end up here with Terminate disabled.
	return exitOK
}

func showProfile(name string, stdout, stderr io.Writer) int {
	profile, err := environments.Resolve(name)
	if err != nil {
		fmt.Fprintf(stderr, "docs-e2e: %v\n", err)
		return exitInvalid
	}

	enc := yaml.NewEncoder(stdout)
	enc.SetIndent(2)
	err = enc.Encode(profile)
	if closeErr := enc.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		fmt.Fprintf(stderr, "docs-e2e: encode profile: %v\n", err)
		return exitFailed
	}
	return exitOK
}

func runSuite(ctx context.Context, flags runFlags, stderr io.Writer) int {
	overrides, err := buildOverrides(flags)
	if err != nil {
		fmt.Fprintf(stderr, "docs-e2e: %v\n", err)
		return exitInvalid
	}

	cfg, err := config.Load(overrides)
	if err != nil {
		fmt.Fprintf(stderr, "docs-e2e: failed to load configuration: %v\n", err)
		return exitInvalid
	}

	logger, err := logging.New(logging.Options{Level: cfg.LogLevel, Development: *flags.dev})
	if err != nil {
		fmt.Fprintf(stderr, "docs-e2e: failed to initialize logger: %v\n", err)
		return exitInvalid
	}
	defer func() {
		_ = logger.Sync()
	}()

	app, err := application.New(cfg, logger)
	if err != nil {
		logger.Error("failed to initialize application", zap.Error(err))
		return exitInvalid
	}

	ctx, stop := notifyContext(ctx, logger)
	defer stop()

	res, err := app.Run(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Warn("run cancelled", zap.Int("attempts", res.Attempts))
		} else {
			logger.Error("run failed", zap.Error(err))
		}
		return exitFailed
	}
	return int(res.Status)
}

func buildOverrides(flags runFlags) (*config.CLIOverrides, error) {
	overrides := &config.CLIOverrides{
		ConfigFile:   *flags.configFile,
		FeaturePaths: *flags.features,
		Formats:      splitFormats(*flags.formats),
	}

	if *flags.env != "" {
		overrides.Env = flags.env
	}
	if flags.headlessSet {
		overrides.Headless = flags.headless
	}
	if *flags.slowMo != "" {
		d, err := parseDuration("slow-mo", *flags.slowMo)
		if err != nil {
			return nil, err
		}
		overrides.SlowMo = &d
	}
	if *flags.timeout != "" {
		d, err := parseDuration("timeout", *flags.timeout)
		if err != nil {
			return nil, err
		}
		overrides.Timeout = &d
	}
	if *flags.concurrency > 0 {
		overrides.Concurrency = flags.concurrency
	}
	if *flags.retries >= 0 {
		overrides.Retries = flags.retries
	}
	if *flags.device != "" {
		overrides.Device = flags.device
	}
	if *flags.reportDir != "" {
		overrides.ReportDir = flags.reportDir
	}
	if *flags.tags != "" {
		overrides.Tags = flags.tags
	}
	if *flags.logLevel != "" {
		overrides.LogLevel = flags.logLevel
	}

	return overrides, nil
}

// parseDuration accepts Go durations and bare millisecond counts, matching
// the SLOW_MO and TIMEOUT variables.
func parseDuration(flag, raw string) (time.Duration, error) {
	if ms, err := strconv.Atoi(raw); err == nil {
		return time.Duration(ms) * time.Millisecond, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("parse --%s: %w", flag, err)
	}
	return d, nil
}

// splitFormats accepts both repeated flags and comma-separated lists.
func splitFormats(values []string) []string {
	var out []string
	for _, v := range values {
		for _, f := range strings.Split(v, ",") {
			if f = strings.TrimSpace(f); f != "" {
				out = append(out, f)
			}
		}
	}
	return out
}

// notifyContext cancels the returned context on SIGINT or SIGTERM so the
// browser sessions of the running suite get closed.
func notifyContext(parent context.Context, logger *zap.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)

	quit := make(chan os.Signal, 1)
	signalNotify(quit, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case sig := <-quit:
			logger.Info("stopping suite", zap.Stringer("signal", sig))
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, func() {
		signal.Stop(quit)
		cancel()
	}
}
