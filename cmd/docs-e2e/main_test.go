package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/eugenenazirov/docs-e2e/internal/environments"
)

func execute(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestEnvsCommand(t *testing.T) {
	code, out, _ := execute(t, "envs")
	if code != exitOK {
		t.Fatalf("expected exit 0, got %d", code)
	}
	if want := "development\nstaging\nproduction\nci\n"; out != want {
		t.Fatalf("expected %q, got %q", want, out)
	}
}

func TestShowCommand(t *testing.T) {
	t.Setenv(environments.EnvVar, "")

	t.Run("explicit name", func(t *testing.T) {
		code, out, stderr := execute(t, "show", "ci")
		if code != exitOK {
			t.Fatalf("expected exit 0, got %d (%s)", code, stderr)
		}

		var p environments.Profile
		if err := yaml.Unmarshal([]byte(out), &p); err != nil {
			t.Fatalf("output is not YAML: %v\n%s", err, out)
		}
		if p.Name != "ci" || p.TimeoutMs != 60000 || p.Retries != 3 {
			t.Fatalf("unexpected profile: %+v", p)
		}
	})

	t.Run("defaults to production", func(t *testing.T) {
		code, out, _ := execute(t, "show")
		if code != exitOK || !strings.Contains(out, "name: production") {
			t.Fatalf("expected production profile, got %d %q", code, out)
		}
	})

	t.Run("unknown name", func(t *testing.T) {
		code, _, stderr := execute(t, "show", "qa")
		if code != exitInvalid {
			t.Fatalf("expected exit 2, got %d", code)
		}
		if !strings.Contains(stderr, "Available environments: development, staging, production, ci") {
			t.Fatalf("expected available names in error, got %q", stderr)
		}
	})
}

func TestCheckCommand(t *testing.T) {
	t.Setenv(environments.EnvVar, "staging")

	if code, out, _ := execute(t, "check", "staging"); code != exitOK || out != "staging: ok\n" {
		t.Fatalf("expected staging to pass, got %d %q", code, out)
	}
	if code, _, stderr := execute(t, "check", "Staging"); code != exitInvalid || !strings.Contains(stderr, "Staging") {
		t.Fatalf("expected Staging to fail, got %d %q", code, stderr)
	}
	// An empty name is not a request for the default profile.
	code, out, stderr := execute(t, "check", "")
	if code != exitInvalid || out != "" {
		t.Fatalf("expected empty name to fail, got %d %q", code, out)
	}
	if !strings.Contains(stderr, "not found for: . Available environments: development, staging, production, ci") {
		t.Fatalf("expected available names in error, got %q", stderr)
	}

	if code, _, _ := execute(t, "check"); code != exitInvalid {
		t.Fatalf("expected missing argument to be a usage error, got %d", code)
	}
}

func TestRunRejectsInvalidConfiguration(t *testing.T) {
	t.Setenv(environments.EnvVar, "")

	tests := []struct {
		name string
		args []string
	}{
		{name: "unknown env", args: []string{"run", "--env", "qa"}},
		{name: "unknown device", args: []string{"run", "--device", "Nokia 3310"}},
		{name: "bad duration", args: []string{"run", "--timeout", "soon"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			code, _, stderr := execute(t, tc.args...)
			if code != exitInvalid {
				t.Fatalf("expected exit 2, got %d (%s)", code, stderr)
			}
			if stderr == "" {
				t.Fatalf("expected an error message")
			}
		})
	}
}

func TestBuildOverrides(t *testing.T) {
	empty, yes := "", true
	concurrency, retries := 3, 0
	slowMo, timeout := "250", "45s"
	env, device := "ci", "Pixel 5"
	features := []string{"features/search.feature"}
	formats := []string{"progress,pretty", " junit "}

	flags := runFlags{
		configFile:  &empty,
		env:         &env,
		headless:    &yes,
		headlessSet: true,
		slowMo:      &slowMo,
		timeout:     &timeout,
		concurrency: &concurrency,
		retries:     &retries,
		device:      &device,
		features:    &features,
		reportDir:   &empty,
		formats:     &formats,
		tags:        &empty,
		logLevel:    &empty,
	}

	o, err := buildOverrides(flags)
	if err != nil {
		t.Fatalf("buildOverrides returned error: %v", err)
	}
	if o.Env == nil || *o.Env != "ci" || o.Device == nil || *o.Device != "Pixel 5" {
		t.Fatalf("unexpected string overrides: %+v", o)
	}
	if o.Headless == nil || !*o.Headless {
		t.Fatalf("expected headless override")
	}
	if o.SlowMo == nil || o.SlowMo.Milliseconds() != 250 || o.Timeout == nil || o.Timeout.Seconds() != 45 {
		t.Fatalf("unexpected durations: %v %v", o.SlowMo, o.Timeout)
	}
	if o.Retries == nil || *o.Retries != 0 {
		t.Fatalf("explicit zero retries must be kept")
	}
	if o.ReportDir != nil || o.Tags != nil || o.LogLevel != nil {
		t.Fatalf("empty flags must not override")
	}
	if got := strings.Join(o.Formats, "|"); got != "progress|pretty|junit" {
		t.Fatalf("unexpected formats %q", got)
	}
}
