package environments

import (
	"errors"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"
)

func snapshot(env map[string]string) LookupFunc {
	return func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
}

func TestResolveKnownNames(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"development", "staging", "production", "ci"} {
		name := name
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			p, err := ResolveWith(name, snapshot(nil))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if p.Name != name {
				t.Fatalf("expected profile %s, got %s", name, p.Name)
			}
		})
	}
}

func TestResolveFallbackChain(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		explicit string
		env      map[string]string
		want     string
	}{
		{name: "Default", want: "production"},
		{name: "EmptyEnvVarIgnored", env: map[string]string{EnvVar: ""}, want: "production"},
		{name: "EnvVar", env: map[string]string{EnvVar: "staging"}, want: "staging"},
		{name: "ExplicitBeatsEnvVar", explicit: "ci", env: map[string]string{EnvVar: "staging"}, want: "ci"},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			p, err := ResolveWith(tc.explicit, snapshot(tc.env))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if p.Name != tc.want {
				t.Fatalf("expected %s, got %s", tc.want, p.Name)
			}
		})
	}
}

func TestResolveReadsProcessEnvironment(t *testing.T) {
	t.Setenv(EnvVar, "development")

	p, err := Resolve("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Name != "development" {
		t.Fatalf("expected development, got %s", p.Name)
	}
}

func TestResolveUnknownName(t *testing.T) {
	t.Parallel()

	_, err := ResolveWith("not-a-real-env", snapshot(nil))
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	var nf *NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected *NotFoundError, got %T", err)
	}
	if nf.Name != "not-a-real-env" {
		t.Fatalf("unexpected name in error: %s", nf.Name)
	}
	for _, name := range []string{"development", "staging", "production", "ci"} {
		if !strings.Contains(err.Error(), name) {
			t.Fatalf("expected error message to list %s, got %q", name, err.Error())
		}
	}
}

func TestResolveUnknownEnvVarDoesNotFallBack(t *testing.T) {
	t.Parallel()

	if _, err := ResolveWith("", snapshot(map[string]string{EnvVar: "qa"})); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown TEST_ENV, got %v", err)
	}
}

func TestResolveIsCaseSensitive(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"CI", "Production", " staging"} {
		if _, err := ResolveWith(name, snapshot(nil)); !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected %q to be rejected, got %v", name, err)
		}
	}
}

func TestResolveReturnsIndependentCopies(t *testing.T) {
	t.Parallel()

	first, err := ResolveWith("staging", snapshot(nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := ResolveWith("staging", snapshot(nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first != second {
		t.Fatalf("expected structurally equal profiles, got %+v and %+v", first, second)
	}

	first.BaseURL = "https://mutated.invalid"
	first.Retries = 99

	third, err := ResolveWith("staging", snapshot(nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if third != second {
		t.Fatalf("mutation leaked into the table: %+v", third)
	}
}

func TestNames(t *testing.T) {
	t.Parallel()

	want := []string{"development", "staging", "production", "ci"}
	for i := 0; i < 3; i++ {
		if got := Names(); !slices.Equal(got, want) {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}

	got := Names()
	got[0] = "mutated"
	if Names()[0] != "development" {
		t.Fatalf("Names returned shared backing storage")
	}
}

func TestIsKnown(t *testing.T) {
	t.Parallel()

	cases := map[string]bool{
		"ci":          true,
		"development": true,
		"":            false,
		"CI":          false,
		"ci\x00":      false,
		"../staging":  false,
		"staging\n":   false,
	}
	for name, want := range cases {
		if got := IsKnown(name); got != want {
			t.Fatalf("IsKnown(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestProfileTable(t *testing.T) {
	t.Parallel()

	ci, err := ResolveWith("ci", snapshot(nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ci.TimeoutMs != 60000 || ci.Retries != 3 || ci.Workers != 2 || !ci.Headless {
		t.Fatalf("unexpected ci profile: %+v", ci)
	}

	dev, err := ResolveWith("development", snapshot(nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dev.Headless || dev.SlowMoMs != 500 || dev.Workers != 1 {
		t.Fatalf("unexpected development profile: %+v", dev)
	}

	for _, name := range Names() {
		p, err := ResolveWith(name, snapshot(nil))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !p.Video.Valid() || !p.Screenshot.Valid() || !p.Trace.Valid() {
			t.Fatalf("profile %s carries an invalid policy: %+v", name, p)
		}
		if !p.HasAPIURL() {
			t.Fatalf("profile %s expected to define an API URL", name)
		}
	}
}

func TestProfileDerivedTimeouts(t *testing.T) {
	t.Parallel()

	p := Profile{TimeoutMs: 30000, SlowMoMs: 250}
	if p.Timeout() != 30*time.Second {
		t.Fatalf("unexpected timeout: %s", p.Timeout())
	}
	if p.ActionTimeout() != 5*time.Second {
		t.Fatalf("unexpected action timeout: %s", p.ActionTimeout())
	}
	if p.NavigationTimeout() != 15*time.Second {
		t.Fatalf("unexpected navigation timeout: %s", p.NavigationTimeout())
	}
	if p.SlowMo() != 250*time.Millisecond {
		t.Fatalf("unexpected slow-mo: %s", p.SlowMo())
	}
	if (Profile{}).HasAPIURL() {
		t.Fatalf("empty API URL should report absent")
	}
}

func TestResolveConcurrent(t *testing.T) {
	var wg sync.WaitGroup
	names := Names()

	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			name := names[i%len(names)]
			p, err := ResolveWith(name, snapshot(nil))
			if err != nil {
				t.Errorf("Resolve(%s) failed: %v", name, err)
				return
			}
			if p.Name != name {
				t.Errorf("expected %s, got %s", name, p.Name)
			}
		}(i)
	}

	wg.Wait()
}

func TestBuildIndexRejectsDuplicates(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic for duplicate names")
		}
	}()
	buildIndex([]Profile{{Name: "a"}, {Name: "a"}})
}
