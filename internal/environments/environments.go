package environments

import (
	"os"
	"time"
)

const (
	// EnvVar names the process environment variable consulted when no
	// explicit environment is requested.
	EnvVar = "TEST_ENV"
	// DefaultName is used when neither an explicit name nor EnvVar is set.
	DefaultName = "production"
)

// LookupFunc has the shape of os.LookupEnv and lets callers inject an
// environment snapshot.
type LookupFunc func(key string) (string, bool)

// Profile is an immutable bundle of execution parameters for one deployment target.
type Profile struct {
	Name       string           `yaml:"name"`
	BaseURL    string           `yaml:"base_url"`
	APIURL     string           `yaml:"api_url,omitempty"`
	TimeoutMs  int              `yaml:"timeout_ms"`
	Retries    int              `yaml:"retries"`
	Workers    int              `yaml:"workers"`
	Headless   bool             `yaml:"headless"`
	SlowMoMs   int              `yaml:"slow_mo_ms"`
	Video      VideoPolicy      `yaml:"video"`
	Screenshot ScreenshotPolicy `yaml:"screenshot"`
	Trace      TracePolicy      `yaml:"trace"`
}

// HasAPIURL reports whether the profile targets an API root.
func (p Profile) HasAPIURL() bool {
	return p.APIURL != ""
}

// Timeout is the default per-operation budget.
func (p Profile) Timeout() time.Duration {
	return time.Duration(p.TimeoutMs) * time.Millisecond
}

// ActionTimeout bounds a single element interaction.
func (p Profile) ActionTimeout() time.Duration {
	return p.Timeout() / 6
}

// NavigationTimeout bounds a single page load.
func (p Profile) NavigationTimeout() time.Duration {
	return p.Timeout() / 2
}

// SlowMo is the pause inserted between automation actions.
func (p Profile) SlowMo() time.Duration {
	return time.Duration(p.SlowMoMs) * time.Millisecond
}

// profiles is the closed table in definition order. It is never written after init.
var profiles = []Profile{
	{
		Name:       "development",
		BaseURL:    "http://localhost:3000",
		APIURL:     "http://localhost:3001/api",
		TimeoutMs:  30000,
		Retries:    0,
		Workers:    1,
		Headless:   false,
		SlowMoMs:   500,
		Video:      VideoRetainOnFailure,
		Screenshot: ScreenshotOnlyOnFailure,
		Trace:      TraceOnFirstRetry,
	},
	{
		Name:       "staging",
		BaseURL:    "https://staging.example.com",
		APIURL:     "https://api-staging.example.com",
		TimeoutMs:  30000,
		Retries:    1,
		Workers:    2,
		Headless:   true,
		SlowMoMs:   100,
		Video:      VideoRetainOnFailure,
		Screenshot: ScreenshotOnlyOnFailure,
		Trace:      TraceOnFirstRetry,
	},
	{
		Name:       "production",
		BaseURL:    "https://playwright.dev",
		APIURL:     "https://api.github.com",
		TimeoutMs:  30000,
		Retries:    2,
		Workers:    4,
		Headless:   true,
		SlowMoMs:   0,
		Video:      VideoRetainOnFailure,
		Screenshot: ScreenshotOnlyOnFailure,
		Trace:      TraceOnFirstRetry,
	},
	{
		Name:       "ci",
		BaseURL:    "https://playwright.dev",
		APIURL:     "https://api.github.com",
		TimeoutMs:  60000,
		Retries:    3,
		Workers:    2,
		Headless:   true,
		SlowMoMs:   0,
		Video:      VideoRetainOnFailure,
		Screenshot: ScreenshotOnlyOnFailure,
		Trace:      TraceOnFirstRetry,
	},
}

var index = buildIndex(profiles)

func buildIndex(table []Profile) map[string]int {
	idx := make(map[string]int, len(table))
	for i, p := range table {
		if _, dup := idx[p.Name]; dup {
			panic("environments: duplicate profile " + p.Name)
		}
		idx[p.Name] = i
	}
	return idx
}

// Resolve returns the profile for name, falling back to TEST_ENV and then to
// DefaultName when name is empty.
func Resolve(name string) (Profile, error) {
	return ResolveWith(name, os.LookupEnv)
}

// ResolveWith is Resolve with the environment lookup injected.
// The match is exact and case-sensitive; no trimming is applied.
func ResolveWith(name string, lookup LookupFunc) (Profile, error) {
	effective := EffectiveName(name, lookup)

	i, ok := index[effective]
	if !ok {
		return Profile{}, &NotFoundError{Name: effective, Available: Names()}
	}
	return profiles[i], nil
}

// EffectiveName applies the precedence chain without looking the result up.
func EffectiveName(name string, lookup LookupFunc) string {
	if name != "" {
		return name
	}
	if lookup != nil {
		if v, ok := lookup(EnvVar); ok && v != "" {
			return v
		}
	}
	return DefaultName
}

// Names returns every known profile name in definition order.
func Names() []string {
	out := make([]string, len(profiles))
	for i, p := range profiles {
		out[i] = p.Name
	}
	return out
}

// IsKnown reports whether name exactly matches a profile.
func IsKnown(name string) bool {
	_, ok := index[name]
	return ok
}
