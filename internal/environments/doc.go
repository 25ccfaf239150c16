// Package environments holds the closed table of named test environments
// (development, staging, production, ci) and resolves which one a run targets.
// Resolution precedence: explicit name > TEST_ENV > "production". Profiles are
// returned by value and the table is never mutated after package init, so every
// function here is safe to call from concurrent scenarios.
package environments
