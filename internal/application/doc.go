// Package application provides dependency wiring for a suite run.
// It resolves feature paths, creates the artifact store and the runner,
// keeping the main package focused on CLI parsing and orchestration.
package application
