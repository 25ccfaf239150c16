// Package config loads run configuration from multiple sources (YAML files,
// environment variables, CLI flags) on top of the selected environment
// profile, with precedence: CLI flags > YAML config > Environment variables >
// Profile defaults. It exposes strongly typed settings to the rest of the suite.
package config
