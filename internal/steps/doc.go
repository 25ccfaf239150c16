// Package steps binds Gherkin steps to browser and API actions and manages the
// per-scenario world: a browser session opened before each scenario and torn
// down after it, with failure artifacts captured according to the profile.
package steps
