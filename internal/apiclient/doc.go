// Package apiclient performs the API-level checks of the suite against the
// API root of the active environment profile.
package apiclient
