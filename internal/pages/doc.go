// Package pages holds page objects for the documentation site. Each page
// object wraps a browser.Page and exposes intent-level operations such as
// "search the docs" instead of raw selectors.
package pages
