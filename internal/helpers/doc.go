// Package helpers collects small utilities shared by page objects and step
// definitions: retry with exponential backoff, condition polling, random test
// data and text comparison.
package helpers
