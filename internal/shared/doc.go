// Package shared holds helpers used by more than one package.
//
// The testutil subpackage provides a capturing slog handler and
// generators for synthetic instrument logs used across the test suites.
package shared
