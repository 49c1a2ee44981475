// Package internal holds boundary helpers shared by the portal client and
// never exported: the backend response envelope decoder.
//
// # What this package must NOT do
//
//   - Perform I/O or network calls.
//   - Import the portal root package (no import cycles).
package internal
