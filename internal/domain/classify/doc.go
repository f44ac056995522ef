// Package classify maps raw navigation failures into user-facing errors.
//
// Classification runs an ordered chain of pure strategies:
//  1. Rich categorizer: needs code, description, and URL; refines the
//     title with the failing hostname.
//  2. Static table: numeric code, then normalized description, then raw
//     description.
//  3. Generic default: always matches.
//
// The first non-declining strategy wins. Nothing panics across the chain
// and the same input always yields the same output, which keeps retry
// flows idempotent.
package classify
