// Package dedupe provides question deduplication using a time-based cache
// to reject identical questions re-asked within a configurable window.
package dedupe
