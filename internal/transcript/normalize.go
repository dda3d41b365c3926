// Package transcript normalizes recognized speech segments before they are
// exchanged with the narration backend.
package transcript

import "strings"

// Normalize collapses internal whitespace and trims the segment. An utterance
// that normalizes to "" is not a usable transcript.
func Normalize(segment string) string {
	return strings.Join(strings.Fields(segment), " ")
}

// Usable reports whether a recognized segment carries any actual speech.
func Usable(segment string) bool {
	return Normalize(segment) != ""
}
