/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package catalog

import (
	"regexp"
	"strings"
)

const (
	MediaRefLength = 11

	watchURLTemplate = "https://www.youtube.com/watch?v="
)

var (
	bareRef = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)

	// Host and path prefix, then the 11-char ID, then either nothing or a
	// separator. A 12th ID character makes the whole match fail.
	mediaURL = regexp.MustCompile(`^(?:https?://)?` +
		`(?:(?:www|m|music)\.)?` +
		`(?:youtube(?:-nocookie)?\.com/(?:watch\?(?:[^#]*&)?v=|embed/|v/|shorts/|live/)|youtu\.be/)` +
		`([A-Za-z0-9_-]{11})` +
		`(?:[?&#/].*)?$`)
)

// Extractor turns user input into a media reference, or "" when the input
// is not recognised.
type Extractor func(source string) string

// ExtractMediaRef recognises a bare video ID or a YouTube URL and returns
// the 11-character ID.
func ExtractMediaRef(source string) string {
	source = strings.TrimSpace(source)

	if bareRef.MatchString(source) {
		return source
	}

	m := mediaURL.FindStringSubmatch(source)
	if m == nil {
		return ""
	}

	return m[1]
}

// WatchURL is the public page for a media reference.
func WatchURL(ref string) string {
	return watchURLTemplate + ref
}
