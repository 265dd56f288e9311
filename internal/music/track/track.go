// Package track defines a queued media request.
package track

import (
	"time"

	"github.com/google/uuid"
)

const (
	SourceYouTube    = "youtube"
	SourceSpotify    = "spotify"
	SourceSoundCloud = "soundcloud"
)

// Track is one queue item. It is created by a source resolver and not
// modified after it has been handed to the player.
type Track struct {
	ID         string
	Title      string
	Artist     string
	URL        string
	SourceID   string
	SourceName string
	Thumbnail  string
	// Duration is zero when the provider did not report one.
	Duration time.Duration
	// Query is searched on YouTube at stream time when the provider has no
	// playable audio of its own.
	Query string

	RequesterID   string
	RequesterName string
}

// New returns a track with a fresh ID.
func New(sourceName, sourceID, title, url string) *Track {
	return &Track{
		ID:         uuid.NewString(),
		SourceName: sourceName,
		SourceID:   sourceID,
		Title:      title,
		URL:        url,
	}
}

// DisplayTitle prefixes the artist when one is known.
func (t *Track) DisplayTitle() string {
	if t.Artist == "" {
		return t.Title
	}
	return t.Artist + " - " + t.Title
}
