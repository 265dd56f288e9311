// Package soundcloud resolves SoundCloud tracks and sets through yt-dlp.
package soundcloud

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/lrstanley/go-ytdlp"

	"github.com/keshon/musicbot/internal/music/sources"
	"github.com/keshon/musicbot/internal/music/track"
)

const printTemplate = "%(webpage_url,url)s\t%(title)s\t%(uploader)s\t%(duration)s\t%(thumbnail)s\t%(id)s"

// Extractor runs a flat metadata extraction and returns one line per entry
// formatted with printTemplate.
type Extractor func(ctx context.Context, u string) (string, error)

// Ytdlp extracts metadata with the yt-dlp binary.
func Ytdlp(ctx context.Context, u string) (string, error) {
	res, err := ytdlp.New().
		FlatPlaylist().
		Print(printTemplate).
		NoWarnings().
		IgnoreConfig().
		Run(ctx, u)
	if err != nil {
		if res != nil && res.Stderr != "" {
			return "", fmt.Errorf("yt-dlp: %w: %s", err, strings.TrimSpace(res.Stderr))
		}
		return "", fmt.Errorf("yt-dlp: %w", err)
	}
	return res.Stdout, nil
}

type Source struct {
	extract Extractor
}

func New(extract Extractor) *Source {
	return &Source{extract: extract}
}

func (s *Source) SourceName() string {
	return track.SourceSoundCloud
}

func (s *Source) Match(u *url.URL) bool {
	return sources.HostIs(u, "soundcloud.com", "www.soundcloud.com", "m.soundcloud.com", "on.soundcloud.com")
}

func (s *Source) Resolve(ctx context.Context, u *url.URL) ([]*track.Track, error) {
	out, err := s.extract(ctx, u.String())
	if err != nil {
		return nil, err
	}
	return parse(out), nil
}

func parse(out string) []*track.Track {
	var tracks []*track.Track
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		f := strings.Split(line, "\t")
		if len(f) < 6 || f[0] == "" || f[0] == "NA" {
			continue
		}
		t := track.New(track.SourceSoundCloud, na(f[5]), na(f[1]), f[0])
		if t.Title == "" {
			t.Title = f[0]
		}
		t.Artist = na(f[2])
		if secs, err := time.ParseDuration(f[3] + "s"); err == nil {
			t.Duration = secs.Round(time.Second)
		}
		t.Thumbnail = na(f[4])
		tracks = append(tracks, t)
	}
	return tracks
}

// na maps yt-dlp's placeholder for missing fields to "".
func na(s string) string {
	if s == "NA" {
		return ""
	}
	return s
}
