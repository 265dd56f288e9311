// Package youtube resolves YouTube videos and playlists.
package youtube

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/kkdai/youtube/v2"

	"github.com/keshon/musicbot/internal/music/sources"
	"github.com/keshon/musicbot/internal/music/track"
	"github.com/keshon/musicbot/pkg/retrylimit"
)

var ErrNoVideoID = errors.New("no video or playlist id in URL")

// Client is the part of *youtube.Client the source needs.
type Client interface {
	GetVideoContext(ctx context.Context, id string) (*youtube.Video, error)
	GetPlaylistContext(ctx context.Context, id string) (*youtube.Playlist, error)
}

type Source struct {
	client  Client
	limiter *retrylimit.AdaptiveLimiter
}

func New(client Client, limiter *retrylimit.AdaptiveLimiter) *Source {
	return &Source{client: client, limiter: limiter}
}

func (s *Source) SourceName() string {
	return track.SourceYouTube
}

func (s *Source) Match(u *url.URL) bool {
	return sources.HostIs(u, "youtube.com", "www.youtube.com", "m.youtube.com", "music.youtube.com", "youtu.be")
}

// Resolve treats any URL with a list parameter as a playlist.
func (s *Source) Resolve(ctx context.Context, u *url.URL) ([]*track.Track, error) {
	raw := u.String()
	if id, ok := PlaylistID(raw); ok {
		return s.playlist(ctx, id)
	}
	if id, ok := VideoID(raw); ok {
		t, err := s.video(ctx, id)
		if err != nil {
			return nil, err
		}
		return []*track.Track{t}, nil
	}
	return nil, ErrNoVideoID
}

func (s *Source) video(ctx context.Context, id string) (*track.Track, error) {
	var v *youtube.Video
	err := retrylimit.Do(ctx, s.limiter, nil, func(ctx context.Context) error {
		var err error
		v, err = s.client.GetVideoContext(ctx, id)
		return classify(err)
	})
	if err != nil {
		return nil, fmt.Errorf("video %s: %w", id, err)
	}

	t := track.New(track.SourceYouTube, v.ID, v.Title, WatchURL(v.ID))
	t.Artist = v.Author
	t.Duration = v.Duration
	t.Thumbnail = thumbnail(v.Thumbnails)
	return t, nil
}

func (s *Source) playlist(ctx context.Context, id string) ([]*track.Track, error) {
	var p *youtube.Playlist
	err := retrylimit.Do(ctx, s.limiter, nil, func(ctx context.Context) error {
		var err error
		p, err = s.client.GetPlaylistContext(ctx, id)
		return classify(err)
	})
	if err != nil {
		return nil, fmt.Errorf("playlist %s: %w", id, err)
	}

	tracks := make([]*track.Track, 0, len(p.Videos))
	for _, e := range p.Videos {
		t := track.New(track.SourceYouTube, e.ID, e.Title, WatchURL(e.ID))
		t.Artist = e.Author
		t.Duration = e.Duration
		t.Thumbnail = thumbnail(e.Thumbnails)
		tracks = append(tracks, t)
	}
	return tracks, nil
}

// classify stops retries for videos that will never become available.
func classify(err error) error {
	if errors.Is(err, youtube.ErrVideoPrivate) || errors.Is(err, youtube.ErrLoginRequired) {
		return retrylimit.Fatal(err)
	}
	return err
}

// thumbnail picks the widest one.
func thumbnail(ts youtube.Thumbnails) string {
	best := ""
	var width uint
	for _, th := range ts {
		if th.Width >= width {
			best, width = th.URL, th.Width
		}
	}
	return best
}
