// Package spotify resolves Spotify tracks and playlists into YouTube searches.
// Spotify offers no streamable audio, so every track carries a search query
// that the streamer looks up on YouTube at play time.
package spotify

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/zmb3/spotify"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/keshon/musicbot/internal/music/sources"
	"github.com/keshon/musicbot/internal/music/track"
	"github.com/keshon/musicbot/pkg/retrylimit"
)

var ErrUnknownPath = errors.New("not a spotify track or playlist URL")

const pageSize = 100

// API is the part of spotify.Client the source needs.
type API interface {
	GetTrack(id spotify.ID) (*spotify.FullTrack, error)
	GetPlaylistTracksOpt(playlistID spotify.ID, opt *spotify.Options, fields string) (*spotify.PlaylistTrackPage, error)
}

type Source struct {
	api     API
	limiter *retrylimit.AdaptiveLimiter
}

func New(api API, limiter *retrylimit.AdaptiveLimiter) *Source {
	return &Source{api: api, limiter: limiter}
}

// NewClient returns an API authenticated with the client credentials flow.
func NewClient(ctx context.Context, clientID, clientSecret string) API {
	cfg := &clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     spotify.TokenURL,
	}
	httpClient := cfg.Client(ctx)
	httpClient.Timeout = 15 * time.Second
	client := spotify.NewClient(httpClient)
	return &client
}

func (s *Source) SourceName() string {
	return track.SourceSpotify
}

func (s *Source) Match(u *url.URL) bool {
	return sources.HostIs(u, "open.spotify.com", "play.spotify.com")
}

func (s *Source) Resolve(ctx context.Context, u *url.URL) ([]*track.Track, error) {
	kind, id, ok := ParsePath(u.Path)
	if !ok {
		return nil, ErrUnknownPath
	}
	switch kind {
	case "track":
		var ft *spotify.FullTrack
		err := retrylimit.Do(ctx, s.limiter, nil, func(context.Context) error {
			var err error
			ft, err = s.api.GetTrack(spotify.ID(id))
			return classify(err)
		})
		if err != nil {
			return nil, fmt.Errorf("track %s: %w", id, err)
		}
		return []*track.Track{fromFull(ft)}, nil
	default:
		return s.playlist(ctx, id)
	}
}

func (s *Source) playlist(ctx context.Context, id string) ([]*track.Track, error) {
	var tracks []*track.Track
	for offset := 0; ; offset += pageSize {
		limit, off := pageSize, offset
		var page *spotify.PlaylistTrackPage
		err := retrylimit.Do(ctx, s.limiter, nil, func(context.Context) error {
			var err error
			page, err = s.api.GetPlaylistTracksOpt(spotify.ID(id), &spotify.Options{Limit: &limit, Offset: &off}, "")
			return classify(err)
		})
		if err != nil {
			return nil, fmt.Errorf("playlist %s: %w", id, err)
		}
		for i := range page.Tracks {
			ft := page.Tracks[i].Track
			if ft.ID == "" {
				continue
			}
			tracks = append(tracks, fromFull(&ft))
		}
		if page.Next == "" || len(page.Tracks) == 0 {
			return tracks, nil
		}
	}
}

// ParsePath recognises /track/<id>, /playlist/<id> and /user/<u>/playlist/<id>,
// with an optional locale segment such as /intl-de/.
func ParsePath(path string) (kind, id string, ok bool) {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) > 0 && strings.HasPrefix(parts[0], "intl-") {
		parts = parts[1:]
	}
	switch {
	case len(parts) == 2 && (parts[0] == "track" || parts[0] == "playlist"):
		kind, id = parts[0], parts[1]
	case len(parts) == 4 && parts[0] == "user" && parts[2] == "playlist":
		kind, id = "playlist", parts[3]
	default:
		return "", "", false
	}
	return kind, id, id != ""
}

func fromFull(ft *spotify.FullTrack) *track.Track {
	t := track.New(track.SourceSpotify, string(ft.ID), ft.Name, ft.ExternalURLs["spotify"])
	if len(ft.Artists) > 0 {
		t.Artist = ft.Artists[0].Name
	}
	t.Duration = time.Duration(ft.Duration) * time.Millisecond
	if len(ft.Album.Images) > 0 {
		t.Thumbnail = ft.Album.Images[0].URL
	}
	t.Query = t.DisplayTitle()
	return t
}

// classify lets 429 and 5xx responses back off, and stops on other API errors.
func classify(err error) error {
	var se spotify.Error
	if errors.As(err, &se) {
		if se.Status == http.StatusTooManyRequests || se.Status >= 500 {
			return statusError{se}
		}
		return retrylimit.Fatal(err)
	}
	return err
}

type statusError struct {
	err spotify.Error
}

func (e statusError) Error() string { return e.err.Error() }

func (e statusError) StatusCode() int { return e.err.Status }
