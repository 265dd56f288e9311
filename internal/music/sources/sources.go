// Package sources turns user supplied URLs into queueable tracks. It never
// touches the playback queue.
package sources

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/keshon/musicbot/internal/music/track"
)

var (
	ErrUnsupportedURL = errors.New("could not understand URL")
	ErrNoTracks       = errors.New("no playable tracks found")
)

// Source resolves URLs for one provider.
type Source interface {
	SourceName() string
	// Match reports whether u belongs to this provider.
	Match(u *url.URL) bool
	// Resolve returns the tracks behind u in playlist order.
	Resolve(ctx context.Context, u *url.URL) ([]*track.Track, error)
}

type Resolver struct {
	sources []Source
}

// NewResolver tries sources in the given order. Nil sources are skipped.
func NewResolver(srcs ...Source) *Resolver {
	r := &Resolver{}
	for _, s := range srcs {
		if s != nil {
			r.sources = append(r.sources, s)
		}
	}
	return r
}

// Resolve dispatches raw to the provider that owns its host.
func (r *Resolver) Resolve(ctx context.Context, raw string) ([]*track.Track, error) {
	u, err := Parse(raw)
	if err != nil {
		return nil, err
	}
	for _, s := range r.sources {
		if !s.Match(u) {
			continue
		}
		tracks, err := s.Resolve(ctx, u)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", s.SourceName(), err)
		}
		if len(tracks) == 0 {
			return nil, fmt.Errorf("%s: %w", s.SourceName(), ErrNoTracks)
		}
		log.Debug().Str("source", s.SourceName()).Int("tracks", len(tracks)).Str("url", u.String()).
			Msg("sources: resolved")
		return tracks, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedURL, u.Host)
}

// Parse accepts absolute http(s) URLs, optionally wrapped in <> as chat
// clients do to suppress previews.
func Parse(raw string) (*url.URL, error) {
	raw = strings.TrimSuffix(strings.TrimPrefix(strings.TrimSpace(raw), "<"), ">")
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedURL, raw)
	}
	return u, nil
}

// HostIs reports whether u's host is one of hosts, ignoring case and port.
func HostIs(u *url.URL, hosts ...string) bool {
	return slices.Contains(hosts, strings.ToLower(u.Hostname()))
}
