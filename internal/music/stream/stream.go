// Package stream opens audio for a track and sends it to a voice connection.
package stream

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"layeh.com/gopus"

	"github.com/keshon/musicbot/internal/music/player"
	"github.com/keshon/musicbot/internal/music/track"
	"github.com/keshon/musicbot/internal/voice"
	"github.com/keshon/musicbot/pkg/retrylimit"
)

var ErrNoLink = errors.New("no stream link could be opened")

// Searcher finds a playable page for a free text query.
type Searcher interface {
	SearchFirstVideoURL(ctx context.Context, query string) (string, error)
}

type Streamer struct {
	openers  []LinkOpener
	searcher Searcher
	limiter  *retrylimit.AdaptiveLimiter

	openPCM    func(link string) (PCMSource, error)
	newEncoder func() (frameEncoder, error)
}

// New tries openers in order for every track.
func New(searcher Searcher, limiter *retrylimit.AdaptiveLimiter, openers ...LinkOpener) *Streamer {
	return &Streamer{
		openers:  openers,
		searcher: searcher,
		limiter:  limiter,
		openPCM:  OpenFFmpeg,
		newEncoder: func() (frameEncoder, error) {
			return gopus.NewEncoder(sampleRate, channels, gopus.Audio)
		},
	}
}

// Open resolves the media link for t and starts pumping it into conn.
func (s *Streamer) Open(ctx context.Context, conn voice.Connection, t *track.Track) (player.Stream, error) {
	page := t.URL
	if t.Query != "" {
		found, err := s.search(ctx, t.Query)
		if err != nil {
			return nil, err
		}
		page = found
	}

	link, err := s.link(ctx, page)
	if err != nil {
		return nil, err
	}

	enc, err := s.newEncoder()
	if err != nil {
		return nil, fmt.Errorf("opus encoder: %w", err)
	}
	pcm, err := s.openPCM(link)
	if err != nil {
		return nil, err
	}

	pb := newPlayback(conn, pcm, enc)
	go pb.run()
	log.Info().Str("track", t.ID).Str("title", t.Title).Msg("stream: started")
	return pb, nil
}

func (s *Streamer) search(ctx context.Context, query string) (string, error) {
	var page string
	err := retrylimit.Do(ctx, s.limiter, nil, func(ctx context.Context) error {
		var err error
		page, err = s.searcher.SearchFirstVideoURL(ctx, query)
		return err
	})
	if err != nil {
		return "", fmt.Errorf("search %q: %w", query, err)
	}
	return page, nil
}

func (s *Streamer) link(ctx context.Context, page string) (string, error) {
	var errs []error
	for _, o := range s.openers {
		if !o.Supports(page) {
			continue
		}
		var link string
		err := retrylimit.Do(ctx, s.limiter, []retrylimit.Option{retrylimit.Attempts(2)}, func(ctx context.Context) error {
			var err error
			link, err = o.Link(ctx, page)
			return err
		})
		if err == nil {
			return link, nil
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		log.Warn().Err(err).Str("opener", o.Name()).Str("url", page).Msg("stream: opener failed, trying next")
		errs = append(errs, fmt.Errorf("%s: %w", o.Name(), err))
	}
	if len(errs) == 0 {
		return "", fmt.Errorf("%w for %s", ErrNoLink, page)
	}
	return "", fmt.Errorf("%w for %s: %w", ErrNoLink, page, errors.Join(errs...))
}
