package music

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/keshon/musicbot/internal/bot"
	"github.com/keshon/musicbot/internal/command"
	"github.com/keshon/musicbot/internal/messages"
	"github.com/keshon/musicbot/internal/music/sources"
)

func play(ctx context.Context, b *bot.Bot, inv *command.Invocation) error {
	msg := inv.Message
	if len(inv.Args) == 0 {
		return b.Reply(msg, messages.PlayMissingURL)
	}

	tracks, err := b.Media.Resolve(ctx, inv.Args[0])
	switch {
	case errors.Is(err, sources.ErrUnsupportedURL):
		return b.Reply(msg, messages.PlayUnknownURL)
	case err != nil:
		log.Warn().Err(err).Str("url", inv.Args[0]).Msg("music: resolve failed")
		return b.Reply(msg, messages.PlayResolveError, err.Error())
	case len(tracks) == 0:
		return b.Reply(msg, messages.PlayResolveError, sources.ErrNoTracks.Error())
	}

	for _, t := range tracks {
		t.RequesterID = msg.AuthorID
		t.RequesterName = msg.AuthorName
		b.Player.Enqueue(t)
	}

	if len(tracks) == 1 {
		return b.Reply(msg, messages.PlayQueued, tracks[0].DisplayTitle())
	}
	return b.Reply(msg, messages.PlayQueuedMany, len(tracks))
}
