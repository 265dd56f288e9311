package bot

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/keshon/musicbot/internal/music/player"
	"github.com/keshon/musicbot/internal/present"
)

// WatchPlayer mirrors player events onto the bot presence and announces new
// tracks in the monitored channel. It returns when ctx is done.
func (b *Bot) WatchPlayer(ctx context.Context) {
	events := b.Player.Events()
	for {
		select {
		case <-ctx.Done():
			return
		case e := <-events:
			b.onPlayerEvent(e)
		}
	}
}

func (b *Bot) onPlayerEvent(e player.Event) {
	log.Debug().Str("status", string(e.Status)).Msg("bot: player event")

	switch e.Status {
	case player.StatusPlaying:
		b.setStatus(present.Presence(e.Track, false))
		if err := b.Gateway.SendEmbed(b.Config.ChannelID, present.NowPlaying(e.Track, false)); err != nil {
			log.Warn().Err(err).Msg("bot: failed to announce track")
		}
	case player.StatusPaused:
		b.setStatus(present.Presence(e.Track, true))
	case player.StatusResumed:
		b.setStatus(present.Presence(e.Track, false))
	case player.StatusStopped, player.StatusIdle:
		b.setStatus("")
	case player.StatusError:
		title := ""
		if e.Track != nil {
			title = e.Track.Title
		}
		log.Warn().Err(e.Err).Str("title", title).Msg("bot: track failed, moving on")
	}
}

func (b *Bot) setStatus(s string) {
	if err := b.Gateway.SetStatus(s); err != nil {
		log.Warn().Err(err).Msg("bot: failed to update presence")
	}
}
