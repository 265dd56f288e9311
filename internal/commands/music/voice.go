package music

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/keshon/musicbot/internal/bot"
	"github.com/keshon/musicbot/internal/command"
	"github.com/keshon/musicbot/internal/messages"
	"github.com/keshon/musicbot/internal/voice"
)

func summon(ctx context.Context, b *bot.Bot, inv *command.Invocation) error {
	msg := inv.Message
	channelID, err := b.Gateway.UserVoiceChannel(msg.GuildID, msg.AuthorID)
	if err != nil {
		log.Warn().Err(err).Str("user", msg.AuthorID).Msg("music: voice state lookup failed")
	}
	if channelID == "" {
		return b.Reply(msg, messages.JoinNotInVoice)
	}

	if _, err := b.Voice.Join(ctx, msg.GuildID, channelID); err != nil {
		if errors.Is(err, voice.ErrAlreadyConnected) {
			return b.Reply(msg, messages.JoinAlreadyConnected, b.Config.Prefix)
		}
		log.Error().Err(err).Str("channel", channelID).Msg("music: join failed")
		return b.Reply(msg, messages.JoinFailed, err.Error())
	}
	return b.Reply(msg, messages.JoinSuccess, channelID)
}

func disconnect(_ context.Context, b *bot.Bot, inv *command.Invocation) error {
	err := b.Voice.Leave()
	switch {
	case errors.Is(err, voice.ErrNotConnected):
		return b.Reply(inv.Message, messages.LeaveNotConnected)
	case err != nil:
		return err
	}
	return b.Reply(inv.Message, messages.LeaveSuccess)
}
