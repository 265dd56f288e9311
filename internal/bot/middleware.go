package bot

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/keshon/musicbot/internal/command"
	"github.com/keshon/musicbot/internal/messages"
)

// WithCommandLogger logs every command run with its duration and outcome.
func WithCommandLogger() command.Middleware {
	return func(next command.Handler) command.Handler {
		return func(ctx context.Context, inv *command.Invocation) error {
			start := time.Now()
			err := next(ctx, inv)
			ev := log.Info()
			if err != nil {
				ev = log.Error().Err(err)
			}
			ev.Str("command", inv.Command.Key).Str("user", inv.Message.AuthorID).
				Strs("args", inv.Args).Dur("took", time.Since(start)).Msg("bot: command finished")
			return err
		}
	}
}

// WithSameVoiceChannel lets the command run only while the bot is bound to
// voice and the caller sits in that channel.
func (b *Bot) WithSameVoiceChannel() command.Middleware {
	return func(next command.Handler) command.Handler {
		return func(ctx context.Context, inv *command.Invocation) error {
			msg := inv.Message
			session, ok := b.Voice.Current()
			if !ok {
				return b.Reply(msg, messages.NotConnectedToVoice, b.Config.Prefix)
			}
			channelID, err := b.Gateway.UserVoiceChannel(msg.GuildID, msg.AuthorID)
			if err != nil {
				log.Warn().Err(err).Str("user", msg.AuthorID).Msg("bot: voice state lookup failed")
			}
			if channelID != session.ChannelID {
				return b.Reply(msg, messages.NotInSendersChannel)
			}
			return next(ctx, inv)
		}
	}
}
