package discord

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"

	"github.com/keshon/musicbot/internal/command"
	"github.com/keshon/musicbot/internal/messages"
)

// onReady checks that the configured server and channel are reachable.
func (b *Bot) onReady(s *discordgo.Session, r *discordgo.Ready) {
	if _, err := s.Guild(b.opts.GuildID); err != nil {
		log.Error().Err(err).Str("guild", b.opts.GuildID).Msg("discord: server lookup failed")
		b.fail(fmt.Errorf("%w: %s", ErrGuildNotFound, b.opts.GuildID))
		return
	}
	ch, err := s.Channel(b.opts.ChannelID)
	if err != nil || ch.GuildID != b.opts.GuildID {
		log.Error().Err(err).Str("channel", b.opts.ChannelID).Msg("discord: channel lookup failed")
		b.fail(fmt.Errorf("%w: %s", ErrChannelNotFound, b.opts.ChannelID))
		return
	}
	log.Info().Str("user", r.User.Username).Str("guild", b.opts.GuildID).Str("channel", ch.Name).
		Msg("discord: bot is running")
}

func (b *Bot) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	msg := accept(m, s.State.User.ID, b.opts.ChannelID)
	if msg == nil {
		return
	}
	if err := b.handler.HandleMessage(b.ctx, msg); err != nil {
		log.Error().Err(err).Str("content", msg.Content).Str("user", msg.AuthorID).Msg("discord: command failed")
		if err := b.Reply(msg, b.msgs.Get(messages.CommandError)); err != nil {
			log.Warn().Err(err).Msg("discord: failed to report command error")
		}
	}
}

func (b *Bot) onDisconnect(_ *discordgo.Session, _ *discordgo.Disconnect) {
	if b.ctx.Err() != nil {
		return
	}
	log.Error().Msg("discord: gateway disconnected")
	b.fail(ErrGatewayDisconnected)
}

// accept converts m when it was posted in the monitored channel by someone
// other than the bot.
func accept(m *discordgo.MessageCreate, botID, channelID string) *command.Message {
	if m.Author == nil || m.Author.ID == botID || m.ChannelID != channelID {
		return nil
	}
	msg := &command.Message{
		ID:         m.ID,
		ChannelID:  m.ChannelID,
		GuildID:    m.GuildID,
		AuthorID:   m.Author.ID,
		AuthorName: m.Author.Username,
		Content:    m.Content,
	}
	if m.Member != nil && m.Member.Nick != "" {
		msg.AuthorName = m.Member.Nick
	}
	for _, u := range m.Mentions {
		if u.ID == botID {
			msg.Mentioned = true
			break
		}
	}
	return msg
}
