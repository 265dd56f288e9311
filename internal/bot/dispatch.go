package bot

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/keshon/musicbot/internal/command"
	"github.com/keshon/musicbot/internal/messages"
	"github.com/keshon/musicbot/internal/storage"
)

// HandleMessage is the entry point for every message in the monitored
// channel. Prefixed messages are dispatched; a plain mention gets a hint.
func (b *Bot) HandleMessage(ctx context.Context, msg *command.Message) error {
	if strings.HasPrefix(msg.Content, b.Config.Prefix) {
		return b.Dispatch(ctx, msg)
	}
	if msg.Mentioned {
		return b.Reply(msg, messages.BotMentioned, msg.AuthorName, b.Config.Prefix)
	}
	return nil
}

// Dispatch runs a prefixed message through alias resolution, the per-user
// rate limit and the permission check, then calls the command body. Every
// rejection produces one reply. Errors from the body are returned as is.
func (b *Bot) Dispatch(ctx context.Context, msg *command.Message) error {
	body, ok := strings.CutPrefix(msg.Content, b.Config.Prefix)
	if !ok {
		return nil
	}
	fields := strings.Fields(body)
	if len(fields) == 0 {
		return nil
	}
	token, args := fields[0], fields[1:]

	desc, ok := b.Commands.Resolve(token)
	if !ok {
		log.Debug().Str("user", msg.AuthorID).Str("token", token).Msg("bot: unknown command")
		return b.Reply(msg, messages.UnknownCommand)
	}

	if !b.allow(msg.AuthorID) {
		log.Info().Str("user", msg.AuthorID).Str("command", desc.Key).Msg("bot: rate limited")
		return b.Reply(msg, messages.RateLimited)
	}

	dec := b.Permissions.Check(msg.AuthorID, desc.Permission)
	log.Info().Str("user", msg.AuthorID).Str("command", desc.Key).Str("group", dec.Group).
		Bool("allowed", dec.Allowed).Msg("bot: permission check")
	b.audit(msg, desc, args, dec.Group, dec.Allowed)
	if !dec.Allowed {
		return b.Reply(msg, messages.NoPermission)
	}

	h, ok := b.handlers[desc.Key]
	if !ok {
		log.Warn().Str("command", desc.Key).Msg("bot: command has no handler")
		return b.Reply(msg, messages.UnknownCommand)
	}
	return h(ctx, &command.Invocation{Command: desc, Args: args, Message: msg})
}

func (b *Bot) audit(msg *command.Message, desc *command.Descriptor, args []string, group string, allowed bool) {
	if b.Audit == nil {
		return
	}
	rec := storage.CommandHistoryRecord{
		ChannelID: msg.ChannelID,
		UserID:    msg.AuthorID,
		Username:  msg.AuthorName,
		Command:   desc.Key,
		Args:      strings.Join(args, " "),
		Group:     group,
		Allowed:   allowed,
		Datetime:  time.Now().UTC(),
	}
	if err := b.Audit.AppendCommandToHistory(msg.GuildID, rec); err != nil {
		log.Warn().Err(err).Str("command", desc.Key).Msg("bot: failed to record command")
	}
}
