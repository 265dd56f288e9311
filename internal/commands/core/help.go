package core

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/keshon/musicbot/internal/bot"
	"github.com/keshon/musicbot/internal/command"
	"github.com/keshon/musicbot/internal/messages"
	"github.com/keshon/musicbot/internal/present"
)

// help with an alias explains that command in the channel. Without one it
// DMs the caller every command they are allowed to run.
func help(_ context.Context, b *bot.Bot, inv *command.Invocation) error {
	msg := inv.Message
	prefix := b.Config.Prefix

	if len(inv.Args) > 0 {
		d, ok := b.Commands.Resolve(inv.Args[0])
		if !ok {
			return b.Reply(msg, messages.HelpUnknown, inv.Args[0], prefix)
		}
		return b.Gateway.Reply(msg, present.HelpBlock(prefix, d, b.Commands.Aliases(d)))
	}

	var blocks []string
	for _, d := range b.Commands.All() {
		if !b.Permissions.HasPermission(msg.AuthorID, d.Permission) {
			continue
		}
		blocks = append(blocks, present.HelpBlock(prefix, d, b.Commands.Aliases(d)))
	}

	pages := append([]string{b.Messages.Get(messages.HelpWelcomeDM)}, present.HelpPages(blocks)...)
	for _, page := range pages {
		if err := b.Gateway.DirectMessage(msg.AuthorID, page); err != nil {
			log.Warn().Err(err).Str("user", msg.AuthorID).Msg("core: help DM failed")
			return b.Reply(msg, messages.HelpDMFailed)
		}
	}
	return nil
}
