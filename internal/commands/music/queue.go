package music

import (
	"context"

	"github.com/keshon/musicbot/internal/bot"
	"github.com/keshon/musicbot/internal/command"
	"github.com/keshon/musicbot/internal/messages"
	"github.com/keshon/musicbot/internal/present"
)

func nowPlaying(_ context.Context, b *bot.Bot, inv *command.Invocation) error {
	snap := b.Player.Snapshot()
	if snap.NowPlaying == nil {
		return b.Reply(inv.Message, messages.NothingPlaying)
	}
	return b.Gateway.SendEmbed(inv.Message.ChannelID, present.NowPlaying(snap.NowPlaying, snap.Paused))
}

func playlist(_ context.Context, b *bot.Bot, inv *command.Invocation) error {
	queue := b.Player.Snapshot().Queue
	if len(queue) == 0 {
		return b.Reply(inv.Message, messages.QueueEmpty)
	}
	if err := b.Reply(inv.Message, messages.QueueHeader, len(queue)); err != nil {
		return err
	}
	for _, page := range present.QueuePages(queue) {
		if err := b.Gateway.Send(inv.Message.ChannelID, page); err != nil {
			return err
		}
	}
	return nil
}
