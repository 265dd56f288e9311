package music

import (
	"context"
	"errors"

	"github.com/keshon/musicbot/internal/bot"
	"github.com/keshon/musicbot/internal/command"
	"github.com/keshon/musicbot/internal/messages"
	"github.com/keshon/musicbot/internal/music/player"
)

func pause(_ context.Context, b *bot.Bot, inv *command.Invocation) error {
	if err := b.Player.Pause(); err != nil {
		if errors.Is(err, player.ErrNoTrackPlaying) {
			return b.Reply(inv.Message, messages.NotPlaying)
		}
		return err
	}
	return b.Reply(inv.Message, messages.Pausing)
}

func resume(_ context.Context, b *bot.Bot, inv *command.Invocation) error {
	res, err := b.Player.Resume()
	switch {
	case errors.Is(err, player.ErrAlreadyPlaying):
		return b.Reply(inv.Message, messages.AlreadyPlaying)
	case err != nil:
		return err
	}

	switch res {
	case player.ResumedQueue:
		return b.Reply(inv.Message, messages.ResumingQueue)
	case player.ResumedEmpty:
		return b.Reply(inv.Message, messages.ResumedIdle)
	default:
		return b.Reply(inv.Message, messages.Resuming)
	}
}

func stop(_ context.Context, b *bot.Bot, inv *command.Invocation) error {
	if err := b.Player.Stop(); err != nil {
		if errors.Is(err, player.ErrAlreadyStopped) {
			return b.Reply(inv.Message, messages.AlreadyStopped)
		}
		return err
	}
	return b.Reply(inv.Message, messages.Stopping)
}

func skip(_ context.Context, b *bot.Bot, inv *command.Invocation) error {
	skipped, err := b.Player.Skip()
	if err != nil {
		if errors.Is(err, player.ErrNoTrackPlaying) {
			return b.Reply(inv.Message, messages.NothingPlaying)
		}
		return err
	}
	return b.Reply(inv.Message, messages.Skipping, skipped.DisplayTitle())
}

func clearQueue(_ context.Context, b *bot.Bot, inv *command.Invocation) error {
	n := b.Player.Clear()
	if n == 0 {
		return b.Reply(inv.Message, messages.QueueEmpty)
	}
	return b.Reply(inv.Message, messages.QueueCleared, n)
}
