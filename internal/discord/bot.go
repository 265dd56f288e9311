// Package discord connects the bot to the Discord gateway.
package discord

import (
	"context"
	"errors"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"

	"github.com/keshon/musicbot/internal/command"
	"github.com/keshon/musicbot/internal/messages"
)

var (
	ErrGatewayDisconnected = errors.New("discord gateway disconnected")
	ErrGuildNotFound       = errors.New("configured server not found")
	ErrChannelNotFound     = errors.New("configured channel not found")
)

// MessageHandler receives every accepted message.
type MessageHandler interface {
	HandleMessage(ctx context.Context, msg *command.Message) error
}

type Options struct {
	Token     string
	GuildID   string
	ChannelID string
}

// Bot owns the discordgo session. It implements the gateway and voice
// joiner the rest of the bot talks to.
type Bot struct {
	dg    *discordgo.Session
	opts  Options
	msgs  *messages.Catalog
	errCh chan error

	handler MessageHandler
	ctx     context.Context
}

func New(opts Options, msgs *messages.Catalog) (*Bot, error) {
	dg, err := discordgo.New("Bot " + opts.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	dg.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsGuildVoiceStates |
		discordgo.IntentsDirectMessages |
		discordgo.IntentMessageContent

	return &Bot{
		dg:    dg,
		opts:  opts,
		msgs:  msgs,
		errCh: make(chan error, 1),
	}, nil
}

// Run opens the gateway and blocks until ctx is done or the gateway fails.
// Losing the gateway connection is fatal. The session stays open until Close
// so voice can still be left cleanly.
func (b *Bot) Run(ctx context.Context, h MessageHandler) error {
	b.handler = h
	b.ctx = ctx

	b.dg.AddHandler(b.onReady)
	b.dg.AddHandler(b.onMessageCreate)
	b.dg.AddHandler(b.onDisconnect)

	if err := b.dg.Open(); err != nil {
		return fmt.Errorf("failed to open Discord session: %w", err)
	}

	select {
	case <-ctx.Done():
		log.Info().Msg("discord: shutdown signal received, closing gateway")
		return nil
	case err := <-b.errCh:
		return err
	}
}

func (b *Bot) Close() error {
	return b.dg.Close()
}

func (b *Bot) fail(err error) {
	select {
	case b.errCh <- err:
	default:
	}
}
