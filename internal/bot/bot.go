// Package bot owns the single bot context: configuration, the command
// dispatcher and the glue between player events and the gateway.
package bot

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/keshon/musicbot/internal/command"
	"github.com/keshon/musicbot/internal/messages"
	"github.com/keshon/musicbot/internal/music/player"
	"github.com/keshon/musicbot/internal/permissions"
	"github.com/keshon/musicbot/internal/voice"
)

type Config struct {
	Prefix    string
	GuildID   string
	ChannelID string
	// CommandRate and CommandBurst bound how often one user may run
	// commands. A zero rate disables the limit.
	CommandRate  rate.Limit
	CommandBurst int
}

// Bot is handed to every command body.
type Bot struct {
	Config      Config
	Gateway     Gateway
	Commands    *command.Registry
	Permissions *permissions.Resolver
	Messages    *messages.Catalog
	Voice       *voice.Manager
	Player      *player.Player
	Media       MediaResolver
	Audit       AuditStore

	handlers map[string]command.Handler

	limitMu  sync.Mutex
	limiters map[string]*rate.Limiter
}

// HandlerFunc is a command body.
type HandlerFunc func(ctx context.Context, b *Bot, inv *command.Invocation) error

// New returns a bot with no handlers registered. Audit may be nil.
func New(cfg Config, gw Gateway, cmds *command.Registry, perms *permissions.Resolver,
	msgs *messages.Catalog, vm *voice.Manager, p *player.Player, media MediaResolver, audit AuditStore) *Bot {
	if cfg.Prefix == "" {
		cfg.Prefix = "!"
	}
	return &Bot{
		Config:      cfg,
		Gateway:     gw,
		Commands:    cmds,
		Permissions: perms,
		Messages:    msgs,
		Voice:       vm,
		Player:      p,
		Media:       media,
		Audit:       audit,
		handlers:    make(map[string]command.Handler),
		limiters:    make(map[string]*rate.Limiter),
	}
}

// Handle registers fn as the body of the command with key, wrapped in mws.
// A later registration for the same key replaces the earlier one.
func (b *Bot) Handle(key string, fn HandlerFunc, mws ...command.Middleware) {
	if _, ok := b.Commands.Get(key); !ok {
		log.Warn().Str("command", key).Msg("bot: handler registered for unknown command")
	}
	h := func(ctx context.Context, inv *command.Invocation) error {
		return fn(ctx, b, inv)
	}
	b.handlers[key] = command.Apply(h, mws...)
}

// Reply sends the catalog string for key to the channel msg came from.
func (b *Bot) Reply(msg *command.Message, key messages.Key, args ...any) error {
	return b.Gateway.Reply(msg, b.Messages.Format(key, args...))
}

func (b *Bot) allow(userID string) bool {
	if b.Config.CommandRate <= 0 {
		return true
	}
	b.limitMu.Lock()
	lim, ok := b.limiters[userID]
	if !ok {
		burst := max(b.Config.CommandBurst, 1)
		lim = rate.NewLimiter(b.Config.CommandRate, burst)
		b.limiters[userID] = lim
	}
	b.limitMu.Unlock()
	return lim.Allow()
}
