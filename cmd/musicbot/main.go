// Command musicbot runs the Discord music bot.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	kkdai "github.com/kkdai/youtube/v2"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/keshon/musicbot/internal/bot"
	"github.com/keshon/musicbot/internal/command"
	"github.com/keshon/musicbot/internal/commands/core"
	"github.com/keshon/musicbot/internal/commands/music"
	"github.com/keshon/musicbot/internal/config"
	"github.com/keshon/musicbot/internal/discord"
	"github.com/keshon/musicbot/internal/logging"
	"github.com/keshon/musicbot/internal/messages"
	"github.com/keshon/musicbot/internal/music/player"
	"github.com/keshon/musicbot/internal/music/sources"
	"github.com/keshon/musicbot/internal/music/sources/soundcloud"
	"github.com/keshon/musicbot/internal/music/sources/spotify"
	"github.com/keshon/musicbot/internal/music/sources/youtube"
	"github.com/keshon/musicbot/internal/music/stream"
	"github.com/keshon/musicbot/internal/permissions"
	"github.com/keshon/musicbot/internal/storage"
	"github.com/keshon/musicbot/internal/voice"
	"github.com/keshon/musicbot/pkg/retrylimit"
)

type flags struct {
	token, server, channel, overrides string
	admins                            []string
	debug                             bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.Error().Err(err).Msg("musicbot: exiting")
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var f flags
	cmd := &cobra.Command{
		Use:           "musicbot",
		Short:         "Play YouTube, Spotify and SoundCloud links in a Discord voice channel",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			applyFlags(cmd, cfg, f)
			return run(cfg)
		},
	}
	fs := cmd.Flags()
	fs.StringVarP(&f.token, "token", "t", "", "Discord bot token (DISCORD_TOKEN)")
	fs.StringVarP(&f.server, "server", "s", "", "server id to serve (DISCORD_SERVER_ID)")
	fs.StringVarP(&f.channel, "channel", "c", "", "text channel id to listen in (DISCORD_CHANNEL_ID)")
	fs.StringArrayVarP(&f.admins, "admin", "a", nil, "user id to place in the admin group, repeatable (ADMIN_USER_IDS)")
	fs.BoolVarP(&f.debug, "debug", "d", false, "enable debug logging (DEBUG)")
	fs.StringVar(&f.overrides, "config", "", "JSON overrides file (OVERRIDES_FILE)")
	return cmd
}

// applyFlags lets explicitly set flags win over the environment.
func applyFlags(cmd *cobra.Command, cfg *config.Config, f flags) {
	fs := cmd.Flags()
	if fs.Changed("token") {
		cfg.DiscordToken = f.token
	}
	if fs.Changed("server") {
		cfg.GuildID = f.server
	}
	if fs.Changed("channel") {
		cfg.ChannelID = f.channel
	}
	if fs.Changed("admin") {
		cfg.AdminUserIDs = f.admins
	}
	if fs.Changed("debug") {
		cfg.Debug = f.debug
	}
	if fs.Changed("config") {
		cfg.OverridesFile = f.overrides
	}
}

func run(cfg *config.Config) error {
	logFile := logging.Setup(logging.Options{Debug: cfg.Debug, File: cfg.LogFile})
	defer logFile.Close()

	if err := cfg.Validate(); err != nil {
		return err
	}

	ov, err := config.LoadOverrides(cfg.OverridesFile)
	if err != nil {
		return err
	}
	msgs, err := messages.New(ov.Messages)
	if err != nil {
		return err
	}
	registry, err := command.NewRegistry(command.Defaults(), ov.Commands)
	if err != nil {
		return err
	}
	perms, err := permissions.NewResolver(cfg.PermissionTable(ov))
	if err != nil {
		return err
	}

	store, err := storage.New(cfg.StoragePath)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	limiter := retrylimit.NewAdaptiveLimiter(2, 0.2, 5, 0.5, 0.5)
	yt := &kkdai.Client{}
	srcs := []sources.Source{
		youtube.New(yt, limiter),
		soundcloud.New(soundcloud.Ytdlp),
	}
	if cfg.SpotifyEnabled() {
		srcs = append(srcs, spotify.New(spotify.NewClient(ctx, cfg.SpotifyClientID, cfg.SpotifyClientSecret), limiter))
	} else {
		log.Info().Msg("musicbot: Spotify credentials not set, Spotify links disabled")
	}

	streamer := stream.New(youtube.NewSearcher(), limiter, &stream.KkdaiLinker{Client: yt}, stream.YtdlpLinker{})
	p := player.New(streamer)
	defer p.Close()

	gw, err := discord.New(discord.Options{
		Token:     cfg.DiscordToken,
		GuildID:   cfg.GuildID,
		ChannelID: cfg.ChannelID,
	}, msgs)
	if err != nil {
		return err
	}
	vm := voice.NewManager(gw, p)

	b := bot.New(bot.Config{
		Prefix:       cfg.Prefix,
		GuildID:      cfg.GuildID,
		ChannelID:    cfg.ChannelID,
		CommandRate:  rate.Limit(cfg.CommandRate),
		CommandBurst: cfg.CommandBurst,
	}, gw, registry, perms, msgs, vm, p, sources.NewResolver(srcs...), store)
	music.Register(b)
	core.Register(b)

	go b.WatchPlayer(ctx)

	log.Info().Str("guild", cfg.GuildID).Str("channel", cfg.ChannelID).Str("prefix", cfg.Prefix).
		Msg("musicbot: starting")
	runErr := gw.Run(ctx, b)

	if err := vm.Leave(); err != nil && !errors.Is(err, voice.ErrNotConnected) {
		log.Warn().Err(err).Msg("musicbot: failed to leave voice on shutdown")
	}
	if err := gw.Close(); err != nil {
		log.Warn().Err(err).Msg("musicbot: failed to close gateway")
	}
	if runErr == nil {
		log.Info().Msg("musicbot: exited cleanly")
	}
	return runErr
}
