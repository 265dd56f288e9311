package bot

import (
	"context"

	"github.com/bwmarrin/discordgo"

	"github.com/keshon/musicbot/internal/command"
	"github.com/keshon/musicbot/internal/music/track"
	"github.com/keshon/musicbot/internal/storage"
)

// Gateway is what the bot needs from the chat platform.
type Gateway interface {
	// Reply answers msg in its channel.
	Reply(msg *command.Message, text string) error
	Send(channelID, text string) error
	SendEmbed(channelID string, embed *discordgo.MessageEmbed) error
	DirectMessage(userID, text string) error
	// UserVoiceChannel returns the voice channel userID sits in, or "".
	UserVoiceChannel(guildID, userID string) (string, error)
	// SetStatus sets the presence line; "" clears it.
	SetStatus(status string) error
	SetUsername(name string) error
	// SetAvatar takes a data URI.
	SetAvatar(dataURI string) error
	BotName() string
}

// MediaResolver turns a user supplied URL into queueable tracks.
type MediaResolver interface {
	Resolve(ctx context.Context, raw string) ([]*track.Track, error)
}

// AuditStore keeps the command history.
type AuditStore interface {
	AppendCommandToHistory(guildID string, rec storage.CommandHistoryRecord) error
}
