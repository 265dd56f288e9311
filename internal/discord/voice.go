package discord

import (
	"context"

	"github.com/bwmarrin/discordgo"

	"github.com/keshon/musicbot/internal/voice"
)

// JoinVoice joins channelID deafened, as the bot never listens.
func (b *Bot) JoinVoice(ctx context.Context, guildID, channelID string) (voice.Connection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	vc, err := b.dg.ChannelVoiceJoin(guildID, channelID, false, true)
	if err != nil {
		if vc != nil {
			_ = vc.Disconnect()
		}
		return nil, err
	}
	return voiceConn{vc: vc}, nil
}

type voiceConn struct {
	vc *discordgo.VoiceConnection
}

func (c voiceConn) ChannelID() string       { return c.vc.ChannelID }
func (c voiceConn) Speaking(on bool) error  { return c.vc.Speaking(on) }
func (c voiceConn) OpusSend() chan<- []byte { return c.vc.OpusSend }
func (c voiceConn) Disconnect() error       { return c.vc.Disconnect() }
