package discord

import (
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/keshon/musicbot/internal/bot"
	"github.com/keshon/musicbot/internal/command"
	"github.com/keshon/musicbot/internal/voice"
)

var (
	_ bot.Gateway  = (*Bot)(nil)
	_ voice.Joiner = (*Bot)(nil)
)

func (b *Bot) Reply(msg *command.Message, text string) error {
	_, err := b.dg.ChannelMessageSendReply(msg.ChannelID, text, &discordgo.MessageReference{
		MessageID: msg.ID,
		ChannelID: msg.ChannelID,
		GuildID:   msg.GuildID,
	})
	return err
}

func (b *Bot) Send(channelID, text string) error {
	_, err := b.dg.ChannelMessageSend(channelID, text)
	return err
}

func (b *Bot) SendEmbed(channelID string, embed *discordgo.MessageEmbed) error {
	_, err := b.dg.ChannelMessageSendEmbed(channelID, embed)
	return err
}

func (b *Bot) DirectMessage(userID, text string) error {
	ch, err := b.dg.UserChannelCreate(userID)
	if err != nil {
		return fmt.Errorf("open DM channel: %w", err)
	}
	_, err = b.dg.ChannelMessageSend(ch.ID, text)
	return err
}

// UserVoiceChannel looks the user up in the cached guild voice states.
func (b *Bot) UserVoiceChannel(guildID, userID string) (string, error) {
	guild, err := b.dg.State.Guild(guildID)
	if err != nil {
		return "", fmt.Errorf("error retrieving guild: %w", err)
	}
	return voiceChannelOf(guild, userID), nil
}

func voiceChannelOf(guild *discordgo.Guild, userID string) string {
	for _, vs := range guild.VoiceStates {
		if vs.UserID == userID {
			return vs.ChannelID
		}
	}
	return ""
}

func (b *Bot) SetStatus(status string) error {
	return b.dg.UpdateGameStatus(0, status)
}

func (b *Bot) SetUsername(name string) error {
	_, err := b.dg.UserUpdate(name, "", "")
	return err
}

func (b *Bot) SetAvatar(dataURI string) error {
	_, err := b.dg.UserUpdate("", dataURI, "")
	return err
}

func (b *Bot) BotName() string {
	if b.dg.State == nil || b.dg.State.User == nil {
		return ""
	}
	return b.dg.State.User.Username
}
