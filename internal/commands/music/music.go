// Package music holds the voice and playback commands.
package music

import "github.com/keshon/musicbot/internal/bot"

// Register binds every music command body to b.
func Register(b *bot.Bot) {
	logged := bot.WithCommandLogger()
	inVoice := b.WithSameVoiceChannel()

	b.Handle("summon", summon, logged)
	b.Handle("disconnect", disconnect, logged)
	b.Handle("play", play, logged, inVoice)
	b.Handle("pause", pause, logged, inVoice)
	b.Handle("resume", resume, logged, inVoice)
	b.Handle("stop", stop, logged, inVoice)
	b.Handle("skip", skip, logged, inVoice)
	b.Handle("clear", clearQueue, logged, inVoice)
	b.Handle("nowplaying", nowPlaying, logged)
	b.Handle("playlist", playlist, logged)
}
