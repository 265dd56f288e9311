// Package core holds the help and bot profile commands.
package core

import "github.com/keshon/musicbot/internal/bot"

// Register binds the core command bodies to b.
func Register(b *bot.Bot) {
	logged := bot.WithCommandLogger()

	b.Handle("help", help, logged)
	b.Handle("setusername", setUsername, logged)
	b.Handle("setavatar", setAvatar, logged)
}
