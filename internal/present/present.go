// Package present formats tracks, queues and help listings for chat.
package present

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/bwmarrin/discordgo"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/samber/lo"

	"github.com/keshon/musicbot/internal/command"
	"github.com/keshon/musicbot/internal/music/track"
)

const (
	QueuePageSize = 30
	HelpPageSize  = 10

	// MessageLimit keeps rendered pages under Discord's 2000 character cap.
	MessageLimit = 1990

	embedColor = 0x1db954
)

// Timestamp renders d as mm:ss, or h:mm:ss from one hour up. Negative
// durations render as 00:00.
func Timestamp(d time.Duration) string {
	secs := int(d / time.Second)
	if secs < 0 {
		secs = 0
	}
	h, m, s := secs/3600, secs/60%60, secs%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}

// duration renders an unreported length as --:--.
func duration(d time.Duration) string {
	if d <= 0 {
		return "--:--"
	}
	return Timestamp(d)
}

// NowPlaying builds the embed shown when a track starts or on request.
func NowPlaying(t *track.Track, paused bool) *discordgo.MessageEmbed {
	title := "Now playing"
	if paused {
		title = "Paused"
	}
	embed := &discordgo.MessageEmbed{
		Title:       title,
		Description: fmt.Sprintf("**%s**", t.DisplayTitle()),
		URL:         t.URL,
		Color:       embedColor,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Duration", Value: duration(t.Duration), Inline: true},
			{Name: "Source", Value: t.SourceName, Inline: true},
		},
	}
	if t.RequesterName != "" {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name: "Requested by", Value: t.RequesterName, Inline: true,
		})
	}
	if t.Thumbnail != "" {
		embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: t.Thumbnail}
	}
	return embed
}

// Presence is the status line for the bot profile.
func Presence(t *track.Track, paused bool) string {
	if paused {
		return t.DisplayTitle() + " (paused)"
	}
	return t.DisplayTitle()
}

// QueuePages renders the queue as code-block tables numbered from 1. A page
// holds at most QueuePageSize rows and MessageLimit characters.
func QueuePages(items []*track.Track) []string {
	pages := make([]string, 0, len(items)/QueuePageSize+1)
	var rows []table.Row
	for i, t := range items {
		row := table.Row{
			i + 1,
			truncate(t.DisplayTitle(), 40),
			duration(t.Duration),
			truncate(t.RequesterName, 20),
		}
		if len(rows) > 0 && (len(rows) == QueuePageSize ||
			utf8.RuneCountInString(queueTable(append(rows, row))) > MessageLimit) {
			pages = append(pages, queueTable(rows))
			rows = nil
		}
		rows = append(rows, row)
	}
	if len(rows) > 0 {
		pages = append(pages, queueTable(rows))
	}
	return pages
}

func queueTable(rows []table.Row) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleLight)
	tw.AppendHeader(table.Row{"#", "Title", "Length", "Requested by"})
	tw.AppendRows(rows)
	return "```\n" + tw.Render() + "\n```"
}

// HelpBlock describes one command.
func HelpBlock(prefix string, d *command.Descriptor, aliases []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "**%s** `%s%s`\n", d.Name, prefix, d.Key)
	if d.Description != "" {
		b.WriteString(d.Description + "\n")
	}
	fmt.Fprintf(&b, "Usage: `%s%s`\n", prefix, d.Usage)
	quoted := lo.Map(aliases, func(a string, _ int) string { return "`" + a + "`" })
	fmt.Fprintf(&b, "Aliases: %s", strings.Join(quoted, ", "))
	return b.String()
}

// HelpPages groups blocks HelpPageSize per message.
func HelpPages(blocks []string) []string {
	return lo.Map(lo.Chunk(blocks, HelpPageSize), func(c []string, _ int) string {
		return strings.Join(c, "\n\n")
	})
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
