// Package bottest provides in-memory gateway, voice and stream fakes for
// exercising the bot without a chat platform.
package bottest

import (
	"context"
	"errors"
	"sync"

	"github.com/bwmarrin/discordgo"

	"github.com/keshon/musicbot/internal/command"
	"github.com/keshon/musicbot/internal/music/player"
	"github.com/keshon/musicbot/internal/music/track"
	"github.com/keshon/musicbot/internal/voice"
)

var ErrDMClosed = errors.New("cannot send messages to this user")

// Gateway records everything the bot sends.
type Gateway struct {
	Name string

	mu       sync.Mutex
	replies  []string
	sent     []string
	embeds   []*discordgo.MessageEmbed
	dms      []string
	statuses []string
	voiceOf  map[string]string

	DMErr       error
	UsernameErr error
	AvatarErr   error
	Username    string
	Avatar      string
}

func NewGateway() *Gateway {
	return &Gateway{Name: "musicbot", voiceOf: make(map[string]string)}
}

// PutInVoice places userID in channelID; "" removes them.
func (g *Gateway) PutInVoice(userID, channelID string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.voiceOf[userID] = channelID
}

func (g *Gateway) Reply(_ *command.Message, text string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.replies = append(g.replies, text)
	return nil
}

func (g *Gateway) Send(_ string, text string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.sent = append(g.sent, text)
	return nil
}

func (g *Gateway) SendEmbed(_ string, embed *discordgo.MessageEmbed) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.embeds = append(g.embeds, embed)
	return nil
}

func (g *Gateway) DirectMessage(_ string, text string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.DMErr != nil {
		return g.DMErr
	}
	g.dms = append(g.dms, text)
	return nil
}

func (g *Gateway) UserVoiceChannel(_, userID string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.voiceOf[userID], nil
}

func (g *Gateway) SetStatus(status string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.statuses = append(g.statuses, status)
	return nil
}

func (g *Gateway) SetUsername(name string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.UsernameErr != nil {
		return g.UsernameErr
	}
	g.Username = name
	return nil
}

func (g *Gateway) SetAvatar(dataURI string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.AvatarErr != nil {
		return g.AvatarErr
	}
	g.Avatar = dataURI
	return nil
}

func (g *Gateway) BotName() string { return g.Name }

func (g *Gateway) Replies() []string { return g.copy(&g.replies) }
func (g *Gateway) DMs() []string     { return g.copy(&g.dms) }
func (g *Gateway) Sent() []string    { return g.copy(&g.sent) }
func (g *Gateway) Statuses() []string {
	return g.copy(&g.statuses)
}

func (g *Gateway) Embeds() []*discordgo.MessageEmbed {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]*discordgo.MessageEmbed(nil), g.embeds...)
}

// LastReply returns the most recent reply or "".
func (g *Gateway) LastReply() string {
	r := g.Replies()
	if len(r) == 0 {
		return ""
	}
	return r[len(r)-1]
}

func (g *Gateway) copy(s *[]string) []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), (*s)...)
}

// Conn is a voice connection that swallows frames.
type Conn struct {
	Channel string

	mu           sync.Mutex
	disconnected bool
	frames       chan []byte
}

func (c *Conn) ChannelID() string   { return c.Channel }
func (c *Conn) Speaking(bool) error { return nil }
func (c *Conn) OpusSend() chan<- []byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.frames == nil {
		c.frames = make(chan []byte, 1)
	}
	return c.frames
}

func (c *Conn) Disconnect() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.disconnected = true
	return nil
}

func (c *Conn) Disconnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.disconnected
}

// Joiner hands out Conns, or fails with Err.
type Joiner struct {
	Err error

	mu    sync.Mutex
	conns []*Conn
}

func (j *Joiner) JoinVoice(_ context.Context, _, channelID string) (voice.Connection, error) {
	if j.Err != nil {
		return nil, j.Err
	}
	c := &Conn{Channel: channelID}
	j.mu.Lock()
	j.conns = append(j.conns, c)
	j.mu.Unlock()
	return c, nil
}

// Last returns the most recent connection.
func (j *Joiner) Last() *Conn {
	j.mu.Lock()
	defer j.mu.Unlock()
	if len(j.conns) == 0 {
		return nil
	}
	return j.conns[len(j.conns)-1]
}

// Streamer opens streams that play until stopped.
type Streamer struct{}

func (Streamer) Open(context.Context, voice.Connection, *track.Track) (player.Stream, error) {
	return newStream(), nil
}

type stream struct {
	once sync.Once
	done chan struct{}
}

func newStream() *stream { return &stream{done: make(chan struct{})} }

func (s *stream) Done() <-chan struct{} { return s.done }
func (s *stream) Err() error            { return nil }
func (s *stream) Pause()                {}
func (s *stream) Resume()               {}
func (s *stream) Stop()                 { s.once.Do(func() { close(s.done) }) }

// Resolver returns fixed tracks per URL.
type Resolver struct {
	Tracks map[string][]*track.Track
	Err    error
}

func (r *Resolver) Resolve(_ context.Context, raw string) ([]*track.Track, error) {
	if r.Err != nil {
		return nil, r.Err
	}
	return r.Tracks[raw], nil
}
