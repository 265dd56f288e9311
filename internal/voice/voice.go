// Package voice tracks the single voice channel the bot is bound to.
package voice

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"
)

var (
	ErrAlreadyConnected = errors.New("already connected to a voice channel")
	ErrNotConnected     = errors.New("not connected to a voice channel")
)

// Connection is a live voice transport.
type Connection interface {
	ChannelID() string
	Speaking(bool) error
	// OpusSend accepts encoded 20ms opus frames.
	OpusSend() chan<- []byte
	Disconnect() error
}

// Joiner opens a voice connection on the platform.
type Joiner interface {
	JoinVoice(ctx context.Context, guildID, channelID string) (Connection, error)
}

// Binder is told when a connection becomes usable and when it goes away.
type Binder interface {
	Attach(conn Connection)
	Detach()
}

// Session is the current voice binding.
type Session struct {
	GuildID   string
	ChannelID string
	Conn      Connection
}

type Manager struct {
	joiner Joiner
	binder Binder

	mu      sync.Mutex
	session *Session
	joining bool
}

func NewManager(joiner Joiner, binder Binder) *Manager {
	return &Manager{joiner: joiner, binder: binder}
}

// Join binds the bot to channelID. It fails with ErrAlreadyConnected while a
// session exists or another join is in progress. A failed join leaves no session.
func (m *Manager) Join(ctx context.Context, guildID, channelID string) (Session, error) {
	m.mu.Lock()
	if m.session != nil || m.joining {
		m.mu.Unlock()
		return Session{}, ErrAlreadyConnected
	}
	m.joining = true
	m.mu.Unlock()

	conn, err := m.joiner.JoinVoice(ctx, guildID, channelID)

	m.mu.Lock()
	m.joining = false
	if err != nil {
		m.mu.Unlock()
		return Session{}, fmt.Errorf("join voice channel %s: %w", channelID, err)
	}
	s := &Session{GuildID: guildID, ChannelID: channelID, Conn: conn}
	m.session = s
	m.mu.Unlock()

	m.binder.Attach(conn)
	log.Info().Str("guild", guildID).Str("channel", channelID).Msg("voice: joined")
	return *s, nil
}

// Leave stops playback on the connection and tears it down.
func (m *Manager) Leave() error {
	m.mu.Lock()
	s := m.session
	m.session = nil
	m.mu.Unlock()

	if s == nil {
		return ErrNotConnected
	}

	m.binder.Detach()
	if err := s.Conn.Disconnect(); err != nil {
		return fmt.Errorf("disconnect from %s: %w", s.ChannelID, err)
	}
	log.Info().Str("guild", s.GuildID).Str("channel", s.ChannelID).Msg("voice: left")
	return nil
}

// Current returns the active session.
func (m *Manager) Current() (Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session == nil {
		return Session{}, false
	}
	return *m.session, true
}
