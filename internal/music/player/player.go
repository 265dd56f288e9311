// Package player owns the playback queue and guarantees at most one active
// stream per bot.
package player

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/keshon/musicbot/internal/music/track"
	"github.com/keshon/musicbot/internal/voice"
)

type PlayerStatus string

const (
	StatusPlaying PlayerStatus = "Playing"
	StatusAdded   PlayerStatus = "Track Added"
	StatusStopped PlayerStatus = "Playback Stopped"
	StatusPaused  PlayerStatus = "Playback Paused"
	StatusResumed PlayerStatus = "Playback Resumed"
	StatusIdle    PlayerStatus = "Queue Finished"
	StatusError   PlayerStatus = "Error"
)

var (
	ErrNoTrackPlaying = errors.New("no track is currently playing")
	ErrAlreadyPlaying = errors.New("already playing")
	ErrAlreadyStopped = errors.New("playback is already stopped")
)

// Event is published on every visible state change.
type Event struct {
	Status PlayerStatus
	Track  *track.Track
	Err    error
}

// Stream is one active transmission. Pause, Resume and Stop must not block.
// Done is closed exactly once when the stream ends for any reason, and Err
// reports a failure after that; a stopped or fully played stream has no error.
type Stream interface {
	Done() <-chan struct{}
	Err() error
	Pause()
	Resume()
	Stop()
}

// Streamer starts streaming t into conn.
type Streamer interface {
	Open(ctx context.Context, conn voice.Connection, t *track.Track) (Stream, error)
}

// ResumeResult tells the caller what Resume did.
type ResumeResult int

const (
	// ResumedPaused un-paused the current track.
	ResumedPaused ResumeResult = iota
	// ResumedQueue started the queue head after a stop.
	ResumedQueue
	// ResumedEmpty cleared the stop but there was nothing to play.
	ResumedEmpty
)

// Snapshot is a copy of the playback state.
type Snapshot struct {
	NowPlaying *track.Track
	Paused     bool
	Stopped    bool
	Queue      []*track.Track
}

const (
	eventBuffer = 64
	stopTimeout = 5 * time.Second
)

type Player struct {
	streamer Streamer
	ctx      context.Context
	cancel   context.CancelFunc
	events   chan Event

	mu         sync.Mutex
	conn       voice.Connection
	queue      []*track.Track
	nowPlaying *track.Track
	// stream is nil while nowPlaying is still being opened.
	stream  Stream
	paused  bool
	stopped bool
	// gen changes whenever nowPlaying is replaced or cleared, so late stream
	// opens and completions for an older track are recognised and dropped.
	gen uint64
	// settled is closed once the stream of the latest started track has
	// ended. The next track is not opened before that.
	settled chan struct{}
}

func New(streamer Streamer) *Player {
	ctx, cancel := context.WithCancel(context.Background())
	settled := make(chan struct{})
	close(settled)
	return &Player{
		streamer: streamer,
		ctx:      ctx,
		cancel:   cancel,
		events:   make(chan Event, eventBuffer),
		settled:  settled,
	}
}

// Events delivers state changes. Events are dropped when nobody keeps up.
func (p *Player) Events() <-chan Event {
	return p.events
}

// Attach makes conn the output and clears a previous stop.
func (p *Player) Attach(conn voice.Connection) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.conn = conn
	p.stopped = false
}

// Detach stops playback and forgets the connection. The queue is kept.
func (p *Player) Detach() {
	p.mu.Lock()
	wasActive := p.nowPlaying != nil
	p.stopped = true
	stream := p.releaseLocked()
	p.conn = nil
	if wasActive {
		p.emit(Event{Status: StatusStopped})
	}
	p.mu.Unlock()

	halt(stream)
}

// Close stops playback and cancels pending stream opens.
func (p *Player) Close() {
	p.Detach()
	p.cancel()
}

// Enqueue appends t and starts it when the player is idle. It reports whether
// t started playing immediately.
func (p *Player) Enqueue(t *track.Track) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.queue = append(p.queue, t)
	if p.advanceLocked() {
		return true
	}
	p.emit(Event{Status: StatusAdded, Track: t})
	return false
}

// Pause is valid only while a track is playing.
func (p *Player) Pause() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.nowPlaying == nil || p.stream == nil || p.paused {
		return ErrNoTrackPlaying
	}
	p.paused = true
	p.stream.Pause()
	p.emit(Event{Status: StatusPaused, Track: p.nowPlaying})
	return nil
}

// Resume restarts the queue after a stop, or un-pauses the current track.
func (p *Player) Resume() (ResumeResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stopped {
		p.stopped = false
		if p.advanceLocked() {
			return ResumedQueue, nil
		}
		return ResumedEmpty, nil
	}
	if p.paused {
		p.paused = false
		p.stream.Resume()
		p.emit(Event{Status: StatusResumed, Track: p.nowPlaying})
		return ResumedPaused, nil
	}
	return 0, ErrAlreadyPlaying
}

// Stop suppresses auto-advance and ends the current stream. It returns after
// the stream has been torn down.
func (p *Player) Stop() error {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return ErrAlreadyStopped
	}
	p.stopped = true
	stream := p.releaseLocked()
	p.emit(Event{Status: StatusStopped})
	p.mu.Unlock()

	halt(stream)
	return nil
}

// Skip ends the current stream and lets the queue advance. It returns the
// skipped track once the next one, if any, has become nowPlaying.
func (p *Player) Skip() (*track.Track, error) {
	p.mu.Lock()
	current := p.nowPlaying
	if current == nil {
		p.mu.Unlock()
		return nil, ErrNoTrackPlaying
	}
	stream := p.releaseLocked()
	if !p.advanceLocked() {
		p.emit(Event{Status: StatusIdle})
	}
	p.mu.Unlock()

	halt(stream)
	return current, nil
}

// Clear drops every queued track and returns how many were removed.
func (p *Player) Clear() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := len(p.queue)
	clear(p.queue)
	p.queue = nil
	return n
}

func (p *Player) Snapshot() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Snapshot{
		NowPlaying: p.nowPlaying,
		Paused:     p.paused,
		Stopped:    p.stopped,
		Queue:      slices.Clone(p.queue),
	}
}

// advanceLocked moves the queue head to nowPlaying and opens its stream in
// the background. It does nothing while stopped, while anything is playing or
// being opened, without a connection, or with an empty queue.
func (p *Player) advanceLocked() bool {
	if p.stopped || p.nowPlaying != nil || p.conn == nil || len(p.queue) == 0 {
		return false
	}

	next := p.queue[0]
	p.queue[0] = nil
	p.queue = p.queue[1:]

	p.nowPlaying = next
	p.paused = false
	p.gen++
	gen, conn := p.gen, p.conn
	prev, settled := p.settled, make(chan struct{})
	p.settled = settled

	log.Debug().Str("track", next.ID).Str("title", next.Title).Int("queued", len(p.queue)).
		Msg("player: advancing")
	go p.start(gen, conn, next, prev, settled)
	return true
}

// releaseLocked clears nowPlaying and returns its stream, if already open,
// for the caller to halt once the lock is released. Completions for the
// released track become no-ops.
func (p *Player) releaseLocked() Stream {
	stream := p.stream
	p.nowPlaying = nil
	p.stream = nil
	p.paused = false
	p.gen++
	return stream
}

// halt stops stream and waits for it to end.
func halt(stream Stream) {
	if stream == nil {
		return
	}
	stream.Stop()
	select {
	case <-stream.Done():
	case <-time.After(stopTimeout):
		log.Warn().Msg("player: stream did not stop in time, next track waits for it")
	}
}

// start opens t once the previous stream has ended and closes settled when
// t's own stream has.
func (p *Player) start(gen uint64, conn voice.Connection, t *track.Track, prev <-chan struct{}, settled chan struct{}) {
	select {
	case <-prev:
	case <-p.ctx.Done():
		close(settled)
		return
	}

	stream, err := p.streamer.Open(p.ctx, conn, t)

	p.mu.Lock()
	if gen != p.gen {
		p.mu.Unlock()
		if stream != nil {
			stream.Stop()
			<-stream.Done()
		}
		close(settled)
		log.Debug().Str("track", t.ID).Msg("player: discarded stale stream")
		return
	}
	if err != nil {
		p.mu.Unlock()
		close(settled)
		p.finish(gen, err)
		return
	}
	p.stream = stream
	p.emit(Event{Status: StatusPlaying, Track: t})
	p.mu.Unlock()

	go func() {
		<-stream.Done()
		close(settled)
		p.finish(gen, stream.Err())
	}()
}

// finish is the completion path for the track opened under gen. It runs at
// most once per gen.
func (p *Player) finish(gen uint64, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if gen != p.gen || p.nowPlaying == nil {
		return
	}
	ended := p.nowPlaying
	p.nowPlaying = nil
	p.stream = nil
	p.paused = false
	p.gen++

	if err != nil {
		log.Error().Err(err).Str("track", ended.ID).Str("title", ended.Title).Msg("player: stream failed")
		p.emit(Event{Status: StatusError, Track: ended, Err: err})
	}
	if p.advanceLocked() || p.stopped {
		return
	}
	p.emit(Event{Status: StatusIdle})
}

func (p *Player) emit(e Event) {
	select {
	case p.events <- e:
	default:
		log.Debug().Str("status", string(e.Status)).Msg("player: event dropped")
	}
}
