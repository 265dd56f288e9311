package stream

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog/log"

	"github.com/keshon/musicbot/internal/voice"
)

type frameEncoder interface {
	Encode(pcm []int16, frameSize, maxDataBytes int) ([]byte, error)
}

// Playback pumps one PCM source into a voice connection.
type Playback struct {
	conn voice.Connection
	pcm  PCMSource
	enc  frameEncoder

	paused   atomic.Bool
	resume   chan struct{}
	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}
	err      error
}

func newPlayback(conn voice.Connection, pcm PCMSource, enc frameEncoder) *Playback {
	return &Playback{
		conn:   conn,
		pcm:    pcm,
		enc:    enc,
		resume: make(chan struct{}, 1),
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
}

func (p *Playback) Done() <-chan struct{} { return p.done }

// Err is valid once Done is closed.
func (p *Playback) Err() error {
	select {
	case <-p.done:
		return p.err
	default:
		return nil
	}
}

func (p *Playback) Pause() {
	p.paused.Store(true)
}

func (p *Playback) Resume() {
	if p.paused.Swap(false) {
		select {
		case p.resume <- struct{}{}:
		default:
		}
	}
}

// Stop ends playback. The source is interrupted in the background so a
// blocked read returns.
func (p *Playback) Stop() {
	p.stopOnce.Do(func() {
		close(p.stop)
		go p.pcm.Interrupt()
	})
}

func (p *Playback) stopped() bool {
	select {
	case <-p.stop:
		return true
	default:
		return false
	}
}

func (p *Playback) run() {
	defer close(p.done)

	p.speaking(true)
	p.err = p.pump()
	p.speaking(false)

	if err := p.pcm.Close(); err != nil && p.err == nil && !p.stopped() {
		p.err = err
	}
	if p.err != nil {
		log.Error().Err(p.err).Msg("stream: playback failed")
	}
}

// pump returns nil when the source ends or the playback is stopped.
func (p *Playback) pump() error {
	pcmBuf := make([]byte, frameSize*channels*2)
	samples := make([]int16, frameSize*channels)

	for {
		if p.paused.Load() {
			p.speaking(false)
			select {
			case <-p.stop:
				return nil
			case <-p.resume:
				p.speaking(true)
			}
			continue
		}
		if p.stopped() {
			return nil
		}

		if _, err := io.ReadFull(p.pcm, pcmBuf); err != nil {
			if p.stopped() || errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return nil
			}
			return fmt.Errorf("read pcm: %w", err)
		}
		for i := range samples {
			samples[i] = int16(binary.LittleEndian.Uint16(pcmBuf[i*2:]))
		}

		frame, err := p.enc.Encode(samples, frameSize, len(pcmBuf))
		if err != nil {
			return fmt.Errorf("encode opus: %w", err)
		}

		select {
		case p.conn.OpusSend() <- frame:
		case <-p.stop:
			return nil
		}
	}
}

func (p *Playback) speaking(on bool) {
	if err := p.conn.Speaking(on); err != nil {
		log.Debug().Err(err).Bool("speaking", on).Msg("stream: speaking update failed")
	}
}
