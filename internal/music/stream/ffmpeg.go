package stream

import (
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
)

const (
	channels   = 2
	sampleRate = 48000
	frameSize  = 960 // 20ms at 48kHz

	stderrTail = 2048
)

// PCMSource yields s16le stereo 48kHz audio. Interrupt may be called from any
// goroutine and unblocks a pending Read. Close is called once reading is over
// and reports a failure of the producer, if any.
type PCMSource interface {
	io.Reader
	Interrupt()
	Close() error
}

type ffmpegSource struct {
	cmd    *exec.Cmd
	out    io.ReadCloser
	stderr *tailBuffer
	eof    atomic.Bool
	once   sync.Once
	err    error
}

// OpenFFmpeg starts ffmpeg decoding link to raw PCM on stdout.
func OpenFFmpeg(link string) (PCMSource, error) {
	cmd := exec.Command("ffmpeg",
		"-reconnect", "1",
		"-reconnect_streamed", "1",
		"-reconnect_delay_max", "5",
		"-i", link,
		"-f", "s16le",
		"-ar", strconv.Itoa(sampleRate),
		"-ac", strconv.Itoa(channels),
		"-loglevel", "warning",
		"pipe:1",
	)
	stderr := &tailBuffer{max: stderrTail}
	cmd.Stderr = stderr
	out, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start ffmpeg: %w", err)
	}
	return &ffmpegSource{cmd: cmd, out: out, stderr: stderr}, nil
}

func (f *ffmpegSource) Read(p []byte) (int, error) {
	n, err := f.out.Read(p)
	if errors.Is(err, io.EOF) {
		f.eof.Store(true)
	}
	return n, err
}

// Interrupt kills ffmpeg. The process is reaped by Close.
func (f *ffmpegSource) Interrupt() {
	_ = f.cmd.Process.Kill()
}

// Close reaps ffmpeg. A non-zero exit after ffmpeg closed its output on its
// own is returned with the tail of its stderr.
func (f *ffmpegSource) Close() error {
	f.once.Do(func() {
		drained := f.eof.Load()
		if !drained {
			_ = f.cmd.Process.Kill()
		}
		err := f.cmd.Wait()
		if err != nil && drained {
			f.err = fmt.Errorf("ffmpeg: %w: %s", err, f.stderr.String())
		}
	})
	return f.err
}

// tailBuffer keeps the last max bytes written to it.
type tailBuffer struct {
	mu  sync.Mutex
	max int
	buf []byte
}

func (t *tailBuffer) Write(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.buf = append(t.buf, p...)
	if over := len(t.buf) - t.max; over > 0 {
		t.buf = append(t.buf[:0], t.buf[over:]...)
	}
	return len(p), nil
}

func (t *tailBuffer) String() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return strings.TrimSpace(string(t.buf))
}
