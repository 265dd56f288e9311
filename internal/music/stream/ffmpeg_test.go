package stream

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

// fakeFFmpeg puts a shell script named ffmpeg first on PATH.
func fakeFFmpeg(t *testing.T, script string) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script ffmpeg")
	}
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "ffmpeg"), []byte("#!/bin/sh\n"+script), 0o755); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PATH", dir+string(os.PathListSeparator)+os.Getenv("PATH"))
}

func TestFFmpegFailureEndsPlaybackWithError(t *testing.T) {
	fakeFFmpeg(t, "echo 'Server returned 403 Forbidden' >&2\nexit 1\n")

	src, err := OpenFFmpeg("https://cdn.example/audio")
	if err != nil {
		t.Fatal(err)
	}
	pb := newPlayback(newFakeConn(), src, fakeEncoder{})
	go pb.run()

	waitDone(t, pb)
	err = pb.Err()
	if err == nil {
		t.Fatal("failed ffmpeg reported as a clean end of track")
	}
	if !strings.Contains(err.Error(), "403 Forbidden") {
		t.Errorf("Err = %v, want ffmpeg stderr in it", err)
	}
}

func TestFFmpegCleanExitEndsPlayback(t *testing.T) {
	fakeFFmpeg(t, "exit 0\n")

	src, err := OpenFFmpeg("https://cdn.example/audio")
	if err != nil {
		t.Fatal(err)
	}
	pb := newPlayback(newFakeConn(), src, fakeEncoder{})
	go pb.run()

	waitDone(t, pb)
	if err := pb.Err(); err != nil {
		t.Errorf("Err = %v", err)
	}
}

func TestFFmpegStopKillsProcess(t *testing.T) {
	fakeFFmpeg(t, "exec sleep 30\n")

	src, err := OpenFFmpeg("https://cdn.example/audio")
	if err != nil {
		t.Fatal(err)
	}
	pb := newPlayback(newFakeConn(), src, fakeEncoder{})
	go pb.run()

	pb.Stop()
	waitDone(t, pb)
	if err := pb.Err(); err != nil {
		t.Errorf("stopped playback reported %v", err)
	}
}

func TestTailBufferKeepsLastBytes(t *testing.T) {
	tb := &tailBuffer{max: 5}
	tb.Write([]byte("abc"))
	tb.Write([]byte("defgh"))
	if got := tb.String(); got != "defgh" {
		t.Errorf("tail = %q", got)
	}
}
