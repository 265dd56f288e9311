package stream

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/kkdai/youtube/v2"
	"github.com/lrstanley/go-ytdlp"

	ytsource "github.com/keshon/musicbot/internal/music/sources/youtube"
)

// LinkOpener turns a track page URL into a direct media URL ffmpeg can read.
type LinkOpener interface {
	Name() string
	Supports(pageURL string) bool
	Link(ctx context.Context, pageURL string) (string, error)
}

var ErrNoAudioFormat = errors.New("no audio format available")

// KkdaiLinker extracts YouTube stream URLs natively.
type KkdaiLinker struct {
	Client *youtube.Client
}

func (k *KkdaiLinker) Name() string { return "kkdai-link" }

func (k *KkdaiLinker) Supports(pageURL string) bool {
	_, ok := ytsource.VideoID(pageURL)
	return ok
}

func (k *KkdaiLinker) Link(ctx context.Context, pageURL string) (string, error) {
	id, ok := ytsource.VideoID(pageURL)
	if !ok {
		return "", fmt.Errorf("no video id in %s", pageURL)
	}
	video, err := k.Client.GetVideoContext(ctx, id)
	if err != nil {
		return "", err
	}

	formats := video.Formats.WithAudioChannels()
	if len(formats) == 0 {
		return "", ErrNoAudioFormat
	}
	format := &formats[0]
	for i := range formats {
		if strings.HasPrefix(formats[i].MimeType, "audio/") {
			format = &formats[i]
			break
		}
	}
	return k.Client.GetStreamURLContext(ctx, video, format)
}

// YtdlpLinker asks yt-dlp for the best audio URL. It handles every site
// yt-dlp knows.
type YtdlpLinker struct{}

func (YtdlpLinker) Name() string { return "ytdlp-link" }

func (YtdlpLinker) Supports(string) bool { return true }

func (YtdlpLinker) Link(ctx context.Context, pageURL string) (string, error) {
	res, err := ytdlp.New().
		Format("bestaudio/best").
		Print("%(url)s").
		NoPlaylist().
		NoWarnings().
		IgnoreConfig().
		Run(ctx, pageURL)
	if err != nil {
		if res != nil && res.Stderr != "" {
			return "", fmt.Errorf("yt-dlp: %w: %s", err, strings.TrimSpace(res.Stderr))
		}
		return "", fmt.Errorf("yt-dlp: %w", err)
	}
	link, _, _ := strings.Cut(strings.TrimSpace(res.Stdout), "\n")
	if link == "" || link == "NA" {
		return "", ErrNoAudioFormat
	}
	return link, nil
}
