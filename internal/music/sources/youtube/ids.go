package youtube

import "regexp"

var (
	youtubeHost     = regexp.MustCompile(`youtu\.?be`)
	videoIDPatterns = []*regexp.Regexp{
		regexp.MustCompile(`youtu\.be/([^#&?/]{11})`),
		regexp.MustCompile(`\?v=([^#&?]{11})`),
		regexp.MustCompile(`&v=([^#&?]{11})`),
		regexp.MustCompile(`embed/([^#&?/]{11})`),
		regexp.MustCompile(`/v/([^#&?/]{11})`),
		regexp.MustCompile(`/shorts/([^#&?/]{11})`),
	}
	playlistIDPattern = regexp.MustCompile(`[?&]list=([\w-]+)`)
)

// VideoID extracts the 11 character video id from a YouTube URL.
func VideoID(raw string) (string, bool) {
	if !youtubeHost.MatchString(raw) {
		return "", false
	}
	for _, re := range videoIDPatterns {
		if m := re.FindStringSubmatch(raw); m != nil {
			return m[1], true
		}
	}
	return "", false
}

// PlaylistID extracts the list parameter from a YouTube URL.
func PlaylistID(raw string) (string, bool) {
	if !youtubeHost.MatchString(raw) {
		return "", false
	}
	if m := playlistIDPattern.FindStringSubmatch(raw); m != nil {
		return m[1], true
	}
	return "", false
}

// WatchURL is the canonical page for a video id.
func WatchURL(id string) string {
	return "https://www.youtube.com/watch?v=" + id
}
