package present

import (
	"fmt"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/keshon/musicbot/internal/command"
	"github.com/keshon/musicbot/internal/music/track"
)

func TestTimestamp(t *testing.T) {
	tests := []struct {
		secs int
		want string
	}{
		{0, "00:00"},
		{60, "01:00"},
		{680, "11:20"},
		{4800, "1:20:00"},
		{-5, "00:00"},
	}
	for _, tt := range tests {
		if got := Timestamp(time.Duration(tt.secs) * time.Second); got != tt.want {
			t.Errorf("Timestamp(%ds) = %q, want %q", tt.secs, got, tt.want)
		}
	}
}

func TestQueuePages(t *testing.T) {
	var items []*track.Track
	for i := 0; i < QueuePageSize+2; i++ {
		items = append(items, &track.Track{Title: fmt.Sprintf("song %d", i+1), RequesterName: "ann", Duration: time.Minute})
	}
	pages := QueuePages(items)
	if len(pages) != 2 {
		t.Fatalf("pages = %d, want 2", len(pages))
	}
	if !strings.Contains(pages[1], "song 32") || !strings.Contains(pages[1], "32") {
		t.Errorf("second page lacks continued numbering:\n%s", pages[1])
	}
	if !strings.HasPrefix(pages[0], "```") {
		t.Error("page not in a code block")
	}
	if QueuePages(nil) == nil || len(QueuePages(nil)) != 0 {
		t.Error("empty queue should give no pages")
	}
}

func TestQueuePagesFitMessageLimit(t *testing.T) {
	var items []*track.Track
	for i := 0; i < 75; i++ {
		items = append(items, &track.Track{
			Title:         strings.Repeat("x", 50) + fmt.Sprintf(" %02d", i+1),
			Artist:        "Some Quite Long Band Name",
			RequesterName: "someone-with-a-long-nickname",
			Duration:      95 * time.Minute,
		})
	}
	pages := QueuePages(items)
	if len(pages) < 4 {
		t.Errorf("pages = %d, want long titles split over more pages", len(pages))
	}
	for i, page := range pages {
		if n := utf8.RuneCountInString(page); n > 2000 {
			t.Errorf("page %d has %d runes", i+1, n)
		}
		if !strings.HasPrefix(page, "```\n") || !strings.HasSuffix(page, "\n```") {
			t.Errorf("page %d not in a code block", i+1)
		}
	}
	last := pages[len(pages)-1]
	if !strings.Contains(last, "│ 75 ") {
		t.Errorf("last page lacks row 75:\n%s", last)
	}
}

func TestUnknownDuration(t *testing.T) {
	e := NowPlaying(&track.Track{Title: "Song", SourceName: "soundcloud"}, false)
	if got := e.Fields[0].Value; got != "--:--" {
		t.Errorf("duration = %q, want --:--", got)
	}
}

func TestHelpBlockAndPages(t *testing.T) {
	d := &command.Descriptor{Key: "play", Name: "Play", Usage: "play <url>", Description: "Plays."}
	block := HelpBlock("!", d, []string{"play", "p"})
	for _, want := range []string{"**Play** `!play`", "Usage: `!play <url>`", "`play`, `p`"} {
		if !strings.Contains(block, want) {
			t.Errorf("block missing %q:\n%s", want, block)
		}
	}

	blocks := make([]string, HelpPageSize*2+1)
	if got := len(HelpPages(blocks)); got != 3 {
		t.Errorf("help pages = %d, want 3", got)
	}
}

func TestNowPlaying(t *testing.T) {
	tr := &track.Track{Title: "Song", Artist: "Band", URL: "https://x", SourceName: "youtube", RequesterName: "ann", Thumbnail: "thumb"}
	e := NowPlaying(tr, true)
	if e.Title != "Paused" || !strings.Contains(e.Description, "Band - Song") || e.Thumbnail == nil {
		t.Errorf("embed = %+v", e)
	}
	if got := Presence(tr, false); got != "Band - Song" {
		t.Errorf("presence = %q", got)
	}
}
