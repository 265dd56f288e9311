package sources

import (
	"context"
	"errors"
	"net/url"
	"testing"

	"github.com/keshon/musicbot/internal/music/track"
)

type stubSource struct {
	host   string
	tracks []*track.Track
	err    error
	calls  int
}

func (s *stubSource) SourceName() string    { return "stub:" + s.host }
func (s *stubSource) Match(u *url.URL) bool { return HostIs(u, s.host) }
func (s *stubSource) Resolve(context.Context, *url.URL) ([]*track.Track, error) {
	s.calls++
	return s.tracks, s.err
}

func TestResolveDispatchesOnHost(t *testing.T) {
	a := &stubSource{host: "a.example", tracks: []*track.Track{{Title: "one"}}}
	b := &stubSource{host: "b.example", tracks: []*track.Track{{Title: "two"}, {Title: "three"}}}
	r := NewResolver(a, nil, b)

	got, err := r.Resolve(context.Background(), "<https://B.example/list>")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].Title != "two" || got[1].Title != "three" {
		t.Errorf("got %v", got)
	}
	if a.calls != 0 {
		t.Error("non-matching source was called")
	}
}

func TestResolveUnsupported(t *testing.T) {
	r := NewResolver(&stubSource{host: "a.example"})
	for _, raw := range []string{
		"https://google.com/?v=bKYwzLAVqhY",
		"not a url",
		"ftp://a.example/file",
		"",
	} {
		if _, err := r.Resolve(context.Background(), raw); !errors.Is(err, ErrUnsupportedURL) {
			t.Errorf("Resolve(%q) = %v, want ErrUnsupportedURL", raw, err)
		}
	}
}

func TestResolveEmptyAndFailing(t *testing.T) {
	boom := errors.New("boom")
	r := NewResolver(
		&stubSource{host: "empty.example"},
		&stubSource{host: "fail.example", err: boom},
	)
	if _, err := r.Resolve(context.Background(), "https://empty.example/x"); !errors.Is(err, ErrNoTracks) {
		t.Errorf("empty source err = %v", err)
	}
	if _, err := r.Resolve(context.Background(), "https://fail.example/x"); !errors.Is(err, boom) {
		t.Errorf("failing source err = %v", err)
	}
}
