package youtube

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/kkdai/youtube/v2"
)

func TestVideoID(t *testing.T) {
	tests := []struct {
		raw    string
		want   string
		wantOK bool
	}{
		{"https://youtu.be/bKYwzLAVqhY", "bKYwzLAVqhY", true},
		{"https://www.youtube.com/watch?v=bKYwzLAVqhY", "bKYwzLAVqhY", true},
		{"https://www.youtube.com/watch?feature=share&v=bKYwzLAVqhY", "bKYwzLAVqhY", true},
		{"https://www.youtube.com/embed/bKYwzLAVqhY", "bKYwzLAVqhY", true},
		{"https://www.youtube.com/v/bKYwzLAVqhY?version=3", "bKYwzLAVqhY", true},
		{"https://youtube.com/shorts/bKYwzLAVqhY", "bKYwzLAVqhY", true},
		{"https://google.com/?v=bKYwzLAVqhY", "", false},
		{"https://www.youtube.com/watch?v=short", "", false},
	}
	for _, tt := range tests {
		got, ok := VideoID(tt.raw)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("VideoID(%q) = %q, %v; want %q, %v", tt.raw, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestPlaylistID(t *testing.T) {
	tests := []struct {
		raw    string
		want   string
		wantOK bool
	}{
		{"https://www.youtube.com/playlist?list=PL55713C70BA91BD6E", "PL55713C70BA91BD6E", true},
		{"https://www.youtube.com/watch?v=bKYwzLAVqhY&list=UULTZddgA_La9H4Ngg99t_QQ", "UULTZddgA_La9H4Ngg99t_QQ", true},
		{"https://youtu.be/bKYwzLAVqhY", "", false},
		{"https://google.com/?list=PL55713C70BA91BD6E", "", false},
	}
	for _, tt := range tests {
		got, ok := PlaylistID(tt.raw)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("PlaylistID(%q) = %q, %v; want %q, %v", tt.raw, got, ok, tt.want, tt.wantOK)
		}
	}
}

type fakeClient struct {
	videoCalls int
	videoErr   error
	playlist   *youtube.Playlist
}

func (f *fakeClient) GetVideoContext(_ context.Context, id string) (*youtube.Video, error) {
	f.videoCalls++
	if f.videoErr != nil {
		return nil, f.videoErr
	}
	return &youtube.Video{
		ID:       id,
		Title:    "Title " + id,
		Author:   "Author",
		Duration: 3 * time.Minute,
		Thumbnails: youtube.Thumbnails{
			{URL: "small", Width: 120},
			{URL: "large", Width: 480},
		},
	}, nil
}

func (f *fakeClient) GetPlaylistContext(context.Context, string) (*youtube.Playlist, error) {
	return f.playlist, nil
}

func mustURL(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatal(err)
	}
	return u
}

func TestResolveVideo(t *testing.T) {
	s := New(&fakeClient{}, nil)
	u := mustURL(t, "https://youtu.be/bKYwzLAVqhY")
	if !s.Match(u) {
		t.Fatal("youtu.be not matched")
	}
	tracks, err := s.Resolve(context.Background(), u)
	if err != nil {
		t.Fatal(err)
	}
	if len(tracks) != 1 {
		t.Fatalf("got %d tracks", len(tracks))
	}
	tr := tracks[0]
	if tr.SourceID != "bKYwzLAVqhY" || tr.Title != "Title bKYwzLAVqhY" || tr.Thumbnail != "large" {
		t.Errorf("track = %+v", tr)
	}
	if tr.URL != "https://www.youtube.com/watch?v=bKYwzLAVqhY" {
		t.Errorf("url = %s", tr.URL)
	}
}

func TestResolvePlaylistKeepsOrder(t *testing.T) {
	fc := &fakeClient{playlist: &youtube.Playlist{
		ID: "PL1",
		Videos: []*youtube.PlaylistEntry{
			{ID: "aaaaaaaaaaa", Title: "first"},
			{ID: "bbbbbbbbbbb", Title: "second"},
			{ID: "ccccccccccc", Title: "third"},
		},
	}}
	s := New(fc, nil)
	tracks, err := s.Resolve(context.Background(), mustURL(t, "https://www.youtube.com/playlist?list=PL1"))
	if err != nil {
		t.Fatal(err)
	}
	var titles []string
	for _, tr := range tracks {
		titles = append(titles, tr.Title)
	}
	if fmt.Sprint(titles) != "[first second third]" {
		t.Errorf("titles = %v", titles)
	}
}

func TestPrivateVideoNotRetried(t *testing.T) {
	fc := &fakeClient{videoErr: youtube.ErrVideoPrivate}
	s := New(fc, nil)
	_, err := s.Resolve(context.Background(), mustURL(t, "https://youtu.be/bKYwzLAVqhY"))
	if !errors.Is(err, youtube.ErrVideoPrivate) {
		t.Fatalf("err = %v", err)
	}
	if fc.videoCalls != 1 {
		t.Errorf("calls = %d, want 1", fc.videoCalls)
	}
}

func TestResolveWithoutID(t *testing.T) {
	s := New(&fakeClient{}, nil)
	_, err := s.Resolve(context.Background(), mustURL(t, "https://www.youtube.com/feed/trending"))
	if !errors.Is(err, ErrNoVideoID) {
		t.Errorf("err = %v, want ErrNoVideoID", err)
	}
}

func TestSearchFirstVideoURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("search_query") != "artist - song" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		fmt.Fprint(w, `junk "url":"/watch?v=bKYwzLAVqhY&pp=x" more "url":"/watch?v=zzzzzzzzzzz"`)
	}))
	defer srv.Close()

	s := &Searcher{BaseURL: srv.URL, Client: srv.Client()}
	got, err := s.SearchFirstVideoURL(context.Background(), "artist - song")
	if err != nil {
		t.Fatal(err)
	}
	if got != "https://www.youtube.com/watch?v=bKYwzLAVqhY" {
		t.Errorf("got %s", got)
	}
}
