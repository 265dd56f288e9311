package youtube

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"time"
)

var (
	searchResultPattern = regexp.MustCompile(`"url":"/watch\?v=([a-zA-Z0-9_-]{11})`)
	ErrNoVideoMatch     = errors.New("no video found for the given query")
)

// Searcher finds videos by scraping the YouTube results page.
type Searcher struct {
	BaseURL string
	Client  *http.Client
}

func NewSearcher() *Searcher {
	return &Searcher{
		BaseURL: "https://www.youtube.com",
		Client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// SearchFirstVideoURL returns the watch URL of the first result for query.
func (s *Searcher) SearchFirstVideoURL(ctx context.Context, query string) (string, error) {
	searchURL := fmt.Sprintf("%s/results?search_query=%s", s.BaseURL, url.QueryEscape(query))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return "", err
	}
	resp, err := s.Client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", statusError(resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return "", err
	}

	m := searchResultPattern.FindSubmatch(body)
	if m == nil {
		return "", ErrNoVideoMatch
	}
	return WatchURL(string(m[1])), nil
}

type statusError int

func (e statusError) Error() string {
	return fmt.Sprintf("youtube search failed with status %d", int(e))
}
func (e statusError) StatusCode() int { return int(e) }
