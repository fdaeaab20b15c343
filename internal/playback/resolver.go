package playback

import (
	"errors"
	"net/url"
	"strings"
)

var ErrNoStreamURL = errors.New("no stream url configured")

// StreamResolver maps a content id to a playable URL.
type StreamResolver interface {
	StreamURL(contentID string) (string, error)
}

// BaseURLResolver serves content from <BaseURL>/<contentID>.
type BaseURLResolver struct {
	BaseURL string
}

// StreamURL joins the base URL and the escaped content id.
func (r BaseURLResolver) StreamURL(contentID string) (string, error) {
	if r.BaseURL == "" {
		return "", ErrNoStreamURL
	}
	if contentID == "" {
		return "", errors.New("empty content id")
	}
	return strings.TrimRight(r.BaseURL, "/") + "/" + url.PathEscape(contentID), nil
}
