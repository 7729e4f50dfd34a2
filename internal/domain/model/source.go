package model

import (
	"net/url"
	"strings"
)

// Source locates a roster: either a free-form data-source URL or a match id.
type Source struct {
	URL     string `json:"url,omitempty"`
	MatchID string `json:"match_id,omitempty"`
}

// Validate requires exactly one of URL and MatchID.
func (s Source) Validate() error {
	hasURL := strings.TrimSpace(s.URL) != ""
	hasMatch := strings.TrimSpace(s.MatchID) != ""
	switch {
	case hasURL && hasMatch:
		return ErrAmbiguousSource
	case !hasURL && !hasMatch:
		return ErrEmptySource
	}
	return nil
}

// Query encodes the source as backend query parameters.
func (s Source) Query() url.Values {
	q := url.Values{}
	if u := strings.TrimSpace(s.URL); u != "" {
		q.Set("url", u)
	}
	if m := strings.TrimSpace(s.MatchID); m != "" {
		q.Set("match_id", m)
	}
	return q
}

// String returns the locator for logs.
func (s Source) String() string {
	if s.MatchID != "" {
		return "match:" + s.MatchID
	}
	return s.URL
}
