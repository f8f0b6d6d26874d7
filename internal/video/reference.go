// Package video parses user input into a canonical video reference.
package video

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// ErrInvalidReference is returned when input cannot be resolved to a video id.
var ErrInvalidReference = errors.New("invalid video reference")

var (
	idPattern   = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)
	pathPattern = regexp.MustCompile(`^/(?:embed|shorts|live|v)/([A-Za-z0-9_-]{11})(?:[/?#]|$)`)
)

// Reference identifies one video by id and canonical watch URL.
type Reference struct {
	ID  string
	URL string
}

func (r Reference) String() string {
	return r.URL
}

// New builds the reference for a known 11-character id.
func New(id string) (Reference, error) {
	if !idPattern.MatchString(id) {
		return Reference{}, fmt.Errorf("%w: %q is not an 11-character id", ErrInvalidReference, id)
	}
	return Reference{ID: id, URL: "https://www.youtube.com/watch?v=" + id}, nil
}

// Parse resolves watch, short-link, embed, shorts and live URLs, or a bare id.
func Parse(input string) (Reference, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return Reference{}, fmt.Errorf("%w: empty input", ErrInvalidReference)
	}
	if idPattern.MatchString(input) {
		return New(input)
	}

	raw := input
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return Reference{}, fmt.Errorf("%w: %v", ErrInvalidReference, err)
	}

	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	switch host {
	case "youtu.be":
		id := strings.Trim(u.Path, "/")
		if idPattern.MatchString(id) {
			return New(id)
		}
	case "youtube.com", "m.youtube.com", "music.youtube.com", "youtube-nocookie.com":
		if u.Path == "/watch" {
			if id := u.Query().Get("v"); idPattern.MatchString(id) {
				return New(id)
			}
		}
		if m := pathPattern.FindStringSubmatch(u.Path); m != nil {
			return New(m[1])
		}
	}

	return Reference{}, fmt.Errorf("%w: could not extract video id from %q", ErrInvalidReference, input)
}
