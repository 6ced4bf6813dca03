package extract

import (
	"errors"
	"regexp"
	"strings"
)

// ErrNoFileID indicates the link matched none of the known Drive URL shapes.
var ErrNoFileID = errors.New("no file ID found in link")

// Ordered most-specific first so file-view and editor paths win over the
// generic id= query parameter.
var patterns = []*regexp.Regexp{
	regexp.MustCompile(`/file/d/([a-zA-Z0-9_-]+)`),
	regexp.MustCompile(`/open\?id=([a-zA-Z0-9_-]+)`),
	regexp.MustCompile(`/(?:document|spreadsheets|presentation)/d/([a-zA-Z0-9_-]+)`),
	regexp.MustCompile(`/uc\?(?:[^#]*&)?id=([a-zA-Z0-9_-]+)`),
	regexp.MustCompile(`[?&]id=([a-zA-Z0-9_-]+)`),
}

var bareID = regexp.MustCompile(`^[a-zA-Z0-9_-]{10,}$`)

// FileID extracts the Drive file identifier from a link string. Strings that
// already look like a bare identifier pass through unchanged. A miss is a
// terminal input error; there is nothing to retry.
func FileID(link string) (string, error) {
	link = strings.TrimSpace(link)
	if link == "" {
		return "", ErrNoFileID
	}

	for _, re := range patterns {
		if matches := re.FindStringSubmatch(link); len(matches) > 1 {
			return matches[1], nil
		}
	}

	if bareID.MatchString(link) {
		return link, nil
	}

	return "", ErrNoFileID
}
