package scraper

import (
	"net/url"
	"regexp"
	"strings"
)

var postPattern = regexp.MustCompile(`/(?:reel|reels|p)/([A-Za-z0-9_-]+)`)

// NormalizeURL strips the query string and fragment, lowercases the host and
// ends the path with a single slash. The result is the cache key for a reel.
func NormalizeURL(raw string) string {
	s := strings.TrimSpace(raw)
	if i := strings.IndexAny(s, "?#"); i >= 0 {
		s = s[:i]
	}

	u, err := url.Parse(s)
	if err != nil || u.Host == "" {
		return s
	}
	u.Host = strings.ToLower(u.Host)
	u.Path = strings.TrimRight(u.Path, "/") + "/"
	return u.String()
}

// ValidateURL accepts instagram.com reel and post links.
func ValidateURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	if u.Scheme != "https" && u.Scheme != "http" {
		return false
	}
	host := strings.ToLower(u.Hostname())
	if host != "instagram.com" && host != "www.instagram.com" {
		return false
	}
	return postPattern.MatchString(u.Path)
}

// ExtractReelID returns the shortcode following /reel/, /reels/ or /p/.
func ExtractReelID(raw string) (string, bool) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", false
	}
	match := postPattern.FindStringSubmatch(u.Path)
	if match == nil {
		return "", false
	}
	return match[1], true
}

func fallbackThumbnail(id string) string {
	return "https://www.instagram.com/p/" + id + "/media/?size=l"
}
