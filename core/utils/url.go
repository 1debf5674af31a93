package utils

import (
	"net/url"
	"regexp"
	"strings"
)

var driveFilePattern = regexp.MustCompile(`^/file/d/([^/]+)`)

// NormalizeAudioURL rewrites known sharing-link formats into direct-fetch
// equivalents so an audio element can load them. Unknown or unparsable URLs
// pass through untouched.
func NormalizeAudioURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return raw
	}

	host := strings.ToLower(u.Host)
	switch {
	case host == "www.dropbox.com" || host == "dropbox.com":
		// Share links serve an HTML preview page unless dl=1.
		q := u.Query()
		q.Set("dl", "1")
		u.RawQuery = q.Encode()
		return u.String()

	case host == "drive.google.com":
		if m := driveFilePattern.FindStringSubmatch(u.Path); m != nil {
			return "https://drive.google.com/uc?export=download&id=" + m[1]
		}
		return raw

	default:
		return raw
	}
}
