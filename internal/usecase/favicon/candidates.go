package favicon

import (
	"net/url"
	"strings"
)

// MaxCandidates bounds the number of URLs tried per subscription (spec
// §4.J, taken from src/favicon.c).
const MaxCandidates = 10

// CandidateURLs builds the ordered, deduplicated probe list spec §4.J
// describes: the feed's explicit icon hint first, then the homepage page
// itself (a plausible <link rel="icon"> source), then the homepage's own
// directory-level favicon.ico, then the server-root favicon.ico of the feed
// URL and of the homepage URL.
func CandidateURLs(feedURL, homepageURL, iconHint string) []string {
	var candidates []string
	add := func(u string) {
		if u == "" {
			return
		}
		for _, existing := range candidates {
			if existing == u {
				return
			}
		}
		candidates = append(candidates, u)
	}

	add(iconHint)
	if homepageURL != "" {
		add(homepageURL)
		if base := baseDir(homepageURL); base != "" {
			add(base + "favicon.ico")
		}
	}
	if root := serverRoot(feedURL); root != "" {
		add(root + "/favicon.ico")
	}
	if root := serverRoot(homepageURL); root != "" {
		add(root + "/favicon.ico")
	}
	return candidates
}

// serverRoot returns "scheme://host" for rawURL, or "" if rawURL has no
// host (a command/file source, or unparsable string).
func serverRoot(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ""
	}
	return u.Scheme + "://" + u.Host
}

// baseDir returns the directory-level URL rawURL's path resolves to
// ("scheme://host/dir/"), used as the base for "<base>/favicon.ico".
func baseDir(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ""
	}
	idx := strings.LastIndex(u.Path, "/")
	if idx < 0 {
		u.Path = "/"
	} else {
		u.Path = u.Path[:idx+1]
	}
	return u.Scheme + "://" + u.Host + u.Path
}
