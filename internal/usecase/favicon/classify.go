package favicon

import (
	"net/url"
	"path"
	"strings"
)

// imageExtensions is the exact extension set spec §4.J names; a candidate
// matching one of these is saved raw, anything else is treated as HTML and
// rescanned for <link rel="icon"> hrefs.
var imageExtensions = map[string]bool{
	".ico": true,
	".png": true,
	".gif": true,
	".jpg": true,
	".svg": true,
}

func isImageExtension(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return imageExtensions[strings.ToLower(path.Ext(u.Path))]
}
