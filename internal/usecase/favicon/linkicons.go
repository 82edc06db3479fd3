package favicon

import (
	"net/url"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/net/html"
)

type linkIcon struct {
	href string
	area int
}

// ParseLinkIcons scans an HTML document for <link rel="icon"> (and the
// legacy "shortcut icon") hrefs, resolves them against baseURL, and returns
// them deduplicated and sorted by declared size descending, so a candidate
// declaring a larger icon is tried first (spec §4.J: "discovered set wins
// ... and is sorted by declared size"). Grounded on html.c's
// html_discover_favicon / checkLinkRef href+rel matching.
func ParseLinkIcons(body []byte, baseURL string) []string {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil
	}

	var icons []linkIcon
	tokenizer := html.NewTokenizer(strings.NewReader(string(body)))
	for {
		tt := tokenizer.Next()
		if tt == html.ErrorToken {
			break
		}
		if tt != html.StartTagToken && tt != html.SelfClosingTagToken {
			continue
		}
		token := tokenizer.Token()
		if token.Data != "link" {
			continue
		}

		var rel, href, sizes string
		for _, attr := range token.Attr {
			switch strings.ToLower(attr.Key) {
			case "rel":
				rel = strings.ToLower(attr.Val)
			case "href":
				href = attr.Val
			case "sizes":
				sizes = attr.Val
			}
		}
		if href == "" || !strings.Contains(rel, "icon") {
			continue
		}
		ref, err := url.Parse(href)
		if err != nil {
			continue
		}
		icons = append(icons, linkIcon{href: base.ResolveReference(ref).String(), area: declaredArea(sizes)})
	}

	sort.SliceStable(icons, func(i, j int) bool { return icons[i].area > icons[j].area })

	urls := make([]string, 0, len(icons))
	seen := make(map[string]bool, len(icons))
	for _, ic := range icons {
		if seen[ic.href] {
			continue
		}
		seen[ic.href] = true
		urls = append(urls, ic.href)
	}
	return urls
}

// declaredArea parses a sizes="WxH" attribute into its pixel area, or 0 if
// absent/unparsable (e.g. sizes="any").
func declaredArea(sizes string) int {
	parts := strings.SplitN(strings.ToLower(sizes), "x", 2)
	if len(parts) != 2 {
		return 0
	}
	w, errW := strconv.Atoi(strings.TrimSpace(parts[0]))
	h, errH := strconv.Atoi(strings.TrimSpace(parts[1]))
	if errW != nil || errH != nil {
		return 0
	}
	return w * h
}
