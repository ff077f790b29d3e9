package htmlutil

import (
	"net/url"
	"strings"
)

// redirectParams are query parameters search engines use to carry the real
// destination of a result link.
var redirectParams = map[string]string{
	"/l/":  "uddg", // DuckDuckGo HTML
	"/url": "q",    // Google
}

// UnwrapRedirect returns the destination of a search engine redirect link.
// Protocol-relative links get an https scheme. Anything else is returned as is.
func UnwrapRedirect(href string) string {
	href = strings.TrimSpace(href)
	if strings.HasPrefix(href, "//") {
		href = "https:" + href
	}

	u, err := url.Parse(href)
	if err != nil {
		return href
	}

	for prefix, param := range redirectParams {
		if !strings.HasPrefix(u.Path, prefix) {
			continue
		}
		target := u.Query().Get(param)
		if strings.HasPrefix(target, "http://") || strings.HasPrefix(target, "https://") {
			return target
		}
	}
	return href
}
