package fetch

import (
	"net/url"
	"strings"

	"github.com/rotisserie/eris"
)

// Link is an anchor found in a page: its resolved same-host URL and the
// visible text, which discovery classifies by keyword.
type Link struct {
	URL  string
	Text string
}

var hrefAttr = `href="`

// ParseLinks extracts same-host links with their anchor text. Fragments
// are stripped; anchors, javascript:, mailto:, and tel: links are
// skipped.
func ParseLinks(html string, base *url.URL) []Link {
	var links []Link
	seen := make(map[string]bool)

	idx := 0
	for {
		pos := strings.Index(html[idx:], hrefAttr)
		if pos == -1 {
			break
		}
		idx += pos + len(hrefAttr)

		end := strings.Index(html[idx:], `"`)
		if end == -1 {
			break
		}
		href := html[idx : idx+end]
		idx += end + 1

		if href == "" || strings.HasPrefix(href, "#") ||
			strings.HasPrefix(href, "javascript:") ||
			strings.HasPrefix(href, "mailto:") ||
			strings.HasPrefix(href, "tel:") {
			continue
		}

		resolved, err := url.Parse(href)
		if err != nil {
			continue
		}
		absolute := base.ResolveReference(resolved)
		if !SameRegistrableHost(absolute.Host, base.Host) {
			continue
		}
		absolute.Fragment = ""
		normalized := absolute.String()
		if seen[normalized] {
			continue
		}
		seen[normalized] = true

		links = append(links, Link{URL: normalized, Text: anchorText(html, idx)})
	}

	return links
}

// anchorText grabs the visible text between the tag close and </a>,
// bounded so a malformed page cannot drag in kilobytes.
func anchorText(html string, afterHref int) string {
	tail := html[afterHref:]
	gt := strings.Index(tail, ">")
	if gt == -1 || gt > 300 {
		return ""
	}
	tail = tail[gt+1:]
	closing := strings.Index(tail, "</a>")
	if closing == -1 || closing > 300 {
		return ""
	}
	text := anyTagRe.ReplaceAllString(tail[:closing], " ")
	return strings.TrimSpace(spaceRe.ReplaceAllString(decodeEntities(text), " "))
}

// NormalizeURL ensures a scheme and a path on user-supplied URLs.
func NormalizeURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", eris.New("fetch: empty url")
	}
	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", eris.Wrap(err, "fetch: parse url")
	}
	if u.Host == "" {
		return "", eris.Errorf("fetch: no host in %q", raw)
	}
	if u.Path == "" {
		u.Path = "/"
	}
	return u.String(), nil
}

// Domain returns the registrable domain key for a URL, lowercased and
// www-stripped, so www.firma.de and firma.de cache and compare as one.
func Domain(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		host := strings.ToLower(strings.TrimSpace(rawURL))
		host = strings.TrimPrefix(host, "www.")
		if i := strings.IndexAny(host, "/:"); i >= 0 {
			host = host[:i]
		}
		return host
	}
	return strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
}

// SameRegistrableHost reports whether two hosts or URLs share a
// registrable domain, ignoring case, port, scheme, and a leading www.
func SameRegistrableHost(a, b string) bool {
	da := Domain(a)
	return da != "" && da == Domain(b)
}

// BaseURL returns scheme://host for a URL.
func BaseURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	return u.Scheme + "://" + u.Host
}
