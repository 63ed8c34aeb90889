package extract

import "strings"

// SocialLinks collects the first profile link per network from page
// markup. These supplement the contact record; they never influence
// scoring.
func SocialLinks(html string) map[string]string {
	links := map[string]string{}
	for network, re := range socialHostPatterns {
		m := re.FindStringSubmatch(html)
		if m == nil {
			continue
		}
		link := strings.TrimRight(m[1], "/")
		// Share widgets point at sharer endpoints, not profiles.
		if strings.Contains(link, "/sharer") || strings.Contains(link, "/share") {
			continue
		}
		links[network] = link
	}
	if len(links) == 0 {
		return nil
	}
	return links
}
