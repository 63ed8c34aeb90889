package fetch

import (
	"regexp"
	"strings"

	"github.com/leadpilot/impressum-cli/internal/textnorm"
)

var titleRe = regexp.MustCompile(`(?is)<title[^>]*>(.*?)</title>`)

// ExtractTitle pulls the <title> from HTML.
func ExtractTitle(html string) string {
	m := titleRe.FindStringSubmatch(html)
	if len(m) > 1 {
		return strings.TrimSpace(decodeEntities(m[1]))
	}
	return ""
}

var (
	blockTagRe = map[string]*regexp.Regexp{
		"script": regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`),
		"style":  regexp.MustCompile(`(?is)<style[^>]*>.*?</style>`),
		"nav":    regexp.MustCompile(`(?is)<nav[^>]*>.*?</nav>`),
	}
	breakTagRe = regexp.MustCompile(`(?i)<(?:br\s*/?|/p|/div|/li|/tr|/h[1-6]|/td)>`)
	anyTagRe   = regexp.MustCompile(`<[^>]+>`)
	spaceRe    = regexp.MustCompile(`[ \t]+`)
	nlRe       = regexp.MustCompile(`\n{3,}`)
)

var entityReplacer = strings.NewReplacer(
	"&amp;", "&",
	"&lt;", "<",
	"&gt;", ">",
	"&quot;", `"`,
	"&#39;", "'",
	"&apos;", "'",
	"&nbsp;", " ",
	"&auml;", "ä",
	"&ouml;", "ö",
	"&uuml;", "ü",
	"&Auml;", "Ä",
	"&Ouml;", "Ö",
	"&Uuml;", "Ü",
	"&szlig;", "ß",
	"&#64;", "@",
	"&#46;", ".",
)

func decodeEntities(s string) string {
	return entityReplacer.Replace(s)
}

// StripHTML converts markup to plaintext for the extractors: script and
// style blocks removed, block-level tag ends become line breaks so that
// address lines keep their structure, entities decoded, German text
// normalized, whitespace collapsed.
//
// The footer is deliberately kept; Impressum data often lives there.
func StripHTML(html string) string {
	for _, re := range blockTagRe {
		html = re.ReplaceAllString(html, "")
	}

	html = breakTagRe.ReplaceAllString(html, "\n")
	html = anyTagRe.ReplaceAllString(html, " ")
	html = decodeEntities(html)
	html = textnorm.NormalizeGerman(html)

	// Tag removal leaves leading spaces on lines; trim them so the
	// line-oriented extractors see clean starts.
	lines := strings.Split(html, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(spaceRe.ReplaceAllString(line, " "))
	}
	html = strings.Join(lines, "\n")
	html = nlRe.ReplaceAllString(html, "\n\n")

	return strings.TrimSpace(html)
}
