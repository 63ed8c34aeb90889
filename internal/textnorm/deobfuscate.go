// Package textnorm normalizes raw page text from German, Austrian, and
// Swiss websites before extraction: email deobfuscation, phone number
// canonicalization, and boilerplate cleanup.
package textnorm

import (
	"regexp"
	"strings"
)

// Obfuscation replacements applied case-insensitively. German operators
// write "ät", "punkt", and "klammeraffe" alongside the usual bracket
// forms.
var atPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\s*\(\s*at\s*\)\s*`),
	regexp.MustCompile(`(?i)\s*\[\s*at\s*\]\s*`),
	regexp.MustCompile(`(?i)\s*\{\s*at\s*\}\s*`),
	regexp.MustCompile(`(?i)\s*\(\s*ät\s*\)\s*`),
	regexp.MustCompile(`(?i)\s*\[\s*ät\s*\]\s*`),
	regexp.MustCompile(`(?i)\s*\(\s*klammeraffe\s*\)\s*`),
}

var dotPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\s*\(\s*dot\s*\)\s*`),
	regexp.MustCompile(`(?i)\s*\[\s*dot\s*\]\s*`),
	regexp.MustCompile(`(?i)\s*\{\s*dot\s*\}\s*`),
	regexp.MustCompile(`(?i)\s*\(\s*punkt\s*\)\s*`),
	regexp.MustCompile(`(?i)\s*\[\s*punkt\s*\]\s*`),
	regexp.MustCompile(`(?i)\s+dot\s+`),
	regexp.MustCompile(`(?i)\s+punkt\s+`),
}

var urlEncoded = strings.NewReplacer("%40", "@", "%20", " ")

// Spelled-out addresses like "kontakt at firma punkt de". The bare word
// "at" only counts as @ when a spelled-out dot follows, otherwise prose
// text would get mangled.
var spelledEmail = regexp.MustCompile(`(?i)\b([a-z0-9][a-z0-9._-]*)\s+(?:at|ät)\s+([a-z0-9-]+(?:\s+(?:dot|punkt)\s+[a-z0-9-]+)+)\b`)

var spelledDot = regexp.MustCompile(`(?i)\s+(?:dot|punkt)\s+`)

// DeobfuscateEmails rewrites obfuscated email spellings into plain
// addresses. The replacement loop runs until the text stops changing, so
// stacked obfuscations ("max (at) firma (punkt) de") unwind fully. The
// function is idempotent: already-clean text passes through unchanged.
func DeobfuscateEmails(text string) string {
	prev := ""
	out := urlEncoded.Replace(text)
	// Bounded in practice; each pass strictly shrinks obfuscation tokens.
	for out != prev {
		prev = out
		out = spelledEmail.ReplaceAllStringFunc(out, func(m string) string {
			sub := spelledEmail.FindStringSubmatch(m)
			return sub[1] + "@" + spelledDot.ReplaceAllString(sub[2], ".")
		})
		for _, re := range atPatterns {
			out = re.ReplaceAllString(out, "@")
		}
		for _, re := range dotPatterns {
			out = replaceDotNearAt(out, re)
		}
	}
	return out
}

// replaceDotNearAt applies a dot-obfuscation pattern only when the match
// sits in the vicinity of an @, so prose like "meet at noon" does not get
// mangled into punctuation.
func replaceDotNearAt(text string, re *regexp.Regexp) string {
	locs := re.FindAllStringIndex(text, -1)
	if locs == nil {
		return text
	}
	var b strings.Builder
	last := 0
	for _, loc := range locs {
		b.WriteString(text[last:loc[0]])
		if nearAt(text, loc[0], loc[1]) {
			b.WriteString(".")
		} else {
			b.WriteString(text[loc[0]:loc[1]])
		}
		last = loc[1]
	}
	b.WriteString(text[last:])
	return b.String()
}

func nearAt(text string, start, end int) bool {
	lo := start - 40
	if lo < 0 {
		lo = 0
	}
	hi := end + 40
	if hi > len(text) {
		hi = len(text)
	}
	return strings.Contains(text[lo:hi], "@")
}

var fromCharCode = regexp.MustCompile(`String\.fromCharCode\(([\d,\s]+)\)`)

// DecodeCharCodes resolves JavaScript String.fromCharCode(...) sequences
// embedded in markup into their literal text.
func DecodeCharCodes(html string) string {
	return fromCharCode.ReplaceAllStringFunc(html, func(m string) string {
		sub := fromCharCode.FindStringSubmatch(m)
		if len(sub) < 2 {
			return m
		}
		var b strings.Builder
		for _, part := range strings.Split(sub[1], ",") {
			part = strings.TrimSpace(part)
			n := 0
			for _, r := range part {
				if r < '0' || r > '9' {
					return m
				}
				n = n*10 + int(r-'0')
			}
			if n > 0 && n < 0x110000 {
				b.WriteRune(rune(n))
			}
		}
		return b.String()
	})
}
