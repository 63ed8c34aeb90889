package textnorm

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Lines matching these are navigation chrome and consent boilerplate, not
// contact data.
var boilerplateLine = regexp.MustCompile(`(?i)^\s*(cookie|cookies|datenschutzeinstellungen|alle akzeptieren|nur notwendige|einstellungen speichern|zustimmen|ablehnen|navigation|menü|menu|zum inhalt springen|skip to content|newsletter abonnieren|folgen sie uns|diese website verwendet cookies.*)\s*$`)

var multiSpace = regexp.MustCompile(`[ \t]{2,}`)
var multiNewline = regexp.MustCompile(`\n{3,}`)

// Mojibake repair for UTF-8 bytes decoded as Latin-1, the classic failure
// mode of German umlauts in scraped pages.
var mojibake = strings.NewReplacer(
	"Ã¤", "ä",
	"Ã¶", "ö",
	"Ã¼", "ü",
	"Ã„", "Ä",
	"Ã–", "Ö",
	"Ãœ", "Ü",
	"ÃŸ", "ß",
	"Ã©", "é",
	"Ã¨", "è",
	"Ã¡", "á",
	"Ã ", "à",
	"â‚¬", "€",
	"â€“", "–",
	"â€ž", "„",
	"â€œ", "“",
)

// NormalizeGerman repairs mojibake and applies Unicode NFC so that
// composed and decomposed umlaut spellings compare equal downstream.
func NormalizeGerman(text string) string {
	return norm.NFC.String(mojibake.Replace(text))
}

// CleanText prepares extracted page text for the extractors: mojibake and
// NFC normalization, boilerplate line removal, and whitespace collapse.
// Cleaning is idempotent.
func CleanText(text string) string {
	text = NormalizeGerman(text)

	lines := strings.Split(text, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if boilerplateLine.MatchString(line) {
			continue
		}
		kept = append(kept, strings.TrimRight(line, " \t"))
	}
	text = strings.Join(kept, "\n")

	text = multiSpace.ReplaceAllString(text, " ")
	text = multiNewline.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

// TruncateForLLM caps text at maxChars, cutting at a paragraph boundary
// when one exists in the tail quarter so the model does not receive a
// mid-sentence fragment.
func TruncateForLLM(text string, maxChars int) string {
	if maxChars <= 0 || len(text) <= maxChars {
		return text
	}
	cut := text[:maxChars]
	if idx := strings.LastIndex(cut, "\n\n"); idx > maxChars*3/4 {
		return cut[:idx]
	}
	if idx := strings.LastIndexAny(cut, ".\n"); idx > maxChars*3/4 {
		return cut[:idx+1]
	}
	return cut
}
