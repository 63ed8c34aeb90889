package textnorm

import (
	"strings"

	"github.com/rotisserie/eris"
)

// Country codes handled by NormalizePhone. Numbers with other prefixes
// pass through digit-cleaned but unprefixed.
var dachPrefixes = []string{"+49", "+43", "+41"}

const (
	minPhoneDigits = 8
	maxPhoneDigits = 15
)

// NormalizePhone canonicalizes a German, Austrian, or Swiss phone number
// into E.164-style "+CC..." form:
//
//	030 / 1234-56      -> +49 30 123456 (digits only after prefix)
//	0043 1 5877589     -> +4315877589
//	+49 (0) 89 123456  -> +4989123456
//
// The "(0)" trunk marker after a country code is dropped. Numbers with
// fewer than 8 or more than 15 digits are rejected. The function is
// idempotent over its own output.
func NormalizePhone(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", eris.New("textnorm: empty phone number")
	}

	// "(0)" between country code and subscriber number is decorative.
	s = strings.ReplaceAll(s, "(0)", "")

	var digits strings.Builder
	plus := false
	for i, r := range s {
		switch {
		case r >= '0' && r <= '9':
			digits.WriteRune(r)
		case r == '+' && i == 0:
			plus = true
		case r == '+' || r == '-' || r == '/' || r == '.' || r == ' ' || r == '(' || r == ')' || r == '\t':
			// separators and stray markup
		default:
			// letters mean this is not a phone number at all
			if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
				return "", eris.Errorf("textnorm: non-numeric phone %q", raw)
			}
		}
	}

	d := digits.String()

	var normalized string
	switch {
	case plus:
		normalized = "+" + d
	case strings.HasPrefix(d, "00"):
		normalized = "+" + d[2:]
	case strings.HasPrefix(d, "0") && len(d) >= 10:
		// National format; DACH sites overwhelmingly mean Germany when
		// the country is not spelled out.
		normalized = "+49" + d[1:]
	default:
		normalized = d
	}

	// A national zero surviving after the country code ("+49 030 ...")
	// is the same transcription artifact as "(0)".
	for _, p := range dachPrefixes {
		if strings.HasPrefix(normalized, p+"0") {
			normalized = p + normalized[len(p)+1:]
			break
		}
	}

	n := len(strings.TrimPrefix(normalized, "+"))
	if n < minPhoneDigits {
		return "", eris.Errorf("textnorm: phone too short (%d digits): %q", n, raw)
	}
	if n > maxPhoneDigits {
		return "", eris.Errorf("textnorm: phone too long (%d digits): %q", n, raw)
	}
	return normalized, nil
}

// IsDACH reports whether a normalized number belongs to Germany, Austria,
// or Switzerland.
func IsDACH(normalized string) bool {
	for _, p := range dachPrefixes {
		if strings.HasPrefix(normalized, p) {
			return true
		}
	}
	return false
}
