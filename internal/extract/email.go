package extract

import (
	"strings"

	"github.com/leadpilot/impressum-cli/internal/model"
	"github.com/leadpilot/impressum-cli/internal/textnorm"
)

// EmailExtractor finds addresses via mailto links, plain text, spelled-out
// obfuscations, and JavaScript-encoded markup, in that trust order.
type EmailExtractor struct{}

func (e *EmailExtractor) Name() string { return "email" }

func (e *EmailExtractor) Extract(page *model.FetchedPage) ([]model.Candidate, error) {
	seen := map[string]bool{}
	var out []model.Candidate

	add := func(raw string, method model.ExtractionMethod, ctx string) {
		addr := strings.ToLower(strings.TrimSpace(raw))
		addr = strings.TrimSuffix(addr, ".")
		if !ValidEmail(addr) || seen[addr] {
			return
		}
		seen[addr] = true
		out = append(out, model.Candidate{
			Field:          model.FieldEmail,
			RawValue:       raw,
			Normalized:     addr,
			Method:         method,
			Source:         page.Type,
			SourceURL:      page.URL,
			Context:        ctx,
			Classification: ClassifyEmail(addr),
		})
	}

	// mailto links are author-intended contact addresses.
	for _, m := range mailtoPattern.FindAllStringSubmatch(page.HTML, -1) {
		addr := textnorm.DeobfuscateEmails(m[1])
		add(addr, model.MethodDirectLink, "mailto")
	}

	// Plain addresses in visible text.
	for _, loc := range emailPattern.FindAllStringIndex(page.Text, -1) {
		add(page.Text[loc[0]:loc[1]], model.MethodRegex,
			contextSnippet(page.Text, loc[0], loc[1], 60))
	}

	// Obfuscated spellings surface only after deobfuscation.
	deob := textnorm.DeobfuscateEmails(page.Text)
	if deob != page.Text {
		for _, loc := range emailPattern.FindAllStringIndex(deob, -1) {
			add(deob[loc[0]:loc[1]], model.MethodDeobfuscation,
				contextSnippet(deob, loc[0], loc[1], 60))
		}
	}

	// fromCharCode and split-string tricks in script blocks.
	if strings.Contains(page.HTML, "fromCharCode") {
		decoded := textnorm.DecodeCharCodes(page.HTML)
		for _, m := range emailPattern.FindAllString(decoded, -1) {
			add(m, model.MethodJavascript, "script")
		}
	}

	return out, nil
}

// ValidEmail applies the syntax pattern plus the domain denylist and
// asset-suffix filter.
func ValidEmail(addr string) bool {
	if !emailPattern.MatchString(addr) || strings.Count(addr, "@") != 1 {
		return false
	}
	domain := strings.ToLower(addr[strings.Index(addr, "@")+1:])
	if emailDomainDenylist[domain] {
		return false
	}
	// Subdomain of a denied host counts too (sentry subdomains etc).
	for denied := range emailDomainDenylist {
		if strings.HasSuffix(domain, "."+denied) {
			return false
		}
	}
	for _, suf := range emailAssetSuffixes {
		if strings.HasSuffix(domain, suf) {
			return false
		}
	}
	return true
}

// ClassifyEmail buckets an address: consumer provider domains are
// personal, known function local-parts are role, everything else is
// business.
func ClassifyEmail(addr string) model.EmailClassification {
	at := strings.Index(addr, "@")
	if at < 0 {
		return model.EmailBusiness
	}
	local := strings.ToLower(addr[:at])
	domain := strings.ToLower(addr[at+1:])
	if personalProviders[domain] {
		return model.EmailPersonal
	}
	if roleLocalParts[local] {
		return model.EmailRole
	}
	return model.EmailBusiness
}
