package extract

import "regexp"

// Pattern tables are package data rather than scattered literals so they
// can be reviewed and unit-tested as a unit. German, Austrian, and Swiss
// conventions are covered throughout.

var emailPattern = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)

var mailtoPattern = regexp.MustCompile(`(?i)href=["']mailto:([^"'?]+)`)

var telPattern = regexp.MustCompile(`(?i)href=["']tel:([^"']+)["']`)

// Domains that show up in markup but are never the site's contact
// address: placeholders, error trackers, CMS vendors, social networks.
var emailDomainDenylist = map[string]bool{
	"example.com":         true,
	"example.de":          true,
	"example.org":         true,
	"test.com":            true,
	"test.de":             true,
	"domain.com":          true,
	"domain.de":           true,
	"email.com":           true,
	"sentry.io":           true,
	"wixpress.com":        true,
	"sentry.wixpress.com": true,
	"mysite.com":          true,
	"facebook.com":        true,
	"twitter.com":         true,
	"instagram.com":       true,
	"linkedin.com":        true,
	"xing.com":            true,
	"youtube.com":         true,
	"schema.org":          true,
}

// File extensions that the email regex sometimes captures out of asset
// paths ("icon@2x.png").
var emailAssetSuffixes = []string{".png", ".jpg", ".jpeg", ".gif", ".svg", ".webp", ".css", ".js", ".woff", ".woff2"}

// Local parts that denote a function rather than a person.
var roleLocalParts = map[string]bool{
	"info": true, "kontakt": true, "contact": true, "office": true,
	"mail": true, "post": true, "email": true, "hello": true, "hallo": true,
	"service": true, "support": true, "anfrage": true, "anfragen": true,
	"bewerbung": true, "jobs": true, "karriere": true, "presse": true,
	"press": true, "marketing": true, "vertrieb": true, "sales": true,
	"buchhaltung": true, "rechnung": true, "billing": true, "invoice": true,
	"datenschutz": true, "privacy": true, "webmaster": true, "admin": true,
	"hostmaster": true, "noreply": true, "no-reply": true, "newsletter": true,
	"shop": true, "bestellung": true, "zentrale": true, "sekretariat": true,
	"verwaltung": true, "redaktion": true, "team": true, "impressum": true,
	"recht": true, "legal": true, "kanzlei": true, "praxis": true,
}

// Consumer mail providers; an address here belongs to an individual, not
// the company domain.
var personalProviders = map[string]bool{
	"gmail.com": true, "googlemail.com": true, "web.de": true,
	"gmx.de": true, "gmx.net": true, "gmx.at": true, "gmx.ch": true,
	"t-online.de": true, "freenet.de": true, "yahoo.com": true,
	"yahoo.de": true, "hotmail.com": true, "hotmail.de": true,
	"outlook.com": true, "outlook.de": true, "icloud.com": true,
	"aol.com": true, "posteo.de": true, "mailbox.org": true,
	"bluewin.ch": true,
}

// Phone label prefixes. Fax lines are captured with their own kind so the
// merger never promotes them into the main phone slot.
var (
	phoneLineLabel = regexp.MustCompile(`(?i)\b(telefax|tel\.?efon|tel\.?|fon|phone|fax|mobil(?:e)?|handy|[tfm])\s*[.:]\s*`)
	phoneNumber    = regexp.MustCompile(`(?:\+\d{1,3}|00\d{1,3}|0)[\d\s\-/().]{6,24}\d`)
)

var faxLabels = map[string]bool{"fax": true, "telefax": true, "f": true}
var mobileLabels = map[string]bool{"mobil": true, "mobile": true, "handy": true, "m": true}

// Role keywords that precede or follow a responsible person's name in an
// Impressum. Feminine and suffixed forms included.
var rolePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(geschäftsführer(?:in)?|geschäftsführung)\s*:?\s*\n?\s*([A-ZÄÖÜ][^\n:;,]{2,60})`),
	regexp.MustCompile(`(?i)(inhaber(?:in)?)\s*:?\s*\n?\s*([A-ZÄÖÜ][^\n:;,]{2,60})`),
	regexp.MustCompile(`(?i)(vorstand(?:svorsitzende[r]?)?)\s*:?\s*\n?\s*([A-ZÄÖÜ][^\n:;,]{2,60})`),
	regexp.MustCompile(`(?i)(gründer(?:in)?)\s*:?\s*\n?\s*([A-ZÄÖÜ][^\n:;,]{2,60})`),
	regexp.MustCompile(`(?i)(ansprechpartner(?:in)?)\s*:?\s*\n?\s*([A-ZÄÖÜ][^\n:;,]{2,60})`),
	regexp.MustCompile(`(?i)(?:inhaltlich\s+)?(verantwortlich(?:er)?(?:\s+(?:gemäß|gem\.|i\.?s\.?d\.?)\s*§?\s*\d*\s*\w*)?)\s*:?\s*\n?\s*([A-ZÄÖÜ][^\n:;,]{2,60})`),
	regexp.MustCompile(`(?i)(vertreten durch|vertretungsberechtigt)\s*:?\s*\n?\s*([A-ZÄÖÜ][^\n:;,]{2,60})`),
	regexp.MustCompile(`(?i)(kontaktperson|leitung|direktor(?:in)?|eigentümer(?:in)?)\s*:?\s*\n?\s*([A-ZÄÖÜ][^\n:;,]{2,60})`),
}

// Roles that must never be emitted as the contact person. The privacy
// officer and the agency that built the site are named in most Impressums
// but are not who the record is about.
var excludedRolePattern = regexp.MustCompile(`(?i)datenschutzbeauftragte|webdesign|webmaster|hosting|umsetzung|realisierung|konzeption|programmierung|agentur`)

// Academic and courtesy titles stripped from names before splitting.
var nameTitlePattern = regexp.MustCompile(`(?i)\b(dr\.\s*med\.|dr\.\s*jur\.|dr\.|prof\.|dipl\.[-\s]?ing\.|dipl\.[-\s]?kfm\.|mag\.|ing\.|herrn?|frau|b\.\s?sc\.|m\.\s?sc\.|mba|ll\.\s?m\.)\s*`)

// Name particles that attach to the surname.
var nameParticles = map[string]bool{
	"von": true, "van": true, "de": true, "zu": true, "zur": true,
	"vom": true, "der": true, "den": true, "ter": true, "da": true,
}

// Capitalized word pairs that look like names but are not. Page chrome,
// legal terms, professions, weekdays, cities with two-word spellings.
var nameTokenDenylist = map[string]bool{
	"impressum": true, "kontakt": true, "datenschutz": true,
	"datenschutzerklärung": true, "agb": true, "startseite": true,
	"home": true, "team": true, "unser": true, "unsere": true,
	"über": true, "uns": true, "willkommen": true, "herzlich": true,
	"öffnungszeiten": true, "telefon": true, "telefax": true, "fax": true,
	"mobil": true, "adresse": true, "anschrift": true, "standort": true,
	"montag": true, "dienstag": true, "mittwoch": true, "donnerstag": true,
	"freitag": true, "samstag": true, "sonntag": true,
	"gmbh": true, "ag": true, "kg": true, "ohg": true, "gbr": true,
	"ug": true, "mbh": true, "co": true, "inc": true, "ltd": true,
	"straße": true, "strasse": true, "platz": true, "weg": true,
	"deutschland": true, "österreich": true, "schweiz": true,
	"germany": true, "austria": true, "switzerland": true,
	"jetzt": true, "mehr": true, "hier": true, "weiter": true, "zum": true,
	"alle": true, "rechte": true, "vorbehalten": true, "copyright": true,
	"amtsgericht": true, "handelsregister": true, "umsatzsteuer": true,
	"steuernummer": true, "rechtsanwalt": true, "rechtsanwälte": true,
	"steuerberater": true, "notar": true, "zahnarzt": true,
	"inhaber": true, "inhaberin": true, "geschäftsführer": true,
	"geschäftsführerin": true, "ansprechpartner": true, "vorstand": true,
	"kanzlei": true, "praxis": true, "schwerpunkte": true,
	"rechtsgebiete": true, "fachanwalt": true, "fachanwältin": true,
	"medizinrecht": true, "arbeitsrecht": true, "familienrecht": true,
	"strafrecht": true, "mietrecht": true, "erbrecht": true,
	"der": true, "die": true, "das": true, "und": true, "für": true,
	"mit": true, "bei": true, "auf": true, "sie": true, "wir": true,
	"ihr": true, "ihre": true, "haftungsausschluss": true,
	"verantwortlich": true, "inhaltlich": true, "vertreten": true,
	"seite": true, "website": true, "webseite": true, "email": true,
}

// Surnames that end in -recht and must survive the legal-practice-area
// suffix check.
var rechtSurnames = map[string]bool{
	"albrecht": true, "ruprecht": true, "lambrecht": true,
	"engelbrecht": true, "obrecht": true, "giselbrecht": true,
}

// Address patterns: German five-digit and Austrian/Swiss four-digit
// postal codes, optional country prefix.
var (
	zipCityPattern = regexp.MustCompile(`(?:\b(?:D|DE|A|AT|CH)[-\s])?\b(\d{4,5})\s+([A-ZÄÖÜ][a-zäöüß]+(?:[-\s](?:am|an|im|bei|[A-ZÄÖÜ][a-zäöüß]+))*)`)
	streetPattern  = regexp.MustCompile(`([A-ZÄÖÜ][a-zäöüß.\-]+(?:[\s\-][A-ZÄÖÜa-zäöüß.\-]+)*?(?:straße|strasse|str\.|weg|platz|allee|gasse|ring|damm|ufer|markt|chaussee)?)\s+(\d+\s?[a-z]?(?:\s*[-/]\s*\d+\s?[a-z]?)?)\s*$`)
	streetKeyword  = regexp.MustCompile(`(?i)(straße|strasse|str\.|weg|platz|allee|gasse|ring|damm|ufer|markt|chaussee|postfach)`)
)

// Company and registry patterns.
var (
	legalEntityPattern   = regexp.MustCompile(`\b([A-ZÄÖÜ][A-Za-zÄÖÜäöüß0-9&+.,\-\s]{1,60}?\s(?:GmbH\s*&\s*Co\.\s*KG|GmbH|gGmbH|AG|UG\s*\(haftungsbeschränkt\)|UG|e\.\s?K\.|e\.\s?V\.|KG|OHG|GbR|mbH|SE|Ges\.m\.b\.H\.))(?:\s|$|[,.;])`)
	tradeRegisterPattern = regexp.MustCompile(`\b(HR\s?[AB]\s?\d{1,6}(?:\s?B)?)\b`)
	registerCourtPattern = regexp.MustCompile(`(?:Amtsgericht|Registergericht|Handelsregister(?:\s+des\s+Amtsgerichts)?)\s+([A-ZÄÖÜ][a-zäöüß]+(?:\s+[A-ZÄÖÜ][a-zäöüß]+)?)`)
	vatIDPattern         = regexp.MustCompile(`\b(DE\s?\d{9}|ATU\s?\d{8}|CHE[-\s]?\d{3}\.?\d{3}\.?\d{3})\b`)
)

// Social profile links extracted as supplementary record data.
var socialHostPatterns = map[string]*regexp.Regexp{
	"linkedin":  regexp.MustCompile(`(?i)href=["'](https?://(?:[a-z]+\.)?linkedin\.com/(?:company|in)/[^"'?#]+)`),
	"xing":      regexp.MustCompile(`(?i)href=["'](https?://(?:www\.)?xing\.com/(?:pages|profile)/[^"'?#]+)`),
	"facebook":  regexp.MustCompile(`(?i)href=["'](https?://(?:www\.)?facebook\.com/[^"'?#]+)`),
	"instagram": regexp.MustCompile(`(?i)href=["'](https?://(?:www\.)?instagram\.com/[^"'?#]+)`),
}
