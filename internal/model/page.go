package model

// PageType classifies a page within a company website. The ordering in
// PagePriority reflects how likely each type is to carry legally mandated
// contact data on German-speaking sites.
type PageType string

const (
	PageImpressum PageType = "impressum"
	PageKontakt   PageType = "kontakt"
	PageTeam      PageType = "team"
	PageAbout     PageType = "about"
	PageHomepage  PageType = "homepage"
	PageFooter    PageType = "footer"
)

// PagePriority returns page types in descending extraction priority.
func PagePriority() []PageType {
	return []PageType{
		PageImpressum,
		PageKontakt,
		PageTeam,
		PageAbout,
		PageHomepage,
	}
}

// PageRank returns the priority index of a page type, 0 being highest.
// Unknown types rank last.
func PageRank(pt PageType) int {
	for i, p := range PagePriority() {
		if p == pt {
			return i
		}
	}
	return len(PagePriority())
}

// FetchedPage is a page retrieved during extraction.
type FetchedPage struct {
	URL        string   `json:"url"`
	FinalURL   string   `json:"final_url"`
	Type       PageType `json:"type"`
	Title      string   `json:"title"`
	HTML       string   `json:"html,omitempty"`
	Text       string   `json:"text"`
	StatusCode int      `json:"status_code"`
}
