package model

// ContactRecord is the merged per-domain output. Optional fields are
// pointers so that absence survives serialization as null; the pipeline
// never substitutes placeholder values for fields it could not extract.
type ContactRecord struct {
	URL          string `json:"url"`
	Domain       string `json:"domain"`
	ImpressumURL string `json:"impressum_url,omitempty"`

	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Position  *string `json:"position"`
	Email     *string `json:"email"`
	Phone     *string `json:"phone"`
	Company   *string `json:"company"`

	Street  *string `json:"street"`
	ZipCode *string `json:"zip_code"`
	City    *string `json:"city"`
	Country *string `json:"country"`

	TradeRegister *string `json:"trade_register"`
	VATID         *string `json:"vat_id"`

	SocialLinks map[string]string `json:"social_links,omitempty"`

	Entities   []Entity `json:"entities,omitempty"`
	Confidence float64  `json:"confidence"`
}

// Result is one row of batch output, flat for export.
type Result struct {
	URL          string  `json:"url"`
	Success      bool    `json:"success"`
	FirstName    string  `json:"first_name,omitempty"`
	LastName     string  `json:"last_name,omitempty"`
	Email        string  `json:"email,omitempty"`
	Phone        string  `json:"phone,omitempty"`
	Position     string  `json:"position,omitempty"`
	Company      string  `json:"company,omitempty"`
	Address      string  `json:"address,omitempty"`
	Confidence   float64 `json:"confidence"`
	ImpressumURL string  `json:"impressum_url,omitempty"`
	Error        string  `json:"error,omitempty"`
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

// ToResult flattens a record into an export row.
func (r *ContactRecord) ToResult() Result {
	addr := ""
	if r.Street != nil || r.ZipCode != nil || r.City != nil {
		addr = deref(r.Street)
		zc := deref(r.ZipCode)
		city := deref(r.City)
		if zc != "" || city != "" {
			if addr != "" {
				addr += ", "
			}
			if zc != "" && city != "" {
				addr += zc + " " + city
			} else {
				addr += zc + city
			}
		}
	}
	return Result{
		URL:          r.URL,
		Success:      true,
		FirstName:    deref(r.FirstName),
		LastName:     deref(r.LastName),
		Email:        deref(r.Email),
		Phone:        deref(r.Phone),
		Position:     deref(r.Position),
		Company:      deref(r.Company),
		Address:      addr,
		Confidence:   r.Confidence,
		ImpressumURL: r.ImpressumURL,
	}
}
