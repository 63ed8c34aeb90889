package model

// FieldType identifies the kind of contact datum a candidate or entity
// carries.
type FieldType string

const (
	FieldEmail         FieldType = "EMAIL"
	FieldPhone         FieldType = "PHONE"
	FieldPerson        FieldType = "PERSON"
	FieldAddress       FieldType = "ADDRESS"
	FieldCompanyName   FieldType = "COMPANY_NAME"
	FieldTradeRegister FieldType = "TRADE_REGISTER"
	FieldVATID         FieldType = "VAT_ID"
)

// AllFieldTypes returns all defined field types.
func AllFieldTypes() []FieldType {
	return []FieldType{
		FieldEmail,
		FieldPhone,
		FieldPerson,
		FieldAddress,
		FieldCompanyName,
		FieldTradeRegister,
		FieldVATID,
	}
}

// ExtractionMethod records how a candidate was obtained. Methods carry an
// implicit trust ordering used by merging and scoring.
type ExtractionMethod string

const (
	MethodStructuredData ExtractionMethod = "structured_data"
	MethodDirectLink     ExtractionMethod = "direct_link"
	MethodLLM            ExtractionMethod = "llm"
	MethodRegex          ExtractionMethod = "regex"
	MethodDeobfuscation  ExtractionMethod = "deobfuscation"
	MethodJavascript     ExtractionMethod = "javascript_deobfuscation"
)

// EmailClassification buckets an email address by its local part and
// domain: personal mailbox, role mailbox (info@, kontakt@), or plain
// business address.
type EmailClassification string

const (
	EmailPersonal EmailClassification = "personal"
	EmailRole     EmailClassification = "role"
	EmailBusiness EmailClassification = "business"
)

// PhoneKind distinguishes the number types found on contact pages. Fax
// numbers are extracted so they can be excluded from the main phone slot.
type PhoneKind string

const (
	PhoneMain   PhoneKind = "main"
	PhoneMobile PhoneKind = "mobile"
	PhoneFax    PhoneKind = "fax"
)
