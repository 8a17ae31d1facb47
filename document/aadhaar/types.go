// Package aadhaar extracts identity fields from the text of an Aadhaar card
// (OCR output of the front and back side, or the decoded QR payload),
// validates them and compares them with what a citizen typed into a form.
//
// Everything in this package is a pure function of its string inputs: it
// performs no I/O and holds no state between calls, so it is safe for
// concurrent use. Identifiers only ever leave the package masked.
package aadhaar

// RawTextBundle is the text handed over by the OCR and QR decoding
// collaborators. An empty field means that side was not supplied.
type RawTextBundle struct {
	FrontText string `json:"front_text,omitempty"`
	BackText  string `json:"back_text,omitempty"`
	QRPayload string `json:"qr_payload,omitempty"`
}

func (b RawTextBundle) IsEmpty() bool {
	return b.FrontText == "" && b.BackText == "" && b.QRPayload == ""
}

// ExtractedIdentity holds the fields read from one or more sources. Every
// field is optional, an empty string means it was not found. The identifier
// fields are unmasked and therefore never serialized.
type ExtractedIdentity struct {
	Name              string
	DOB               string // ISO date, or the raw text if it did not parse
	YOB               string
	Gender            string
	Identifier        string `json:"-"`
	VirtualIdentifier string `json:"-"`
	Address           string
	PostalCode        string
}

// MaskedIdentity is the outward facing form of ExtractedIdentity.
type MaskedIdentity struct {
	Name              string `json:"name,omitempty"`
	DOB               string `json:"dob,omitempty"`
	YOB               string `json:"yob,omitempty"`
	Gender            string `json:"gender,omitempty"`
	Identifier        string `json:"aadhaar_number,omitempty"`
	VirtualIdentifier string `json:"vid,omitempty"`
	Address           string `json:"address,omitempty"`
	PostalCode        string `json:"pincode,omitempty"`
}

// ClaimedIdentity is what the user typed into the verification form.
type ClaimedIdentity struct {
	Name       string `json:"name"`
	DOB        string `json:"dob"`
	Gender     string `json:"gender"`
	Identifier string `json:"aadhaar_number"`
}

type FieldComparison struct {
	FieldName      string  `json:"field_name"`
	EnteredValue   string  `json:"entered_value"`
	ExtractedValue string  `json:"extracted_value"`
	Matches        bool    `json:"matches"`
	Confidence     float64 `json:"confidence"`
}

type VerificationResult struct {
	IsValid                 bool              `json:"is_valid"`
	IsVerified              bool              `json:"is_verified"`
	Message                 string            `json:"message"`
	Confidence              float64           `json:"confidence"`
	ValidationErrors        []string          `json:"validation_errors"`
	ExtractedData           MaskedIdentity    `json:"extracted_data"`
	IdentifierLast4         string            `json:"aadhaar_last4,omitempty"`
	IdentifierMasked        string            `json:"aadhaar_masked,omitempty"`
	VirtualIdentifierLast4  string            `json:"vid_last4,omitempty"`
	VirtualIdentifierMasked string            `json:"vid_masked,omitempty"`
	FieldComparisons        []FieldComparison `json:"field_comparisons,omitempty"`
}
