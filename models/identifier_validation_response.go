package models

// IdentifierValidationResponse never carries the full number back.
type IdentifierValidationResponse struct {
	IsValid       bool   `json:"is_valid"`
	AadhaarMasked string `json:"aadhaar_masked"`
	AadhaarLast4  string `json:"aadhaar_last4,omitempty"`
}
