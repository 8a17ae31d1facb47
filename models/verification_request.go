package models

import "go-aadhaar-verifier/document/aadhaar"

type DocumentVerificationRequest struct {
	FrontText string `json:"front_text,omitempty"`
	BackText  string `json:"back_text,omitempty"`
	QRPayload string `json:"qr_payload,omitempty"`
}

func (r DocumentVerificationRequest) Bundle() aadhaar.RawTextBundle {
	return aadhaar.RawTextBundle{
		FrontText: r.FrontText,
		BackText:  r.BackText,
		QRPayload: r.QRPayload,
	}
}

// FormVerificationRequest carries the details typed into the verification
// form next to the text read from the card.
type FormVerificationRequest struct {
	Name          string `json:"name"`
	DOB           string `json:"dob"`
	Gender        string `json:"gender"`
	AadhaarNumber string `json:"aadhaar_number"`
	DocumentVerificationRequest
}

func (r FormVerificationRequest) Claim() aadhaar.ClaimedIdentity {
	return aadhaar.ClaimedIdentity{
		Name:       r.Name,
		DOB:        r.DOB,
		Gender:     r.Gender,
		Identifier: r.AadhaarNumber,
	}
}

type IdentifierValidationRequest struct {
	AadhaarNumber string `json:"aadhaar_number"`
}
