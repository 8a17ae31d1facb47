package aadhaar

import "go-aadhaar-verifier/document"

const (
	identifierMaskPrefix = "XXXX XXXX "
	vidMaskPrefix        = "XXXX XXXX XXXX "
)

// MaskIdentifier redacts all but the last four digits of an Aadhaar number:
// "XXXX XXXX 1234", or "XXXX XXXX XXXX" when fewer than four digits exist.
func MaskIdentifier(identifier string) string {
	last4 := Last4(identifier)
	if last4 == "" {
		return identifierMaskPrefix + "XXXX"
	}
	return identifierMaskPrefix + last4
}

// MaskVirtualIdentifier redacts a VID to "XXXX XXXX XXXX 1234".
func MaskVirtualIdentifier(vid string) string {
	last4 := Last4(vid)
	if last4 == "" {
		return vidMaskPrefix + "XXXX"
	}
	return vidMaskPrefix + last4
}

// Last4 returns the last four digits of value, or "" when it holds fewer.
func Last4(value string) string {
	digits := document.DigitsOnly(value)
	if len(digits) < 4 {
		return ""
	}
	return digits[len(digits)-4:]
}

func maskIdentity(identity ExtractedIdentity) MaskedIdentity {
	masked := MaskedIdentity{
		Name:       identity.Name,
		DOB:        identity.DOB,
		YOB:        identity.YOB,
		Gender:     identity.Gender,
		Address:    identity.Address,
		PostalCode: identity.PostalCode,
	}
	if identity.Identifier != "" {
		masked.Identifier = MaskIdentifier(identity.Identifier)
	}
	if identity.VirtualIdentifier != "" {
		masked.VirtualIdentifier = MaskVirtualIdentifier(identity.VirtualIdentifier)
	}
	return masked
}
