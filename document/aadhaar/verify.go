package aadhaar

import (
	"log/slog"
	"regexp"

	"go-aadhaar-verifier/document"
	"go-aadhaar-verifier/document/verhoeff"
)

// Validation messages, reported in this order.
const (
	MsgIdentifierMissing         = "Aadhaar number not found in document"
	MsgIdentifierLength          = "Aadhaar number must be exactly 12 digits"
	MsgIdentifierChecksum        = "Aadhaar number failed checksum validation"
	MsgVirtualIdentifierLength   = "VID must be exactly 16 digits"
	MsgNameMissing               = "Name not found in document"
	MsgBirthDateMissing          = "Date of birth or year of birth not found in document"
	MsgGenderMissing             = "Gender not found in document"
	MsgAddressMissing            = "Address not found on back side"
	MsgPostalCodeMissing         = "PIN code not found on back side"
	MsgEnteredIdentifierLength   = "Entered Aadhaar number must be exactly 12 digits"
	MsgEnteredIdentifierChecksum = "Entered Aadhaar number failed checksum validation"
)

const (
	messageDocumentValid   = "Aadhaar document is valid"
	messageDocumentInvalid = "Aadhaar document validation failed"
	messageClaimVerified   = "Aadhaar details verified successfully"
	messageClaimMismatch   = "Entered details do not match the Aadhaar document"
)

// Field names used in FieldComparison.
const (
	FieldNameName       = "Name"
	FieldNameDOB        = "Date of Birth"
	FieldNameGender     = "Gender"
	FieldNameIdentifier = "Aadhaar Number"
)

const notFound = "not found"

var (
	twelveDigits  = regexp.MustCompile(`^\d{12}$`)
	sixteenDigits = regexp.MustCompile(`^\d{16}$`)
)

// VerifyFromText validates a document on its own.
func VerifyFromText(bundle RawTextBundle) VerificationResult {
	identity := extractIdentity(bundle)
	errs := Validate(identity, hasText(bundle.BackText))

	result := newResult(identity, errs)
	result.Confidence = documentConfidence(identity)
	if result.IsValid {
		result.Message = messageDocumentValid
	} else {
		result.Message = messageDocumentInvalid
	}
	return result
}

// VerifyAgainstClaim validates a document and compares it with the values
// the user typed. The result is verified only when the document is valid
// and every compared field matches.
func VerifyAgainstClaim(claim ClaimedIdentity, bundle RawTextBundle) VerificationResult {
	identity := extractIdentity(bundle)
	errs := Validate(identity, hasText(bundle.BackText))
	errs = append(errs, identifierErrors(
		document.StripWhitespace(claim.Identifier),
		MsgEnteredIdentifierLength,
		MsgEnteredIdentifierChecksum,
	)...)

	comparisons := compareClaim(claim, identity)

	result := newResult(identity, errs)
	result.FieldComparisons = comparisons
	result.Confidence = claimConfidence(comparisons)

	allMatch := true
	for _, c := range comparisons {
		allMatch = allMatch && c.Matches
	}

	switch {
	case len(errs) > 0:
		result.Message = messageDocumentInvalid
	case !allMatch:
		result.Message = messageClaimMismatch
	default:
		result.Message = messageClaimVerified
	}
	result.IsValid = len(errs) == 0 && allMatch
	result.IsVerified = result.IsValid
	return result
}

// ValidateIdentifier reports whether number, spaces ignored, is a 12 digit
// Aadhaar number with a valid check digit.
func ValidateIdentifier(number string) bool {
	id := document.StripWhitespace(number)
	return twelveDigits.MatchString(id) && verhoeff.Validate(id)
}

// Validate lists every problem with an extracted identity. Address and PIN
// code are only required when the back side was supplied.
func Validate(identity ExtractedIdentity, backSupplied bool) []string {
	errs := []string{}

	if identity.Identifier == "" {
		errs = append(errs, MsgIdentifierMissing)
	} else {
		errs = append(errs, identifierErrors(identity.Identifier, MsgIdentifierLength, MsgIdentifierChecksum)...)
	}

	if identity.VirtualIdentifier != "" && !sixteenDigits.MatchString(identity.VirtualIdentifier) {
		errs = append(errs, MsgVirtualIdentifierLength)
	}
	if identity.Name == "" {
		errs = append(errs, MsgNameMissing)
	}
	if identity.DOB == "" && identity.YOB == "" {
		errs = append(errs, MsgBirthDateMissing)
	}
	if identity.Gender == "" {
		errs = append(errs, MsgGenderMissing)
	}
	if backSupplied {
		if identity.Address == "" {
			errs = append(errs, MsgAddressMissing)
		}
		if identity.PostalCode == "" {
			errs = append(errs, MsgPostalCodeMissing)
		}
	}
	return errs
}

func identifierErrors(id, lengthMsg, checksumMsg string) []string {
	if !twelveDigits.MatchString(id) {
		return []string{lengthMsg}
	}
	if !verhoeff.Validate(id) {
		return []string{checksumMsg}
	}
	return nil
}

func extractIdentity(bundle RawTextBundle) ExtractedIdentity {
	identity, provenance := mergeWithProvenance(Candidates(bundle))
	slog.Debug("Merged document fields", "sources", provenance)
	return identity
}

func newResult(identity ExtractedIdentity, errs []string) VerificationResult {
	result := VerificationResult{
		IsValid:          len(errs) == 0,
		IsVerified:       len(errs) == 0,
		ValidationErrors: errs,
		ExtractedData:    maskIdentity(identity),
	}
	if identity.Identifier != "" {
		result.IdentifierLast4 = Last4(identity.Identifier)
		result.IdentifierMasked = MaskIdentifier(identity.Identifier)
	}
	if identity.VirtualIdentifier != "" {
		result.VirtualIdentifierLast4 = Last4(identity.VirtualIdentifier)
		result.VirtualIdentifierMasked = MaskVirtualIdentifier(identity.VirtualIdentifier)
	}
	return result
}

func compareClaim(claim ClaimedIdentity, identity ExtractedIdentity) []FieldComparison {
	dob := compareField(FieldNameDOB, claim.DOB, identity.DOB, FieldDOB)
	if identity.DOB == "" && identity.YOB != "" {
		dob = compareField(FieldNameDOB, claim.DOB, identity.YOB, FieldYearOfBirth)
	}

	return []FieldComparison{
		compareField(FieldNameName, claim.Name, identity.Name, FieldName),
		dob,
		compareField(FieldNameGender, claim.Gender, identity.Gender, FieldGender),
		compareIdentifier(claim.Identifier, identity.Identifier),
	}
}

func compareField(name, entered, extracted string, kind FieldKind) FieldComparison {
	shown := extracted
	if shown == "" {
		shown = notFound
	}
	return FieldComparison{
		FieldName:      name,
		EnteredValue:   entered,
		ExtractedValue: shown,
		Matches:        Compare(entered, extracted, kind),
		Confidence:     Similarity(entered, extracted, kind),
	}
}

// identifiers are compared unmasked but only reported masked
func compareIdentifier(entered, extracted string) FieldComparison {
	comparison := compareField(FieldNameIdentifier, entered, extracted, FieldIdentifier)
	if entered != "" {
		comparison.EnteredValue = MaskIdentifier(entered)
	}
	if extracted != "" {
		comparison.ExtractedValue = MaskIdentifier(extracted)
	}
	return comparison
}

func documentConfidence(identity ExtractedIdentity) float64 {
	checks := []bool{
		ValidateIdentifier(identity.Identifier),
		identity.Name != "",
		identity.DOB != "" || identity.YOB != "",
		identity.Gender != "",
	}
	passed := 0
	for _, ok := range checks {
		if ok {
			passed++
		}
	}
	return round2(float64(passed) / float64(len(checks)))
}

func claimConfidence(comparisons []FieldComparison) float64 {
	if len(comparisons) == 0 {
		return 0
	}
	total := 0.0
	for _, c := range comparisons {
		total += c.Confidence
	}
	return round2(total / float64(len(comparisons)))
}

func hasText(text string) bool {
	return Normalize(text) != ""
}
