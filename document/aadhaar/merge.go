package aadhaar

// Source names where a candidate set of fields was read from.
type Source string

const (
	SourceQR    Source = "qr"
	SourceFront Source = "front"
	SourceBack  Source = "back"
)

// Candidate is the set of fields extracted from a single source.
type Candidate struct {
	Source   Source
	Identity ExtractedIdentity
}

type identityField struct {
	name string
	ref  func(*ExtractedIdentity) *string
}

var identityFields = []identityField{
	{"name", func(i *ExtractedIdentity) *string { return &i.Name }},
	{"dob", func(i *ExtractedIdentity) *string { return &i.DOB }},
	{"yob", func(i *ExtractedIdentity) *string { return &i.YOB }},
	{"gender", func(i *ExtractedIdentity) *string { return &i.Gender }},
	{"identifier", func(i *ExtractedIdentity) *string { return &i.Identifier }},
	{"vid", func(i *ExtractedIdentity) *string { return &i.VirtualIdentifier }},
	{"address", func(i *ExtractedIdentity) *string { return &i.Address }},
	{"postal_code", func(i *ExtractedIdentity) *string { return &i.PostalCode }},
}

// Candidates extracts one candidate per supplied source, ordered by
// precedence: QR payload, then front text, then back text. A QR payload
// that does not decode contributes nothing.
func Candidates(bundle RawTextBundle) []Candidate {
	candidates := make([]Candidate, 0, 3)

	if bundle.QRPayload != "" {
		if payload, ok := ParseQRPayload(bundle.QRPayload); ok {
			candidates = append(candidates, Candidate{Source: SourceQR, Identity: payload.Identity()})
		}
	}
	if front := Normalize(bundle.FrontText); front != "" {
		candidates = append(candidates, Candidate{Source: SourceFront, Identity: extractFront(front)})
	}
	if back := Normalize(bundle.BackText); back != "" {
		candidates = append(candidates, Candidate{Source: SourceBack, Identity: extractBack(back)})
	}
	return candidates
}

// Merge folds candidates left to right; the first present value of a field
// wins, so earlier candidates take precedence.
func Merge(candidates []Candidate) ExtractedIdentity {
	merged, _ := mergeWithProvenance(candidates)
	return merged
}

func mergeWithProvenance(candidates []Candidate) (ExtractedIdentity, map[string]Source) {
	var merged ExtractedIdentity
	provenance := make(map[string]Source, len(identityFields))

	for _, candidate := range candidates {
		identity := candidate.Identity
		for _, field := range identityFields {
			dst := field.ref(&merged)
			if *dst != "" {
				continue
			}
			if value := *field.ref(&identity); value != "" {
				*dst = value
				provenance[field.name] = candidate.Source
			}
		}
	}
	return merged, provenance
}

func extractFront(text string) ExtractedIdentity {
	return ExtractedIdentity{
		Name:              ExtractName(text),
		DOB:               ExtractDOB(text),
		YOB:               ExtractYearOfBirth(text),
		Gender:            ExtractGender(text),
		Identifier:        ExtractIdentifier(text),
		VirtualIdentifier: ExtractVirtualIdentifier(text),
	}
}

func extractBack(text string) ExtractedIdentity {
	return ExtractedIdentity{
		Identifier:        ExtractIdentifier(text),
		VirtualIdentifier: ExtractVirtualIdentifier(text),
		Address:           ExtractAddress(text),
		PostalCode:        ExtractPostalCode(text),
	}
}
