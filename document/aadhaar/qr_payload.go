package aadhaar

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"go-aadhaar-verifier/document"

	"golang.org/x/text/encoding/htmlindex"
)

// QRMarker identifies the attribute keyed payload printed in the QR code.
const QRMarker = "PrintLetterBarcodeData"

// QRPayload is the decoded <PrintLetterBarcodeData .../> element.
type QRPayload struct {
	XMLName     xml.Name `xml:"PrintLetterBarcodeData"`
	UID         string   `xml:"uid,attr"`
	Name        string   `xml:"name,attr"`
	Gender      string   `xml:"gender,attr"`
	DOB         string   `xml:"dob,attr"`
	YOB         string   `xml:"yob,attr"`
	CareOf      string   `xml:"co,attr"`
	House       string   `xml:"house,attr"`
	Street      string   `xml:"street,attr"`
	Landmark    string   `xml:"lm,attr"`
	Locality    string   `xml:"loc,attr"`
	VTC         string   `xml:"vtc,attr"`
	PostOffice  string   `xml:"po,attr"`
	District    string   `xml:"dist,attr"`
	SubDistrict string   `xml:"subdist,attr"`
	State       string   `xml:"state,attr"`
	PostalCode  string   `xml:"pc,attr"`
}

// ParseQRPayload decodes a QR payload. It reports false when the payload is
// not in the attribute keyed format or cannot be decoded.
func ParseQRPayload(payload string) (QRPayload, bool) {
	if !strings.Contains(payload, QRMarker) {
		return QRPayload{}, false
	}

	decoder := xml.NewDecoder(strings.NewReader(strings.TrimSpace(payload)))
	decoder.CharsetReader = charsetReader

	var q QRPayload
	if err := decoder.Decode(&q); err != nil {
		return QRPayload{}, false
	}
	return q, true
}

// older printers declare the payload as ISO-8859-1
func charsetReader(label string, input io.Reader) (io.Reader, error) {
	enc, err := htmlindex.Get(label)
	if err != nil {
		return nil, fmt.Errorf("unsupported payload charset %q: %w", label, err)
	}
	return enc.NewDecoder().Reader(input), nil
}

// Fields returns the payload attributes keyed by their attribute name.
func (q QRPayload) Fields() map[string]string {
	return map[string]string{
		"uid":     q.UID,
		"name":    q.Name,
		"gender":  q.Gender,
		"dob":     q.DOB,
		"yob":     q.YOB,
		"co":      q.CareOf,
		"house":   q.House,
		"street":  q.Street,
		"lm":      q.Landmark,
		"loc":     q.Locality,
		"vtc":     q.VTC,
		"po":      q.PostOffice,
		"dist":    q.District,
		"subdist": q.SubDistrict,
		"state":   q.State,
		"pc":      q.PostalCode,
	}
}

// Address joins the present address components, comma separated, with the
// postal code last.
func (q QRPayload) Address() string {
	var parts []string
	for _, part := range []string{
		q.House, q.Street, q.Landmark, q.Locality, q.VTC,
		q.PostOffice, q.District, q.SubDistrict, q.State, q.PostalCode,
	} {
		if part = strings.TrimSpace(part); part != "" {
			parts = append(parts, part)
		}
	}
	return strings.Join(parts, ", ")
}

// Identity converts the payload into the fields shared with text extraction.
func (q QRPayload) Identity() ExtractedIdentity {
	identity := ExtractedIdentity{
		Name:       strings.TrimSpace(q.Name),
		YOB:        strings.TrimSpace(q.YOB),
		Gender:     qrGender(q.Gender),
		Identifier: IdentifierFromFields(q.Fields()),
		Address:    q.Address(),
		PostalCode: strings.TrimSpace(q.PostalCode),
	}
	if dob := strings.TrimSpace(q.DOB); dob != "" {
		identity.DOB = isoDateOrRaw(dob)
	}
	return identity
}

// The payload uses M, F and T where the printed card spells the word out.
func qrGender(value string) string {
	if gender := ExtractGender(value); gender != "" {
		return gender
	}
	return document.CanonicalGender(value)
}
