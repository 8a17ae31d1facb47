package main

import (
	"errors"
	"net/http/httptest"
	"strings"
	"testing"

	"go-aadhaar-verifier/models"

	"github.com/stretchr/testify/require"
)

func TestLoadRequestSchemas(t *testing.T) {
	schemas, err := LoadRequestSchemas()
	require.NoError(t, err)
	require.NotNil(t, schemas.VerifyDocument)
	require.NotNil(t, schemas.VerifyWithForm)
	require.NotNil(t, schemas.ValidateAadhaar)
}

func TestDecodeRequest(t *testing.T) {
	schemas, err := LoadRequestSchemas()
	require.NoError(t, err)

	decode := func(body string, v any) error {
		req := httptest.NewRequest("POST", "/", strings.NewReader(body))
		return decodeRequest(req, schemas.VerifyWithForm, v)
	}

	t.Run("valid form", func(t *testing.T) {
		var form models.FormVerificationRequest
		err := decode(`{"name":"Rahul Kumar","dob":"1990-08-15","gender":"M","aadhaar_number":"234567890124","qr_payload":"<x/>"}`, &form)
		require.NoError(t, err)
		require.Equal(t, "234567890124", form.AadhaarNumber)
		require.Equal(t, "<x/>", form.QRPayload)
	})

	tests := []struct {
		name        string
		body        string
		wantMessage string
	}{
		{"not json", `{"name":`, "request body is not valid JSON"},
		{"wrong type", `{"name":1,"dob":"1990-08-15","gender":"M","aadhaar_number":"234567890124","front_text":"x"}`, "name"},
		{"bad aadhaar pattern", `{"name":"R","dob":"1990-08-15","gender":"M","aadhaar_number":"2345-6789-0124","front_text":"x"}`, "aadhaar_number"},
		{"bad dob pattern", `{"name":"R","dob":"15 Aug 1990","gender":"M","aadhaar_number":"234567890124","front_text":"x"}`, "dob"},
		{"no document text", `{"name":"R","dob":"1990-08-15","gender":"M","aadhaar_number":"234567890124"}`, ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var form models.FormVerificationRequest
			err := decode(tc.body, &form)
			require.Error(t, err)

			var reqErr *RequestError
			require.True(t, errors.As(err, &reqErr))
			require.NotEmpty(t, reqErr.Message)
			require.Contains(t, reqErr.Message, tc.wantMessage)
		})
	}

	t.Run("oversized body", func(t *testing.T) {
		body := `{"front_text":"` + strings.Repeat("a", maxRequestBodySize) + `"}`
		req := httptest.NewRequest("POST", "/", strings.NewReader(body))
		var doc models.DocumentVerificationRequest
		err := decodeRequest(req, schemas.VerifyDocument, &doc)
		require.EqualError(t, err, "request body too large")
	})
}
