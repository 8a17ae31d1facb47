package main

import (
	"io"
	"net/http"
	"strings"
	"testing"

	"go-aadhaar-verifier/document/aadhaar"
	"go-aadhaar-verifier/metrics"
	"go-aadhaar-verifier/models"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/require"
)

func TestHealth(t *testing.T) {
	startTestServer(t, &ServerState{})

	resp, err := http.Get(testBaseURL + healthPath)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	_, err = uuid.Parse(resp.Header.Get(requestIDHeader))
	require.NoError(t, err)
}

func TestVerifyDocument_Success(t *testing.T) {
	startTestServer(t, &ServerState{})

	req := models.DocumentVerificationRequest{FrontText: testFrontText, BackText: testBackText}
	resp, body, result := postJSON[aadhaar.VerificationResult](t, testBaseURL+"/api/verify-document", req)
	mustStatus(t, resp, http.StatusOK, body)

	require.True(t, result.IsValid)
	require.Equal(t, "XXXX XXXX 0124", result.IdentifierMasked)
	require.Equal(t, "RAHUL KUMAR", result.ExtractedData.Name)
	require.NotContains(t, string(body), "234567890124")
	require.NotEmpty(t, resp.Header.Get(requestIDHeader))
}

func TestVerifyDocument_InvalidDocumentIsStillOK(t *testing.T) {
	startTestServer(t, &ServerState{})

	req := models.DocumentVerificationRequest{FrontText: "nothing useful"}
	resp, body, result := postJSON[aadhaar.VerificationResult](t, testBaseURL+"/api/verify-document", req)
	mustStatus(t, resp, http.StatusOK, body)

	require.False(t, result.IsValid)
	require.Contains(t, result.ValidationErrors, aadhaar.MsgIdentifierMissing)
}

func TestVerifyDocument_Fail_NoText(t *testing.T) {
	startTestServer(t, &ServerState{})

	resp, body, _ := postJSON[map[string]any](t, testBaseURL+"/api/verify-document", map[string]string{})
	mustStatus(t, resp, http.StatusBadRequest, body)

	resp, body, _ = postJSON[map[string]any](t, testBaseURL+"/api/verify-document", map[string]string{"front_text": ""})
	mustStatus(t, resp, http.StatusBadRequest, body)
}

func TestVerifyDocument_Fail_NotJSON(t *testing.T) {
	startTestServer(t, &ServerState{})

	resp, err := http.Post(testBaseURL+"/api/verify-document", "application/json", strings.NewReader("{"))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestVerifyDocument_Fail_WrongMethod(t *testing.T) {
	startTestServer(t, &ServerState{})

	resp, err := http.Get(testBaseURL + "/api/verify-document")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestVerifyWithForm_Success(t *testing.T) {
	startTestServer(t, &ServerState{})

	req := models.FormVerificationRequest{
		Name:          "Rahul Kumar",
		DOB:           "15/08/1990",
		Gender:        "Male",
		AadhaarNumber: "2345 6789 0124",
		DocumentVerificationRequest: models.DocumentVerificationRequest{
			FrontText: testFrontText,
		},
	}
	resp, body, result := postJSON[aadhaar.VerificationResult](t, testBaseURL+"/api/verify-with-form", req)
	mustStatus(t, resp, http.StatusOK, body)

	require.True(t, result.IsVerified)
	require.Len(t, result.FieldComparisons, 4)
	require.Equal(t, "XXXX XXXX 0124", result.FieldComparisons[3].EnteredValue)
	require.NotContains(t, string(body), "2345 6789 0124")
}

func TestVerifyWithForm_Mismatch(t *testing.T) {
	startTestServer(t, &ServerState{})

	req := models.FormVerificationRequest{
		Name:          "Asha Devi",
		DOB:           "1990-08-15",
		Gender:        "F",
		AadhaarNumber: "234567890124",
		DocumentVerificationRequest: models.DocumentVerificationRequest{
			FrontText: testFrontText,
		},
	}
	resp, body, result := postJSON[aadhaar.VerificationResult](t, testBaseURL+"/api/verify-with-form", req)
	mustStatus(t, resp, http.StatusOK, body)

	require.False(t, result.IsVerified)
	require.Equal(t, []string{}, result.ValidationErrors)
}

func TestVerifyWithForm_Fail_Schema(t *testing.T) {
	startTestServer(t, &ServerState{})

	valid := map[string]string{
		"name":           "Rahul Kumar",
		"dob":            "15/08/1990",
		"gender":         "Male",
		"aadhaar_number": "2345 6789 0124",
		"front_text":     testFrontText,
	}

	tests := []struct {
		name  string
		field string
		value string
	}{
		{"aadhaar number with letters", "aadhaar_number", "2345 6789 01AB"},
		{"aadhaar number too short", "aadhaar_number", "2345 6789"},
		{"dob in an unknown layout", "dob", "15.08.1990"},
		{"empty name", "name", ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := make(map[string]string, len(valid))
			for k, v := range valid {
				req[k] = v
			}
			req[tc.field] = tc.value

			resp, body, _ := postJSON[map[string]any](t, testBaseURL+"/api/verify-with-form", req)
			mustStatus(t, resp, http.StatusBadRequest, body)
			require.Contains(t, string(body), tc.field)
		})
	}

	t.Run("missing field", func(t *testing.T) {
		req := map[string]string{"name": "Rahul Kumar", "front_text": testFrontText}
		resp, body, _ := postJSON[map[string]any](t, testBaseURL+"/api/verify-with-form", req)
		mustStatus(t, resp, http.StatusBadRequest, body)
	})
}

func TestValidateAadhaar(t *testing.T) {
	startTestServer(t, &ServerState{})

	tests := []struct {
		number string
		want   models.IdentifierValidationResponse
	}{
		{"2345 6789 0124", models.IdentifierValidationResponse{IsValid: true, AadhaarMasked: "XXXX XXXX 0124", AadhaarLast4: "0124"}},
		{"123456789012", models.IdentifierValidationResponse{IsValid: false, AadhaarMasked: "XXXX XXXX 9012", AadhaarLast4: "9012"}},
		{"12", models.IdentifierValidationResponse{IsValid: false, AadhaarMasked: "XXXX XXXX XXXX"}},
	}

	for _, tc := range tests {
		t.Run(tc.number, func(t *testing.T) {
			req := models.IdentifierValidationRequest{AadhaarNumber: tc.number}
			resp, body, got := postJSON[models.IdentifierValidationResponse](t, testBaseURL+"/api/validate-aadhaar", req)
			mustStatus(t, resp, http.StatusOK, body)
			require.Equal(t, tc.want, *got)
		})
	}
}

func TestMetricsEndpoint(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := metrics.New(registry)
	startTestServer(t, &ServerState{
		verifier:       NewDocumentVerifier(m),
		metricsHandler: promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
	})

	req := models.DocumentVerificationRequest{FrontText: testFrontText}
	resp, body, _ := postJSON[map[string]any](t, testBaseURL+"/api/verify-document", req)
	mustStatus(t, resp, http.StatusOK, body)

	metricsResp, err := http.Get(testBaseURL + "/metrics")
	require.NoError(t, err)
	defer func() { _ = metricsResp.Body.Close() }()
	require.Equal(t, http.StatusOK, metricsResp.StatusCode)

	buf := new(strings.Builder)
	_, err = io.Copy(buf, metricsResp.Body)
	require.NoError(t, err)
	require.Contains(t, buf.String(), `aadhaar_verifier_verifications_total{operation="document",valid="true"} 1`)
}

func TestRateLimit(t *testing.T) {
	startTestServer(t, &ServerState{rateLimiter: NewRateLimiter(2, nil)})

	req := models.IdentifierValidationRequest{AadhaarNumber: "234567890124"}
	for i := 0; i < 2; i++ {
		resp, body, _ := postJSON[map[string]any](t, testBaseURL+"/api/validate-aadhaar", req)
		mustStatus(t, resp, http.StatusOK, body)
	}

	resp, body, _ := postJSON[map[string]any](t, testBaseURL+"/api/validate-aadhaar", req)
	mustStatus(t, resp, http.StatusTooManyRequests, body)
	require.NotEmpty(t, resp.Header.Get(requestIDHeader))

	health, err := http.Get(testBaseURL + healthPath)
	require.NoError(t, err)
	defer func() { _ = health.Body.Close() }()
	require.Equal(t, http.StatusOK, health.StatusCode)
}

func TestCachedVerifierBehindServer(t *testing.T) {
	counting := newCountingVerifier()
	startTestServer(t, &ServerState{
		verifier: NewCachingDocumentVerifier(counting, NewInMemoryResultCache(DefaultCacheTTL), nil),
	})

	req := models.DocumentVerificationRequest{FrontText: testFrontText}
	for i := 0; i < 3; i++ {
		resp, body, result := postJSON[aadhaar.VerificationResult](t, testBaseURL+"/api/verify-document", req)
		mustStatus(t, resp, http.StatusOK, body)
		require.True(t, result.IsValid)
	}
	require.Equal(t, int32(1), counting.calls.Load())
}
