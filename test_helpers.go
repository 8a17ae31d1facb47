package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go-aadhaar-verifier/document/aadhaar"

	"github.com/stretchr/testify/require"
)

const testBaseURL = "http://localhost:8081"

var testConfig = ServerConfig{
	Host:           "localhost",
	Port:           8081,
	UseTls:         false,
	TlsCertPath:    "",
	TlsPrivKeyPath: "",
}

const (
	testFrontText = "Government of India\nRAHUL KUMAR\nDOB: 15/08/1990\nMALE\n2345 6789 0124\nVID : 9134 5678 1234 5678"
	testBackText  = "Unique Identification Authority of India\nAddress: S/O Ram Kumar, 12 MG Road,\nIndiranagar, Bengaluru,\nKarnataka - 560038\n2345 6789 0124\nhelp@uidai.gov.in www.uidai.gov.in"
)

func startTestServer(t *testing.T, state *ServerState) *Server {
	t.Helper()

	if state.verifier == nil {
		state.verifier = NewDocumentVerifier(nil)
	}

	srv, err := NewServer(state, testConfig)
	require.NoError(t, err)

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			t.Errorf("server error: %v", err)
		}
	}()

	waitUntilHealthy(t, testBaseURL+healthPath)
	t.Cleanup(func() {
		if err := srv.Stop(); err != nil {
			t.Logf("error shutting down server: %v", err)
		}
	})
	return srv
}

func waitUntilHealthy(t *testing.T, url string) {
	t.Helper()
	const maxAttempts = 50
	for i := 0; i < maxAttempts; i++ {
		if resp, err := http.Get(url); err == nil {
			_ = resp.Body.Close()
			return
		}
		time.Sleep(50 * time.Millisecond)
	}
	t.Fatalf("server did not start in time")
}

func postJSON[T any](t *testing.T, url string, payload any) (*http.Response, []byte, *T) {
	t.Helper()

	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewBuffer(b)
	}
	resp, err := http.Post(url, "application/json", body)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var decoded *T
	var v T
	_ = json.Unmarshal(respBody, &v)
	decoded = &v

	return resp, respBody, decoded
}

func mustStatus(t *testing.T, resp *http.Response, want int, body []byte) {
	t.Helper()
	require.Equalf(t, want, resp.StatusCode, "body: %s", body)
}

// test doubles

// countingVerifier counts calls and can hold verifications until release
// is closed.
type countingVerifier struct {
	next    DocumentVerifier
	calls   atomic.Int32
	release chan struct{}
}

func newCountingVerifier() *countingVerifier {
	return &countingVerifier{next: NewDocumentVerifier(nil)}
}

func (v *countingVerifier) wait() {
	if v.release != nil {
		<-v.release
	}
}

func (v *countingVerifier) VerifyDocument(ctx context.Context, bundle aadhaar.RawTextBundle) aadhaar.VerificationResult {
	v.calls.Add(1)
	v.wait()
	return v.next.VerifyDocument(ctx, bundle)
}

func (v *countingVerifier) VerifyClaim(ctx context.Context, claim aadhaar.ClaimedIdentity, bundle aadhaar.RawTextBundle) aadhaar.VerificationResult {
	v.calls.Add(1)
	v.wait()
	return v.next.VerifyClaim(ctx, claim, bundle)
}

func (v *countingVerifier) ValidateIdentifier(number string) bool {
	v.calls.Add(1)
	return v.next.ValidateIdentifier(number)
}

// failingCache fails every call, as an unreachable redis would.
type failingCache struct {
	mutex  sync.Mutex
	stores int
}

var errCacheDown = errors.New("cache unavailable")

func (c *failingCache) Store(context.Context, string, aadhaar.VerificationResult) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.stores++
	return errCacheDown
}

func (c *failingCache) Retrieve(context.Context, string) (aadhaar.VerificationResult, error) {
	return aadhaar.VerificationResult{}, errCacheDown
}
