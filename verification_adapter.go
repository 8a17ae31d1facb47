package main

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go-aadhaar-verifier/document/aadhaar"
	"go-aadhaar-verifier/metrics"

	"golang.org/x/sync/singleflight"
)

// abstract interfaces for easier testing

type DocumentVerifier interface {
	VerifyDocument(ctx context.Context, bundle aadhaar.RawTextBundle) aadhaar.VerificationResult
	VerifyClaim(ctx context.Context, claim aadhaar.ClaimedIdentity, bundle aadhaar.RawTextBundle) aadhaar.VerificationResult
	ValidateIdentifier(number string) bool
}

// Production implementations

type DocumentVerifierImpl struct {
	metrics *metrics.Metrics
}

func NewDocumentVerifier(m *metrics.Metrics) DocumentVerifierImpl {
	return DocumentVerifierImpl{metrics: m}
}

func (v DocumentVerifierImpl) VerifyDocument(_ context.Context, bundle aadhaar.RawTextBundle) aadhaar.VerificationResult {
	start := time.Now()
	result := aadhaar.VerifyFromText(bundle)
	v.metrics.ObserveVerification("document", result.IsValid, result.ValidationErrors, time.Since(start))
	return result
}

func (v DocumentVerifierImpl) VerifyClaim(_ context.Context, claim aadhaar.ClaimedIdentity, bundle aadhaar.RawTextBundle) aadhaar.VerificationResult {
	start := time.Now()
	result := aadhaar.VerifyAgainstClaim(claim, bundle)
	v.metrics.ObserveVerification("claim", result.IsVerified, result.ValidationErrors, time.Since(start))
	return result
}

func (v DocumentVerifierImpl) ValidateIdentifier(number string) bool {
	start := time.Now()
	valid := aadhaar.ValidateIdentifier(number)
	v.metrics.ObserveVerification("identifier", valid, nil, time.Since(start))
	return valid
}

// CachingDocumentVerifier is a read-through cache in front of another
// verifier. Identical requests in flight at the same time are verified once.
// A failing cache is bypassed, it never fails a verification.
type CachingDocumentVerifier struct {
	next    DocumentVerifier
	cache   ResultCache
	metrics *metrics.Metrics
	group   singleflight.Group
}

func NewCachingDocumentVerifier(next DocumentVerifier, cache ResultCache, m *metrics.Metrics) *CachingDocumentVerifier {
	return &CachingDocumentVerifier{next: next, cache: cache, metrics: m}
}

func (v *CachingDocumentVerifier) VerifyDocument(ctx context.Context, bundle aadhaar.RawTextBundle) aadhaar.VerificationResult {
	key := cacheKey("document", bundle.FrontText, bundle.BackText, bundle.QRPayload)
	return v.cached(ctx, key, func() aadhaar.VerificationResult {
		return v.next.VerifyDocument(ctx, bundle)
	})
}

func (v *CachingDocumentVerifier) VerifyClaim(ctx context.Context, claim aadhaar.ClaimedIdentity, bundle aadhaar.RawTextBundle) aadhaar.VerificationResult {
	key := cacheKey("claim",
		claim.Name, claim.DOB, claim.Gender, claim.Identifier,
		bundle.FrontText, bundle.BackText, bundle.QRPayload,
	)
	return v.cached(ctx, key, func() aadhaar.VerificationResult {
		return v.next.VerifyClaim(ctx, claim, bundle)
	})
}

// Checksum validation is cheaper than a cache round trip.
func (v *CachingDocumentVerifier) ValidateIdentifier(number string) bool {
	return v.next.ValidateIdentifier(number)
}

func (v *CachingDocumentVerifier) cached(ctx context.Context, key string, verify func() aadhaar.VerificationResult) aadhaar.VerificationResult {
	result, err := v.cache.Retrieve(ctx, key)
	switch {
	case err == nil:
		v.metrics.IncrementCacheLookup("hit")
		slog.Debug("Serving verification result from cache")
		return result
	case errors.Is(err, ErrCacheMiss):
		v.metrics.IncrementCacheLookup("miss")
	default:
		v.metrics.IncrementCacheLookup("error")
		slog.Warn("Result cache lookup failed, verifying without cache", "error", err)
	}

	shared, _, _ := v.group.Do(key, func() (any, error) {
		result := verify()
		if err := v.cache.Store(ctx, key, result); err != nil {
			slog.Warn("Failed to store verification result", "error", err)
		}
		return result, nil
	})
	return shared.(aadhaar.VerificationResult)
}
