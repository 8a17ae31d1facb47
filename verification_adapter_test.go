package main

import (
	"context"
	"sync"
	"testing"
	"time"

	"go-aadhaar-verifier/document/aadhaar"
	"go-aadhaar-verifier/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestDocumentVerifierImpl(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())
	verifier := NewDocumentVerifier(m)
	ctx := context.Background()

	result := verifier.VerifyDocument(ctx, aadhaar.RawTextBundle{FrontText: testFrontText, BackText: testBackText})
	require.True(t, result.IsValid)

	claim := aadhaar.ClaimedIdentity{Name: "Rahul Kumar", DOB: "15/08/1990", Gender: "M", Identifier: "234567890124"}
	require.True(t, verifier.VerifyClaim(ctx, claim, aadhaar.RawTextBundle{FrontText: testFrontText}).IsVerified)

	require.False(t, verifier.ValidateIdentifier("123456789012"))

	require.Equal(t, 1.0, testutil.ToFloat64(m.Verifications.WithLabelValues("document", "true")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.Verifications.WithLabelValues("claim", "true")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.Verifications.WithLabelValues("identifier", "false")))
}

func TestCachingDocumentVerifier(t *testing.T) {
	ctx := context.Background()
	bundle := aadhaar.RawTextBundle{FrontText: testFrontText}

	t.Run("second identical request is served from cache", func(t *testing.T) {
		counting := newCountingVerifier()
		m := metrics.New(prometheus.NewRegistry())
		verifier := NewCachingDocumentVerifier(counting, NewInMemoryResultCache(time.Minute), m)

		first := verifier.VerifyDocument(ctx, bundle)
		second := verifier.VerifyDocument(ctx, bundle)

		require.Equal(t, first, second)
		require.Equal(t, int32(1), counting.calls.Load())
		require.Equal(t, 1.0, testutil.ToFloat64(m.CacheLookups.WithLabelValues("miss")))
		require.Equal(t, 1.0, testutil.ToFloat64(m.CacheLookups.WithLabelValues("hit")))
	})

	t.Run("claims and documents do not share entries", func(t *testing.T) {
		counting := newCountingVerifier()
		verifier := NewCachingDocumentVerifier(counting, NewInMemoryResultCache(time.Minute), nil)

		verifier.VerifyDocument(ctx, bundle)
		result := verifier.VerifyClaim(ctx, aadhaar.ClaimedIdentity{Name: "Rahul Kumar"}, bundle)

		require.Equal(t, int32(2), counting.calls.Load())
		require.NotEmpty(t, result.FieldComparisons)
	})

	t.Run("different claims are cached separately", func(t *testing.T) {
		counting := newCountingVerifier()
		verifier := NewCachingDocumentVerifier(counting, NewInMemoryResultCache(time.Minute), nil)

		matching := verifier.VerifyClaim(ctx, aadhaar.ClaimedIdentity{Name: "Rahul Kumar", DOB: "15/08/1990", Gender: "M", Identifier: "234567890124"}, bundle)
		other := verifier.VerifyClaim(ctx, aadhaar.ClaimedIdentity{Name: "Asha Devi", DOB: "15/08/1990", Gender: "M", Identifier: "234567890124"}, bundle)

		require.True(t, matching.IsVerified)
		require.False(t, other.IsVerified)
		require.Equal(t, int32(2), counting.calls.Load())
	})

	t.Run("concurrent identical requests are verified once", func(t *testing.T) {
		counting := newCountingVerifier()
		counting.release = make(chan struct{})
		verifier := NewCachingDocumentVerifier(counting, NewInMemoryResultCache(time.Minute), nil)

		const callers = 5
		results := make([]aadhaar.VerificationResult, callers)
		var wg sync.WaitGroup
		for i := 0; i < callers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				results[i] = verifier.VerifyDocument(ctx, bundle)
			}(i)
		}

		time.Sleep(100 * time.Millisecond)
		close(counting.release)
		wg.Wait()

		require.Equal(t, int32(1), counting.calls.Load())
		for _, r := range results {
			require.True(t, r.IsValid)
		}
	})

	t.Run("failing cache is bypassed", func(t *testing.T) {
		counting := newCountingVerifier()
		cache := &failingCache{}
		m := metrics.New(prometheus.NewRegistry())
		verifier := NewCachingDocumentVerifier(counting, cache, m)

		require.True(t, verifier.VerifyDocument(ctx, bundle).IsValid)
		require.True(t, verifier.VerifyDocument(ctx, bundle).IsValid)

		require.Equal(t, int32(2), counting.calls.Load())
		require.Equal(t, 2, cache.stores)
		require.Equal(t, 2.0, testutil.ToFloat64(m.CacheLookups.WithLabelValues("error")))
	})

	t.Run("identifier validation skips the cache", func(t *testing.T) {
		counting := newCountingVerifier()
		verifier := NewCachingDocumentVerifier(counting, &failingCache{}, nil)

		require.True(t, verifier.ValidateIdentifier("234567890124"))
		require.Equal(t, int32(1), counting.calls.Load())
	})
}
