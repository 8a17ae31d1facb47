package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go-aadhaar-verifier/document/aadhaar"
	"go-aadhaar-verifier/models"

	"github.com/stretchr/testify/require"
)

func runCLI(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)

	err := cmd.Execute()
	return out.String(), err
}

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestValidateCommand(t *testing.T) {
	t.Run("valid number", func(t *testing.T) {
		out, err := runCLI(t, "", "validate", "2345 6789 0124")
		require.NoError(t, err)

		var response models.IdentifierValidationResponse
		require.NoError(t, json.Unmarshal([]byte(out), &response))
		require.True(t, response.IsValid)
		require.Equal(t, "XXXX XXXX 0124", response.AadhaarMasked)
	})

	t.Run("checksum failure", func(t *testing.T) {
		out, err := runCLI(t, "", "validate", "123456789012")
		require.ErrorIs(t, err, errInvalidIdentifier)
		require.Contains(t, out, `"is_valid": false`)
		require.NotContains(t, out, "123456789012")
	})

	t.Run("missing argument", func(t *testing.T) {
		_, err := runCLI(t, "", "validate")
		require.Error(t, err)
	})
}

func TestVerifyCommand(t *testing.T) {
	front := writeTempFile(t, "front.txt", testFrontText)
	back := writeTempFile(t, "back.txt", testBackText)

	t.Run("document only", func(t *testing.T) {
		out, err := runCLI(t, "", "verify", "--front", front, "--back", back)
		require.NoError(t, err)

		var result aadhaar.VerificationResult
		require.NoError(t, json.Unmarshal([]byte(out), &result))
		require.True(t, result.IsValid)
		require.Equal(t, "560038", result.ExtractedData.PostalCode)
		require.NotContains(t, out, "234567890124")
	})

	t.Run("against entered details", func(t *testing.T) {
		out, err := runCLI(t, "", "verify", "--front", front,
			"--name", "Rahul Kumar", "--dob", "15/08/1990", "--gender", "M", "--aadhaar", "2345 6789 0124")
		require.NoError(t, err)

		var result aadhaar.VerificationResult
		require.NoError(t, json.Unmarshal([]byte(out), &result))
		require.True(t, result.IsVerified)
		require.Len(t, result.FieldComparisons, 4)
	})

	t.Run("mismatch exits with an error", func(t *testing.T) {
		_, err := runCLI(t, "", "verify", "--front", front,
			"--name", "Asha Devi", "--dob", "15/08/1990", "--gender", "M", "--aadhaar", "2345 6789 0124")
		require.ErrorIs(t, err, errVerificationFailed)
	})

	t.Run("text from stdin", func(t *testing.T) {
		out, err := runCLI(t, testFrontText, "verify", "--front", "-")
		require.NoError(t, err)
		require.Contains(t, out, `"is_valid": true`)
	})

	t.Run("stdin read twice", func(t *testing.T) {
		_, err := runCLI(t, testFrontText, "verify", "--front", "-", "--back", "-")
		require.Error(t, err)
	})

	t.Run("no sources", func(t *testing.T) {
		_, err := runCLI(t, "", "verify")
		require.Error(t, err)
	})

	t.Run("unreadable file", func(t *testing.T) {
		_, err := runCLI(t, "", "verify", "--front", filepath.Join(t.TempDir(), "absent.txt"))
		require.Error(t, err)
	})
}

func TestVersionCommand(t *testing.T) {
	out, err := runCLI(t, "", "version")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(out, "aadhaar-verifier dev\n"))
}

func TestRootCommandRejectsBadConfig(t *testing.T) {
	_, err := runCLI(t, "", "--config", filepath.Join(t.TempDir(), "absent.json"), "version")
	require.Error(t, err)
}
