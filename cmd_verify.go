package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"go-aadhaar-verifier/document/aadhaar"

	"github.com/spf13/cobra"
)

var errVerificationFailed = errors.New("verification failed")

type verifyFlags struct {
	front, back, qr string

	name, dob, gender, aadhaarNumber string
}

func (f verifyFlags) hasClaim() bool {
	return f.name != "" || f.dob != "" || f.gender != "" || f.aadhaarNumber != ""
}

func newVerifyCmd(state *cliState) *cobra.Command {
	var flags verifyFlags

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Verify card text stored in files",
		Long: `Verify the OCR text of an Aadhaar card, and optionally compare it with
entered details. Each of --front, --back and --qr names a file holding the
text of that source; pass "-" to read it from stdin. The masked result is
printed as JSON and the command exits non-zero when verification fails.

Examples:
  aadhaar-verifier verify --front front.txt --back back.txt
  aadhaar-verifier verify --qr qr.xml --name "Rahul Kumar" --dob 15/08/1990 --gender M --aadhaar "2345 6789 0124"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			bundle, err := readBundle(cmd.InOrStdin(), flags)
			if err != nil {
				return err
			}
			if bundle.IsEmpty() {
				return errors.New("at least one of --front, --back or --qr is required")
			}

			config := state.config
			verifier, err := createVerifier(&config, nil)
			if err != nil {
				return err
			}

			var result aadhaar.VerificationResult
			if flags.hasClaim() {
				result = verifier.VerifyClaim(cmd.Context(), aadhaar.ClaimedIdentity{
					Name:       flags.name,
					DOB:        flags.dob,
					Gender:     flags.gender,
					Identifier: flags.aadhaarNumber,
				}, bundle)
			} else {
				result = verifier.VerifyDocument(cmd.Context(), bundle)
			}

			if err := printJSON(cmd.OutOrStdout(), result); err != nil {
				return err
			}
			if !result.IsValid {
				return errVerificationFailed
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&flags.front, "front", "", "file with the front side text")
	cmd.Flags().StringVar(&flags.back, "back", "", "file with the back side text")
	cmd.Flags().StringVar(&flags.qr, "qr", "", "file with the decoded QR payload")
	cmd.Flags().StringVar(&flags.name, "name", "", "entered name")
	cmd.Flags().StringVar(&flags.dob, "dob", "", "entered date of birth, DD/MM/YYYY or YYYY-MM-DD")
	cmd.Flags().StringVar(&flags.gender, "gender", "", "entered gender")
	cmd.Flags().StringVar(&flags.aadhaarNumber, "aadhaar", "", "entered Aadhaar number")
	return cmd
}

func readBundle(stdin io.Reader, flags verifyFlags) (aadhaar.RawTextBundle, error) {
	var bundle aadhaar.RawTextBundle
	stdinUsed := false

	read := func(path string) (string, error) {
		if path == "" {
			return "", nil
		}
		if path == "-" {
			if stdinUsed {
				return "", errors.New("stdin can only be read once")
			}
			stdinUsed = true
			b, err := io.ReadAll(stdin)
			if err != nil {
				return "", fmt.Errorf("failed to read stdin: %w", err)
			}
			return string(b), nil
		}
		b, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("failed to read %s: %w", path, err)
		}
		return string(b), nil
	}

	var err error
	if bundle.FrontText, err = read(flags.front); err != nil {
		return bundle, err
	}
	if bundle.BackText, err = read(flags.back); err != nil {
		return bundle, err
	}
	if bundle.QRPayload, err = read(flags.qr); err != nil {
		return bundle, err
	}
	return bundle, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
