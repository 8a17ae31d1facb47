package main

import (
	"errors"

	"go-aadhaar-verifier/document/aadhaar"
	"go-aadhaar-verifier/models"

	"github.com/spf13/cobra"
)

var errInvalidIdentifier = errors.New("invalid Aadhaar number")

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <aadhaar-number>",
		Short: "Check the length and check digit of an Aadhaar number",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			number := args[0]
			response := models.IdentifierValidationResponse{
				IsValid:       aadhaar.ValidateIdentifier(number),
				AadhaarMasked: aadhaar.MaskIdentifier(number),
				AadhaarLast4:  aadhaar.Last4(number),
			}
			if err := printJSON(cmd.OutOrStdout(), response); err != nil {
				return err
			}
			if !response.IsValid {
				return errInvalidIdentifier
			}
			return nil
		},
	}
}
