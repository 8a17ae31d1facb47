package main

import (
	"go-aadhaar-verifier/logging"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// cliState is filled in by the root command before any subcommand runs.
type cliState struct {
	cfgFile  string
	logLevel string

	viper  *viper.Viper
	config Config
}

func newRootCmd() *cobra.Command {
	state := &cliState{}

	rootCmd := &cobra.Command{
		Use:   "aadhaar-verifier",
		Short: "Verify Aadhaar card text read by OCR or from the QR code",
		Long: `aadhaar-verifier extracts identity fields from the text of an Aadhaar
card (OCR output of the front and back side, or the decoded QR payload),
validates the Aadhaar number checksum and compares the card with details
entered by a user. Aadhaar numbers are only ever reported masked.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			v, config, err := loadConfig(state.cfgFile)
			if err != nil {
				return err
			}
			if state.logLevel != "" {
				config.LogLevel = state.logLevel
			}
			logging.Setup(config.LogLevel, config.LogFormat)

			state.viper = v
			state.config = config
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(
		&state.cfgFile, "config", "", "config file (json or yaml), optional",
	)
	rootCmd.PersistentFlags().StringVar(
		&state.logLevel, "log-level", "", "log level: debug, info, warn or error (overrides the config file)",
	)

	rootCmd.AddCommand(
		newServeCmd(state),
		newVerifyCmd(state),
		newValidateCmd(),
		newVersionCmd(),
	)
	return rootCmd
}
