/*
Copyright (c) 2026 The go-pkix Authors

This program is free software; you can redistribute it and/or
modify it under the terms of the GNU General Public License
as published by the Free Software Foundation; version 3
of the License (ONLY this version).

This program is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.
*/

// Command cms-tool is a thin CLI test harness over the asn1/der/x509cert/cms
// packages, replacing the teacher's main/certificate-assembler.go and
// main/certificate-disassembler.go os.Args-parsing tools with a
// spf13/cobra command tree, the library qpki's cmd/qpki and
// brave-intl-bat-go/libs/cmd both build their CLIs with.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/go-pkix/cms/internal/logging"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "cms-tool",
	Short: "DER certificate and CMS SignedData test harness",
	Long: `cms-tool exercises the asn1/der/x509cert/cms packages from the
command line: dumping certificates, and building/verifying a detached CMS
SignedData message.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := zerolog.InfoLevel
		if verbose {
			level = zerolog.DebugLevel
		}
		logger := logging.New(true, level)
		cmd.SetContext(logging.WithContext(cmd.Context(), logger))
		return nil
	},
}

func main() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.AddCommand(certCmd, signCmd, verifyCmd)
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
