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

package main

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/go-pkix/cms/internal/logging"
	"github.com/go-pkix/cms/pathnav"
	"github.com/go-pkix/cms/sexpr"
	"github.com/go-pkix/cms/x509cert"
)

var certPath string

var certCmd = &cobra.Command{
	Use:   "cert <file.der>",
	Short: "Dump a DER certificate's fields",
	Args:  cobra.ExactArgs(1),
	RunE:  runCert,
}

func init() {
	certCmd.Flags().StringVar(&certPath, "path", "", "dump the raw content of a single field addressed by dotted path, e.g. tbsCertificate.serialNumber")
}

func runCert(cmd *cobra.Command, args []string) error {
	log := logging.FromContext(cmd.Context())
	f, err := os.Open(args[0])
	if err != nil {
		return logging.LogAndError(log, "opening certificate file", err)
	}
	defer f.Close()

	cert, err := x509cert.ReadDER(f)
	if err != nil {
		return logging.LogAndError(log, "decoding certificate", err)
	}
	log.Debug().Str("file", args[0]).Msg("certificate decoded")

	out := cmd.OutOrStdout()

	if certPath != "" {
		field := pathnav.Find(cert.Root(), pathnav.Parse(certPath))
		if field == nil || !field.Present() {
			return fmt.Errorf("path %q: no such field", certPath)
		}
		fmt.Fprintf(out, "%s: %x\n", certPath, field.Content())
		return nil
	}

	fmt.Fprintf(out, "serial: %s\n", hex.EncodeToString(cert.Serial()[4:]))
	if subject, err := cert.Subject(0); err == nil {
		fmt.Fprintf(out, "subject: %s\n", subject)
	}
	if issuer, err := cert.Issuer(0); err == nil {
		fmt.Fprintf(out, "issuer: %s\n", issuer)
	}
	if nb, err := cert.Validity(0); err == nil {
		fmt.Fprintf(out, "not before: %s\n", nb)
	}
	if na, err := cert.Validity(1); err == nil {
		fmt.Fprintf(out, "not after: %s\n", na)
	}
	if isCA, err := cert.IsCA(); err == nil {
		fmt.Fprintf(out, "CA: %v\n", isCA)
	}
	if ku, err := cert.KeyUsage(); err == nil {
		fmt.Fprintf(out, "key usage: %#x\n", ku)
	}

	for idx := 0; ; idx++ {
		ext, err := cert.Extension(idx)
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "extension[%d]: %s critical=%v\n", idx, ext.OID, ext.Critical)
	}

	pub, err := sexpr.DERToPublicKey(cert.PublicKey())
	if err != nil {
		log.Warn().Err(err).Msg("could not convert public key to S-expression")
	} else {
		fmt.Fprintf(out, "public key: %s\n", sexpr.Encode(pub))
	}
	return nil
}
