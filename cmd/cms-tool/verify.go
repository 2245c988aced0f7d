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
	"bytes"
	"crypto"
	"crypto/rsa"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"math/big"
	"os"

	"github.com/spf13/cobra"

	"github.com/go-pkix/cms/cms"
	"github.com/go-pkix/cms/internal/logging"
	"github.com/go-pkix/cms/sexpr"
	"github.com/go-pkix/cms/x509cert"
)

var (
	verifyInPath      string
	verifyContentPath string
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Parse and verify a detached CMS SignedData message",
	Long: `Parse a detached CMS SignedData message (spec scenario 4), recompute
the content digest from --content, and check the first signer's signature
against its own certificate.`,
	RunE: runVerify,
}

func init() {
	verifyCmd.Flags().StringVar(&verifyInPath, "in", "", "DER SignedData message to verify (required)")
	verifyCmd.Flags().StringVar(&verifyContentPath, "content", "", "detached content file to check the digest against")
	verifyCmd.MarkFlagRequired("in")
}

func runVerify(cmd *cobra.Command, args []string) error {
	log := logging.FromContext(cmd.Context())
	out := cmd.OutOrStdout()

	f, err := os.Open(verifyInPath)
	if err != nil {
		return logging.LogAndError(log, "opening SignedData message", err)
	}
	defer f.Close()

	ctx := &cms.Context{Reader: f, Log: log}

	if err := ctx.ParseContentInfo(); err != nil {
		return logging.LogAndError(log, "parsing ContentInfo", err)
	}
	fmt.Fprintf(out, "stop_reason: %s\n", ctx.StopReason())

	if err := ctx.ParseHeader(); err != nil {
		return logging.LogAndError(log, "parsing SignedData header", err)
	}
	fmt.Fprintf(out, "stop_reason: %s (detached=%v, content type=%s)\n", ctx.StopReason(), ctx.Detached, ctx.EncapsulatedContentType)

	if err := ctx.HashContent(); err != nil {
		return logging.LogAndError(log, "hashing content", err)
	}
	fmt.Fprintf(out, "stop_reason: %s\n", ctx.StopReason())

	if err := ctx.ParseSignerInfos(); err != nil {
		return logging.LogAndError(log, "parsing signer infos", err)
	}
	fmt.Fprintf(out, "stop_reason: %s\n", ctx.StopReason())

	if len(ctx.SignerInfos) == 0 {
		return fmt.Errorf("no signers found")
	}
	si := ctx.SignerInfos[0]
	fmt.Fprintf(out, "signer[0] digest algorithm: %s\n", si.DigestAlgorithm)
	fmt.Fprintf(out, "signer[0] message digest: %s\n", hex.EncodeToString(si.MessageDigest))

	if verifyContentPath != "" {
		content, err := os.ReadFile(verifyContentPath)
		if err != nil {
			return logging.LogAndError(log, "reading detached content file", err)
		}
		digest := sha1.Sum(content)
		if !bytes.Equal(digest[:], si.MessageDigest) {
			return fmt.Errorf("content digest mismatch: got %x, signer claims %x", digest, si.MessageDigest)
		}
		fmt.Fprintln(out, "content digest matches")
	}

	if len(ctx.Certificates) == 0 {
		fmt.Fprintln(out, "no certificates carried in message; cannot verify signature")
		return nil
	}
	cert, err := x509cert.ReadDER(bytes.NewReader(ctx.Certificates[0]))
	if err != nil {
		return logging.LogAndError(log, "decoding signer certificate", err)
	}
	pubSexp, err := sexpr.DERToPublicKey(cert.PublicKey())
	if err != nil {
		return logging.LogAndError(log, "converting signer public key", err)
	}
	rsaList := pubSexp.Get("rsa")
	if rsaList == nil {
		fmt.Fprintln(out, "signer public key is not RSA; skipping signature check")
		return nil
	}
	n := newBigIntFromBytes(rsaList.Field("n"))
	e := int(newBigIntFromBytes(rsaList.Field("e")).Int64())
	pub := &rsa.PublicKey{N: n, E: e}

	attrs := si.SignedAttributesDER()
	if attrs == nil {
		fmt.Fprintln(out, "signer has no signed attributes; skipping signature check")
		return nil
	}
	attrsDigest := sha1.Sum(attrs)
	if err := rsa.VerifyPKCS1v15(pub, crypto.SHA1, attrsDigest[:], si.Signature); err != nil {
		return fmt.Errorf("signature verification failed: %w", err)
	}
	fmt.Fprintln(out, "signature verified")
	return nil
}

func newBigIntFromBytes(b []byte) *big.Int {
	return new(big.Int).SetBytes(b)
}
