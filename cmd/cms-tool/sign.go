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
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha1"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"hash"
	"os"

	"github.com/spf13/cobra"

	"github.com/go-pkix/cms/asn1"
	"github.com/go-pkix/cms/cms"
	"github.com/go-pkix/cms/internal/logging"
)

var (
	signCertPath    string
	signKeyPath     string
	signContentPath string
	signOutPath     string
)

var oidSHA1 = asn1.OID{1, 3, 14, 3, 2, 26}
var oidSHA1WithRSA = asn1.OID{1, 2, 840, 113549, 1, 1, 5}

var signCmd = &cobra.Command{
	Use:   "sign",
	Short: "Build a detached CMS SignedData message",
	Long: `Build a detached CMS SignedData message (spec scenario 3): SHA-1
digest over --content, signed with the RSA private key at --key, signer
certificate --cert, written to --out.`,
	RunE: runSign,
}

func init() {
	signCmd.Flags().StringVar(&signCertPath, "cert", "", "signer certificate DER file (required)")
	signCmd.Flags().StringVar(&signKeyPath, "key", "", "signer RSA private key PEM file (required)")
	signCmd.Flags().StringVar(&signContentPath, "content", "", "content file to digest and sign (required)")
	signCmd.Flags().StringVar(&signOutPath, "out", "", "output path for the DER SignedData message (required)")
	signCmd.MarkFlagRequired("cert")
	signCmd.MarkFlagRequired("key")
	signCmd.MarkFlagRequired("content")
	signCmd.MarkFlagRequired("out")
}

// accumHasher is the concrete cms.Hasher this command installs: it
// satisfies the library's single-method Write interface and additionally
// exposes Sum, which the library itself never calls.
type accumHasher struct{ h hash.Hash }

func (a *accumHasher) Write(data []byte) { a.h.Write(data) }
func (a *accumHasher) Sum() []byte       { return a.h.Sum(nil) }

func runSign(cmd *cobra.Command, args []string) error {
	log := logging.FromContext(cmd.Context())

	certDER, err := os.ReadFile(signCertPath)
	if err != nil {
		return logging.LogAndError(log, "reading signer certificate", err)
	}
	content, err := os.ReadFile(signContentPath)
	if err != nil {
		return logging.LogAndError(log, "reading content file", err)
	}
	privKey, err := readRSAPrivateKey(signKeyPath)
	if err != nil {
		return logging.LogAndError(log, "reading signer private key", err)
	}

	digest := sha1.Sum(content)

	ctx := &cms.Context{
		EncapsulatedContentType: cms.OIDData,
		DigestAlgorithms:        []asn1.OID{oidSHA1},
		Log:                     log,
	}
	signer, err := ctx.AddSigner(certDER, oidSHA1)
	if err != nil {
		return err
	}
	signer.SignatureAlgo = oidSHA1WithRSA
	signer.MessageDigest = digest[:]

	if err := ctx.Begin(); err != nil {
		return err
	}
	log.Debug().Str("stop_reason", ctx.StopReason().String()).Msg("after Begin")

	if err := ctx.BuildHeader(); err != nil {
		return err
	}
	log.Debug().Str("stop_reason", ctx.StopReason().String()).Msg("after BuildHeader")

	if err := ctx.BuildSignedAttributes(); err != nil {
		return err
	}

	accum := &accumHasher{h: sha1.New()}
	ctx.Hash = accum
	if err := ctx.HashSignedAttrs(0); err != nil {
		return err
	}

	sig, err := rsa.SignPKCS1v15(rand.Reader, privKey, crypto.SHA1, accum.Sum())
	if err != nil {
		return logging.LogAndError(log, "signing digest", err)
	}
	if err := ctx.SetSigVal(0, sig); err != nil {
		return logging.LogAndError(log, "attaching signature value", err)
	}

	out, err := os.Create(signOutPath)
	if err != nil {
		return logging.LogAndError(log, "creating output file", err)
	}
	defer out.Close()
	ctx.Writer = out

	if err := ctx.Finish(); err != nil {
		return logging.LogAndError(log, "finishing SignedData message", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote detached SignedData to %s (stop_reason=%s)\n", signOutPath, ctx.StopReason())
	return nil
}

func readRSAPrivateKey(path string) (*rsa.PrivateKey, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	block, _ := pem.Decode(raw)
	if block == nil {
		return nil, fmt.Errorf("%s: no PEM block found", path)
	}
	if key, err := x509.ParsePKCS1PrivateKey(block.Bytes); err == nil {
		return key, nil
	}
	key, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, err
	}
	rsaKey, ok := key.(*rsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("%s: not an RSA private key", path)
	}
	return rsaKey, nil
}
