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

package cms

import (
	"io"

	"github.com/go-pkix/cms/asn1"
	"github.com/go-pkix/cms/der"
	"github.com/rs/zerolog"
)

// StopReason is the coarse-continuation discriminant of spec §4.7/§4.8.
type StopReason int

const (
	Running StopReason = iota
	GotContent
	NeedHash
	BeginData
	EndData
	NeedSig
	Ready
)

func (s StopReason) String() string {
	switch s {
	case GotContent:
		return "GotContent"
	case NeedHash:
		return "NeedHash"
	case BeginData:
		return "BeginData"
	case EndData:
		return "EndData"
	case NeedSig:
		return "NeedSig"
	case Ready:
		return "Ready"
	default:
		return "Running"
	}
}

// Hasher is the caller-supplied capability object spec §9 asks for instead
// of a global hook: one method, fed chunks of content to digest.
type Hasher interface {
	Write(data []byte)
}

// Signer is one build-side signer: a certificate (kept as its own DER
// span so it can be copied verbatim into certificates), a digest
// algorithm OID, and, once computed, the signer's message digest and
// final signature.
type Signer struct {
	Certificate   []byte // DER Certificate
	DigestAlgo    asn1.OID
	SignatureAlgo asn1.OID
	MessageDigest []byte
	Signature     []byte

	issuer         []byte // DER Name, from Certificate, filled by AddSigner
	serial         []byte // DER INTEGER content, from Certificate
	signedAttrsDER []byte // SET-tagged (0x31) DER of signedAttrs, built by BuildSignedAttributes
}

// Context is the CMS SignedData engine of spec §3/§4.7. It drives either
// a parse or a build, never both — the zero value is ready for either,
// the first call determines which.
type Context struct {
	stop StopReason

	// Shared fields.
	ContentType             asn1.OID
	EncapsulatedContentType asn1.OID
	DigestAlgorithms        []asn1.OID
	Detached                bool

	Signers []*Signer

	Hash Hasher

	Reader io.Reader
	Writer io.Writer

	Log *zerolog.Logger

	// Parse-side state.
	parseImage       *der.Image
	parseContentInfo *der.Node
	parseRoot        *der.Node // SignedData
	pendingContent   []byte

	Certificates [][]byte // DER Certificate, in message order
	CRLs         [][]byte // DER CertificateList, in message order
	SignerInfos  []*SignerInfo

	// Build-side state.
	buf []byte
}

// SignerInfo is one parsed SignerInfo: the fields needed to look up the
// signer's certificate and verify its signature.
type SignerInfo struct {
	Version            int
	Issuer             []byte // DER Name
	SerialNumber       []byte // big-endian INTEGER content
	DigestAlgorithm    asn1.OID
	SignatureAlgorithm asn1.OID
	Signature          []byte
	MessageDigest      []byte // from the signedAttrs messageDigest attribute, if present

	signedAttrsNode *der.Node // raw signedAttrs SET OF Attribute, or nil if absent
}

// IssuerSerial returns the IssuerAndSerialNumber this SignerInfo identifies
// its signer by, as used to match against a Context.Certificate DER blob.
func (si *SignerInfo) IssuerSerial() (issuer, serial []byte) {
	return si.Issuer, si.SerialNumber
}

// SignedAttributesDER returns the UNIVERSAL SET (0x31) tagged DER of this
// SignerInfo's signedAttrs — the same bytes HashSignedAttrs digests on the
// build side (RFC 2630 §5.4) — for an external verifier to hash and check
// against Signature. Returns nil if signedAttrs is absent.
func (si *SignerInfo) SignedAttributesDER() []byte {
	if si.signedAttrsNode == nil {
		return nil
	}
	return set(si.signedAttrsNode.Content())
}

// SignedAttributeOIDs lists the attrType OIDs present in this SignerInfo's
// signedAttrs, or nil if signedAttrs is absent.
func (si *SignerInfo) SignedAttributeOIDs() ([]asn1.OID, error) {
	if si.signedAttrsNode == nil {
		return nil, nil
	}
	var oids []asn1.OID
	for _, attr := range si.signedAttrsNode.Children {
		if !attr.Present() {
			continue
		}
		oid, err := decodeOIDNode(attr.Child("attrType"))
		if err != nil {
			return nil, err
		}
		oids = append(oids, oid)
	}
	return oids, nil
}

// StopReason reports the machine's current coarse-continuation state.
func (c *Context) StopReason() StopReason { return c.stop }

func (c *Context) logf(event string) {
	if c.Log != nil {
		c.Log.Debug().Str("stop_reason", c.stop.String()).Msg(event)
	}
}

// AddSigner registers a signer's certificate and digest algorithm for a
// build. certDER is the signer's own Certificate, used verbatim for
// IssuerAndSerialNumber and for the certificates field.
func (c *Context) AddSigner(certDER []byte, digestAlgo asn1.OID) (*Signer, error) {
	s := &Signer{Certificate: certDER, DigestAlgo: digestAlgo}
	issuer, serial, err := issuerAndSerialFromCertificate(certDER)
	if err != nil {
		return nil, err
	}
	s.issuer = issuer
	s.serial = serial
	c.Signers = append(c.Signers, s)
	return s, nil
}

func issuerAndSerialFromCertificate(certDER []byte) (issuer, serial []byte, err error) {
	schema, err := x509certSchemaLookup("Certificate")
	if err != nil {
		return nil, nil, err
	}
	image := &der.Image{Bytes: certDER}
	root, _, err := der.Decode(image, 0, schema, Schema)
	if err != nil {
		return nil, nil, err
	}
	tbs := root.Child("tbsCertificate")
	return tbs.Child("issuer").Span(), tbs.Child("serialNumber").Content(), nil
}

func x509certSchemaLookup(name string) (*asn1.Node, error) {
	return Schema.Lookup(name)
}

// Certificate returns the DER encoding of the idx'th certificate carried in
// a parsed SignedData, or io.EOF past the last one.
func (c *Context) Certificate(idx int) ([]byte, error) {
	if idx < 0 || idx >= len(c.Certificates) {
		return nil, io.EOF
	}
	return c.Certificates[idx], nil
}

// CRL returns the DER encoding of the idx'th CertificateList carried in a
// parsed SignedData, or io.EOF past the last one.
func (c *Context) CRL(idx int) ([]byte, error) {
	if idx < 0 || idx >= len(c.CRLs) {
		return nil, io.EOF
	}
	return c.CRLs[idx], nil
}
