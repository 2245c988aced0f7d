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
	"github.com/go-pkix/cms/asn1"
)

// Begin is the build side's first call: it validates the caller has set a
// content type, at least one digest algorithm, and at least one signer,
// and sets stop_reason ← GotContent, without yet deciding detached/attached
// or emitting anything. This mirrors the original's first ksba_cms_build
// call, which only validates the writer/handler/encapsulated content type
// before returning KSBA_SR_GOT_CONTENT — the detached/attached decision and
// header emission happen on the following call, BuildHeader.
func (c *Context) Begin() error {
	if c.stop != Running {
		return asn1.NewError(asn1.InvalidState, "Begin called out of order")
	}
	if len(c.ContentType) == 0 {
		c.ContentType = OIDSignedData
	}
	if len(c.EncapsulatedContentType) == 0 {
		return asn1.NewError(asn1.MissingAction, "encapsulated content type not set")
	}
	if len(c.DigestAlgorithms) == 0 {
		return asn1.NewError(asn1.MissingAction, "no digest algorithm added")
	}
	if len(c.Signers) == 0 {
		return asn1.NewError(asn1.MissingAction, "no signer added")
	}
	c.stop = GotContent
	c.logf("build: got content parameters")
	return nil
}

// BuildHeader is spec §4.7's second build call: it decides whether this
// will be a detached signature ("if any signer's message digest is
// pre-set, detached_signature ← true and stop_reason ← EndData; otherwise
// stop_reason ← BeginData"), matching the original's ct_build_signed_data,
// which requires GOT_CONTENT and is the call that actually emits the
// SignedData header and advances to END_DATA/BEGIN_DATA.
func (c *Context) BuildHeader() error {
	if c.stop != GotContent {
		return asn1.NewError(asn1.InvalidState, "BuildHeader called outside GotContent")
	}
	for _, s := range c.Signers {
		if s.MessageDigest != nil {
			c.Detached = true
			break
		}
	}
	if c.Detached {
		c.stop = EndData
	} else {
		c.stop = BeginData
	}
	c.logf("build: began SignedData")
	return nil
}

// WriteContent appends content bytes for a non-detached build. Valid only
// while stop_reason == BeginData.
func (c *Context) WriteContent(data []byte) error {
	if c.stop != BeginData {
		return asn1.NewError(asn1.InvalidState, "WriteContent called outside BeginData")
	}
	c.buf = append(c.buf, data...)
	return nil
}

// EndContent closes the content-writing step (spec §4.7's BeginData →
// EndData transition). For a detached build this is a no-op: BuildHeader
// already left stop_reason at EndData.
func (c *Context) EndContent() error {
	switch c.stop {
	case BeginData:
		c.stop = EndData
		c.logf("build: content written")
		return nil
	case EndData:
		return nil
	default:
		return asn1.NewError(asn1.InvalidState, "EndContent called outside BeginData/EndData")
	}
}

// SetMessageDigest records signer idx's precomputed (detached) or
// caller-hashed (attached) message digest. Required before
// BuildSignedAttributes.
func (c *Context) SetMessageDigest(idx int, digest []byte) error {
	if idx < 0 || idx >= len(c.Signers) {
		return asn1.NewError(asn1.InvalidIndex, "signer index out of range")
	}
	c.Signers[idx].MessageDigest = digest
	return nil
}

// BuildSignedAttributes is spec §4.7's "next call" after EndData: it
// builds the signedAttributes subtree for each signer containing the
// mandatory messageDigest attribute, and sets stop_reason ← NeedSig.
func (c *Context) BuildSignedAttributes() error {
	if c.stop != EndData {
		return asn1.NewError(asn1.InvalidState, "BuildSignedAttributes called outside EndData")
	}
	for _, s := range c.Signers {
		if s.MessageDigest == nil {
			return asn1.NewError(asn1.MissingAction, "signer has no message digest set")
		}
		attr := sequence(append(encodeOID(OIDMessageDigest), set(octetString(s.MessageDigest))...))
		s.signedAttrsDER = set(attr)
	}
	c.stop = NeedSig
	c.logf("build: signed attributes ready")
	return nil
}

// HashSignedAttrs feeds signer idx's signedAttrs DER, with its outer tag
// rewritten from [0] IMPLICIT to the UNIVERSAL SET tag (0x31) per RFC 2630
// §5.4, to the installed Hasher exactly once.
func (c *Context) HashSignedAttrs(idx int) error {
	if c.stop != NeedSig {
		return asn1.NewError(asn1.InvalidState, "HashSignedAttrs called outside NeedSig")
	}
	if idx < 0 || idx >= len(c.Signers) {
		return asn1.NewError(asn1.InvalidIndex, "signer index out of range")
	}
	if c.Hash == nil {
		return asn1.NewError(asn1.MissingAction, "no hash function installed")
	}
	s := c.Signers[idx]
	if s.signedAttrsDER == nil {
		return asn1.NewError(asn1.InvalidState, "signed attributes not built yet")
	}
	c.Hash.Write(s.signedAttrsDER) // already SET-tagged (0x31) by BuildSignedAttributes
	return nil
}

// SetSigVal deposits the externally computed signature for signer idx,
// replacing the original's placeholder 5-byte "xxxxx" (spec §9's open
// question about the original's /* fixme */ signature value).
func (c *Context) SetSigVal(idx int, sig []byte) error {
	if c.stop != NeedSig {
		return asn1.NewError(asn1.InvalidState, "SetSigVal called outside NeedSig")
	}
	if idx < 0 || idx >= len(c.Signers) {
		return asn1.NewError(asn1.InvalidIndex, "signer index out of range")
	}
	c.Signers[idx].Signature = sig
	return nil
}

// Finish writes signerInfos and the surrounding ContentInfo/SignedData
// structure to c.Writer and sets stop_reason ← Ready.
func (c *Context) Finish() error {
	if c.stop != NeedSig {
		return asn1.NewError(asn1.InvalidState, "Finish called outside NeedSig")
	}
	for _, s := range c.Signers {
		if s.Signature == nil {
			return asn1.NewError(asn1.MissingAction, "signer has no signature value set")
		}
	}
	if c.Writer == nil {
		return asn1.NewError(asn1.MissingAction, "no writer installed")
	}

	var digestAlgos [][]byte
	for _, a := range c.DigestAlgorithms {
		digestAlgos = append(digestAlgos, sequence(encodeOID(a)))
	}
	encapContent := encodeOID(c.EncapsulatedContentType)
	if !c.Detached {
		encapContent = append(encapContent, contextTag(0, true, octetString(c.buf))...)
	}

	var certs [][]byte
	var signerInfos [][]byte
	for _, s := range c.Signers {
		certs = append(certs, s.Certificate)

		sid := sequence(append(append([]byte{}, s.issuer...), encodeIntegerBytes(s.serial)...))
		digestAlgo := sequence(encodeOID(s.DigestAlgo))
		sigAlgo := sequence(encodeOID(s.SignatureAlgo))
		signedAttrsTag := contextTag(0, true, stripOuterTag(s.signedAttrsDER))
		signerInfo := sequence(concatAll(
			encodeInteger(1),
			sid,
			digestAlgo,
			signedAttrsTag,
			sigAlgo,
			octetString(s.Signature),
		))
		signerInfos = append(signerInfos, signerInfo)
	}

	signedData := sequence(concatAll(
		encodeInteger(1),
		set(sortSetOf(digestAlgos)),
		sequence(encapContent),
		contextTag(0, true, sortSetOf(certs)),
		set(sortSetOf(signerInfos)),
	))

	contentInfo := sequence(concatAll(
		encodeOID(c.ContentType),
		contextTag(0, true, signedData),
	))

	if _, err := c.Writer.Write(contentInfo); err != nil {
		return err
	}
	c.stop = Ready
	c.logf("build: SignedData complete")
	return nil
}

func concatAll(parts ...[]byte) []byte {
	var out []byte
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

func encodeIntegerBytes(content []byte) []byte {
	return tlv(asn1.ClassUniversal, 2, false, content)
}

// stripOuterTag drops the leading SET (0x31, possibly multi-byte length)
// header from a DER TLV, leaving just its content — used to re-wrap
// signedAttrs under the SignerInfo's own [0] IMPLICIT tag after it was
// built (and hashed) under the UNIVERSAL SET tag.
func stripOuterTag(der []byte) []byte {
	if len(der) < 2 {
		return nil
	}
	n := int(der[1])
	if n < 0x80 {
		return der[2:]
	}
	return der[2+(n&0x7f):]
}
