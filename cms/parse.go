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
)

// ParseContentInfo is the parse side's first call (spec §4.7): it reads the
// whole message from c.Reader, decodes the outer ContentInfo, checks that
// its contentType is signedData, and sets stop_reason ← GotContent.
func (c *Context) ParseContentInfo() error {
	if c.stop != Running {
		return asn1.NewError(asn1.InvalidState, "ParseContentInfo called out of order")
	}
	if c.Reader == nil {
		return asn1.NewError(asn1.MissingAction, "no reader installed")
	}
	raw, err := io.ReadAll(c.Reader)
	if err != nil {
		return err
	}
	schema, err := Schema.Lookup("ContentInfo")
	if err != nil {
		return err
	}
	image := &der.Image{Bytes: raw}
	root, _, err := der.Decode(image, 0, schema, Schema)
	if err != nil {
		return err
	}
	oidNode := root.Child("contentType")
	oid, err := decodeOIDNode(oidNode)
	if err != nil {
		return err
	}
	if !oid.Equal(OIDSignedData) {
		return asn1.NewError(asn1.UnknownCmsObject, "contentType is not signedData")
	}
	c.parseImage = image
	c.parseContentInfo = root
	c.ContentType = oid
	c.stop = GotContent
	c.logf("parse: got ContentInfo")
	return nil
}

// ParseHeader is spec §4.7's second call: it decodes SignedData's version,
// digestAlgorithms and encapContentInfo, and decides whether the signature
// is detached. Non-detached content is buffered for HashContent to stream
// through the installed Hasher on the next call.
func (c *Context) ParseHeader() error {
	if c.stop != GotContent {
		return asn1.NewError(asn1.InvalidState, "ParseHeader called outside GotContent")
	}
	content := c.parseContentInfo.Child("content")
	if content == nil {
		return asn1.NewError(asn1.InvalidCmsObject, "ContentInfo has no content")
	}
	schema, err := Schema.Lookup("SignedData")
	if err != nil {
		return err
	}
	root, _, err := der.Decode(c.parseImage, content.Off+content.Nhdr, schema, Schema)
	if err != nil {
		return err
	}
	c.parseRoot = root

	digestAlgos := root.Child("digestAlgorithms")
	c.DigestAlgorithms = c.DigestAlgorithms[:0]
	for _, alg := range digestAlgos.Children {
		if !alg.Present() {
			continue
		}
		oid, err := decodeOIDNode(alg.Child("algorithm"))
		if err != nil {
			return err
		}
		c.DigestAlgorithms = append(c.DigestAlgorithms, oid)
	}

	encap := root.Child("encapContentInfo")
	eContentType, err := decodeOIDNode(encap.Child("eContentType"))
	if err != nil {
		return err
	}
	c.EncapsulatedContentType = eContentType

	eContent := encap.Child("eContent")
	if eContent == nil {
		c.Detached = true
		c.stop = NeedHash
	} else {
		c.Detached = false
		// eContent is [0] EXPLICIT OCTET STRING: its own Content() would
		// return the inner OCTET STRING's full TLV (tag+length+value), not
		// just the value octets, so the actual content has to come from
		// the EXPLICIT wrapper's one child instead.
		c.pendingContent = append([]byte{}, eContent.Children[0].Content()...)
		c.stop = BeginData
	}
	c.logf("parse: parsed SignedData header")
	return nil
}

// ReadContent returns the buffered eContent for a non-detached message.
// Valid while stop_reason == BeginData, before HashContent consumes it.
func (c *Context) ReadContent() ([]byte, error) {
	if c.stop != BeginData {
		return nil, asn1.NewError(asn1.InvalidState, "ReadContent called outside BeginData")
	}
	return c.pendingContent, nil
}

// HashContent closes the content/hash step (spec §4.7's "ends at EndData").
// For an attached message it streams the buffered eContent through the
// installed Hasher; for a detached message there is nothing to stream and
// the caller is expected to have hashed the external content on its own.
func (c *Context) HashContent() error {
	switch c.stop {
	case NeedHash:
		c.stop = EndData
		c.logf("parse: detached content acknowledged")
		return nil
	case BeginData:
		if c.Hash == nil {
			return asn1.NewError(asn1.MissingAction, "no hash function installed")
		}
		c.Hash.Write(c.pendingContent)
		c.stop = EndData
		c.logf("parse: content hashed")
		return nil
	default:
		return asn1.NewError(asn1.InvalidState, "HashContent called outside NeedHash/BeginData")
	}
}

// ParseSignerInfos is spec §4.7's final call: it parses certificates, crls
// and signerInfos, materializes each SignerInfo's issuer/serial and signed
// attributes, and sets stop_reason ← Ready.
func (c *Context) ParseSignerInfos() error {
	if c.stop != EndData {
		return asn1.NewError(asn1.InvalidState, "ParseSignerInfos called outside EndData")
	}

	if certs := c.parseRoot.Child("certificates"); certs != nil {
		for _, choice := range certs.Children {
			if !choice.Present() {
				continue
			}
			cert := choice.Children[0] // CertificateChoices has one alternative: certificate
			c.Certificates = append(c.Certificates, cert.Span())
		}
	}
	if crls := c.parseRoot.Child("crls"); crls != nil {
		for _, choice := range crls.Children {
			if !choice.Present() {
				continue
			}
			crl := choice.Children[0]
			c.CRLs = append(c.CRLs, crl.Span())
		}
	}

	signerInfos := c.parseRoot.Child("signerInfos")
	if signerInfos == nil {
		return asn1.NewError(asn1.InvalidCmsObject, "SignedData has no signerInfos")
	}
	for _, si := range signerInfos.Children {
		if !si.Present() {
			continue
		}
		info, err := parseSignerInfo(si)
		if err != nil {
			return err
		}
		c.SignerInfos = append(c.SignerInfos, info)
	}
	if len(c.SignerInfos) == 0 {
		return asn1.NewError(asn1.InvalidCmsObject, "SignedData has no signers")
	}

	c.stop = Ready
	c.logf("parse: SignedData complete")
	return nil
}

func parseSignerInfo(si *der.Node) (*SignerInfo, error) {
	sid := si.Child("sid")
	digestAlgo, err := decodeOIDNode(si.Child("digestAlgorithm").Child("algorithm"))
	if err != nil {
		return nil, err
	}
	sigAlgo, err := decodeOIDNode(si.Child("signatureAlgorithm").Child("algorithm"))
	if err != nil {
		return nil, err
	}
	info := &SignerInfo{
		Issuer:             sid.Child("issuer").Span(),
		SerialNumber:       sid.Child("serialNumber").Content(),
		DigestAlgorithm:    digestAlgo,
		SignatureAlgorithm: sigAlgo,
		Signature:          si.Child("signature").Content(),
	}
	if attrs := si.Child("signedAttrs"); attrs != nil {
		info.signedAttrsNode = attrs
		for _, attr := range attrs.Children {
			if !attr.Present() {
				continue
			}
			oid, err := decodeOIDNode(attr.Child("attrType"))
			if err != nil {
				return nil, err
			}
			if oid.Equal(OIDMessageDigest) {
				values := attr.Child("attrValues")
				if values != nil && len(values.Children) > 0 {
					info.MessageDigest = append([]byte{}, values.Children[0].Content()...)
				}
			}
		}
	}
	return info, nil
}

// decodeOIDNode decodes the OID content of a decoded OBJECT IDENTIFIER node.
func decodeOIDNode(n *der.Node) (asn1.OID, error) {
	if n == nil {
		return nil, asn1.NewError(asn1.InvalidData, "missing OBJECT IDENTIFIER field")
	}
	content := n.Content()
	if len(content) == 0 {
		return nil, asn1.NewError(asn1.InvalidData, "empty OID content")
	}
	oid := asn1.OID{int(content[0]) / 40, int(content[0]) % 40}
	val := 0
	for _, b := range content[1:] {
		val = val<<7 | int(b&0x7f)
		if b&0x80 == 0 {
			oid = append(oid, val)
			val = 0
		}
	}
	return oid, nil
}
