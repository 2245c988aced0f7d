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

// Package cms implements the CMS SignedData build/parse state machine of
// spec §4.7-§4.8, grounded on original_source/src/cms.c's ksba_cms_*
// coarse-continuation design and the teacher's schema+DER approach to
// everything below that state machine.
package cms

import (
	"github.com/go-pkix/cms/asn1"
	"github.com/go-pkix/cms/x509cert"
)

// cmsModule is the RFC 2630 ASN.1 text for ContentInfo and SignedData,
// trimmed to the productions the build/parse machine actually visits.
// EnvelopedData/DigestedData/EncryptedData/bare Data are deliberately
// absent — spec §1's Non-goals.
const cmsModule = `
CryptographicMessageSyntax DEFINITIONS IMPLICIT TAGS ::= BEGIN

ContentInfo ::= SEQUENCE {
  contentType OBJECT IDENTIFIER,
  content [0] EXPLICIT ANY OPTIONAL
}

SignedData ::= SEQUENCE {
  version INTEGER,
  digestAlgorithms SET OF AlgorithmIdentifier,
  encapContentInfo EncapsulatedContentInfo,
  certificates [0] IMPLICIT SET OF CertificateChoices OPTIONAL,
  crls [1] IMPLICIT SET OF RevocationInfoChoice OPTIONAL,
  signerInfos SET OF SignerInfo
}

EncapsulatedContentInfo ::= SEQUENCE {
  eContentType OBJECT IDENTIFIER,
  eContent [0] EXPLICIT OCTET STRING OPTIONAL
}

CertificateChoices ::= CHOICE {
  certificate Certificate
}

RevocationInfoChoice ::= CHOICE {
  crl CertificateList
}

CertificateList ::= SEQUENCE {
  tbsCertList ANY,
  signatureAlgorithm AlgorithmIdentifier,
  signatureValue BIT STRING
}

SignerInfo ::= SEQUENCE {
  version INTEGER,
  sid IssuerAndSerialNumber,
  digestAlgorithm AlgorithmIdentifier,
  signedAttrs [0] IMPLICIT SET OF Attribute OPTIONAL,
  signatureAlgorithm AlgorithmIdentifier,
  signature OCTET STRING,
  unsignedAttrs [1] IMPLICIT SET OF Attribute OPTIONAL
}

IssuerAndSerialNumber ::= SEQUENCE {
  issuer Name,
  serialNumber INTEGER
}

Attribute ::= SEQUENCE {
  attrType OBJECT IDENTIFIER,
  attrValues SET OF ANY
}

SignedAttributes ::= SET OF Attribute

END
`

// Schema is the module set SignedData is decoded and built against; it
// imports x509cert's Certificate/Name/AlgorithmIdentifier productions the
// same way a PKIX module would IMPORT them from another ASN.1 module.
var Schema = func() *asn1.ModuleSet {
	ms := asn1.NewModuleSet()
	if _, err := ms.Parse(x509cert.PKIX1988); err != nil {
		panic(err)
	}
	if _, err := ms.Parse(cmsModule); err != nil {
		panic(err)
	}
	return ms
}()

// OIDs of note (spec §6).
var (
	OIDData          = asn1.OID{1, 2, 840, 113549, 1, 7, 1}
	OIDSignedData    = asn1.OID{1, 2, 840, 113549, 1, 7, 2}
	OIDEnvelopedData = asn1.OID{1, 2, 840, 113549, 1, 7, 3}
	OIDDigestedData  = asn1.OID{1, 2, 840, 113549, 1, 7, 5}
	OIDEncryptedData = asn1.OID{1, 2, 840, 113549, 1, 7, 6}
	OIDAuthData      = asn1.OID{1, 2, 840, 113549, 1, 9, 16, 1, 2}
	OIDMessageDigest = asn1.OID{1, 2, 840, 113549, 1, 9, 4}
	OIDContentType   = asn1.OID{1, 2, 840, 113549, 1, 9, 3}
	OIDSigningTime   = asn1.OID{1, 2, 840, 113549, 1, 9, 5}
)
