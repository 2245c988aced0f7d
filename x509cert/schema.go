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

// Package x509cert implements the certificate reader of spec §4.6: the
// Certificate ASN.1 schema plus accessors for its semantic content, built
// on top of asn1/der/pathnav the way the teacher's main/
// certificate-disassembler.go loaded rfc.DisassemblerMappings-style module
// text and instantiated "Certificate" against it.
package x509cert

import (
	"github.com/go-pkix/cms/asn1"
	"github.com/go-pkix/cms/rfc"
)

// PKIX1988 is the RFC 5280 ASN.1 module text for Certificate and its
// nested types, trimmed to the productions this reader's accessors
// actually walk. AttributeTypeAndValue values are intentionally loose
// (ANY instead of a DirectoryString CHOICE) since spec §4.6 only requires
// DN formatting, not per-attribute-type validation.
const PKIX1988 = `
PKIX1Implicit88 DEFINITIONS IMPLICIT TAGS ::= BEGIN

Certificate ::= SEQUENCE {
  tbsCertificate TBSCertificate,
  signatureAlgorithm AlgorithmIdentifier,
  signatureValue BIT STRING
}

TBSCertificate ::= SEQUENCE {
  version [0] EXPLICIT INTEGER OPTIONAL,
  serialNumber INTEGER,
  signature AlgorithmIdentifier,
  issuer Name,
  validity Validity,
  subject Name,
  subjectPublicKeyInfo SubjectPublicKeyInfo,
  issuerUniqueID [1] IMPLICIT BIT STRING OPTIONAL,
  subjectUniqueID [2] IMPLICIT BIT STRING OPTIONAL,
  extensions [3] EXPLICIT Extensions OPTIONAL
}

AlgorithmIdentifier ::= SEQUENCE {
  algorithm OBJECT IDENTIFIER,
  parameters ANY OPTIONAL
}

Name ::= SEQUENCE OF RelativeDistinguishedName
RelativeDistinguishedName ::= SET OF AttributeTypeAndValue
AttributeTypeAndValue ::= SEQUENCE {
  attrType OBJECT IDENTIFIER,
  attrValue ANY
}

Validity ::= SEQUENCE {
  notBefore Time,
  notAfter Time
}

Time ::= CHOICE {
  utcTime UTCTime,
  generalTime GeneralizedTime
}

SubjectPublicKeyInfo ::= SEQUENCE {
  algorithm AlgorithmIdentifier,
  subjectPublicKey BIT STRING
}

Extensions ::= SEQUENCE OF Extension
Extension ::= SEQUENCE {
  extnID OBJECT IDENTIFIER,
  critical BOOLEAN DEFAULT FALSE,
  extnValue OCTET STRING
}

BasicConstraints ::= SEQUENCE {
  cA BOOLEAN DEFAULT FALSE,
  pathLenConstraint INTEGER OPTIONAL
}

KeyUsage ::= BIT STRING {
  digitalSignature(0), nonRepudiation(1), keyEncipherment(2),
  dataEncipherment(3), keyAgreement(4), keyCertSign(5), cRLSign(6),
  encipherOnly(7), decipherOnly(8)
}

CertificatePolicies ::= SEQUENCE OF PolicyInformation
PolicyInformation ::= SEQUENCE {
  policyIdentifier OBJECT IDENTIFIER,
  policyQualifiers SEQUENCE OF PolicyQualifierInfo OPTIONAL
}
PolicyQualifierInfo ::= SEQUENCE {
  policyQualifierId OBJECT IDENTIFIER,
  qualifier ANY
}

SubjectKeyIdentifier ::= OCTET STRING

AuthorityKeyIdentifier ::= SEQUENCE {
  keyIdentifier [0] IMPLICIT OCTET STRING OPTIONAL,
  authorityCertIssuer [1] IMPLICIT GeneralNames OPTIONAL,
  authorityCertSerialNumber [2] IMPLICIT INTEGER OPTIONAL
}

GeneralNames ::= SEQUENCE OF GeneralName
GeneralName ::= CHOICE {
  rfc822Name [1] IMPLICIT IA5String,
  dNSName [2] IMPLICIT IA5String,
  directoryName [4] EXPLICIT Name,
  uniformResourceIdentifier [6] IMPLICIT IA5String,
  iPAddress [7] IMPLICIT OCTET STRING
}

CRLDistributionPoints ::= SEQUENCE OF DistributionPoint
DistributionPoint ::= SEQUENCE {
  distributionPoint [0] EXPLICIT DistributionPointName OPTIONAL,
  reasons [1] IMPLICIT ReasonFlags OPTIONAL,
  cRLIssuer [2] IMPLICIT GeneralNames OPTIONAL
}
DistributionPointName ::= CHOICE {
  fullName [0] IMPLICIT GeneralNames,
  nameRelativeToCRLIssuer [1] IMPLICIT RelativeDistinguishedName
}
ReasonFlags ::= BIT STRING {
  unused(0), keyCompromise(1), cACompromise(2), affiliationChanged(3),
  superseded(4), cessationOfOperation(5), certificateHold(6),
  privilegeWithdrawn(7), aACompromise(8)
}

END
`

// Schema is the module set every Certificate is decoded against. It also
// carries the OID value assignments rfc.PKIXArcs defines (resolvable with
// ResolveOIDValue); the accessors in this package compare attribute and
// extension OIDs against asn1.OID literals, not against those assignments.
var Schema = func() *asn1.ModuleSet {
	ms := asn1.NewModuleSet()
	if _, err := ms.Parse(rfc.PKIXArcs); err != nil {
		panic(err)
	}
	if _, err := ms.Parse(PKIX1988); err != nil {
		panic(err)
	}
	return ms
}()
