// Package rfc carries ASN.1 module source for the OID arcs PKIX extensions
// are registered under, exactly as value assignments rather than hand-typed
// dotted strings — the same technique the teacher's main/
// certificate-disassembler.go used when it fed rfc.DisassemblerMappings
// into defs.Parse before looking up extension OIDs by name.
package rfc

// PKIXArcs defines the OBJECT IDENTIFIER arcs (id-ce and its id-ce-*
// extensions) as value assignments; x509cert.Schema loads it, while the
// x509cert accessors match extensions against their own asn1.OID literals
// rather than looking these names up. Trimmed from the teacher's broader DisassemblerMappings
// (which also covered SET/Netscape/logotype extensions this module has no
// accessor for) to the extensions spec §4.6 actually names plus the
// subjectKeyIdentifier/subjectAltName/issuerAltName ones spec §4.6's
// get_issuer/get_subject implicitly requires.
const PKIXArcs = `
PKIX-Arcs DEFINITIONS IMPLICIT TAGS ::= BEGIN

id-ce OBJECT IDENTIFIER ::= { 2 5 29 }

id-ce-subjectKeyIdentifier OBJECT IDENTIFIER ::= { id-ce 14 }
id-ce-keyUsage OBJECT IDENTIFIER ::= { id-ce 15 }
id-ce-subjectAltName OBJECT IDENTIFIER ::= { id-ce 17 }
id-ce-issuerAltName OBJECT IDENTIFIER ::= { id-ce 18 }
id-ce-basicConstraints OBJECT IDENTIFIER ::= { id-ce 19 }
id-ce-cRLDistributionPoints OBJECT IDENTIFIER ::= { id-ce 31 }
id-ce-certificatePolicies OBJECT IDENTIFIER ::= { id-ce 32 }
id-ce-authorityKeyIdentifier OBJECT IDENTIFIER ::= { id-ce 35 }

END
`
