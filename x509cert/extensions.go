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

package x509cert

import (
	"io"
	"strings"

	"github.com/go-pkix/cms/asn1"
	"github.com/go-pkix/cms/ber"
	"github.com/go-pkix/cms/der"
)

// KeyUsage flags, LSB-first as the BIT STRING is encoded (spec §4.6).
const (
	DigitalSignature = 1 << 0
	NonRepudiation   = 1 << 1
	KeyEncipherment  = 1 << 2
	DataEncipherment = 1 << 3
	KeyAgreement     = 1 << 4
	KeyCertSign      = 1 << 5
	CRLSign          = 1 << 6
	EncipherOnly     = 1 << 7
	DecipherOnly     = 1 << 8
)

// ExtensionInfo is one entry as yielded by Extension(idx): the OID, the
// criticality flag, and the extnValue span (pointing into the
// certificate's own image).
type ExtensionInfo struct {
	OID      asn1.OID
	Critical bool
	Value    []byte
}

// Extension yields extensions in certificate order. Reading past the last
// one returns io.EOF, exactly once, then again on every subsequent call —
// spec §8's boundary behavior.
func (c *Certificate) Extension(idx int) (ExtensionInfo, error) {
	exts := c.tbs().Child("extensions")
	if exts != nil {
		exts = exts.Children[0] // [3] EXPLICIT wrapper -> SEQUENCE OF Extension
	}
	if exts == nil || idx >= len(exts.Children) {
		return ExtensionInfo{}, io.EOF
	}
	ext := exts.Children[idx]
	oid := parseOID(decodeOIDContent(ext.Child("extnID").Content()))
	crit := false
	if c := ext.Child("critical"); c != nil {
		crit = oidCriticalValue(c)
	}
	return ExtensionInfo{OID: oid, Critical: crit, Value: ext.Child("extnValue").Content()}, nil
}

func oidCriticalValue(n *der.Node) bool {
	content := n.Content()
	return len(content) == 1 && content[0] != 0
}

func parseOID(s string) asn1.OID {
	var arcs asn1.OID
	cur := 0
	started := false
	for _, r := range s {
		if r == '.' {
			arcs = append(arcs, cur)
			cur = 0
			started = false
			continue
		}
		cur = cur*10 + int(r-'0')
		started = true
	}
	if started {
		arcs = append(arcs, cur)
	}
	return arcs
}

// IsCA reads BasicConstraints, returning (false, nil) if the extension is
// absent (spec §4.6: "returning (false,0) if absent").
func (c *Certificate) IsCA() (bool, error) {
	ext := c.findExtension(oidBasicConstraints)
	if ext == nil {
		return false, nil
	}
	schema, err := Schema.Lookup("BasicConstraints")
	if err != nil {
		return false, err
	}
	image := &der.Image{Bytes: ext.Content()}
	n, _, err := der.Decode(image, 0, schema, Schema)
	if err != nil {
		return false, asn1.Wrap(asn1.InvalidData, "malformed BasicConstraints", err)
	}
	ca := n.Child("cA")
	if ca == nil {
		return false, nil
	}
	content := ca.Content()
	return len(content) == 1 && content[0] != 0, nil
}

// KeyUsage reads the KeyUsage BIT STRING and projects it to the flag set
// documented on the constants above. extnValue is an OCTET STRING whose
// content is the nested BIT STRING's own TLV, so the tag and length have
// to be stripped before the unused-bits count and data bytes are reached.
func (c *Certificate) KeyUsage() (int, error) {
	ext := c.findExtension(oidKeyUsage)
	if ext == nil {
		return 0, asn1.NewError(asn1.NoData, "KeyUsage extension not present")
	}
	return decodeBitStringFlags(ext.Content())
}

func decodeBitStringFlags(content []byte) (int, error) {
	hdr, off, err := ber.ReadHeader(content, 0)
	if err != nil {
		return 0, asn1.Wrap(asn1.InvalidData, "malformed BIT STRING", err)
	}
	bits := content[off : off+hdr.Length]
	if len(bits) < 1 {
		return 0, asn1.NewError(asn1.InvalidData, "malformed BIT STRING")
	}
	data := bits[1:]
	flags := 0
	for byteIdx, b := range data {
		for bit := 0; bit < 8; bit++ {
			if b&(0x80>>bit) != 0 {
				flags |= 1 << (byteIdx*8 + bit)
			}
		}
	}
	return flags, nil
}

// CertPolicies reads CertificatePolicies and returns newline-separated
// "OID [qualifier]" lines, per spec §4.6.
func (c *Certificate) CertPolicies() (string, error) {
	ext := c.findExtension(oidCertificatePolicies)
	if ext == nil {
		return "", asn1.NewError(asn1.NoData, "CertificatePolicies extension not present")
	}
	schema, err := Schema.Lookup("CertificatePolicies")
	if err != nil {
		return "", err
	}
	image := &der.Image{Bytes: ext.Content()}
	n, _, err := der.Decode(image, 0, schema, Schema)
	if err != nil {
		return "", asn1.Wrap(asn1.InvalidData, "malformed CertificatePolicies", err)
	}
	var lines []string
	for _, pi := range n.Children {
		oid := decodeOIDContent(pi.Child("policyIdentifier").Content())
		line := oid
		if quals := pi.Child("policyQualifiers"); quals != nil {
			var qs []string
			for _, q := range quals.Children {
				qs = append(qs, decodeOIDContent(q.Child("policyQualifierId").Content()))
			}
			line += " [" + strings.Join(qs, ",") + "]"
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n"), nil
}

// AuthorityKeyID is the decoded form of the AuthorityKeyIdentifier
// extension.
type AuthorityKeyID struct {
	KeyIdentifier []byte
	Issuer        []string
	SerialNumber  []byte
}

// AuthKeyID reads AuthorityKeyIdentifier.
func (c *Certificate) AuthKeyID() (AuthorityKeyID, error) {
	ext := c.findExtension(oidAuthorityKeyIdentifier)
	if ext == nil {
		return AuthorityKeyID{}, asn1.NewError(asn1.NoData, "AuthorityKeyIdentifier extension not present")
	}
	schema, err := Schema.Lookup("AuthorityKeyIdentifier")
	if err != nil {
		return AuthorityKeyID{}, err
	}
	image := &der.Image{Bytes: ext.Content()}
	n, _, err := der.Decode(image, 0, schema, Schema)
	if err != nil {
		return AuthorityKeyID{}, asn1.Wrap(asn1.InvalidData, "malformed AuthorityKeyIdentifier", err)
	}
	var out AuthorityKeyID
	if kid := n.Child("keyIdentifier"); kid != nil {
		out.KeyIdentifier = kid.Content()
	}
	if serial := n.Child("authorityCertSerialNumber"); serial != nil {
		out.SerialNumber = serial.Content()
	}
	if names := n.Child("authorityCertIssuer"); names != nil {
		for _, gn := range names.Children {
			if !gn.Present() {
				continue
			}
			alt := gn.Children[0]
			if alt.Schema.Name == "directoryName" {
				out.Issuer = append(out.Issuer, formatName(alt.Children[0]))
			} else {
				out.Issuer = append(out.Issuer, string(alt.Content()))
			}
		}
	}
	return out, nil
}

// DistPoint is one entry of CRLDistributionPoints.
type DistPoint struct {
	Names  []string
	Reason int
	Issuer []string
}

// CRLDistPoint enumerates distribution points with per-point names,
// reason flags and issuer names (spec §4.6's get_crl_dist_point).
func (c *Certificate) CRLDistPoint(idx int) (DistPoint, error) {
	ext := c.findExtension(oidCRLDistributionPoints)
	if ext == nil {
		return DistPoint{}, asn1.NewError(asn1.NoData, "CRLDistributionPoints extension not present")
	}
	schema, err := Schema.Lookup("CRLDistributionPoints")
	if err != nil {
		return DistPoint{}, err
	}
	image := &der.Image{Bytes: ext.Content()}
	n, _, err := der.Decode(image, 0, schema, Schema)
	if err != nil {
		return DistPoint{}, asn1.Wrap(asn1.InvalidData, "malformed CRLDistributionPoints", err)
	}
	if idx >= len(n.Children) {
		return DistPoint{}, io.EOF
	}
	dp := n.Children[idx]
	var out DistPoint
	if dpn := dp.Child("distributionPoint"); dpn != nil {
		// dpn is the [0] EXPLICIT wrapper; its child is the CHOICE node,
		// whose only child is the chosen alternative.
		choice := dpn.Children[0].Children[0]
		if choice.Schema.Name == "fullName" {
			for _, gn := range choice.Children {
				if !gn.Present() {
					continue
				}
				out.Names = append(out.Names, describeGeneralName(gn.Children[0]))
			}
		}
	}
	if reasons := dp.Child("reasons"); reasons != nil {
		content := reasons.Content()
		if len(content) >= 2 {
			for byteIdx, b := range content[1:] {
				for bit := 0; bit < 8; bit++ {
					if b&(0x80>>bit) != 0 {
						out.Reason |= 1 << (byteIdx*8 + bit)
					}
				}
			}
		}
	}
	if issuer := dp.Child("cRLIssuer"); issuer != nil {
		for _, gn := range issuer.Children {
			if !gn.Present() {
				continue
			}
			out.Issuer = append(out.Issuer, describeGeneralName(gn.Children[0]))
		}
	}
	return out, nil
}

func describeGeneralName(alt *der.Node) string {
	if alt.Schema.Name == "directoryName" {
		return formatName(alt.Children[0])
	}
	return string(alt.Content())
}

func (c *Certificate) SubjectKeyID() ([]byte, error) {
	ext := c.findExtension(oidSubjectKeyIdentifier)
	if ext == nil {
		return nil, asn1.NewError(asn1.NoData, "SubjectKeyIdentifier extension not present")
	}
	return ext.Content(), nil
}

var (
	oidSubjectKeyIdentifier   = asn1.OID{2, 5, 29, 14}
	oidKeyUsage               = asn1.OID{2, 5, 29, 15}
	oidBasicConstraints       = asn1.OID{2, 5, 29, 19}
	oidCRLDistributionPoints  = asn1.OID{2, 5, 29, 31}
	oidCertificatePolicies    = asn1.OID{2, 5, 29, 32}
	oidAuthorityKeyIdentifier = asn1.OID{2, 5, 29, 35}
)
