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
	"encoding/binary"
	"fmt"
	"io"
	"math/big"
	"strings"

	"github.com/go-pkix/cms/asn1"
	"github.com/go-pkix/cms/der"
)

// Certificate owns a decoded DER image and the value tree rooted at
// Certificate, per spec §3's data model. Accessor methods compute derived
// representations on demand and cache nothing except where noted.
type Certificate struct {
	image *der.Image
	root  *der.Node
}

// ReadDER decodes exactly one Certificate from r (spec §4.6's read_der).
// A second call against a reader whose underlying stream is already
// exhausted returns io.EOF, matching scenario 6 of spec §8.
func ReadDER(r io.Reader) (*Certificate, error) {
	buf, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if len(buf) == 0 {
		return nil, io.EOF
	}
	schema, err := Schema.Lookup("Certificate")
	if err != nil {
		return nil, err
	}
	image := &der.Image{Bytes: buf}
	root, _, err := der.Decode(image, 0, schema, Schema)
	if err != nil {
		return nil, err
	}
	return &Certificate{image: image, root: root}, nil
}

func (c *Certificate) tbs() *der.Node { return c.root.Child("tbsCertificate") }

// Root returns the decoded Certificate value tree, for callers (such as
// pathnav) that need to address an arbitrary field by path instead of
// going through the fixed accessor methods above.
func (c *Certificate) Root() *der.Node { return c.root }

// Serial returns the raw INTEGER content of serialNumber, length-prefixed
// as a 4-byte big-endian length followed by the bytes, matching spec
// §4.6's get_serial wire contract.
func (c *Certificate) Serial() []byte {
	sn := c.tbs().Child("serialNumber")
	content := sn.Content()
	out := make([]byte, 4+len(content))
	binary.BigEndian.PutUint32(out[:4], uint32(len(content)))
	copy(out[4:], content)
	return out
}

// SerialInt returns the serial number as a big.Int, for callers that want
// to compare it numerically rather than as the wire-format bytes Serial
// returns.
func (c *Certificate) SerialInt() *big.Int {
	return new(big.Int).SetBytes(c.tbs().Child("serialNumber").Content())
}

// Issuer returns index 0 as the RFC 2253 string for the issuer RDN
// sequence, and indices 1.. as names mined from the IssuerAltName
// extension, per spec §4.6's get_issuer. Returns ("", asn1.NoData) past
// the end of the available alternatives.
func (c *Certificate) Issuer(idx int) (string, error) {
	return c.distinguishedName(c.tbs().Child("issuer"), oidIssuerAltName, idx)
}

// Subject is Issuer's counterpart over SubjectAltName.
func (c *Certificate) Subject(idx int) (string, error) {
	return c.distinguishedName(c.tbs().Child("subject"), oidSubjectAltName, idx)
}

func (c *Certificate) distinguishedName(name *der.Node, altOID asn1.OID, idx int) (string, error) {
	if idx == 0 {
		if name == nil {
			return "", asn1.NewError(asn1.NoData, "name absent")
		}
		return formatName(name), nil
	}
	ext := c.findExtension(altOID)
	if ext == nil {
		return "", asn1.NewError(asn1.NoData, "no alternative-name extension present")
	}
	names, err := decodeGeneralNames(ext)
	if err != nil {
		return "", err
	}
	if idx-1 >= len(names) {
		return "", asn1.NewError(asn1.NoData, "index past end of alternative names")
	}
	return names[idx-1], nil
}

// formatName renders a Name (SEQUENCE OF RelativeDistinguishedName) as an
// RFC 2253-style string, most-specific RDN first — the reverse of the
// order Name's SEQUENCE OF encodes them in.
func formatName(name *der.Node) string {
	var parts []string
	for i := len(name.Children) - 1; i >= 0; i-- {
		rdn := name.Children[i]
		var attrs []string
		for _, atv := range rdn.Children {
			attrType := atv.Child("attrType")
			attrValue := atv.Child("attrValue")
			if attrType == nil || attrValue == nil {
				continue
			}
			oid := decodeOIDContent(attrType.Content())
			attrs = append(attrs, shortAttrName(oid)+"="+escapeDNValue(string(attrValue.Content())))
		}
		parts = append(parts, strings.Join(attrs, "+"))
	}
	return strings.Join(parts, ",")
}

func escapeDNValue(v string) string {
	var b strings.Builder
	for _, r := range v {
		switch r {
		case ',', '+', '"', '\\', '<', '>', ';':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

var shortNames = map[string]string{
	"2.5.4.3":  "CN",
	"2.5.4.6":  "C",
	"2.5.4.7":  "L",
	"2.5.4.8":  "ST",
	"2.5.4.10": "O",
	"2.5.4.11": "OU",
}

func shortAttrName(oid string) string {
	if s, ok := shortNames[oid]; ok {
		return s
	}
	return oid
}

// Validity returns the 15-character "YYYYMMDDThhmmss" form of notBefore
// (which=0) or notAfter (which=1), pivoting UTCTime two-digit years at
// 2049 per spec §4.6/§8.
func (c *Certificate) Validity(which int) (string, error) {
	validity := c.tbs().Child("validity")
	if validity == nil {
		return "", asn1.NewError(asn1.ValueNotFound, "validity absent")
	}
	var timeNode *der.Node
	if which == 0 {
		timeNode = validity.Child("notBefore")
	} else {
		timeNode = validity.Child("notAfter")
	}
	if timeNode == nil {
		return "", asn1.NewError(asn1.InvalidIndex, "which must be 0 or 1")
	}
	return formatTime(timeNode)
}

func formatTime(choice *der.Node) (string, error) {
	inner := choice.Children[0]
	raw := string(inner.Content())
	if inner.Schema.Kind == asn1.UTC_TIME {
		yy := raw[0:2]
		year := 2000
		if yy >= "50" {
			year = 1900
		}
		var yyi int
		fmt.Sscanf(yy, "%d", &yyi)
		return fmt.Sprintf("%04d%sT%s", year+yyi, raw[2:6], raw[6:12]), nil
	}
	// GeneralizedTime already carries a 4-digit year: YYYYMMDDHHMMSSZ.
	return raw[0:8] + "T" + raw[8:14], nil
}

// PublicKey returns the DER span of subjectPublicKeyInfo, for the
// external S-expression bridge (sexpr.DERToPublicKey) to convert.
func (c *Certificate) PublicKey() []byte {
	return c.tbs().Child("subjectPublicKeyInfo").Span()
}

// SignatureValue returns the DER spans of signatureAlgorithm and
// signatureValue, for sexpr.DERToSigVal.
func (c *Certificate) SignatureValue() (algorithm, value []byte) {
	return c.root.Child("signatureAlgorithm").Span(), c.root.Child("signatureValue").Span()
}

func decodeOIDContent(content []byte) string {
	if len(content) == 0 {
		return ""
	}
	arcs := []int{int(content[0]) / 40, int(content[0]) % 40}
	val := 0
	for _, b := range content[1:] {
		val = val<<7 | int(b&0x7f)
		if b&0x80 == 0 {
			arcs = append(arcs, val)
			val = 0
		}
	}
	oid := asn1.OID(arcs)
	return oid.String()
}

var (
	oidSubjectAltName = asn1.OID{2, 5, 29, 17}
	oidIssuerAltName  = asn1.OID{2, 5, 29, 18}
)

func decodeGeneralNames(ext *der.Node) ([]string, error) {
	image := &der.Image{Bytes: ext.Content()}
	schema, err := Schema.Lookup("GeneralNames")
	if err != nil {
		return nil, err
	}
	names, _, err := der.Decode(image, 0, schema, Schema)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, gn := range names.Children {
		if !gn.Present() {
			continue
		}
		alt := gn.Children[0]
		switch alt.Schema.Name {
		case "directoryName":
			out = append(out, formatName(alt.Children[0]))
		default:
			out = append(out, string(alt.Content()))
		}
	}
	return out, nil
}

func (c *Certificate) findExtension(oid asn1.OID) *der.Node {
	exts := c.tbs().Child("extensions")
	if exts == nil {
		return nil
	}
	exts = exts.Children[0] // [3] EXPLICIT wrapper -> SEQUENCE OF Extension
	for _, ext := range exts.Children {
		id := ext.Child("extnID")
		if id == nil {
			continue
		}
		if decodeOIDContent(id.Content()) == oid.String() {
			return ext.Child("extnValue")
		}
	}
	return nil
}
