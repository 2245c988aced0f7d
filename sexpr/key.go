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

package sexpr

import (
	"math/big"

	"github.com/go-pkix/cms/asn1"
	"github.com/go-pkix/cms/ber"
)

// Algorithm OIDs recognized by the bridge (spec §6).
var (
	oidRSAEncryption         = asn1.OID{1, 2, 840, 113549, 1, 1, 1}
	oidMD5WithRSAEncryption  = asn1.OID{1, 2, 840, 113549, 1, 1, 4}
	oidSHA1WithRSAEncryption = asn1.OID{1, 2, 840, 113549, 1, 1, 5}
	oidDSA                   = asn1.OID{1, 2, 840, 10040, 4, 1}
	oidDSAWithSHA1           = asn1.OID{1, 2, 840, 10040, 4, 3}
)

// DERToPublicKey converts a DER SubjectPublicKeyInfo span into the
// canonical S-expression `(public-key (rsa (n #..#)(e #..#)))` or
// `(public-key (dsa (p #..#)(q #..#)(g #..#)(y #..#)))`.
func DERToPublicKey(spki []byte) (*Value, error) {
	content, _, err := readSequence(spki)
	if err != nil {
		return nil, err
	}
	algOID, algParams, rest, err := readAlgorithmIdentifier(content)
	if err != nil {
		return nil, err
	}
	keyBits, err := readBitStringAt(rest)
	if err != nil {
		return nil, err
	}
	switch {
	case algOID.Equal(oidRSAEncryption):
		keyContent, _, err := readSequence(keyBits)
		if err != nil {
			return nil, err
		}
		n, rest, err := readInteger(keyContent)
		if err != nil {
			return nil, err
		}
		e, _, err := readInteger(rest)
		if err != nil {
			return nil, err
		}
		return NewList(
			NewAtom([]byte("public-key")),
			NewList(NewAtom([]byte("rsa")),
				NewList(NewAtom([]byte("n")), NewAtom(bigIntBytes(n))),
				NewList(NewAtom([]byte("e")), NewAtom(bigIntBytes(e))),
			),
		), nil
	case algOID.Equal(oidDSA):
		p, rest, err := readInteger(algParams)
		if err != nil {
			return nil, err
		}
		q, rest, err := readInteger(rest)
		if err != nil {
			return nil, err
		}
		g, _, err := readInteger(rest)
		if err != nil {
			return nil, err
		}
		y, _, err := readInteger(keyBits)
		if err != nil {
			return nil, err
		}
		return NewList(
			NewAtom([]byte("public-key")),
			NewList(NewAtom([]byte("dsa")),
				NewList(NewAtom([]byte("p")), NewAtom(bigIntBytes(p))),
				NewList(NewAtom([]byte("q")), NewAtom(bigIntBytes(q))),
				NewList(NewAtom([]byte("g")), NewAtom(bigIntBytes(g))),
				NewList(NewAtom([]byte("y")), NewAtom(bigIntBytes(y))),
			),
		), nil
	default:
		return nil, &asn1.Error{Kind: asn1.UnknownAlgorithm, Msg: "unrecognized public key algorithm " + algOID.String()}
	}
}

// PublicKeyToDER converts a `(public-key ...)` S-expression back into a DER
// SubjectPublicKeyInfo.
func PublicKeyToDER(v *Value) ([]byte, error) {
	if string(v.Head()) != "public-key" {
		return nil, &asn1.Error{Kind: asn1.InvalidData, Msg: "not a public-key S-expression"}
	}
	if rsa := v.Get("rsa"); rsa != nil {
		n, e := rsa.Field("n"), rsa.Field("e")
		if n == nil || e == nil {
			return nil, &asn1.Error{Kind: asn1.InvalidData, Msg: "rsa public-key missing n or e"}
		}
		key := sequence(concat(encodeInteger(n), encodeInteger(e)))
		alg := sequence(concat(encodeOID(oidRSAEncryption), tlv(asn1.ClassUniversal, 5, false, nil)))
		return sequence(concat(alg, encodeBitString(key))), nil
	}
	if dsa := v.Get("dsa"); dsa != nil {
		p, q, g, y := dsa.Field("p"), dsa.Field("q"), dsa.Field("g"), dsa.Field("y")
		if p == nil || q == nil || g == nil || y == nil {
			return nil, &asn1.Error{Kind: asn1.InvalidData, Msg: "dsa public-key missing p, q, g or y"}
		}
		params := sequence(concat(encodeInteger(p), encodeInteger(q), encodeInteger(g)))
		alg := sequence(concat(encodeOID(oidDSA), params))
		return sequence(concat(alg, encodeBitString(encodeInteger(y)))), nil
	}
	return nil, &asn1.Error{Kind: asn1.UnknownAlgorithm, Msg: "unrecognized public-key S-expression algorithm"}
}

// bigIntBytes renders v as its minimal big-endian unsigned byte form, the
// way S-expression key parameters are carried (no leading 0x00 padding byte
// unlike a DER INTEGER, since these atoms are never negative).
func bigIntBytes(v *big.Int) []byte {
	if v.Sign() == 0 {
		return []byte{0}
	}
	return v.Bytes()
}

func readSequence(buf []byte) (content []byte, next int, err error) {
	hdr, contentOff, err := ber.ReadHeader(buf, 0)
	if err != nil {
		return nil, 0, err
	}
	if hdr.Tag.Class != asn1.ClassUniversal || hdr.Tag.Number != 16 {
		return nil, 0, &asn1.Error{Kind: asn1.UnexpectedTag, Msg: "expected SEQUENCE"}
	}
	end := contentOff + hdr.Length
	return buf[contentOff:end], end, nil
}

// readAlgorithmIdentifier reads AlgorithmIdentifier ::= SEQUENCE { algorithm
// OBJECT IDENTIFIER, parameters ANY OPTIONAL } from the front of buf,
// returning the OID, the raw parameters bytes (nil if absent), and the rest
// of buf following the AlgorithmIdentifier TLV.
func readAlgorithmIdentifier(buf []byte) (oid asn1.OID, params []byte, rest []byte, err error) {
	hdr, contentOff, err := ber.ReadHeader(buf, 0)
	if err != nil {
		return nil, nil, nil, err
	}
	end := contentOff + hdr.Length
	algContent := buf[contentOff:end]
	oidHdr, oidContentOff, err := ber.ReadHeader(algContent, 0)
	if err != nil {
		return nil, nil, nil, err
	}
	oidEnd := oidContentOff + oidHdr.Length
	oid, err = decodeOIDBytes(algContent[oidContentOff:oidEnd])
	if err != nil {
		return nil, nil, nil, err
	}
	if oidEnd < len(algContent) {
		paramsHdr, paramsContentOff, perr := ber.ReadHeader(algContent, oidEnd)
		if perr == nil {
			params = algContent[paramsContentOff : paramsContentOff+paramsHdr.Length]
		}
	}
	return oid, params, buf[end:], nil
}

func readBitStringAt(buf []byte) ([]byte, error) {
	hdr, contentOff, err := ber.ReadHeader(buf, 0)
	if err != nil {
		return nil, err
	}
	if hdr.Tag.Class != asn1.ClassUniversal || hdr.Tag.Number != 3 {
		return nil, &asn1.Error{Kind: asn1.UnexpectedTag, Msg: "expected BIT STRING"}
	}
	content := buf[contentOff : contentOff+hdr.Length]
	if len(content) == 0 {
		return nil, &asn1.Error{Kind: asn1.InvalidData, Msg: "empty BIT STRING"}
	}
	return content[1:], nil // drop the unused-bits count byte; keys are always octet-aligned
}

func readInteger(buf []byte) (v *big.Int, rest []byte, err error) {
	hdr, contentOff, err := ber.ReadHeader(buf, 0)
	if err != nil {
		return nil, nil, err
	}
	if hdr.Tag.Class != asn1.ClassUniversal || hdr.Tag.Number != 2 {
		return nil, nil, &asn1.Error{Kind: asn1.UnexpectedTag, Msg: "expected INTEGER"}
	}
	end := contentOff + hdr.Length
	v = new(big.Int).SetBytes(trimSignByte(buf[contentOff:end]))
	return v, buf[end:], nil
}

func trimSignByte(b []byte) []byte {
	if len(b) > 1 && b[0] == 0x00 && b[1]&0x80 != 0 {
		return b[1:]
	}
	return b
}

func decodeOIDBytes(content []byte) (asn1.OID, error) {
	if len(content) == 0 {
		return nil, &asn1.Error{Kind: asn1.InvalidData, Msg: "empty OID"}
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
