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
	"github.com/go-pkix/cms/asn1"
)

// DERToSigVal converts a DER signatureAlgorithm AlgorithmIdentifier span
// plus a DER signatureValue BIT STRING span into the canonical
// `(sig-val (rsa (s #..#)))` or `(sig-val (dsa (r #..#)(s #..#)))`
// S-expression. rsaEncryption, md5WithRSAEncryption and
// sha1WithRSAEncryption all map to the "rsa" family; dsa and dsaWithSHA1
// map to "dsa" — the digest used is carried separately by the CMS
// digestAlgorithm field, not by this structural conversion.
func DERToSigVal(algorithmDER, valueDER []byte) (*Value, error) {
	oid, _, _, err := readAlgorithmIdentifier(algorithmDER)
	if err != nil {
		return nil, err
	}
	sigBits, err := readBitStringAt(valueDER)
	if err != nil {
		return nil, err
	}
	switch {
	case oid.Equal(oidRSAEncryption), oid.Equal(oidMD5WithRSAEncryption), oid.Equal(oidSHA1WithRSAEncryption):
		return NewList(
			NewAtom([]byte("sig-val")),
			NewList(NewAtom([]byte("rsa")),
				NewList(NewAtom([]byte("s")), NewAtom(sigBits)),
			),
		), nil
	case oid.Equal(oidDSA), oid.Equal(oidDSAWithSHA1):
		seqContent, _, err := readSequence(sigBits)
		if err != nil {
			return nil, err
		}
		r, rest, err := readInteger(seqContent)
		if err != nil {
			return nil, err
		}
		s, _, err := readInteger(rest)
		if err != nil {
			return nil, err
		}
		return NewList(
			NewAtom([]byte("sig-val")),
			NewList(NewAtom([]byte("dsa")),
				NewList(NewAtom([]byte("r")), NewAtom(bigIntBytes(r))),
				NewList(NewAtom([]byte("s")), NewAtom(bigIntBytes(s))),
			),
		), nil
	default:
		return nil, &asn1.Error{Kind: asn1.UnknownAlgorithm, Msg: "unrecognized signature algorithm " + oid.String()}
	}
}

// SigValToDER converts a `(sig-val ...)` S-expression into a DER
// AlgorithmIdentifier + signatureValue BIT STRING pair.
func SigValToDER(v *Value) (algorithm, value []byte, err error) {
	if string(v.Head()) != "sig-val" {
		return nil, nil, &asn1.Error{Kind: asn1.InvalidData, Msg: "not a sig-val S-expression"}
	}
	if rsa := v.Get("rsa"); rsa != nil {
		s := rsa.Field("s")
		if s == nil {
			return nil, nil, &asn1.Error{Kind: asn1.InvalidData, Msg: "rsa sig-val missing s"}
		}
		alg := sequence(concat(encodeOID(oidRSAEncryption), tlv(asn1.ClassUniversal, 5, false, nil)))
		return alg, encodeBitString(s), nil
	}
	if dsa := v.Get("dsa"); dsa != nil {
		r, s := dsa.Field("r"), dsa.Field("s")
		if r == nil || s == nil {
			return nil, nil, &asn1.Error{Kind: asn1.InvalidData, Msg: "dsa sig-val missing r or s"}
		}
		alg := sequence(encodeOID(oidDSA))
		sigContent := sequence(concat(encodeInteger(r), encodeInteger(s)))
		return alg, encodeBitString(sigContent), nil
	}
	return nil, nil, &asn1.Error{Kind: asn1.UnknownAlgorithm, Msg: "unrecognized sig-val S-expression algorithm"}
}
