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
	"github.com/go-pkix/cms/ber"
)

// These mirror cms/encoding.go's build-side DER assembly primitives: this
// package needs the same small set of TLV writers to go from S-expression
// atoms back to DER, without pulling in a der.Node tree for structures this
// ad hoc.

func tlv(class asn1.Class, num int, constructed bool, content []byte) []byte {
	hdr := ber.WriteHeader(nil, ber.Tag{Class: class, Number: num}, constructed, len(content))
	return append(hdr, content...)
}

func sequence(content []byte) []byte { return tlv(asn1.ClassUniversal, 16, true, content) }

func concat(parts ...[]byte) []byte {
	var out []byte
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

// encodeInteger renders an unsigned big-endian byte string (as carried by
// an S-expression atom) as a minimal two's-complement DER INTEGER.
func encodeInteger(unsigned []byte) []byte {
	b := append([]byte{}, unsigned...)
	for len(b) > 1 && b[0] == 0x00 {
		b = b[1:]
	}
	if len(b) == 0 {
		b = []byte{0}
	}
	if b[0]&0x80 != 0 {
		b = append([]byte{0x00}, b...)
	}
	return tlv(asn1.ClassUniversal, 2, false, b)
}

func encodeOID(oid asn1.OID) []byte {
	var content []byte
	if len(oid) >= 2 {
		content = append(content, byte(oid[0]*40+oid[1]))
		for _, arc := range oid[2:] {
			content = append(content, encodeBase128(arc)...)
		}
	}
	return tlv(asn1.ClassUniversal, 6, false, content)
}

func encodeBase128(v int) []byte {
	if v == 0 {
		return []byte{0}
	}
	var stack []byte
	for v > 0 {
		stack = append(stack, byte(v&0x7f))
		v >>= 7
	}
	out := make([]byte, len(stack))
	for i, b := range stack {
		if i != 0 {
			b |= 0x80
		}
		out[len(stack)-1-i] = b
	}
	return out
}

// encodeBitString wraps already-DER-encoded content (e.g. an RSAPublicKey
// SEQUENCE, or a raw signature) as an octet-aligned BIT STRING.
func encodeBitString(content []byte) []byte {
	return tlv(asn1.ClassUniversal, 3, false, append([]byte{0x00}, content...))
}
