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
	"bytes"
	"sort"

	"github.com/go-pkix/cms/asn1"
	"github.com/go-pkix/cms/ber"
)

// These are the low-level assembly primitives the build side of the state
// machine uses to compose a SignedData image directly from OIDs, integers
// and already-encoded sub-TLVs, rather than by threading every field
// through a der.Node tree the way decode does. Both styles sit on the same
// ber.WriteHeader framing; build simply has no image to bind nodes to.

func tlv(class asn1.Class, num int, constructed bool, content []byte) []byte {
	hdr := ber.WriteHeader(nil, ber.Tag{Class: class, Number: num}, constructed, len(content))
	return append(hdr, content...)
}

func sequence(content []byte) []byte { return tlv(asn1.ClassUniversal, 16, true, content) }
func set(content []byte) []byte      { return tlv(asn1.ClassUniversal, 17, true, content) }
func octetString(content []byte) []byte {
	return tlv(asn1.ClassUniversal, 4, false, content)
}
func contextTag(num int, constructed bool, content []byte) []byte {
	return tlv(asn1.ClassContext, num, constructed, content)
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

func encodeInteger(v int64) []byte {
	var b []byte
	if v == 0 {
		b = []byte{0}
	} else {
		n := v
		neg := n < 0
		for n != 0 && n != -1 {
			b = append([]byte{byte(n)}, b...)
			n >>= 8
		}
		if neg && (len(b) == 0 || b[0]&0x80 == 0) {
			b = append([]byte{0xff}, b...)
		}
		if !neg && len(b) > 0 && b[0]&0x80 != 0 {
			b = append([]byte{0}, b...)
		}
	}
	return tlv(asn1.ClassUniversal, 2, false, b)
}

// sortSetOf sorts already-encoded element TLVs by their bytes, satisfying
// DER's SET OF canonical-ordering requirement on the build side (the mirror
// of der.Node.Encode's sort for the decode/copy side).
func sortSetOf(elems [][]byte) []byte {
	sort.Slice(elems, func(i, j int) bool { return bytes.Compare(elems[i], elems[j]) < 0 })
	var out []byte
	for _, e := range elems {
		out = append(out, e...)
	}
	return out
}
