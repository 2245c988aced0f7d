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

package der

import (
	"math/big"

	"github.com/go-pkix/cms/asn1"
	"github.com/go-pkix/cms/ber"
)

// NewLeaf creates a value-tree leaf for schema not bound to any image, for
// use with the Store* family below. The leaf starts absent until a Store*
// call gives it content.
func NewLeaf(schema *asn1.Node) *Node {
	tag := ber.Tag{Class: asn1.ClassUniversal}
	if schema.Tag != nil {
		tag = ber.Tag{Class: schema.Tag.Class, Number: schema.Tag.Number}
	} else if class, num, err := schema.EffectiveTag(); err == nil {
		tag = ber.Tag{Class: class, Number: num}
	}
	return &Node{Schema: schema, Tag: tag, Off: -1, Chosen: -1}
}

// storeContent sets n's content octets to content and marks it present,
// independent of any backing Image. This is the common tail of every
// Store* function.
func (n *Node) storeContent(content []byte) {
	hdr := ber.WriteHeader(nil, n.Tag, false, len(content))
	n.stored = append(hdr, content...)
	n.Off = 0
	n.Nhdr = len(hdr)
	n.Len = len(content)
}

// StoreOID places a canonical OID encoding into n.
func StoreOID(n *Node, oid asn1.OID) {
	var content []byte
	if len(oid) >= 2 {
		content = append(content, byte(oid[0]*40+oid[1]))
		for _, arc := range oid[2:] {
			content = append(content, encodeBase128Arc(arc)...)
		}
	}
	n.storeContent(content)
}

func encodeBase128Arc(v int) []byte {
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
		j := len(stack) - 1 - i
		if i != 0 {
			b |= 0x80
		}
		out[j] = b
	}
	return out
}

// StoreOctetString places raw bytes into n as an OCTET STRING value.
func StoreOctetString(n *Node, data []byte) { n.storeContent(data) }

// StoreInteger places the minimal two's-complement DER encoding of v
// into n.
func StoreInteger(n *Node, v *big.Int) {
	n.storeContent(bigIntBytes(v))
}

func bigIntBytes(v *big.Int) []byte {
	if v.Sign() == 0 {
		return []byte{0}
	}
	b := v.Bytes()
	if v.Sign() > 0 && b[0]&0x80 != 0 {
		b = append([]byte{0}, b...)
	}
	if v.Sign() < 0 {
		// two's complement negative encoding
		n := new(big.Int).Add(v, new(big.Int).Lsh(big.NewInt(1), uint(8*len(b))))
		b = n.Bytes()
		if len(b) == 0 || b[0]&0x80 == 0 {
			b = append([]byte{0xff}, b...)
		}
	}
	return b
}

// StoreNull marks n present with an empty NULL value.
func StoreNull(n *Node) { n.storeContent(nil) }

// StoreBoolean places a DER BOOLEAN (0x00 or 0xff) into n.
func StoreBoolean(n *Node, v bool) {
	if v {
		n.storeContent([]byte{0xff})
	} else {
		n.storeContent([]byte{0x00})
	}
}
