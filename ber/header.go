// Copyright 2026 The go-pkix Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ber

import (
	"math/bits"

	"github.com/go-pkix/cms/asn1"
)

// ReadHeader decodes the identifier and length octets of a TLV starting at
// buf[pos] and returns the header plus the offset of the first content
// octet. It does not read past the header.
//
// Failure modes: Truncated if buf is exhausted before the header
// completes; InvalidData (the error taxonomy has no separate length or
// reserved-tag kind) for a length encoding this function cannot represent
// and for 0xff-led identifier octets (reserved by X.690 §8.1.2.4.1).
func ReadHeader(buf []byte, pos int) (Header, int, error) {
	start := pos
	if pos >= len(buf) {
		return Header{}, pos, truncated()
	}
	b := buf[pos]
	pos++
	if b == 0xff {
		return Header{}, pos, &asn1.Error{Kind: asn1.InvalidData, Msg: "reserved tag 0xff"}
	}
	h := Header{
		Tag:         Tag{Class: Class(b >> 6), Number: int(b & 0x1f)},
		Constructed: b&0x20 != 0,
	}
	if h.Tag.Number == 0x1f {
		n, newPos, err := readBase128(buf, pos)
		if err != nil {
			return Header{}, newPos, err
		}
		h.Tag.Number = n
		pos = newPos
	}
	if pos >= len(buf) {
		return Header{}, pos, truncated()
	}
	lb := buf[pos]
	pos++
	switch {
	case lb&0x80 == 0:
		h.Length = int(lb & 0x7f)
	case lb == 0x80:
		h.Length = LengthIndefinite
	default:
		n := int(lb & 0x7f)
		if pos+n > len(buf) {
			return Header{}, pos, truncated()
		}
		length := 0
		for i := 0; i < n; i++ {
			if length >= 1<<23 {
				return Header{}, pos, &asn1.Error{Kind: asn1.InvalidData, Msg: "length too large"}
			}
			length = length<<8 | int(buf[pos])
			pos++
		}
		h.Length = length
	}
	h.HeaderLen = pos - start
	return h, pos, nil
}

func truncated() error {
	return &asn1.Error{Kind: asn1.Truncated, Msg: "unexpected end of input while reading TLV header"}
}

func readBase128(buf []byte, pos int) (int, int, error) {
	start := pos
	if pos >= len(buf) {
		return 0, pos, truncated()
	}
	if buf[pos] == 0x80 {
		return 0, pos, &asn1.Error{Kind: asn1.InvalidData, Msg: "base-128 tag number is not minimally encoded"}
	}
	n := 0
	bitsUsed := 0
	for {
		if pos >= len(buf) {
			return 0, pos, truncated()
		}
		b := buf[pos]
		pos++
		n = n<<7 | int(b&0x7f)
		bitsUsed += 7
		if bitsUsed > bits.UintSize {
			return 0, pos, &asn1.Error{Kind: asn1.InvalidData, Msg: "base-128 tag number too large"}
		}
		if b&0x80 == 0 {
			break
		}
	}
	_ = start
	return n, pos, nil
}

// WriteHeader appends the BER identifier and length octets for tag,
// constructed and length to dst and returns the extended slice.
func WriteHeader(dst []byte, tag Tag, constructed bool, length int) []byte {
	b := byte(tag.Class) << 6
	if constructed {
		b |= 0x20
	}
	if tag.Number < 31 {
		b |= byte(tag.Number)
		dst = append(dst, b)
	} else {
		b |= 0x1f
		dst = append(dst, b)
		dst = writeBase128(dst, tag.Number)
	}
	if length == LengthIndefinite {
		return append(dst, 0x80)
	}
	if length < 128 {
		return append(dst, byte(length))
	}
	var lb []byte
	for l := length; l > 0; l >>= 8 {
		lb = append([]byte{byte(l)}, lb...)
	}
	dst = append(dst, 0x80|byte(len(lb)))
	return append(dst, lb...)
}

func writeBase128(dst []byte, n int) []byte {
	if n == 0 {
		return append(dst, 0)
	}
	var stack []byte
	for n > 0 {
		stack = append(stack, byte(n&0x7f))
		n >>= 7
	}
	for i := len(stack) - 1; i >= 0; i-- {
		b := stack[i]
		if i != 0 {
			b |= 0x80
		}
		dst = append(dst, b)
	}
	return dst
}

// HeaderLen returns the number of bytes WriteHeader would produce for the
// given tag/length, without allocating. The encoders in this module do not
// call it; they build each header with WriteHeader once the length is known.
func HeaderLen(tag Tag, length int) int {
	l := 1
	if tag.Number >= 31 {
		l += base128Len(tag.Number)
	}
	if length == LengthIndefinite || length < 128 {
		return l + 1
	}
	n := 1
	for ll := length; ll > 255; ll >>= 8 {
		n++
	}
	return l + 1 + n
}

func base128Len(n int) int {
	if n == 0 {
		return 1
	}
	l := 0
	for ; n > 0; n >>= 7 {
		l++
	}
	return l
}
