// Copyright 2026 The go-pkix Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package ber implements the BER/DER tag/length framing primitives: the
// pure byte-level TLV header codec that the der package binds to schema
// nodes. It has no notion of a schema and does no value interpretation,
// matching spec §4.2's "purely framing" scope.
//
// The header codec is grounded on codello-go-asn1's ber.Header (base-128
// tag numbers, reserve-byte length encoding); this package adapts it to
// operate on byte slices rather than io.ByteReader/Writer, since der.Decode
// walks a single in-memory image rather than a stream.
package ber

import "github.com/go-pkix/cms/asn1"

// Class mirrors asn1.Class so callers of this package don't need to import
// asn1 just to name a tag class.
type Class = asn1.Class

const (
	ClassUniversal   = asn1.ClassUniversal
	ClassApplication = asn1.ClassApplication
	ClassContext     = asn1.ClassContext
	ClassPrivate     = asn1.ClassPrivate
)

// LengthIndefinite marks a constructed, indefinite-length encoding (the
// length octet 0x80); it is terminated by a 00 00 end-of-contents TLV.
const LengthIndefinite = -1

// Tag identifies the class+number pair read from (or to be written as) an
// identifier octet sequence.
type Tag struct {
	Class  Class
	Number int
}

// Header is a decoded BER/DER tag+length pair, not including its content
// octets.
type Header struct {
	Tag         Tag
	Constructed bool
	Length      int // LengthIndefinite for 0x80
	HeaderLen   int // bytes consumed by the identifier+length octets
}
