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

// Package sexpr implements the canonical S-expression codec spec §6's
// "S-expression bridge" is built on: the same length-prefixed-atom,
// parenthesized-list format ksba's own key/signature conversion routines
// (_ksba_keyinfo_to_sexp, _ksba_sigval_to_sexp in original_source/src/cms.c)
// produce and consume. No library in the corpus speaks this format, so this
// package is hand-rolled rather than grounded on a third-party dependency —
// recorded in DESIGN.md.
package sexpr

import (
	"strconv"

	"github.com/go-pkix/cms/asn1"
)

// Value is one node of a parsed S-expression: either an atom (List == nil)
// or a list of further Values (Atom == nil).
type Value struct {
	Atom []byte
	List []*Value
}

// NewAtom wraps raw bytes as a leaf Value.
func NewAtom(b []byte) *Value { return &Value{Atom: b} }

// NewList wraps a sequence of Values as a list Value.
func NewList(items ...*Value) *Value { return &Value{List: items} }

// IsAtom reports whether v is a leaf.
func (v *Value) IsAtom() bool { return v != nil && v.List == nil }

// Head returns the first element of a list Value's atom, or nil.
func (v *Value) Head() []byte {
	if v == nil || len(v.List) == 0 || !v.List[0].IsAtom() {
		return nil
	}
	return v.List[0].Atom
}

// Get finds the first sub-list of v whose head atom equals name, e.g.
// Get(sexp, "rsa") on (public-key (rsa (n ..)(e ..))).
func (v *Value) Get(name string) *Value {
	if v == nil {
		return nil
	}
	for _, item := range v.List {
		if string(item.Head()) == name {
			return item
		}
	}
	return nil
}

// Field returns the atom bytes of the sub-list named name whose shape is
// (name <atom>), e.g. Field(rsaList, "n") on (rsa (n #...#)(e #...#)).
func (v *Value) Field(name string) []byte {
	sub := v.Get(name)
	if sub == nil || len(sub.List) < 2 || !sub.List[1].IsAtom() {
		return nil
	}
	return sub.List[1].Atom
}

// Encode renders v in canonical form: atoms as "<len>:<bytes>", lists as
// "(" + concatenated children + ")".
func Encode(v *Value) []byte {
	if v.IsAtom() {
		return append([]byte(strconv.Itoa(len(v.Atom))+":"), v.Atom...)
	}
	out := []byte("(")
	for _, item := range v.List {
		out = append(out, Encode(item)...)
	}
	return append(out, ')')
}

// Decode parses a canonical S-expression from the start of buf, returning
// the parsed Value and the number of bytes consumed.
func Decode(buf []byte) (*Value, int, error) {
	v, n, err := decodeValue(buf, 0)
	if err != nil {
		return nil, 0, err
	}
	return v, n, nil
}

func decodeValue(buf []byte, pos int) (*Value, int, error) {
	if pos >= len(buf) {
		return nil, pos, &asn1.Error{Kind: asn1.Truncated, Msg: "unexpected end of S-expression"}
	}
	if buf[pos] == '(' {
		pos++
		var items []*Value
		for {
			if pos >= len(buf) {
				return nil, pos, &asn1.Error{Kind: asn1.Truncated, Msg: "unterminated S-expression list"}
			}
			if buf[pos] == ')' {
				pos++
				return &Value{List: items}, pos, nil
			}
			item, next, err := decodeValue(buf, pos)
			if err != nil {
				return nil, pos, err
			}
			items = append(items, item)
			pos = next
		}
	}
	start := pos
	for pos < len(buf) && buf[pos] >= '0' && buf[pos] <= '9' {
		pos++
	}
	if pos == start || pos >= len(buf) || buf[pos] != ':' {
		return nil, pos, &asn1.Error{Kind: asn1.InvalidData, Msg: "malformed S-expression atom length"}
	}
	n, err := strconv.Atoi(string(buf[start:pos]))
	if err != nil {
		return nil, pos, &asn1.Error{Kind: asn1.InvalidData, Msg: "malformed S-expression atom length", Err: err}
	}
	pos++ // ':'
	if pos+n > len(buf) {
		return nil, pos, &asn1.Error{Kind: asn1.Truncated, Msg: "S-expression atom runs past end of buffer"}
	}
	return &Value{Atom: buf[pos : pos+n]}, pos + n, nil
}
