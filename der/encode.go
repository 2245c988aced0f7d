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
	"bytes"
	"sort"

	"github.com/go-pkix/cms/asn1"
	"github.com/go-pkix/cms/ber"
)

// Encode walks n and emits its DER image bottom-up: each child's bytes are
// computed first, then wrapped in its own header, which sidesteps the
// teacher's reserve-a-byte-then-backpatch single-pass scheme (der.go in
// the teacher repo) — Go's append-based byte slices make composing from
// the leaves up just as cheap and needs no backpatching. SET OF elements
// are sorted by their encoded bytes before concatenation, satisfying DER's
// canonical ordering requirement (spec §9's "Set-of ordering" design note
// chooses the sorting side of that tradeoff, where the original core did
// not sort and left it to the caller).
func (n *Node) Encode() []byte {
	if !n.Present() {
		return nil
	}
	if n.Chosen >= 0 {
		return n.Children[0].Encode()
	}
	if n.Schema != nil && n.Schema.Tag != nil && n.Schema.Tag.Explicit {
		inner := n.Children[0].Encode()
		hdr := ber.WriteHeader(nil, ber.Tag{Class: n.Tag.Class, Number: n.Tag.Number}, true, len(inner))
		return append(hdr, inner...)
	}
	if len(n.Children) == 0 {
		return n.Span()
	}

	var content []byte
	if n.Schema != nil && n.Schema.Kind == asn1.SET_OF {
		parts := make([][]byte, 0, len(n.Children))
		for _, c := range n.Children {
			if c.Present() {
				parts = append(parts, c.Encode())
			}
		}
		sort.Slice(parts, func(i, j int) bool { return bytes.Compare(parts[i], parts[j]) < 0 })
		for _, p := range parts {
			content = append(content, p...)
		}
	} else {
		for _, c := range n.Children {
			if !c.Present() {
				continue
			}
			content = append(content, c.Encode()...)
		}
	}
	hdr := ber.WriteHeader(nil, n.Tag, true, len(content))
	return append(hdr, content...)
}
