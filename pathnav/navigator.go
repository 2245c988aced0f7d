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

// Package pathnav implements the dotted-path navigator of spec §4.5: a
// small DSL, not a general tree query language (design note §9 explicitly
// warns against reaching for "full XPath semantics").
package pathnav

import (
	"strings"

	"github.com/go-pkix/cms/asn1"
	"github.com/go-pkix/cms/der"
)

// Path is a parsed dotted-path expression, ready to be matched against any
// number of trees without re-parsing the string each time.
type Path struct {
	segments []segment
}

type segment struct {
	name      string
	anyDepth  bool // this segment was followed by an empty one ("a..b" marks a)
}

// Parse splits a path string like "tbsCertificate..extensions" into
// segments once, per spec §9's "parse it once per call site" guidance.
func Parse(path string) Path {
	parts := strings.Split(path, ".")
	var segs []segment
	for i := 0; i < len(parts); i++ {
		if parts[i] == "" {
			if len(segs) > 0 {
				segs[len(segs)-1].anyDepth = true
			}
			continue
		}
		segs = append(segs, segment{name: parts[i]})
	}
	return Path{segments: segs}
}

// Find walks root depth-first, first-child-first, looking for the sequence
// of named segments this Path describes. Every segment, literal or marked
// anyDepth, is matched against the current node and, failing that, against
// each of its descendants, so a literal segment is not restricted to the
// immediate children of the previous match and "a..b" finds the same node
// as "a.b". The first match in that walk order is returned.
func Find(root *der.Node, path Path) *der.Node {
	if len(path.segments) == 0 {
		return root
	}
	return findFrom(root, path.segments)
}

func findFrom(n *der.Node, segs []segment) *der.Node {
	if len(segs) == 0 {
		return n
	}
	cur := segs[0]
	if nameOf(n) == cur.name {
		if len(segs) == 1 {
			return n
		}
		if r := findFrom(n, segs[1:]); r != nil {
			return r
		}
	}
	if cur.anyDepth {
		// Keep searching at this depth and below without having consumed
		// the literal segment yet — try every descendant as the match
		// point, first-child-first.
		for _, c := range n.Children {
			if r := findFrom(c, segs); r != nil {
				return r
			}
		}
		return nil
	}
	for _, c := range n.Children {
		if r := findFrom(c, segs); r != nil {
			return r
		}
	}
	return nil
}

func nameOf(n *der.Node) string {
	if n == nil || n.Schema == nil {
		return ""
	}
	return n.Schema.Name
}

// FindTypeValue searches n's descendants for a SEQUENCE whose first child
// is an OID equal to oid, returning the nth (0-indexed) match. This is
// spec §4.5's find_type_value, used e.g. to locate a specific Attribute
// inside a SET OF Attribute by its attrType.
func FindTypeValue(n *der.Node, oid asn1.OID, nth int) *der.Node {
	count := 0
	var found *der.Node
	walk(n, func(c *der.Node) bool {
		// Match on the decoded tags rather than Schema.Kind, so that
		// elements declared through a TYPE_REF (SET OF Attribute) count.
		if c.Tag.Class != asn1.ClassUniversal || c.Tag.Number != 16 || len(c.Children) == 0 {
			return true
		}
		first := c.Children[0]
		if !first.Present() || first.Tag.Class != asn1.ClassUniversal || first.Tag.Number != 6 {
			return true
		}
		got, err := decodeOID(first.Content())
		if err != nil || !got.Equal(oid) {
			return true
		}
		if count == nth {
			found = c
			return false
		}
		count++
		return true
	})
	return found
}

// walk visits n and every descendant, first-child-first depth-first,
// stopping early if visit returns false.
func walk(n *der.Node, visit func(*der.Node) bool) {
	if n == nil {
		return
	}
	if !visit(n) {
		return
	}
	for _, c := range n.Children {
		walk(c, visit)
	}
}

func decodeOID(content []byte) (asn1.OID, error) {
	if len(content) == 0 {
		return nil, &asn1.Error{Kind: asn1.InvalidData, Msg: "empty OID content"}
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
