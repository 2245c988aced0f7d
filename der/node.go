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

// Package der binds a byte image to an asn1 schema tree, producing a value
// tree whose nodes carry byte-accurate (off, nhdr, len) spans (spec §4.3),
// and walks a value tree back out to bytes (spec §4.4).
//
// This is a clean split of the teacher's single Tree type (which mixed
// schema metadata and per-value offsets in one struct, per asn1/tree.go's
// own doc comment on the `tag`/`value` fields) into the read-only
// asn1.Node schema and this package's Node value tree, exactly as spec
// §9's design note on "Dynamic ASN.1 tree" asks for.
package der

import (
	"github.com/go-pkix/cms/asn1"
	"github.com/go-pkix/cms/ber"
)

// Image is an immutable byte buffer a value tree borrows leaf bytes from.
// A Node never outlives the Image it was decoded from.
type Image struct {
	Bytes []byte
}

// Node is one node of a value tree: a clone of an asn1.Node annotated with
// where (if anywhere) it was found in its Image.
type Node struct {
	Schema *asn1.Node
	Tag    ber.Tag

	// Off is the absolute byte offset of this node's TLV in its Image, or
	// -1 if the node is structurally present but absent from the image
	// (an unencoded OPTIONAL field).
	Off  int
	Nhdr int
	Len  int

	// Chosen is the index into Schema.Children of the alternative selected
	// for a CHOICE node; -1 otherwise.
	Chosen int

	Children []*Node

	image *Image
	// stored holds bytes placed by Store* or CopyInto, for a node whose
	// image is privately owned rather than borrowed from a decode.
	stored []byte
}

// Image returns the byte buffer this node's span (if any) refers into.
func (n *Node) Image() *Image { return n.image }

// Content returns the content octets (the V of the TLV) for a decoded,
// present node. It panics if called on an absent node — callers must check
// Off first, matching the teacher's own convention of leaving such checks
// to the caller rather than threading a second return value everywhere.
func (n *Node) Content() []byte {
	if n.stored != nil {
		return n.stored[n.Nhdr:]
	}
	return n.image.Bytes[n.Off+n.Nhdr : n.Off+n.Nhdr+n.Len]
}

// Span returns the full TLV (header+content) for a decoded, present node.
func (n *Node) Span() []byte {
	if n.stored != nil {
		return n.stored
	}
	return n.image.Bytes[n.Off : n.Off+n.Nhdr+n.Len]
}

// Present reports whether this node has a value, structurally or stored.
func (n *Node) Present() bool { return n.Off >= 0 || n.stored != nil }

// Child looks up an immediate child by schema field name. Returns nil if
// no such field exists or the field is absent.
func (n *Node) Child(name string) *Node {
	for _, c := range n.Children {
		if c.Schema != nil && c.Schema.Name == name {
			if !c.Present() {
				return nil
			}
			return c
		}
	}
	return nil
}

// ChildNode is like Child but returns the node even if absent, so a caller
// can distinguish "field not in schema" from "field absent in this image".
func (n *Node) ChildNode(name string) *Node {
	for _, c := range n.Children {
		if c.Schema != nil && c.Schema.Name == name {
			return c
		}
	}
	return nil
}
