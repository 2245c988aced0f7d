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

// CopyInto replaces dst's payload with a private copy of src's currently
// decoded span, so dst no longer depends on src's Image. This implements
// spec §4.4's copy_tree: used e.g. to lift a certificate's encapsulated
// signerInfo subtree out of a parse image and into a newly built message.
func CopyInto(dst, src *Node) {
	if !src.Present() {
		dst.Off = -1
		dst.stored = nil
		return
	}
	span := append([]byte{}, src.Span()...)
	dst.stored = span
	dst.Off = 0
	dst.Nhdr = src.Nhdr
	dst.Len = src.Len
	dst.Tag = src.Tag
	dst.Chosen = src.Chosen
	if len(src.Children) > 0 {
		dst.Children = make([]*Node, len(src.Children))
		for i, c := range src.Children {
			dst.Children[i] = &Node{Schema: c.Schema, Chosen: -1}
			CopyInto(dst.Children[i], c)
		}
	}
}
