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
	"strconv"

	"github.com/go-pkix/cms/asn1"
	"github.com/go-pkix/cms/ber"
)

// Decode binds image[off:] to a clone of schema, returning the populated
// value tree and the offset just past the decoded TLV. This is the
// recursive-descent algorithm of spec §4.3.
func Decode(image *Image, off int, schema *asn1.Node, ms *asn1.ModuleSet) (*Node, int, error) {
	return decodeNode(image, off, schema, ms)
}

func decodeNode(image *Image, off int, schema *asn1.Node, ms *asn1.ModuleSet) (*Node, int, error) {
	if schema.Tag != nil && schema.Tag.Explicit {
		return decodeExplicit(image, off, schema, ms)
	}

	resolved := schema
	if schema.Kind == asn1.TYPE_REF {
		var err error
		resolved, err = ms.Resolve(schema)
		if err != nil {
			return nil, off, err
		}
	}

	switch resolved.Kind {
	case asn1.CHOICE:
		return decodeChoice(image, off, schema, resolved, ms)
	case asn1.SEQUENCE, asn1.SET:
		return decodeStructured(image, off, schema, resolved, ms)
	case asn1.SEQUENCE_OF, asn1.SET_OF:
		return decodeRepeated(image, off, schema, resolved, ms)
	case asn1.ANY:
		return decodeAny(image, off, schema, resolved)
	default:
		return decodePrimitive(image, off, schema, resolved)
	}
}

// effectiveTag returns the class/number a node must present in the image,
// resolving a TYPE_REF only when no explicit/implicit tag override makes
// that resolution unnecessary (spec §4.3: "implicit tags override the
// underlying type's tag for matching").
func effectiveTag(schema *asn1.Node, ms *asn1.ModuleSet) (asn1.Class, int, error) {
	if schema.Tag != nil {
		return schema.Tag.Class, schema.Tag.Number, nil
	}
	resolved := schema
	if schema.Kind == asn1.TYPE_REF {
		var err error
		resolved, err = ms.Resolve(schema)
		if err != nil {
			return 0, 0, err
		}
	}
	if resolved.Kind == asn1.CHOICE || resolved.Kind == asn1.ANY {
		// A CHOICE or ANY without its own tag has no single tag to match:
		// a CHOICE peeks its alternatives, an ANY accepts whatever TLV is
		// there.
		return 0, -1, nil
	}
	class, num, err := resolved.EffectiveTag()
	return class, num, err
}

func decodeExplicit(image *Image, off int, schema *asn1.Node, ms *asn1.ModuleSet) (*Node, int, error) {
	hdr, contentOff, err := ber.ReadHeader(image.Bytes, off)
	if err != nil {
		return nil, off, err
	}
	if hdr.Tag.Number != schema.Tag.Number || hdr.Tag.Class != schema.Tag.Class {
		return nil, off, unexpectedTag(schema)
	}
	inner := *schema
	inner.Tag = nil
	child, _, err := decodeNode(image, contentOff, &inner, ms)
	if err != nil {
		return nil, off, err
	}
	end := contentOff + hdr.Length
	if hdr.Length == ber.LengthIndefinite {
		end = skipIndefinite(image, contentOff)
	}
	return &Node{
		Schema:   schema,
		Tag:      ber.Tag{Class: schema.Tag.Class, Number: schema.Tag.Number},
		Off:      off,
		Nhdr:     hdr.HeaderLen,
		Len:      end - contentOff,
		Chosen:   -1,
		Children: []*Node{child},
		image:    image,
	}, end, nil
}

func decodeChoice(image *Image, off int, schema, resolved *asn1.Node, ms *asn1.ModuleSet) (*Node, int, error) {
	for i, alt := range resolved.Children {
		class, num, err := effectiveTag(alt, ms)
		if err != nil {
			return nil, off, err
		}
		hdr, _, herr := ber.ReadHeader(image.Bytes, off)
		if herr != nil {
			if schema.Optional {
				return absentNode(schema, -1), off, nil
			}
			return nil, off, herr
		}
		if int(class) == int(hdr.Tag.Class) && num == hdr.Tag.Number {
			child, end, err := decodeNode(image, off, alt, ms)
			if err != nil {
				return nil, off, err
			}
			return &Node{
				Schema:   schema,
				Off:      off,
				Nhdr:     child.Nhdr,
				Len:      child.Len,
				Chosen:   i,
				Children: []*Node{child},
				image:    image,
			}, end, nil
		}
	}
	if schema.Optional {
		return absentNode(schema, -1), off, nil
	}
	return nil, off, &asn1.Error{Kind: asn1.ChoiceNoMatch, Msg: "no CHOICE alternative matches tag at offset " + strconv.Itoa(off)}
}

func decodeStructured(image *Image, off int, schema, resolved *asn1.Node, ms *asn1.ModuleSet) (*Node, int, error) {
	class, num, err := effectiveTag(schema, ms)
	if err != nil {
		return nil, off, err
	}
	hdr, contentOff, err := ber.ReadHeader(image.Bytes, off)
	if err != nil {
		return nil, off, err
	}
	if int(hdr.Tag.Class) != int(class) || hdr.Tag.Number != num {
		return nil, off, unexpectedTag(schema)
	}
	end := contentOff + hdr.Length
	indefinite := hdr.Length == ber.LengthIndefinite
	if indefinite {
		end = skipIndefinite(image, contentOff)
	}

	children := make([]*Node, 0, len(resolved.Children))
	cur := contentOff
	for _, field := range resolved.Children {
		if indefinite && isEndOfContents(image.Bytes, cur) {
			break
		}
		if cur >= end && !indefinite {
			if field.Optional {
				children = append(children, absentNode(field, cur))
				continue
			}
			return nil, off, &asn1.Error{Kind: asn1.LengthMismatch, Msg: "missing mandatory field " + field.Name}
		}
		matches, err := headerMatches(image.Bytes, cur, field, ms)
		if err != nil {
			return nil, off, err
		}
		if !matches {
			if field.Optional {
				children = append(children, absentNode(field, cur))
				continue
			}
			return nil, off, &asn1.Error{Kind: asn1.UnexpectedTag, Msg: "field " + field.Name + " does not match and is not OPTIONAL"}
		}
		child, next, err := decodeNode(image, cur, field, ms)
		if err != nil {
			return nil, off, err
		}
		children = append(children, child)
		cur = next
	}
	if indefinite {
		end = cur + 2 // 00 00 end-of-contents
	}
	return &Node{
		Schema:   schema,
		Tag:      ber.Tag{Class: hdr.Tag.Class, Number: hdr.Tag.Number},
		Off:      off,
		Nhdr:     hdr.HeaderLen,
		Len:      end - contentOff,
		Chosen:   -1,
		Children: children,
		image:    image,
	}, end, nil
}

func decodeRepeated(image *Image, off int, schema, resolved *asn1.Node, ms *asn1.ModuleSet) (*Node, int, error) {
	class, num, err := effectiveTag(schema, ms)
	if err != nil {
		return nil, off, err
	}
	hdr, contentOff, err := ber.ReadHeader(image.Bytes, off)
	if err != nil {
		return nil, off, err
	}
	if int(hdr.Tag.Class) != int(class) || hdr.Tag.Number != num {
		return nil, off, unexpectedTag(schema)
	}
	end := contentOff + hdr.Length
	indefinite := hdr.Length == ber.LengthIndefinite
	if indefinite {
		end = skipIndefinite(image, contentOff)
	}
	elemSchema := resolved.Children[0]
	var children []*Node
	cur := contentOff
	limit := end
	if indefinite {
		limit = end - 2
	}
	for cur < limit {
		if indefinite && isEndOfContents(image.Bytes, cur) {
			break
		}
		child, next, err := decodeNode(image, cur, elemSchema, ms)
		if err != nil {
			return nil, off, err
		}
		children = append(children, child)
		cur = next
	}
	return &Node{
		Schema:   schema,
		Tag:      ber.Tag{Class: hdr.Tag.Class, Number: hdr.Tag.Number},
		Off:      off,
		Nhdr:     hdr.HeaderLen,
		Len:      end - contentOff,
		Chosen:   -1,
		Children: children,
		image:    image,
	}, end, nil
}

func decodeAny(image *Image, off int, schema, resolved *asn1.Node) (*Node, int, error) {
	hdr, contentOff, err := ber.ReadHeader(image.Bytes, off)
	if err != nil {
		return nil, off, err
	}
	end := contentOff + hdr.Length
	if hdr.Length == ber.LengthIndefinite {
		end = skipIndefinite(image, contentOff)
	}
	return &Node{
		Schema: schema,
		Tag:    hdr.Tag,
		Off:    off,
		Nhdr:   hdr.HeaderLen,
		Len:    end - contentOff,
		Chosen: -1,
		image:  image,
	}, end, nil
}

func decodePrimitive(image *Image, off int, schema, resolved *asn1.Node) (*Node, int, error) {
	class, num, err := resolved.EffectiveTag()
	if err != nil {
		return nil, off, err
	}
	if schema.Tag != nil {
		class, num = schema.Tag.Class, schema.Tag.Number
	}
	hdr, contentOff, err := ber.ReadHeader(image.Bytes, off)
	if err != nil {
		return nil, off, err
	}
	if int(hdr.Tag.Class) != int(class) || hdr.Tag.Number != num {
		return nil, off, unexpectedTag(schema)
	}
	end := contentOff + hdr.Length
	if hdr.Length == ber.LengthIndefinite {
		end = skipIndefinite(image, contentOff)
	}
	return &Node{
		Schema: schema,
		Tag:    hdr.Tag,
		Off:    off,
		Nhdr:   hdr.HeaderLen,
		Len:    end - contentOff,
		Chosen: -1,
		image:  image,
	}, end, nil
}

// headerMatches peeks the header at pos without consuming it, to decide
// whether an optional/choice field should be skipped.
func headerMatches(buf []byte, pos int, field *asn1.Node, ms *asn1.ModuleSet) (bool, error) {
	class, num, err := effectiveTag(field, ms)
	if err != nil {
		return false, err
	}
	if num < 0 { // untagged CHOICE or ANY: let the CHOICE/ANY decoder itself decide
		return true, nil
	}
	hdr, _, err := ber.ReadHeader(buf, pos)
	if err != nil {
		return false, nil
	}
	return int(hdr.Tag.Class) == int(class) && hdr.Tag.Number == num, nil
}

func absentNode(schema *asn1.Node, pos int) *Node {
	return &Node{Schema: schema, Off: -1, Chosen: -1}
}

func isEndOfContents(buf []byte, pos int) bool {
	return pos+1 < len(buf) && buf[pos] == 0x00 && buf[pos+1] == 0x00
}

func skipIndefinite(image *Image, pos int) int {
	depth := 1
	for pos < len(image.Bytes) && depth > 0 {
		if isEndOfContents(image.Bytes, pos) {
			depth--
			pos += 2
			continue
		}
		hdr, contentOff, err := ber.ReadHeader(image.Bytes, pos)
		if err != nil {
			return len(image.Bytes)
		}
		if hdr.Length == ber.LengthIndefinite {
			depth++
			pos = contentOff
			continue
		}
		pos = contentOff + hdr.Length
	}
	return pos
}

func unexpectedTag(schema *asn1.Node) error {
	return &asn1.Error{Kind: asn1.UnexpectedTag, Msg: "unexpected tag for field " + schema.Name}
}
