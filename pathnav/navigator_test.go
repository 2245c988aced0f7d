package pathnav_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-pkix/cms/asn1"
	"github.com/go-pkix/cms/der"
	"github.com/go-pkix/cms/pathnav"
)

const attrModule = `
AttrTest DEFINITIONS IMPLICIT TAGS ::= BEGIN

Outer ::= SEQUENCE {
  attrs SET OF SEQUENCE {
    attrType OBJECT IDENTIFIER,
    attrValue OCTET STRING
  }
}

END
`

func decodeOuter(t *testing.T) *der.Node {
	ms := asn1.NewModuleSet()
	_, err := ms.Parse(attrModule)
	require.NoError(t, err)
	schema, err := ms.Lookup("Outer")
	require.NoError(t, err)

	// attrType 1.2.3 / attrValue "x", attrType 1.2.4 / attrValue "y"
	attr1 := []byte{0x30, 0x07, 0x06, 0x02, 0x2a, 0x03, 0x04, 0x01, 'x'}
	attr2 := []byte{0x30, 0x07, 0x06, 0x02, 0x2a, 0x04, 0x04, 0x01, 'y'}
	content := append(append([]byte{}, attr1...), attr2...)
	attrs := append([]byte{0x31, byte(len(content))}, content...)
	outer := append([]byte{0x30, byte(len(attrs))}, attrs...)

	root, _, err := der.Decode(&der.Image{Bytes: outer}, 0, schema, ms)
	require.NoError(t, err)
	return root
}

func TestFindSimplePath(t *testing.T) {
	root := decodeOuter(t)
	n := pathnav.Find(root, pathnav.Parse("attrs"))
	require.NotNil(t, n)
	assert.Equal(t, "attrs", n.Schema.Name)
}

func TestFindAnyDepthPath(t *testing.T) {
	root := decodeOuter(t)
	n := pathnav.Find(root, pathnav.Parse("attrs..attrValue"))
	require.NotNil(t, n)
	assert.Equal(t, "attrValue", n.Schema.Name)
	assert.Equal(t, []byte("x"), n.Content())
}

func TestFindTypeValueLocatesByOID(t *testing.T) {
	root := decodeOuter(t)
	match := pathnav.FindTypeValue(root, asn1.OID{1, 2, 4}, 0)
	require.NotNil(t, match)
	assert.Equal(t, []byte("y"), match.Child("attrValue").Content())

	assert.Nil(t, pathnav.FindTypeValue(root, asn1.OID{1, 2, 4}, 1))
	assert.Nil(t, pathnav.FindTypeValue(root, asn1.OID{9, 9, 9}, 0))
}
