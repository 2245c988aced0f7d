package der_test

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-pkix/cms/asn1"
	"github.com/go-pkix/cms/der"
)

const storeModule = `
StoreTest DEFINITIONS IMPLICIT TAGS ::= BEGIN

Rec2 ::= SEQUENCE {
  oid OBJECT IDENTIFIER,
  flag BOOLEAN,
  empty NULL
}

END
`

func storeSchema(t *testing.T) *asn1.Node {
	ms := asn1.NewModuleSet()
	_, err := ms.Parse(storeModule)
	require.NoError(t, err)
	schema, err := ms.Lookup("Rec2")
	require.NoError(t, err)
	return schema
}

func TestStoreIntegerUsesFieldTag(t *testing.T) {
	schema, _ := recSchema(t)
	idField := schema.Children[0] // untagged INTEGER, tag resolved via EffectiveTag

	leaf := der.NewLeaf(idField)
	assert.False(t, leaf.Present())

	der.StoreInteger(leaf, big.NewInt(300))
	assert.True(t, leaf.Present())
	assert.Equal(t, []byte{0x02, 0x02, 0x01, 0x2c}, leaf.Span())
	assert.Equal(t, []byte{0x01, 0x2c}, leaf.Content())
}

func TestStoreIntegerNegative(t *testing.T) {
	schema, _ := recSchema(t)
	leaf := der.NewLeaf(schema.Children[0])
	der.StoreInteger(leaf, big.NewInt(-2))
	assert.Equal(t, []byte{0x02, 0x01, 0xfe}, leaf.Span())
}

func TestStoreOctetStringUsesImplicitFieldTag(t *testing.T) {
	schema, _ := recSchema(t)
	noteField := schema.Children[1] // note [0] IMPLICIT OCTET STRING OPTIONAL

	leaf := der.NewLeaf(noteField)
	der.StoreOctetString(leaf, []byte("hi"))
	assert.Equal(t, []byte{0x80, 0x02, 'h', 'i'}, leaf.Span())
}

func TestStoreOIDBooleanNull(t *testing.T) {
	schema := storeSchema(t)

	oidLeaf := der.NewLeaf(schema.Children[0])
	der.StoreOID(oidLeaf, asn1.OID{1, 2, 840, 113549})
	assert.Equal(t, []byte{0x06, 0x06, 0x2a, 0x86, 0x48, 0x86, 0xf7, 0x0d}, oidLeaf.Span())

	flagLeaf := der.NewLeaf(schema.Children[1])
	der.StoreBoolean(flagLeaf, true)
	assert.Equal(t, []byte{0x01, 0x01, 0xff}, flagLeaf.Span())

	der.StoreBoolean(flagLeaf, false)
	assert.Equal(t, []byte{0x01, 0x01, 0x00}, flagLeaf.Span())

	nullLeaf := der.NewLeaf(schema.Children[2])
	der.StoreNull(nullLeaf)
	assert.Equal(t, []byte{0x05, 0x00}, nullLeaf.Span())
	assert.True(t, nullLeaf.Present())
}
