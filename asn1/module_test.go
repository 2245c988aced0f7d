package asn1

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testModule = `
Test DEFINITIONS IMPLICIT TAGS ::= BEGIN

id-test OBJECT IDENTIFIER ::= {1 2 840 11359 1}

Widget ::= SEQUENCE {
  name OCTET STRING,
  count [0] EXPLICIT INTEGER OPTIONAL,
  tag [1] IMPLICIT OCTET STRING OPTIONAL,
  flavor Flavor
}

Flavor ::= CHOICE {
  sweet BOOLEAN,
  sour OCTET STRING
}

END
`

func TestModuleSetLookup(t *testing.T) {
	ms := NewModuleSet()
	_, err := ms.Parse(testModule)
	require.NoError(t, err)

	n, err := ms.Lookup("Widget")
	require.NoError(t, err)
	assert.Equal(t, SEQUENCE, n.Kind)
	require.Len(t, n.Children, 4)
	assert.Equal(t, "name", n.Children[0].Name)
	assert.False(t, n.Children[0].Optional)
	assert.Equal(t, "count", n.Children[1].Name)
	assert.True(t, n.Children[1].Optional)
	require.NotNil(t, n.Children[1].Tag)
	assert.True(t, n.Children[1].Tag.Explicit)
	assert.Equal(t, ClassContext, n.Children[1].Tag.Class)
	assert.Equal(t, 0, n.Children[1].Tag.Number)

	assert.Equal(t, "tag", n.Children[2].Name)
	require.NotNil(t, n.Children[2].Tag)
	assert.False(t, n.Children[2].Tag.Explicit)
	assert.Equal(t, 1, n.Children[2].Tag.Number)
}

func TestModuleSetLookupUnknownType(t *testing.T) {
	ms := NewModuleSet()
	_, err := ms.Parse(testModule)
	require.NoError(t, err)

	_, err = ms.Lookup("DoesNotExist")
	require.Error(t, err)
	var asn1Err *Error
	require.ErrorAs(t, err, &asn1Err)
	assert.Equal(t, SchemaReference, asn1Err.Kind)
}

func TestModuleSetResolveOIDValue(t *testing.T) {
	ms := NewModuleSet()
	_, err := ms.Parse(testModule)
	require.NoError(t, err)

	oid, err := ms.ResolveOIDValue("id-test")
	require.NoError(t, err)
	assert.Equal(t, "1.2.840.11359.1", oid.String())
}

func TestModuleSetResolveChoiceField(t *testing.T) {
	ms := NewModuleSet()
	_, err := ms.Parse(testModule)
	require.NoError(t, err)

	widget, err := ms.Lookup("Widget")
	require.NoError(t, err)
	flavor := widget.Children[3]
	assert.Equal(t, TYPE_REF, flavor.Kind)

	resolved, err := ms.Resolve(flavor)
	require.NoError(t, err)
	assert.Equal(t, CHOICE, resolved.Kind)
	require.Len(t, resolved.Children, 2)
}

func TestOIDEqualAndString(t *testing.T) {
	a := OID{1, 2, 840, 113549, 1, 1, 1}
	b := OID{1, 2, 840, 113549, 1, 1, 1}
	c := OID{1, 2, 840, 113549, 1, 1, 5}
	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
	assert.Equal(t, "1.2.840.113549.1.1.1", a.String())
}

func TestErrorIsMatchesOnKindOnly(t *testing.T) {
	err := NewError(Truncated, "ran out of bytes here")
	target := &Error{Kind: Truncated}
	assert.True(t, err.Is(target))

	other := &Error{Kind: InvalidData}
	assert.False(t, err.Is(other))
}
