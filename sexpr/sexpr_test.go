package sexpr_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-pkix/cms/asn1"
	"github.com/go-pkix/cms/ber"
	"github.com/go-pkix/cms/sexpr"
)

func tagged(class asn1.Class, num int, constructed bool, content []byte) []byte {
	return append(ber.WriteHeader(nil, ber.Tag{Class: class, Number: num}, constructed, len(content)), content...)
}

func seq(parts ...[]byte) []byte { return tagged(asn1.ClassUniversal, 16, true, concatAll(parts...)) }
func integer(content []byte) []byte {
	return tagged(asn1.ClassUniversal, 2, false, content)
}
func nullVal() []byte { return tagged(asn1.ClassUniversal, 5, false, nil) }
func bitString(unused byte, content []byte) []byte {
	return tagged(asn1.ClassUniversal, 3, false, append([]byte{unused}, content...))
}

func oidBytes(arcs ...int) []byte {
	var content []byte
	content = append(content, byte(arcs[0]*40+arcs[1]))
	for _, arc := range arcs[2:] {
		content = append(content, base128(arc)...)
	}
	return tagged(asn1.ClassUniversal, 6, false, content)
}

func base128(v int) []byte {
	if v == 0 {
		return []byte{0}
	}
	var stack []byte
	for v > 0 {
		stack = append(stack, byte(v&0x7f))
		v >>= 7
	}
	out := make([]byte, len(stack))
	for i, b := range stack {
		if i != 0 {
			b |= 0x80
		}
		out[len(stack)-1-i] = b
	}
	return out
}

func concatAll(parts ...[]byte) []byte {
	var out []byte
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

func algorithmIdentifier(oidArcs ...int) []byte {
	return seq(oidBytes(oidArcs...), nullVal())
}

func TestEncodeCanonicalForm(t *testing.T) {
	v := sexpr.NewList(
		sexpr.NewAtom([]byte("foo")),
		sexpr.NewList(sexpr.NewAtom([]byte("bar")), sexpr.NewAtom([]byte("x"))),
	)
	assert.Equal(t, []byte("(3:foo(3:bar1:x))"), sexpr.Encode(v))
}

func TestDecodeEncodeRoundTrip(t *testing.T) {
	buf := []byte("(10:public-key(3:rsa(1:n3:\x01\x00\x01)(1:e1:\x03)))")
	v, n, err := sexpr.Decode(buf)
	require.NoError(t, err)
	assert.Equal(t, len(buf), n)
	assert.Equal(t, buf, sexpr.Encode(v))

	rsa := v.Get("rsa")
	require.NotNil(t, rsa)
	assert.Equal(t, []byte{0x01, 0x00, 0x01}, rsa.Field("n"))
	assert.Equal(t, []byte{0x03}, rsa.Field("e"))
}

func TestTripleRoundTripIdempotent(t *testing.T) {
	v := sexpr.NewList(
		sexpr.NewAtom([]byte("sig-val")),
		sexpr.NewList(sexpr.NewAtom([]byte("rsa")),
			sexpr.NewList(sexpr.NewAtom([]byte("s")), sexpr.NewAtom([]byte{0xaa, 0xbb})),
		),
	)
	once := sexpr.Encode(v)
	decoded, _, err := sexpr.Decode(once)
	require.NoError(t, err)
	twice := sexpr.Encode(decoded)
	assert.Equal(t, once, twice)

	redecoded, _, err := sexpr.Decode(twice)
	require.NoError(t, err)
	assert.Equal(t, twice, sexpr.Encode(redecoded))
}

func TestDecodeTruncatedAtomErrors(t *testing.T) {
	_, _, err := sexpr.Decode([]byte("3:ab"))
	require.Error(t, err)
	var asn1Err *asn1.Error
	require.ErrorAs(t, err, &asn1Err)
	assert.Equal(t, asn1.Truncated, asn1Err.Kind)
}

func TestDecodeMalformedLengthErrors(t *testing.T) {
	_, _, err := sexpr.Decode([]byte("(x:ab)"))
	require.Error(t, err)
	var asn1Err *asn1.Error
	require.ErrorAs(t, err, &asn1Err)
	assert.Equal(t, asn1.InvalidData, asn1Err.Kind)
}

func TestDecodeUnterminatedListErrors(t *testing.T) {
	_, _, err := sexpr.Decode([]byte("(3:foo"))
	require.Error(t, err)
	var asn1Err *asn1.Error
	require.ErrorAs(t, err, &asn1Err)
	assert.Equal(t, asn1.Truncated, asn1Err.Kind)
}

func TestRSAPublicKeyRoundTrip(t *testing.T) {
	n := []byte{0x00, 0xc3}
	e := []byte{0x01, 0x00, 0x01}
	rsaKey := seq(integer(n), integer(e))
	spki := seq(algorithmIdentifier(1, 2, 840, 113549, 1, 1, 1), bitString(0x00, rsaKey))

	v, err := sexpr.DERToPublicKey(spki)
	require.NoError(t, err)
	assert.Equal(t, []byte("public-key"), v.Head())

	rsa := v.Get("rsa")
	require.NotNil(t, rsa)
	assert.Equal(t, []byte{0xc3}, rsa.Field("n"))
	assert.Equal(t, []byte{0x01, 0x00, 0x01}, rsa.Field("e"))

	der, err := sexpr.PublicKeyToDER(v)
	require.NoError(t, err)
	assert.Equal(t, spki, der)
}

func TestDSAPublicKeyRoundTrip(t *testing.T) {
	p := []byte{0x00, 0xc3}
	q := []byte{0x01, 0x00, 0x01}
	g := []byte{0x02}
	y := []byte{0x03}
	params := seq(integer(p), integer(q), integer(g))
	alg := seq(oidBytes(1, 2, 840, 10040, 4, 1), params)
	spki := seq(alg, bitString(0x00, integer(y)))

	v, err := sexpr.DERToPublicKey(spki)
	require.NoError(t, err)
	dsa := v.Get("dsa")
	require.NotNil(t, dsa)
	assert.Equal(t, []byte{0xc3}, dsa.Field("p"))
	assert.Equal(t, y, dsa.Field("y"))

	der, err := sexpr.PublicKeyToDER(v)
	require.NoError(t, err)
	assert.Equal(t, spki, der)
}

func TestSigValRSAFamilyRoundTrip(t *testing.T) {
	sigBytes := []byte{0xaa, 0xbb, 0xcc, 0xdd}
	// sha1WithRSAEncryption is in the "rsa" family; the converted form
	// always comes back tagged as plain rsaEncryption since the digest is
	// tracked separately by the CMS digestAlgorithm field.
	algDER := algorithmIdentifier(1, 2, 840, 113549, 1, 1, 5)
	valueDER := bitString(0x00, sigBytes)

	v, err := sexpr.DERToSigVal(algDER, valueDER)
	require.NoError(t, err)
	assert.Equal(t, []byte("sig-val"), v.Head())
	rsa := v.Get("rsa")
	require.NotNil(t, rsa)
	assert.Equal(t, sigBytes, rsa.Field("s"))

	alg, value, err := sexpr.SigValToDER(v)
	require.NoError(t, err)
	assert.Equal(t, algorithmIdentifier(1, 2, 840, 113549, 1, 1, 1), alg)
	assert.Equal(t, valueDER, value)
}

func TestSigValDSAFamilyRoundTrip(t *testing.T) {
	r := []byte{0x00, 0xc3}
	s := []byte{0x01, 0x00, 0x01}
	sigSeq := seq(integer(r), integer(s))
	algDER := seq(oidBytes(1, 2, 840, 10040, 4, 3)) // dsaWithSHA1
	valueDER := bitString(0x00, sigSeq)

	v, err := sexpr.DERToSigVal(algDER, valueDER)
	require.NoError(t, err)
	dsa := v.Get("dsa")
	require.NotNil(t, dsa)
	assert.Equal(t, []byte{0xc3}, dsa.Field("r"))
	assert.Equal(t, s, dsa.Field("s"))

	alg, value, err := sexpr.SigValToDER(v)
	require.NoError(t, err)
	assert.Equal(t, seq(oidBytes(1, 2, 840, 10040, 4, 1)), alg) // plain dsa, not dsaWithSHA1
	assert.Equal(t, valueDER, value)
}

func TestSigValUnknownAlgorithmErrors(t *testing.T) {
	algDER := algorithmIdentifier(1, 2, 3, 4)
	valueDER := bitString(0x00, []byte{0x01})
	_, err := sexpr.DERToSigVal(algDER, valueDER)
	require.Error(t, err)
	var asn1Err *asn1.Error
	require.ErrorAs(t, err, &asn1Err)
	assert.Equal(t, asn1.UnknownAlgorithm, asn1Err.Kind)
}
