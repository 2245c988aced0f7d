package x509cert_test

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-pkix/cms/asn1"
	"github.com/go-pkix/cms/ber"
	"github.com/go-pkix/cms/x509cert"
)

// Hand-assembled DER fixture builders. These duplicate a handful of the
// same small TLV helpers cms/encoding.go and sexpr/encoding.go already
// carry for their own build sides, kept local here since a _test.go file
// should not reach into another package's unexported encoder to build its
// own fixtures.

func tagged(class asn1.Class, num int, constructed bool, content []byte) []byte {
	return append(ber.WriteHeader(nil, ber.Tag{Class: class, Number: num}, constructed, len(content)), content...)
}

func seq(parts ...[]byte) []byte { return tagged(asn1.ClassUniversal, 16, true, concatAll(parts...)) }
func set(parts ...[]byte) []byte { return tagged(asn1.ClassUniversal, 17, true, concatAll(parts...)) }
func integer(content []byte) []byte {
	return tagged(asn1.ClassUniversal, 2, false, content)
}
func octetString(content []byte) []byte { return tagged(asn1.ClassUniversal, 4, false, content) }
func boolean(v bool) []byte {
	b := byte(0x00)
	if v {
		b = 0xff
	}
	return tagged(asn1.ClassUniversal, 1, false, []byte{b})
}
func nullVal() []byte { return tagged(asn1.ClassUniversal, 5, false, nil) }
func bitString(unused byte, content []byte) []byte {
	return tagged(asn1.ClassUniversal, 3, false, append([]byte{unused}, content...))
}
func printableString(s string) []byte {
	return tagged(asn1.ClassUniversal, 19, false, []byte(s))
}
func utcTime(s string) []byte { return tagged(asn1.ClassUniversal, 23, false, []byte(s)) }

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

func rdn(oidArcs []int, value string) []byte {
	atv := seq(oidBytes(oidArcs...), printableString(value))
	return set(atv)
}

func name(rdns ...[]byte) []byte { return seq(rdns...) }

func algorithmIdentifier(oidArcs ...int) []byte {
	return seq(oidBytes(oidArcs...), nullVal())
}

// buildCertificate assembles a minimal but schema-complete Certificate:
// no version, no unique IDs, one CN RDN each for issuer/subject, a dummy
// RSA-shaped SubjectPublicKeyInfo, and two extensions -- BasicConstraints
// (critical, cA=true) and KeyUsage (critical omitted, defaulting to
// false) -- to exercise both extension enumeration and the
// optional-field/DEFAULT skip path (critical's BOOLEAN tag does not
// match the OCTET STRING that follows it when omitted).
func buildCertificate(notBefore, notAfter string) []byte {
	serial := integer([]byte{0x01, 0x02, 0x03})
	sigAlg := algorithmIdentifier(1, 2, 840, 113549, 1, 1, 5) // sha1WithRSAEncryption
	issuer := name(rdn([]int{2, 5, 4, 3}, "Test CA"))
	subject := name(rdn([]int{2, 5, 4, 3}, "Test Leaf"))
	validity := seq(utcTime(notBefore), utcTime(notAfter))

	rsaKey := seq(integer([]byte{0x01, 0x00, 0x01}), integer([]byte{0x01, 0x00, 0x01}))
	spki := seq(algorithmIdentifier(1, 2, 840, 113549, 1, 1, 1), bitString(0x00, rsaKey))

	basicConstraints := seq(boolean(true))
	ext1 := seq(oidBytes(2, 5, 29, 19), boolean(true), octetString(basicConstraints))

	keyUsage := bitString(0x00, []byte{0x84}) // digitalSignature + keyCertSign
	ext2 := seq(oidBytes(2, 5, 29, 15), octetString(keyUsage))

	extensions := tagged(asn1.ClassContext, 3, true, seq(ext1, ext2))

	tbs := seq(serial, sigAlg, issuer, validity, subject, spki, extensions)

	sigVal := bitString(0x00, []byte{0xde, 0xad, 0xbe, 0xef})
	return seq(tbs, sigAlg, sigVal)
}

func TestReadDERFields(t *testing.T) {
	der := buildCertificate("490101000000Z", "500101000000Z")
	cert, err := x509cert.ReadDER(bytes.NewReader(der))
	require.NoError(t, err)

	serial := cert.Serial()
	require.Len(t, serial, 4+3)
	assert.Equal(t, []byte{0x01, 0x02, 0x03}, serial[4:])

	subject, err := cert.Subject(0)
	require.NoError(t, err)
	assert.Equal(t, "CN=Test Leaf", subject)

	issuer, err := cert.Issuer(0)
	require.NoError(t, err)
	assert.Equal(t, "CN=Test CA", issuer)

	isCA, err := cert.IsCA()
	require.NoError(t, err)
	assert.True(t, isCA)

	ku, err := cert.KeyUsage()
	require.NoError(t, err)
	assert.Equal(t, x509cert.DigitalSignature|x509cert.KeyCertSign, ku)
}

func TestValidityUTCTimePivot(t *testing.T) {
	der := buildCertificate("490101000000Z", "500101000000Z")
	cert, err := x509cert.ReadDER(bytes.NewReader(der))
	require.NoError(t, err)

	notBefore, err := cert.Validity(0)
	require.NoError(t, err)
	assert.Equal(t, "20490101T000000", notBefore)

	notAfter, err := cert.Validity(1)
	require.NoError(t, err)
	assert.Equal(t, "19500101T000000", notAfter)
}

func TestExtensionEnumerationAndEOF(t *testing.T) {
	der := buildCertificate("490101000000Z", "500101000000Z")
	cert, err := x509cert.ReadDER(bytes.NewReader(der))
	require.NoError(t, err)

	ext0, err := cert.Extension(0)
	require.NoError(t, err)
	assert.Equal(t, asn1.OID{2, 5, 29, 19}, ext0.OID)
	assert.True(t, ext0.Critical)

	ext1, err := cert.Extension(1)
	require.NoError(t, err)
	assert.Equal(t, asn1.OID{2, 5, 29, 15}, ext1.OID)
	assert.False(t, ext1.Critical)

	_, err = cert.Extension(2)
	assert.ErrorIs(t, err, io.EOF)
	// Reading past the end stays io.EOF on every subsequent call.
	_, err = cert.Extension(2)
	assert.ErrorIs(t, err, io.EOF)
}

func TestReadDEREmptyReaderIsEOF(t *testing.T) {
	_, err := x509cert.ReadDER(bytes.NewReader(nil))
	assert.ErrorIs(t, err, io.EOF)
}
