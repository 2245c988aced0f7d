package cms_test

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-pkix/cms/asn1"
	"github.com/go-pkix/cms/ber"
	"github.com/go-pkix/cms/cms"
)

// Small TLV helpers, duplicated locally rather than reaching into another
// package's unexported build-side encoder -- same rationale as
// x509cert_test.go's own copies.

func tagged(class asn1.Class, num int, constructed bool, content []byte) []byte {
	return append(ber.WriteHeader(nil, ber.Tag{Class: class, Number: num}, constructed, len(content)), content...)
}

func seq(parts ...[]byte) []byte { return tagged(asn1.ClassUniversal, 16, true, concatAll(parts...)) }
func set(parts ...[]byte) []byte { return tagged(asn1.ClassUniversal, 17, true, concatAll(parts...)) }
func integer(content []byte) []byte {
	return tagged(asn1.ClassUniversal, 2, false, content)
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

func algorithmIdentifier(oidArcs ...int) []byte {
	return seq(oidBytes(oidArcs...), nullVal())
}

func buildSignerCertificate() []byte {
	serial := integer([]byte{0x2a})
	sigAlg := algorithmIdentifier(1, 2, 840, 113549, 1, 1, 5)
	issuer := seq(set(seq(oidBytes(2, 5, 4, 3), printableString("Test CA"))))
	subject := seq(set(seq(oidBytes(2, 5, 4, 3), printableString("Test Signer"))))
	validity := seq(utcTime("200101000000Z"), utcTime("300101000000Z"))
	rsaKey := seq(integer([]byte{0x01, 0x00, 0x01}), integer([]byte{0x01, 0x00, 0x01}))
	spki := seq(algorithmIdentifier(1, 2, 840, 113549, 1, 1, 1), bitString(0x00, rsaKey))
	tbs := seq(serial, sigAlg, issuer, validity, subject, spki)
	sigVal := bitString(0x00, []byte{0xde, 0xad, 0xbe, 0xef})
	return seq(tbs, sigAlg, sigVal)
}

var oidSHA256 = asn1.OID{2, 16, 840, 1, 101, 3, 4, 2, 1}
var oidRSAEncryption = asn1.OID{1, 2, 840, 113549, 1, 1, 1}

type capturingHasher struct {
	calls [][]byte
}

func (h *capturingHasher) Write(data []byte) {
	h.calls = append(h.calls, append([]byte{}, data...))
}

func TestDetachedBuildThenParseRoundTrip(t *testing.T) {
	certDER := buildSignerCertificate()
	digest := bytes.Repeat([]byte{0x42}, 32)

	ctx := &cms.Context{
		EncapsulatedContentType: cms.OIDData,
		DigestAlgorithms:        []asn1.OID{oidSHA256},
	}
	signer, err := ctx.AddSigner(certDER, oidSHA256)
	require.NoError(t, err)
	signer.SignatureAlgo = oidRSAEncryption
	signer.MessageDigest = digest

	require.NoError(t, ctx.Begin())
	assert.Equal(t, cms.GotContent, ctx.StopReason())

	require.NoError(t, ctx.BuildHeader())
	assert.Equal(t, cms.EndData, ctx.StopReason())
	assert.True(t, ctx.Detached)

	require.NoError(t, ctx.BuildSignedAttributes())
	assert.Equal(t, cms.NeedSig, ctx.StopReason())

	hasher := &capturingHasher{}
	ctx.Hash = hasher
	require.NoError(t, ctx.HashSignedAttrs(0))
	require.Len(t, hasher.calls, 1)
	assert.Equal(t, byte(0x31), hasher.calls[0][0])

	sigVal := bytes.Repeat([]byte{0x99}, 16)
	require.NoError(t, ctx.SetSigVal(0, sigVal))

	var out bytes.Buffer
	ctx.Writer = &out
	require.NoError(t, ctx.Finish())
	assert.Equal(t, cms.Ready, ctx.StopReason())

	parsed := &cms.Context{Reader: bytes.NewReader(out.Bytes())}
	require.NoError(t, parsed.ParseContentInfo())
	assert.Equal(t, cms.GotContent, parsed.StopReason())

	require.NoError(t, parsed.ParseHeader())
	assert.Equal(t, cms.NeedHash, parsed.StopReason())
	assert.True(t, parsed.Detached)

	require.NoError(t, parsed.HashContent())
	assert.Equal(t, cms.EndData, parsed.StopReason())

	require.NoError(t, parsed.ParseSignerInfos())
	assert.Equal(t, cms.Ready, parsed.StopReason())

	require.Len(t, parsed.SignerInfos, 1)
	info := parsed.SignerInfos[0]
	assert.Equal(t, digest, info.MessageDigest)
	assert.Equal(t, sigVal, info.Signature)
	assert.Equal(t, hasher.calls[0], info.SignedAttributesDER())

	issuer, serial := info.IssuerSerial()
	assert.NotEmpty(t, issuer)
	assert.Equal(t, []byte{0x2a}, serial)

	cert, err := parsed.Certificate(0)
	require.NoError(t, err)
	assert.Equal(t, certDER, cert)

	_, err = parsed.Certificate(1)
	assert.ErrorIs(t, err, io.EOF)
}

func TestAttachedBuildThenParseRoundTrip(t *testing.T) {
	certDER := buildSignerCertificate()
	content := []byte("attached content bytes")
	digest := bytes.Repeat([]byte{0x7a}, 32)

	ctx := &cms.Context{
		EncapsulatedContentType: cms.OIDData,
		DigestAlgorithms:        []asn1.OID{oidSHA256},
	}
	signer, err := ctx.AddSigner(certDER, oidSHA256)
	require.NoError(t, err)
	signer.SignatureAlgo = oidRSAEncryption

	require.NoError(t, ctx.Begin())
	assert.Equal(t, cms.GotContent, ctx.StopReason())

	require.NoError(t, ctx.BuildHeader())
	assert.Equal(t, cms.BeginData, ctx.StopReason())
	assert.False(t, ctx.Detached)

	require.NoError(t, ctx.WriteContent(content))
	require.NoError(t, ctx.EndContent())
	assert.Equal(t, cms.EndData, ctx.StopReason())

	require.NoError(t, ctx.SetMessageDigest(0, digest))
	require.NoError(t, ctx.BuildSignedAttributes())
	assert.Equal(t, cms.NeedSig, ctx.StopReason())

	hasher := &capturingHasher{}
	ctx.Hash = hasher
	require.NoError(t, ctx.HashSignedAttrs(0))

	sigVal := bytes.Repeat([]byte{0x55}, 16)
	require.NoError(t, ctx.SetSigVal(0, sigVal))

	var out bytes.Buffer
	ctx.Writer = &out
	require.NoError(t, ctx.Finish())

	parsed := &cms.Context{Reader: bytes.NewReader(out.Bytes())}
	require.NoError(t, parsed.ParseContentInfo())
	require.NoError(t, parsed.ParseHeader())
	assert.Equal(t, cms.BeginData, parsed.StopReason())
	assert.False(t, parsed.Detached)

	buffered, err := parsed.ReadContent()
	require.NoError(t, err)
	assert.Equal(t, content, buffered)

	contentHasher := &capturingHasher{}
	parsed.Hash = contentHasher
	require.NoError(t, parsed.HashContent())
	assert.Equal(t, cms.EndData, parsed.StopReason())
	require.Len(t, contentHasher.calls, 1)
	assert.Equal(t, content, contentHasher.calls[0])

	require.NoError(t, parsed.ParseSignerInfos())
	require.Len(t, parsed.SignerInfos, 1)
	assert.Equal(t, digest, parsed.SignerInfos[0].MessageDigest)
}
