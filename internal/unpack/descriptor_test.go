package unpack

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// jpegPayload carries the JPEG magic bytes so sniffing identifies it.
var jpegPayload = []byte{0xff, 0xd8, 0xff, 0xe0, 0x00, 0x10, 'J', 'F', 'I', 'F', 0x00}

// pngPayload carries the PNG signature.
var pngPayload = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\x0dIHDR")

func TestDescribe_DigestStableAndURLSafe(t *testing.T) {
	types := NewTypeResolver()
	archive := raw(
		`Content-Type: multipart/related; boundary="b"`,
		"",
		"--b",
		"Content-Type: text/plain",
		"",
		"same payload",
		"--b",
		"Content-Type: text/plain",
		"",
		"same payload",
		"--b--",
	)
	msg := parseArchive(t, archive)
	require.Len(t, msg.Subparts(), 2)

	first := types.Describe(msg.Subparts()[0])
	second := types.Describe(msg.Subparts()[1])

	assert.Equal(t, first.Digest, second.Digest)
	// Raw URL-safe base64 of a 256-bit hash: 43 chars, no padding.
	assert.Len(t, first.Digest, 43)
	assert.NotContains(t, first.Digest, "+")
	assert.NotContains(t, first.Digest, "/")
	assert.NotContains(t, first.Digest, "=")
}

func TestContentType_DeclaredTypeWins(t *testing.T) {
	types := NewTypeResolver()
	assert.Equal(t, "text/css", types.ContentType("text/css", []byte("body {}")))
}

func TestContentType_SniffsWhenDeclaredAbsent(t *testing.T) {
	types := NewTypeResolver()
	assert.Equal(t, "image/png", types.ContentType("", pngPayload))
}

func TestContentType_SniffsOctetStreamPlaceholder(t *testing.T) {
	types := NewTypeResolver()
	assert.Equal(t, "image/jpeg", types.ContentType("application/octet-stream", jpegPayload))
}

func TestContentType_EmptyPayloadKeepsDeclared(t *testing.T) {
	types := NewTypeResolver()
	assert.Empty(t, types.ContentType("", nil))
	assert.Equal(t, "application/octet-stream", types.ContentType("application/octet-stream", nil))
}

func TestExtension_CommonTableFirst(t *testing.T) {
	types := NewTypeResolver()
	assert.Equal(t, ".html", types.Extension("text/html"))
	assert.Equal(t, ".txt", types.Extension("text/plain"))
	assert.Equal(t, ".data", types.Extension("application/octet-stream"))
	assert.Equal(t, ".jpg", types.Extension("image/jpeg"))
}

func TestExtension_UnknownTypeResolvesToEmptyAndCaches(t *testing.T) {
	types := NewTypeResolver()
	assert.Empty(t, types.Extension("application/x-no-such-type"))
	// Second lookup hits the cache and stays consistent.
	assert.Empty(t, types.Extension("application/x-no-such-type"))
}

func TestExtension_CaseInsensitive(t *testing.T) {
	types := NewTypeResolver()
	assert.Equal(t, ".jpg", types.Extension("Image/JPEG"))
}
