package unpack

import (
	"crypto/sha256"
	"encoding/base64"
	"log"
	"mime"
	"sort"
	"strings"
	"sync"

	"github.com/gabriel-vasile/mimetype"

	"github.com/derekey/mhtml-unpack/internal/message"
)

// commonExtensions short-circuits registry lookups for types that show
// up in practically every archive, keeping blob names predictable.
var commonExtensions = map[string]string{
	"text/html":                ".html",
	"text/plain":               ".txt",
	"application/octet-stream": ".data",
	"image/jpeg":               ".jpg",
}

// Descriptor is the per-render view of a part: its effective content
// type, decoded payload, file-extension hint, and content digest. It is
// recomputed each time a part is rendered; the digest is stable for a
// given payload.
type Descriptor struct {
	Part        *message.Part
	ContentType string
	Payload     []byte
	Extension   string
	Digest      string
}

// TypeResolver resolves effective content types and file extensions for
// parts. It owns the type-to-extension cache, which is shared across
// conversions and safe for concurrent use.
type TypeResolver struct {
	mu         sync.Mutex
	extensions map[string]string
}

// NewTypeResolver creates a resolver seeded with the common-type table.
func NewTypeResolver() *TypeResolver {
	extensions := make(map[string]string, len(commonExtensions))
	for mimeType, ext := range commonExtensions {
		extensions[mimeType] = ext
	}
	return &TypeResolver{extensions: extensions}
}

// Describe computes the Descriptor for a part.
func (t *TypeResolver) Describe(part *message.Part) *Descriptor {
	payload := part.Payload()
	contentType := t.ContentType(part.MediaType(), payload)
	sum := sha256.Sum256(payload)
	return &Descriptor{
		Part:        part,
		ContentType: contentType,
		Payload:     payload,
		Extension:   t.Extension(contentType),
		Digest:      base64.RawURLEncoding.EncodeToString(sum[:]),
	}
}

// ContentType resolves the effective content type for a payload. The
// declared type wins unless it is absent or the generic octet-stream
// placeholder, in which case the payload is sniffed. Sniffing is best
// effort; with no better guess the declared type (possibly "") stands.
func (t *TypeResolver) ContentType(declared string, payload []byte) string {
	declared = strings.ToLower(strings.TrimSpace(declared))
	if declared != "" && !strings.Contains(declared, "octet-stream") {
		return declared
	}
	if len(payload) > 0 {
		if sniffed := bareType(mimetype.Detect(payload).String()); sniffed != "" {
			return sniffed
		}
	}
	return declared
}

// Extension returns a file extension (dot included) for a mime type.
// The common-type table is consulted first; otherwise the system
// registry is queried and the lexicographically smallest candidate is
// taken so blob names stay deterministic. Results are cached, and each
// newly resolved mapping is logged once.
func (t *TypeResolver) Extension(mimeType string) string {
	mimeType = strings.ToLower(mimeType)
	t.mu.Lock()
	defer t.mu.Unlock()
	if ext, ok := t.extensions[mimeType]; ok {
		return ext
	}
	ext := ""
	if candidates, err := mime.ExtensionsByType(mimeType); err == nil && len(candidates) > 0 {
		sort.Strings(candidates)
		ext = candidates[0]
	}
	t.extensions[mimeType] = ext
	log.Printf("resolved mime type %q -> extension %q", mimeType, ext)
	return ext
}

// bareType strips parameters from a media type string; the sniffer tags
// text types with a charset parameter that has no place in lookups.
func bareType(mediaType string) string {
	bare, _, _ := strings.Cut(mediaType, ";")
	return strings.TrimSpace(bare)
}
