// Package message parses multipart MIME archives into a tree of parts.
// This is the container layer underneath the unpack engine: it splits a
// byte stream into typed, headered parts and decodes transfer encodings,
// but knows nothing about cross-references between parts.
package message

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net/mail"
	"net/textproto"
	"strings"
)

// Part is one typed, headered unit of a multipart message. A leaf part
// carries a decoded payload; a container part carries subparts. Parts
// are immutable once parsed.
type Part struct {
	mediaType string
	params    map[string]string
	header    textproto.MIMEHeader
	payload   []byte
	subparts  []*Part
}

// ReadMessage parses a complete MIME message from r into a part tree.
func ReadMessage(r io.Reader) (*Part, error) {
	msg, err := mail.ReadMessage(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read message headers: %w", err)
	}
	return buildPart(textproto.MIMEHeader(msg.Header), msg.Body)
}

// buildPart constructs the part for one header/body pair, recursing into
// multipart bodies.
func buildPart(header textproto.MIMEHeader, body io.Reader) (*Part, error) {
	mediaType, params := parseContentType(header.Get("Content-Type"))
	part := &Part{
		mediaType: mediaType,
		params:    params,
		header:    header,
	}

	if !strings.HasPrefix(mediaType, "multipart/") {
		raw, err := io.ReadAll(body)
		if err != nil {
			return nil, fmt.Errorf("failed to read part body: %w", err)
		}
		part.payload = decodePayload(raw, header.Get("Content-Transfer-Encoding"))
		return part, nil
	}

	boundary := params["boundary"]
	if boundary == "" {
		return nil, fmt.Errorf("multipart part %q has no boundary parameter", mediaType)
	}
	reader := multipart.NewReader(body, boundary)
	for {
		sub, err := reader.NextPart()
		if err == io.EOF {
			return part, nil
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read next part of %q: %w", mediaType, err)
		}
		child, err := buildPart(textproto.MIMEHeader(sub.Header), sub)
		if err != nil {
			return nil, err
		}
		part.subparts = append(part.subparts, child)
	}
}

// parseContentType extracts the lowercased media type and its parameters
// from a Content-Type header value. A malformed value degrades to its
// bare type portion with no parameters.
func parseContentType(value string) (string, map[string]string) {
	if strings.TrimSpace(value) == "" {
		return "", nil
	}
	mediaType, params, err := mime.ParseMediaType(value)
	if err != nil {
		bare, _, _ := strings.Cut(value, ";")
		return strings.ToLower(strings.TrimSpace(bare)), nil
	}
	return mediaType, params
}

// decodePayload reverses the part's content transfer encoding. Decoding
// is best effort: undecodable content is passed through raw rather than
// failing the whole parse. Note that mime/multipart already decodes
// quoted-printable subparts transparently (and removes the header), so
// the quoted-printable branch here only fires for top-level bodies.
func decodePayload(raw []byte, encoding string) []byte {
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "base64":
		cleaned := strings.Map(func(r rune) rune {
			if r == '\r' || r == '\n' || r == ' ' || r == '\t' {
				return -1
			}
			return r
		}, string(raw))
		decoded, err := base64.StdEncoding.DecodeString(cleaned)
		if err != nil {
			return raw
		}
		return decoded
	case "quoted-printable":
		decoded, err := io.ReadAll(quotedprintable.NewReader(bytes.NewReader(raw)))
		if err != nil {
			return raw
		}
		return decoded
	default:
		return raw
	}
}

// MediaType returns the part's declared media type, lowercased, or ""
// when the part has no Content-Type header.
func (p *Part) MediaType() string {
	return p.mediaType
}

// Payload returns the part's decoded body. Container parts have none.
func (p *Part) Payload() []byte {
	return p.payload
}

// IsMultipart reports whether the part is a container of subparts.
func (p *Part) IsMultipart() bool {
	return strings.HasPrefix(p.mediaType, "multipart/")
}

// Subparts returns the part's immediate children in document order.
func (p *Part) Subparts() []*Part {
	return p.subparts
}

// ContentLocation returns the part's Content-Location header value.
func (p *Part) ContentLocation() string {
	return strings.TrimSpace(p.header.Get("Content-Location"))
}

// ContentBase returns the part's Content-Base header value. The header
// was dropped from the MHTML standard but archives in the wild still
// carry it.
func (p *Part) ContentBase() string {
	return strings.TrimSpace(p.header.Get("Content-Base"))
}

// ContentID returns the part's Content-ID header value, angle brackets
// included when present.
func (p *Part) ContentID() string {
	return strings.TrimSpace(p.header.Get("Content-ID"))
}

// StartParam returns the "start" parameter of the part's Content-Type,
// which names the content-id of the document's entry part.
func (p *Part) StartParam() string {
	return p.params["start"]
}

// Walk visits p and every descendant in document order, containers
// included, each exactly once.
func (p *Part) Walk(fn func(*Part)) {
	fn(p)
	for _, sub := range p.subparts {
		sub.Walk(fn)
	}
}
