package unpack

import (
	"bytes"
	"log"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/derekey/mhtml-unpack/internal/message"
)

// DefaultMaxDepth bounds render recursion. Reference graphs deeper than
// this have their remaining references left unresolved.
const DefaultMaxDepth = 64

// Renderer resolves and rewrites the cross-references inside a part
// tree. Rendering is synchronous and depth-first. The cycle guard is
// copied per recursive call, never mutated in place, so sibling
// branches of the recursion cannot interfere with each other.
type Renderer struct {
	Index   *Index
	Storage Storage
	Types   *TypeResolver

	// MaxDepth overrides DefaultMaxDepth when positive.
	MaxDepth int
	// Verbose emits one log line per reference encountered.
	Verbose bool
}

// Render produces the final bytes and effective content type for part,
// substituting every resolvable reference it contains. seen carries the
// digests already on the recursion path; pass an empty DigestSet for a
// top-level render.
func (r *Renderer) Render(part *message.Part, seen DigestSet) (*Rendered, error) {
	return r.renderDescriptor(r.Types.Describe(part), seen, 0)
}

func (r *Renderer) renderDescriptor(d *Descriptor, seen DigestSet, depth int) (*Rendered, error) {
	if isHTML(d.ContentType) {
		return r.renderHTML(d, seen, depth)
	}
	if strings.HasPrefix(d.ContentType, "text/") {
		return &Rendered{Body: d.Payload, ContentType: d.ContentType + ";charset=utf-8"}, nil
	}
	return &Rendered{Body: d.Payload, ContentType: d.ContentType}, nil
}

// renderHTML parses the part as markup, rewrites every resolvable
// reference attribute in place, and re-serializes the tree. Unresolved
// and cyclic references are deliberately left untouched: broken links
// stay broken rather than failing the conversion.
func (r *Renderer) renderHTML(d *Descriptor, seen DigestSet, depth int) (*Rendered, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(d.Payload))
	if err != nil {
		return nil, &RenderError{Message: "failed to parse HTML part", Cause: err}
	}

	base := effectiveBase(doc, d.Part)
	// The guard below carries this part's digest, so a descendant
	// referencing back up the active path resolves to nothing.
	guard := seen.With(d.Digest)

	var walkErr error
	doc.Find("*").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		tag := goquery.NodeName(sel)
		attrs, ok := refAttrs[tag]
		if !ok {
			return true
		}
		for _, attr := range attrs {
			value := strings.TrimSpace(sel.AttrOr(attr, ""))
			if value == "" {
				continue
			}
			target := r.resolve(base, value)
			if r.Verbose {
				log.Printf("%s.%s=%s; resolved=%t", tag, attr, value, target != nil)
			}
			if target == nil || depth >= r.depthLimit() {
				continue
			}
			uri, err := r.Storage.URI(r.Types.Describe(target), guard, func(td *Descriptor, next DigestSet) (*Rendered, error) {
				return r.renderDescriptor(td, next, depth+1)
			})
			if err != nil {
				walkErr = err
				return false
			}
			if uri != "" {
				sel.SetAttr(attr, uri)
			}
		}
		return true
	})
	if walkErr != nil {
		return nil, walkErr
	}

	markup, err := doc.Html()
	if err != nil {
		return nil, &RenderError{Message: "failed to serialize HTML part", Cause: err}
	}
	return &Rendered{Body: []byte(markup), ContentType: "text/html;charset=utf-8"}, nil
}

// resolve finds the part a reference points at. cid URLs go through the
// content-id table; every other scheme joins against base and goes
// through the location table. A reference that parses as no URL at all
// resolves to nothing.
func (r *Renderer) resolve(base, ref string) *message.Part {
	refURL, err := url.Parse(ref)
	if err != nil {
		return nil
	}
	if refURL.Scheme == "cid" {
		id := refURL.Opaque
		if id == "" {
			id = refURL.Path
		}
		return r.Index.ByID(id)
	}
	abs, ok := joinURL(base, ref)
	if !ok {
		return nil
	}
	return r.Index.ByLocation(abs)
}

func (r *Renderer) depthLimit() int {
	if r.MaxDepth > 0 {
		return r.MaxDepth
	}
	return DefaultMaxDepth
}

// effectiveBase determines the base URL for references inside an HTML
// part: the document's own <base> target when present, else the part's
// content-base, joined against the part's content-location.
func effectiveBase(doc *goquery.Document, part *message.Part) string {
	base := part.ContentBase()
	if href, ok := doc.Find("base[href]").First().Attr("href"); ok && strings.TrimSpace(href) != "" {
		base = strings.TrimSpace(href)
	}
	joined, ok := joinURL(part.ContentLocation(), base)
	if !ok {
		return part.ContentLocation()
	}
	return joined
}

// isHTML reports whether a content type belongs to the HTML family.
func isHTML(contentType string) bool {
	return contentType == "text/html" || contentType == "application/xhtml+xml"
}
