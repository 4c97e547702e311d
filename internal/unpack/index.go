package unpack

import (
	"net/url"
	"strings"

	"github.com/derekey/mhtml-unpack/internal/message"
)

// Index maps cross-reference identifiers to the parts that own them.
// It is built once per conversion and read-only afterwards. When two
// parts claim the same key, the later part in document order wins.
type Index struct {
	byLocation map[string]*message.Part
	byID       map[string]*message.Part
	starts     []string
}

// BuildIndex walks the part tree once, recording each part under its
// resolved content-location and under both the raw and bracket-stripped
// forms of its content-id, and collecting "start" parameters.
func BuildIndex(root *message.Part) *Index {
	idx := &Index{
		byLocation: make(map[string]*message.Part),
		byID:       make(map[string]*message.Part),
	}
	root.Walk(func(p *message.Part) {
		if start := p.StartParam(); start != "" {
			idx.starts = append(idx.starts, start)
		}
		if loc := p.ContentLocation(); loc != "" {
			// Best-effort join against the part's own base; a
			// location that cannot be resolved is not indexed.
			if abs, ok := joinURL(p.ContentBase(), loc); ok {
				idx.byLocation[abs] = p
			}
		}
		if cid := p.ContentID(); cid != "" {
			idx.byID[cid] = p
			idx.byID[strings.Trim(cid, "<>")] = p
		}
	})
	return idx
}

// ByLocation returns the part indexed under the given absolute URL, or
// nil.
func (idx *Index) ByLocation(absURL string) *message.Part {
	return idx.byLocation[absURL]
}

// ByID returns the part indexed under the given content-id token, or
// nil. Both bracketed and bare tokens are accepted.
func (idx *Index) ByID(id string) *message.Part {
	return idx.byID[id]
}

// LocationCount returns the number of location keys in the index.
func (idx *Index) LocationCount() int {
	return len(idx.byLocation)
}

// IDCount returns the number of content-id keys in the index.
func (idx *Index) IDCount() int {
	return len(idx.byID)
}

// Root selects the document's entry part: the first "start" parameter
// that resolves through the content-id table wins; otherwise the first
// leaf part in document order; nil when the tree has neither.
func (idx *Index) Root(msg *message.Part) *message.Part {
	for _, start := range idx.starts {
		if p := idx.ByID(start); p != nil {
			return p
		}
	}
	var leaf *message.Part
	msg.Walk(func(p *message.Part) {
		if leaf == nil && !p.IsMultipart() {
			leaf = p
		}
	})
	return leaf
}

// joinURL resolves ref against base with best-effort semantics: an
// empty or malformed base falls back to the reference alone, while a
// malformed reference fails the join.
func joinURL(base, ref string) (string, bool) {
	refURL, err := url.Parse(ref)
	if err != nil {
		return "", false
	}
	if base == "" {
		return refURL.String(), true
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return refURL.String(), true
	}
	return baseURL.ResolveReference(refURL).String(), true
}
