package unpack

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// Rendered is the universal output of rendering a part.
type Rendered struct {
	Body        []byte
	ContentType string
}

// RenderFunc renders a described part under the given cycle guard.
type RenderFunc func(d *Descriptor, seen DigestSet) (*Rendered, error)

// Storage decides how a rendered part is represented in the document
// that references it. URI returns the substitute reference for the
// part, or "" when the part has no representation (cycle); in that case
// the referring attribute stays untouched. Implementations must extend
// the guard with the part's digest before invoking render, so that even
// a part referencing itself cannot recurse.
type Storage interface {
	URI(d *Descriptor, seen DigestSet, render RenderFunc) (string, error)
}

// InlineStorage embeds rendered parts directly as base64 data URIs. It
// keeps no external state; the resulting URIs can be arbitrarily large.
type InlineStorage struct{}

// URI implements Storage.
func (InlineStorage) URI(d *Descriptor, seen DigestSet, render RenderFunc) (string, error) {
	if seen.Has(d.Digest) {
		return "", nil
	}
	rendered, err := render(d, seen.With(d.Digest))
	if err != nil {
		return "", err
	}
	encoded := base64.StdEncoding.EncodeToString(rendered.Body)
	return "data:" + rendered.ContentType + ";base64," + encoded, nil
}

// DirStorage writes rendered parts to content-addressed files in a
// directory and hands out relative paths. Blobs are keyed by payload
// digest, so identical content is written at most once, including
// across conversions sharing the same directory.
type DirStorage struct {
	Dir string
}

// URI implements Storage. A digest already on the recursion path, or a
// blob file already on disk, short-circuits to the existing name
// without re-rendering.
func (s DirStorage) URI(d *Descriptor, seen DigestSet, render RenderFunc) (string, error) {
	name := "blob=" + d.Digest + d.Extension
	if seen.Has(d.Digest) {
		return name, nil
	}
	path := filepath.Join(s.Dir, name)
	if _, err := os.Stat(path); err == nil {
		return name, nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return "", &StoreError{Path: path, Cause: err}
	}
	rendered, err := render(d, seen.With(d.Digest))
	if err != nil {
		return "", err
	}
	if err := writeFileAtomic(path, rendered.Body); err != nil {
		return "", &StoreError{Path: path, Cause: err}
	}
	return name, nil
}

// writeFileAtomic writes data to a uniquely named temp file next to the
// target and renames it into place, so no reader (or concurrent
// conversion sharing the directory) ever observes a partial blob.
func writeFileAtomic(path string, data []byte) error {
	tmp := fmt.Sprintf("%s.%s.tmp", path, uuid.NewString())
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}
