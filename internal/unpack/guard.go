package unpack

// DigestSet is the cycle guard: the digests of the parts on the active
// recursion path. A part whose digest is already present is never
// re-rendered. Extension copies the set, so sibling branches of the
// recursion never share guard state.
type DigestSet map[string]struct{}

// Has reports whether digest is on the active path.
func (s DigestSet) Has(digest string) bool {
	_, ok := s[digest]
	return ok
}

// With returns a copy of s that also contains digest.
func (s DigestSet) With(digest string) DigestSet {
	next := make(DigestSet, len(s)+1)
	for d := range s {
		next[d] = struct{}{}
	}
	next[digest] = struct{}{}
	return next
}
