package resolver

import "io"

// Handle is an ownership token for a resolver. A Handle created with Owned
// closes the underlying resolver on Release; one created with Borrowed
// leaves it alone. Release is idempotent, so a handle can sit in a defer
// and also be released explicitly.
//
// Tracking ownership in the token instead of an ad hoc boolean next to the
// resolver removes the double-close and leak cases: construction decides
// ownership exactly once, and Release consumes it exactly once.
type Handle struct {
	r        Resolver
	owned    bool
	released bool
}

// Owned wraps a resolver the holder is responsible for closing.
func Owned(r Resolver) *Handle {
	return &Handle{r: r, owned: true}
}

// Borrowed wraps a resolver someone else owns.
func Borrowed(r Resolver) *Handle {
	return &Handle{r: r}
}

// Resolver returns the wrapped resolver.
func (h *Handle) Resolver() Resolver { return h.r }

// Release closes the underlying resolver if this handle owns it and the
// resolver is closeable. Subsequent calls are no-ops.
func (h *Handle) Release() error {
	if h.released {
		return nil
	}
	h.released = true
	if !h.owned {
		return nil
	}
	if c, ok := h.r.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
