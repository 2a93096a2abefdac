// Package source resolves upload references such as "./cat.jpg", "-" or
// "s3://bucket/key" into readable streams for Client.UploadFile.
package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
)

var (
	// ErrNotFound indicates the referenced object does not exist
	ErrNotFound = errors.New("source not found")

	// ErrUnsupportedScheme indicates no opener is registered for the reference scheme
	ErrUnsupportedScheme = errors.New("unsupported source scheme")
)

// Opener opens a reference for streaming. The returned name is a suggested
// upload filename.
type Opener interface {
	Open(ctx context.Context, ref string) (rc io.ReadCloser, name string, err error)
}

// OpenerFunc adapts a function to the Opener interface.
type OpenerFunc func(ctx context.Context, ref string) (io.ReadCloser, string, error)

func (f OpenerFunc) Open(ctx context.Context, ref string) (io.ReadCloser, string, error) {
	return f(ctx, ref)
}

// Registry dispatches references to openers by URL scheme. References
// without a scheme go to the opener registered for "file".
type Registry struct {
	mu      sync.RWMutex
	openers map[string]Opener
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{openers: make(map[string]Opener)}
}

// Register sets the opener for scheme, replacing any previous one.
func (r *Registry) Register(scheme string, o Opener) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.openers[strings.ToLower(scheme)] = o
}

// Open resolves ref with the opener registered for its scheme.
func (r *Registry) Open(ctx context.Context, ref string) (io.ReadCloser, string, error) {
	scheme := Scheme(ref)

	r.mu.RLock()
	o, ok := r.openers[scheme]
	r.mu.RUnlock()
	if !ok {
		return nil, "", fmt.Errorf("%w: %q", ErrUnsupportedScheme, scheme)
	}
	return o.Open(ctx, ref)
}

// Scheme returns the lower-cased scheme of ref, or "file" when it has none.
func Scheme(ref string) string {
	i := strings.Index(ref, "://")
	if i <= 0 {
		return "file"
	}
	return strings.ToLower(ref[:i])
}
