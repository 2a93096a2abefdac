package fs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/tendant/publitio-go/pkg/publitio/source"
)

// StdinRef is the reference that reads from standard input.
const StdinRef = "-"

// Opener opens local files, "file://" references and standard input.
type Opener struct {
	Stdin io.Reader
}

// New creates a filesystem opener reading "-" from os.Stdin.
func New() *Opener {
	return &Opener{Stdin: os.Stdin}
}

// Open opens ref. Standard input is never closed by the returned reader.
func (o *Opener) Open(ctx context.Context, ref string) (io.ReadCloser, string, error) {
	if ref == StdinRef {
		if o.Stdin == nil {
			return nil, "", errors.New("stdin is not available")
		}
		return io.NopCloser(o.Stdin), "stdin", nil
	}

	path := strings.TrimPrefix(ref, "file://")
	if path == "" {
		return nil, "", errors.New("file path is required")
	}

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, "", fmt.Errorf("%w: %s", source.ErrNotFound, path)
	} else if err != nil {
		return nil, "", fmt.Errorf("failed to stat file: %w", err)
	}
	if info.IsDir() {
		return nil, "", fmt.Errorf("%s is a directory", path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open file: %w", err)
	}
	return f, filepath.Base(path), nil
}
