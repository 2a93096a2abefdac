package fs

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/publitio-go/pkg/publitio/source"
)

func TestOpener_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cat.jpg")
	require.NoError(t, os.WriteFile(path, []byte("meow"), 0644))

	o := New()
	for _, ref := range []string{path, "file://" + path} {
		rc, name, err := o.Open(context.Background(), ref)
		require.NoError(t, err)
		data, err := io.ReadAll(rc)
		require.NoError(t, err)
		require.NoError(t, rc.Close())

		assert.Equal(t, "cat.jpg", name)
		assert.Equal(t, "meow", string(data))
	}
}

func TestOpener_Stdin(t *testing.T) {
	o := &Opener{Stdin: strings.NewReader("piped bytes")}

	rc, name, err := o.Open(context.Background(), StdinRef)
	require.NoError(t, err)
	defer rc.Close()

	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "stdin", name)
	assert.Equal(t, "piped bytes", string(data))

	_, _, err = (&Opener{}).Open(context.Background(), StdinRef)
	assert.Error(t, err)
}

func TestOpener_Errors(t *testing.T) {
	dir := t.TempDir()
	o := New()

	_, _, err := o.Open(context.Background(), filepath.Join(dir, "missing.jpg"))
	assert.ErrorIs(t, err, source.ErrNotFound)

	_, _, err = o.Open(context.Background(), dir)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "is a directory")

	_, _, err = o.Open(context.Background(), "file://")
	assert.Error(t, err)
}
