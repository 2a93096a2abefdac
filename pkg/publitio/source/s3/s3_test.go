package s3

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/publitio-go/pkg/publitio/source"
)

func TestParseRef(t *testing.T) {
	tests := []struct {
		ref     string
		bucket  string
		key     string
		wantErr bool
	}{
		{ref: "s3://photos/cat.jpg", bucket: "photos", key: "cat.jpg"},
		{ref: "s3://photos/2024/01/cat.jpg", bucket: "photos", key: "2024/01/cat.jpg"},
		{ref: "s3://photos", wantErr: true},
		{ref: "s3://photos/", wantErr: true},
		{ref: "s3:///cat.jpg", wantErr: true},
		{ref: "gs://photos/cat.jpg", wantErr: true},
		{ref: "cat.jpg", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			bucket, key, err := ParseRef(tt.ref)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.bucket, bucket)
			assert.Equal(t, tt.key, key)
		})
	}
}

// fakeS3 serves path-style GetObject requests from memory.
func fakeS3(t *testing.T, objects map[string]string) (*httptest.Server, func() []string) {
	t.Helper()
	var mu sync.Mutex
	var seen []string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		seen = append(seen, r.Method+" "+r.URL.Path)
		mu.Unlock()

		body, ok := objects[r.URL.Path]
		if !ok {
			w.Header().Set("Content-Type", "application/xml")
			w.WriteHeader(http.StatusNotFound)
			io.WriteString(w, `<?xml version="1.0" encoding="UTF-8"?><Error><Code>NoSuchKey</Code><Message>The specified key does not exist.</Message></Error>`)
			return
		}
		w.Header().Set("Content-Type", "image/jpeg")
		io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)

	return srv, func() []string {
		mu.Lock()
		defer mu.Unlock()
		return append([]string(nil), seen...)
	}
}

func newTestOpener(t *testing.T, endpoint string) *Opener {
	t.Helper()
	o, err := New(context.Background(), Config{
		Region:          "us-east-1",
		AccessKeyID:     "test-access-key",
		SecretAccessKey: "test-secret-key",
		Endpoint:        endpoint,
		UsePathStyle:    true,
	})
	require.NoError(t, err)
	return o
}

func TestOpener_Open(t *testing.T) {
	srv, seen := fakeS3(t, map[string]string{"/photos/2024/cat.jpg": "jpeg-bytes"})
	o := newTestOpener(t, srv.URL)

	rc, name, err := o.Open(context.Background(), "s3://photos/2024/cat.jpg")
	require.NoError(t, err)
	defer rc.Close()

	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "jpeg-bytes", string(data))
	assert.Equal(t, "cat.jpg", name)
	assert.Equal(t, []string{"GET /photos/2024/cat.jpg"}, seen())
}

func TestOpener_NotFound(t *testing.T) {
	srv, _ := fakeS3(t, nil)
	o := newTestOpener(t, srv.URL)

	_, _, err := o.Open(context.Background(), "s3://photos/missing.jpg")
	assert.ErrorIs(t, err, source.ErrNotFound)
}

func TestOpener_InvalidRef(t *testing.T) {
	o := newTestOpener(t, "http://127.0.0.1:1")

	_, _, err := o.Open(context.Background(), "s3://photos")
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "expected s3://bucket/key"))
}
