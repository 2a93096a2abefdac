package publitio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"sync"
)

// UploadField is the multipart form field carrying the uploaded file.
const UploadField = "file"

// Doer is the subset of *http.Client used by the transport. Implementations
// must be safe for concurrent use.
type Doer interface {
	Do(*http.Request) (*http.Response, error)
}

// Transport executes requests over a single shared Doer. It holds no per-call
// state, so one Transport serves concurrent callers.
type Transport struct {
	doer Doer
}

// NewTransport creates a transport over doer, or over a new *http.Client if nil.
func NewTransport(doer Doer) *Transport {
	if doer == nil {
		doer = &http.Client{}
	}
	return &Transport{doer: doer}
}

// Execute sends a body-less request. The caller owns the response body.
func (t *Transport) Execute(ctx context.Context, method string, uri *url.URL) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, uri.String(), nil)
	if err != nil {
		return nil, transportError(method, uri, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := t.doer.Do(req)
	if err != nil {
		return nil, transportError(method, uri, err)
	}
	return resp, nil
}

// errUploadFinished stops the body writer once the exchange is over.
var errUploadFinished = errors.New("upload finished")

// ExecuteMultipartUpload POSTs r as the single multipart part named "file".
// The body is streamed through a pipe and never held in memory as a whole.
// r is no longer read once this returns an error or the response body is
// closed, even if the server replied before consuming the whole upload.
func (t *Transport) ExecuteMultipartUpload(ctx context.Context, uri *url.URL, r io.Reader, filename string) (*http.Response, error) {
	if filename == "" {
		filename = UploadField
	}

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, uri.String(), pr)
	if err != nil {
		pr.Close()
		return nil, transportError(http.MethodPost, uri, err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Accept", "application/json")

	done := make(chan struct{})
	go func() {
		defer close(done)
		part, err := mw.CreateFormFile(UploadField, filename)
		if err == nil {
			_, err = io.Copy(part, r)
		}
		if err == nil {
			err = mw.Close()
		} else {
			err = fmt.Errorf("failed to stream upload: %w", err)
		}
		pw.CloseWithError(err)
	}()

	resp, err := t.doer.Do(req)
	if err != nil {
		pr.CloseWithError(err)
		<-done
		return nil, transportError(http.MethodPost, uri, err)
	}
	resp.Body = &uploadBody{ReadCloser: resp.Body, pr: pr, done: done}
	return resp, nil
}

// uploadBody ties the upload writer's lifetime to the response body.
type uploadBody struct {
	io.ReadCloser
	pr   *io.PipeReader
	done <-chan struct{}
	once sync.Once
}

func (b *uploadBody) Close() error {
	err := b.ReadCloser.Close()
	b.once.Do(func() {
		b.pr.CloseWithError(errUploadFinished)
		<-b.done
	})
	return err
}

// transportError wraps err, scrubbing the signature from any *url.Error the
// http client produced.
func transportError(method string, uri *url.URL, err error) error {
	redacted := redact(uri)
	var ue *url.Error
	if errors.As(err, &ue) {
		ue.URL = redacted
	}
	return &TransportError{Method: method, URL: redacted, Err: err}
}

// Close releases idle pooled connections held by the underlying client.
func (t *Transport) Close() {
	if c, ok := t.doer.(interface{ CloseIdleConnections() }); ok {
		c.CloseIdleConnections()
	}
}
