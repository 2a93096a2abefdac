package publitio

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// Object is a decoded top-level JSON object. Numbers are kept as json.Number.
type Object map[string]any

// String returns the string value at key, or "" when missing or not a string.
func (o Object) String(key string) string {
	s, _ := o[key].(string)
	return s
}

// Bool returns the boolean value at key, or false when missing or not a bool.
func (o Object) Bool(key string) bool {
	b, _ := o[key].(bool)
	return b
}

// Response is a parsed API response. The status code is reported as-is, the
// API's own "success" field is left for the caller to interpret.
type Response struct {
	StatusCode int
	Header     http.Header
	Data       Object
}

// Decode re-decodes the response data into v.
func (r *Response) Decode(v any) error {
	raw, err := json.Marshal(r.Data)
	if err != nil {
		return fmt.Errorf("failed to encode response data: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("failed to decode response data: %w", err)
	}
	return nil
}

// Parse decodes r as exactly one JSON object.
func Parse(r io.Reader) (Object, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var obj Object
	if err := dec.Decode(&obj); err != nil {
		if errors.Is(err, io.EOF) {
			err = errors.New("empty response body")
		}
		return nil, &ResponseFormatError{Err: err}
	}
	if obj == nil {
		return nil, &ResponseFormatError{Err: errors.New("response body is null, expected a JSON object")}
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, &ResponseFormatError{Err: errors.New("unexpected data after JSON object")}
	}
	return obj, nil
}

// ParseResponse parses the body of resp and always drains and closes it.
// A failure while reading the body is a TransportError, anything wrong with
// the bytes that did arrive is a ResponseFormatError.
func ParseResponse(resp *http.Response) (*Response, error) {
	body := &readErrBody{r: resp.Body}
	defer func() {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}()

	obj, err := Parse(body)
	if body.err != nil {
		return nil, responseReadError(resp, body.err)
	}
	if err != nil {
		var rfe *ResponseFormatError
		if errors.As(err, &rfe) {
			rfe.StatusCode = resp.StatusCode
		}
		return nil, err
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Data:       obj,
	}, nil
}

// readErrBody remembers the first read error other than io.EOF.
type readErrBody struct {
	r   io.Reader
	err error
}

func (b *readErrBody) Read(p []byte) (int, error) {
	n, err := b.r.Read(p)
	if err != nil && err != io.EOF && b.err == nil {
		b.err = err
	}
	return n, err
}

func responseReadError(resp *http.Response, err error) error {
	err = fmt.Errorf("failed to read response body: %w", err)
	if resp.Request == nil {
		return &TransportError{Err: err}
	}
	return transportError(resp.Request.Method, resp.Request.URL, err)
}
