package publitio

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// trackingBody records whether it was fully read and closed.
type trackingBody struct {
	r      io.Reader
	eof    bool
	closed bool
}

func (b *trackingBody) Read(p []byte) (int, error) {
	n, err := b.r.Read(p)
	if err == io.EOF {
		b.eof = true
	}
	return n, err
}

func (b *trackingBody) Close() error {
	b.closed = true
	return nil
}

func TestParse_Object(t *testing.T) {
	obj, err := Parse(strings.NewReader(`{"a":1,"b":"x"}`))
	require.NoError(t, err)

	assert.Equal(t, json.Number("1"), obj["a"])
	assert.Equal(t, "x", obj.String("b"))

	// re-serialize and parse again
	raw, err := json.Marshal(obj)
	require.NoError(t, err)
	again, err := Parse(strings.NewReader(string(raw)))
	require.NoError(t, err)
	assert.Equal(t, obj, again)
}

func TestParse_LargeNumbersKept(t *testing.T) {
	obj, err := Parse(strings.NewReader(`{"size": 9007199254740993}`))
	require.NoError(t, err)
	assert.Equal(t, json.Number("9007199254740993"), obj["size"])
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"empty body", ""},
		{"whitespace only", "  \n"},
		{"html page", "<!DOCTYPE html><html><body>Not Found</body></html>"},
		{"json array", `[{"a":1}]`},
		{"json string", `"ok"`},
		{"json number", `42`},
		{"json null", `null`},
		{"truncated object", `{"a":`},
		{"trailing data", `{"a":1} {"b":2}`},
		{"trailing garbage", `{"a":1}xyz`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			obj, err := Parse(strings.NewReader(tt.body))
			require.Error(t, err)
			assert.Nil(t, obj)

			var rfe *ResponseFormatError
			require.True(t, errors.As(err, &rfe))
			assert.ErrorIs(t, err, ErrResponseFormat)
			assert.Contains(t, err.Error(), "invalid endpoint")
			assert.Contains(t, err.Error(), "internal server error")
			assert.NotNil(t, rfe.Unwrap())
		})
	}
}

func TestParseResponse(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		body := &trackingBody{r: strings.NewReader(`{"success":true,"code":200}`)}
		resp := &http.Response{StatusCode: http.StatusOK, Header: http.Header{"X-Test": {"1"}}, Body: body}

		result, err := ParseResponse(resp)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, result.StatusCode)
		assert.Equal(t, "1", result.Header.Get("X-Test"))
		assert.True(t, result.Data.Bool("success"))
		assert.True(t, body.eof)
		assert.True(t, body.closed)
	})

	t.Run("FormatErrorCarriesStatus", func(t *testing.T) {
		body := &trackingBody{r: strings.NewReader(`<html>500 Internal Server Error</html> and more bytes`)}
		resp := &http.Response{StatusCode: http.StatusInternalServerError, Body: body}

		_, err := ParseResponse(resp)
		require.Error(t, err)

		var rfe *ResponseFormatError
		require.True(t, errors.As(err, &rfe))
		assert.Equal(t, http.StatusInternalServerError, rfe.StatusCode)
		assert.Contains(t, err.Error(), "status 500")
		assert.True(t, body.eof, "body must be drained on failure")
		assert.True(t, body.closed, "body must be closed on failure")
	})
}

// brokenBody yields data and then fails like a reset connection.
type brokenBody struct {
	data   *strings.Reader
	err    error
	closed bool
}

func (b *brokenBody) Read(p []byte) (int, error) {
	if b.data.Len() > 0 {
		return b.data.Read(p)
	}
	return 0, b.err
}

func (b *brokenBody) Close() error {
	b.closed = true
	return nil
}

func TestParseResponse_ReadFailure(t *testing.T) {
	cause := errors.New("connection reset by peer")
	body := &brokenBody{data: strings.NewReader(`{"success":tr`), err: cause}
	u, err := url.Parse("https://api.publit.io/v1/files/list?api_key=k&api_signature=secretsig")
	require.NoError(t, err)
	resp := &http.Response{
		StatusCode: http.StatusOK,
		Body:       body,
		Request:    &http.Request{Method: http.MethodGet, URL: u},
	}

	result, err := ParseResponse(resp)
	require.Error(t, err)
	assert.Nil(t, result)

	var te *TransportError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, http.MethodGet, te.Method)
	assert.NotContains(t, err.Error(), "secretsig")
	assert.ErrorIs(t, err, cause)
	assert.ErrorIs(t, err, ErrTransport)
	assert.NotErrorIs(t, err, ErrResponseFormat)
	assert.True(t, body.closed)
}

func TestResponse_Decode(t *testing.T) {
	resp := &Response{Data: Object{"id": "abc", "size": json.Number("2048"), "tags": []any{"a", "b"}}}

	var file struct {
		ID   string   `json:"id"`
		Size int64    `json:"size"`
		Tags []string `json:"tags"`
	}
	require.NoError(t, resp.Decode(&file))
	assert.Equal(t, "abc", file.ID)
	assert.Equal(t, int64(2048), file.Size)
	assert.Equal(t, []string{"a", "b"}, file.Tags)
}
