package publitio

import (
	"errors"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testQuery = SignedQuery{Key: "k", Timestamp: "1500000000", Nonce: "12345678", Signature: "deadbeef"}

func mustBase(t *testing.T) *url.URL {
	t.Helper()
	u, err := url.Parse(DefaultBaseURL)
	require.NoError(t, err)
	return u
}

func TestBuildURI(t *testing.T) {
	base := mustBase(t)

	t.Run("CallerParamsFirst", func(t *testing.T) {
		u, err := BuildURI(base, "/files/list", Params{P("limit", "10"), P("offset", "20")}, testQuery)
		require.NoError(t, err)

		assert.Equal(t, "https", u.Scheme)
		assert.Equal(t, "api.publit.io", u.Host)
		assert.Equal(t, "/v1/files/list", u.Path)

		params, err := ParseParams(u.RawQuery)
		require.NoError(t, err)
		assert.Equal(t, []string{"limit", "offset", "api_key", "api_timestamp", "api_nonce", "api_signature"}, params.Keys())
	})

	t.Run("CallerOrderKept", func(t *testing.T) {
		u, err := BuildURI(base, "/files/list", Params{P("z", "1"), P("a", "2"), P("m", "3")}, testQuery)
		require.NoError(t, err)
		assert.Equal(t, "z=1&a=2&m=3&api_key=k&api_timestamp=1500000000&api_nonce=12345678&api_signature=deadbeef", u.RawQuery)
	})

	t.Run("NoParams", func(t *testing.T) {
		u, err := BuildURI(base, "files/show/abc123", nil, testQuery)
		require.NoError(t, err)
		assert.Equal(t, "https://api.publit.io/v1/files/show/abc123?api_key=k&api_timestamp=1500000000&api_nonce=12345678&api_signature=deadbeef", u.String())
	})

	t.Run("ValuesPercentEncoded", func(t *testing.T) {
		u, err := BuildURI(base, "/files/update/x", Params{P("title", "cats & dogs=fun"), P("tags", "a b/c")}, testQuery)
		require.NoError(t, err)

		params, err := ParseParams(u.RawQuery)
		require.NoError(t, err)
		title, _ := params.Get("title")
		tags, _ := params.Get("tags")
		assert.Equal(t, "cats & dogs=fun", title)
		assert.Equal(t, "a b/c", tags)
		assert.Contains(t, u.RawQuery, "title=cats+%26+dogs%3Dfun")
	})

	t.Run("BaseWithTrailingSlash", func(t *testing.T) {
		local, err := url.Parse("http://127.0.0.1:8080/v1/")
		require.NoError(t, err)
		u, err := BuildURI(local, "files//list", nil, testQuery)
		require.NoError(t, err)
		assert.Equal(t, "/v1/files/list", u.Path)
	})
}

func TestBuildURI_Invalid(t *testing.T) {
	base := mustBase(t)

	tests := []struct {
		name   string
		path   string
		params Params
	}{
		{"empty path", "", nil},
		{"blank path", "   ", nil},
		{"control character", "/files/\x00list", nil},
		{"newline", "/files/list\n", nil},
		{"absolute url", "https://evil.example.com/files", nil},
		{"scheme relative", "//evil.example.com/files", nil},
		{"query in path", "/files/list?limit=10", nil},
		{"fragment in path", "/files/list#top", nil},
		{"bad escape", "/files/%zz", nil},
		{"parent segment", "/../admin", nil},
		{"empty param key", "/files/list", Params{P("", "x")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := BuildURI(base, tt.path, tt.params, testQuery)
			require.Error(t, err)

			var uriErr *URIError
			require.True(t, errors.As(err, &uriErr))
			assert.Equal(t, tt.path, uriErr.Path)
			assert.ErrorIs(t, err, ErrInvalidURI)
		})
	}
}

func TestRedact(t *testing.T) {
	u, err := BuildURI(mustBase(t), "/files/list", nil, testQuery)
	require.NoError(t, err)

	redacted := redact(u)
	assert.NotContains(t, redacted, "deadbeef")
	assert.Contains(t, redacted, "api_signature=REDACTED")
	assert.Contains(t, u.String(), "deadbeef")
}
