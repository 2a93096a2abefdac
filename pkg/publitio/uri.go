package publitio

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// DefaultBaseURL is the v1 surface of the Publitio API.
const DefaultBaseURL = "https://api.publit.io/v1"

// BuildURI assembles the request URI for path under base. Caller parameters
// come first, in order, followed by the four auth parameters.
func BuildURI(base *url.URL, path string, params Params, sq SignedQuery) (*url.URL, error) {
	if base == nil {
		return nil, &URIError{Path: path, Err: errors.New("base url is nil")}
	}
	ref, err := parsePath(path)
	if err != nil {
		return nil, &URIError{Path: path, Err: err}
	}
	for _, p := range params {
		if p.Key == "" {
			return nil, &URIError{Path: path, Err: errors.New("empty parameter name")}
		}
	}

	u := base.JoinPath(strings.TrimLeft(ref.EscapedPath(), "/"))
	query := make(Params, 0, len(params)+4)
	query = append(query, params...)
	query = append(query, sq.Params()...)
	u.RawQuery = query.Encode()
	u.Fragment = ""
	u.RawFragment = ""
	return u, nil
}

func parsePath(path string) (*url.URL, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("path is empty")
	}
	for _, r := range path {
		if r < 0x20 || r == 0x7f {
			return nil, fmt.Errorf("path contains control character %q", r)
		}
	}
	ref, err := url.Parse(path)
	if err != nil {
		return nil, err
	}
	switch {
	case ref.IsAbs() || ref.Host != "" || ref.User != nil:
		return nil, errors.New("path must be relative to the api base")
	case ref.RawQuery != "" || ref.ForceQuery:
		return nil, errors.New("path must not carry a query, pass parameters instead")
	case ref.Fragment != "":
		return nil, errors.New("path must not carry a fragment")
	}
	for _, seg := range strings.Split(ref.Path, "/") {
		if seg == ".." {
			return nil, errors.New("path must not leave the api base")
		}
	}
	return ref, nil
}

// redact hides the signature of a built URI for logs and errors.
func redact(u *url.URL) string {
	if u == nil {
		return ""
	}
	c := *u
	params, err := ParseParams(c.RawQuery)
	if err != nil {
		c.RawQuery = ""
		return c.String()
	}
	for i := range params {
		if params[i].Key == ParamAPISignature {
			params[i].Value = "REDACTED"
		}
	}
	c.RawQuery = params.Encode()
	return c.String()
}
