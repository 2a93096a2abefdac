package publitio

import (
	"net/url"
	"slices"
	"strings"

	"golang.org/x/exp/maps"
)

// Param is a single query parameter.
type Param struct {
	Key   string
	Value string
}

// P is shorthand for Param{Key: key, Value: value}.
func P(key, value string) Param {
	return Param{Key: key, Value: value}
}

// Params is an ordered list of query parameters. Order is preserved on the wire.
type Params []Param

// ParamsFromMap converts a map into Params sorted by key, since map iteration
// order is random.
func ParamsFromMap(m map[string]string) Params {
	if len(m) == 0 {
		return nil
	}
	keys := maps.Keys(m)
	slices.Sort(keys)
	params := make(Params, 0, len(keys))
	for _, k := range keys {
		params = append(params, Param{Key: k, Value: m[k]})
	}
	return params
}

// Get returns the value of the first parameter named key.
func (p Params) Get(key string) (string, bool) {
	for _, param := range p {
		if param.Key == key {
			return param.Value, true
		}
	}
	return "", false
}

// Keys returns the parameter names in order.
func (p Params) Keys() []string {
	keys := make([]string, len(p))
	for i, param := range p {
		keys[i] = param.Key
	}
	return keys
}

// ParseParams parses a raw query string keeping the original parameter order.
func ParseParams(rawQuery string) (Params, error) {
	if rawQuery == "" {
		return nil, nil
	}
	var params Params
	for _, pair := range strings.Split(rawQuery, "&") {
		if pair == "" {
			continue
		}
		k, v, _ := strings.Cut(pair, "=")
		key, err := url.QueryUnescape(k)
		if err != nil {
			return nil, err
		}
		value, err := url.QueryUnescape(v)
		if err != nil {
			return nil, err
		}
		params = append(params, Param{Key: key, Value: value})
	}
	return params, nil
}

// Encode renders the parameters as a URL query string without reordering them.
func (p Params) Encode() string {
	var b strings.Builder
	for i, param := range p {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(param.Key))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(param.Value))
	}
	return b.String()
}
