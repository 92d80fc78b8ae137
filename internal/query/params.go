package query

import (
	"net/url"
	"strconv"
	"strings"
)

// Params is an insertion-ordered query string builder. Only truthy values are
// kept, so the encoded form (and every cache key derived from it) depends on
// the order fields are checked in, never on sorting.
type Params struct {
	keys   []string
	values []string
}

// Set stores value under key, replacing an earlier value in place.
// Empty values are ignored.
func (p *Params) Set(key, value string) *Params {
	if value == "" {
		return p
	}
	for i, k := range p.keys {
		if k == key {
			p.values[i] = value
			return p
		}
	}
	p.keys = append(p.keys, key)
	p.values = append(p.values, value)
	return p
}

// SetInt stores a non-zero integer.
func (p *Params) SetInt(key string, value int) *Params {
	if value == 0 {
		return p
	}
	return p.Set(key, strconv.Itoa(value))
}

// Encode serializes the params as "k1=v1&k2=v2" in insertion order.
func (p *Params) Encode() string {
	if p == nil || len(p.keys) == 0 {
		return ""
	}
	var b strings.Builder
	for i, k := range p.keys {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(k))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(p.values[i]))
	}
	return b.String()
}

// ListKey is the cache key of a filtered list: "<resources>-<query string>".
func ListKey(resources string, p *Params) string {
	return resources + "-" + p.Encode()
}

// ItemKey is the cache key of a single resource: "<resource>-<id>".
func ItemKey(resource, id string) string {
	return resource + "-" + id
}
