// Package httpheaders manipulates header maps with case-insensitive keys.
// Config files and imported manifests spell header names freely, so plain
// map writes would duplicate keys that differ only in casing.
package httpheaders

import (
	"sort"
	"strings"
)

// Set writes a header value, replacing any existing key that matches
// case-insensitively.
func Set(headers map[string]string, name, value string) map[string]string {
	name = strings.TrimSpace(name)
	if name == "" {
		return headers
	}

	if headers == nil {
		headers = make(map[string]string, 1)
	}
	if existing, ok := lookupFold(headers, name); ok && existing != name {
		delete(headers, existing)
	}
	headers[name] = value
	return headers
}

// Merge copies src entries into dst with case-insensitive key matching.
// Existing dst entries win unless overwrite is set. Source keys are
// applied in a stable order so collisions resolve deterministically.
func Merge(dst, src map[string]string, overwrite bool) map[string]string {
	if len(src) == 0 {
		return dst
	}
	if dst == nil {
		dst = make(map[string]string, len(src))
	}

	keys := make([]string, 0, len(src))
	for key := range src {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		li, lj := foldKey(keys[i]), foldKey(keys[j])
		if li == lj {
			return keys[i] < keys[j]
		}
		return li < lj
	})

	for _, key := range keys {
		name := strings.TrimSpace(key)
		if name == "" {
			continue
		}
		if existing, ok := lookupFold(dst, name); ok {
			if !overwrite {
				continue
			}
			delete(dst, existing)
		}
		dst[name] = src[key]
	}
	return dst
}

// Clone returns an independent copy of headers, or nil for an empty map.
func Clone(headers map[string]string) map[string]string {
	if len(headers) == 0 {
		return nil
	}
	out := make(map[string]string, len(headers))
	for k, v := range headers {
		out[k] = v
	}
	return out
}

func lookupFold(headers map[string]string, name string) (string, bool) {
	for key := range headers {
		if strings.EqualFold(strings.TrimSpace(key), name) {
			return key, true
		}
	}
	return "", false
}

func foldKey(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}
