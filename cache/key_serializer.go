package cache

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strings"
)

// KeySeparator defines the delimiter used between cache key segments.
const KeySeparator = ":"

// Wildcard matches any run of characters inside a pattern.
const Wildcard = "*"

// Encode builds a cache key from a namespace and a parameter set.
// Parameter names are sorted so that insertion order never changes the key.
// Absent values (nil, nil pointers, empty strings) are omitted, so a filter
// that leaves an optional field unset encodes the same as one that never had it.
//
//	Encode("orders:list", map[string]any{"skip": 0, "limit": 10})
//	// orders:list:limit=10:skip=0
func Encode(namespace string, params map[string]any) string {
	names := make([]string, 0, len(params))
	for name, value := range params {
		if isAbsent(value) {
			continue
		}
		names = append(names, name)
	}

	if len(names) == 0 {
		return namespace
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names)+1)
	parts = append(parts, namespace)
	for _, name := range names {
		parts = append(parts, name+"="+serializeValue(params[name]))
	}

	return strings.Join(parts, KeySeparator)
}

// Namespace joins key segments, e.g. Namespace("orders", "list") == "orders:list".
func Namespace(segments ...string) string {
	return strings.Join(segments, KeySeparator)
}

// Pattern returns the wildcard pattern covering every key below namespace.
func Pattern(namespace string) string {
	return namespace + KeySeparator + Wildcard
}

// Matches reports whether key satisfies pattern. Wildcard matches any run of
// characters (including none). Matching is anchored at the start of the key
// only: "orders:list:*" matches every key beginning with "orders:list:".
func Matches(pattern, key string) bool {
	segments := strings.Split(pattern, Wildcard)

	if !strings.HasPrefix(key, segments[0]) {
		return false
	}
	rest := key[len(segments[0]):]

	for _, segment := range segments[1:] {
		if segment == "" {
			continue
		}
		idx := strings.Index(rest, segment)
		if idx < 0 {
			return false
		}
		rest = rest[idx+len(segment):]
	}

	return true
}

// isAbsent reports values that are left out of a key.
func isAbsent(v any) bool {
	if v == nil {
		return true
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Interface:
		if rv.IsNil() {
			return true
		}
		return isAbsent(rv.Elem().Interface())
	case reflect.String:
		return rv.Len() == 0
	}

	return false
}

// serializeValue renders v deterministically. Pointers are dereferenced and
// everything else goes through JSON, which sorts map keys.
func serializeValue(v any) string {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Ptr || rv.Kind() == reflect.Interface {
		rv = rv.Elem()
	}

	data, err := json.Marshal(rv.Interface())
	if err != nil {
		// Types JSON cannot handle (channels, funcs) still get a stable
		// type-qualified rendering instead of failing the lookup.
		return fmt.Sprintf("%s(%v)", rv.Type().String(), rv.Interface())
	}
	return string(data)
}
